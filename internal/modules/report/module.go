package report

import (
	"context"

	"paper_bot/internal/modules/config"
	"paper_bot/internal/modules/report/service"
	"paper_bot/pkg/db"
	"paper_bot/pkg/metrics"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewDispatcher собирает бэкенды по конфигу. Лог есть всегда, остальное опционально.
func NewDispatcher(
	lc fx.Lifecycle,
	cfg *config.Config,
	log *zap.Logger,
	m *metrics.Metrics,
	pg *db.PgTxManager,
) (*service.Dispatcher, error) {
	log = log.Named("report")
	backends := []service.Backend{service.NewLogBackend(log)}

	if tg := cfg.Report.Telegram; tg.Token != "" {
		t, err := service.NewTelegram(tg.Token, tg.ChatID)
		if err != nil {
			return nil, err
		}
		backends = append(backends, t)
	}

	if rc := cfg.Report.Redis; rc.Addr != "" {
		client, err := service.DialRedis(context.Background(), rc.Addr, rc.Password, rc.DB)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error { return client.Close() },
		})
		backends = append(backends, service.NewRedis(client, rc.Channel, rc.Keep))
	}

	if pg != nil {
		j := service.NewJournal(pg)
		if err := j.EnsureSchema(context.Background()); err != nil {
			return nil, err
		}
		backends = append(backends, j)
	}

	d := service.NewDispatcher(log, m, cfg.Report.Buffer, backends...)
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			d.Start()
			log.Info("report sinks", zap.Strings("backends", d.Backends()))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return d.Stop(ctx)
		},
	})
	return d, nil
}

func Module() fx.Option {
	return fx.Module("report",
		fx.Provide(
			NewDispatcher,
			func(d *service.Dispatcher) service.Sink { return d },
		),
	)
}
