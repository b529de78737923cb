package candles

import (
	"context"
	"time"

	"paper_bot/internal/models"
	"paper_bot/internal/modules/candles/service"
	"paper_bot/internal/modules/config"
	health "paper_bot/internal/modules/health/service"
	kucoin "paper_bot/internal/modules/kucoin/service"
	"paper_bot/pkg/metrics"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func NewStore(client *kucoin.Client, cfg *config.Config, m *metrics.Metrics) *service.Store {
	return service.NewStore(client, service.Config{
		MaxCandles: cfg.Trading.MaxCandles,
		Retention:  cfg.Trading.Retention,
	}, m)
}

func NewWarmuper(store *service.Store, cfg *config.Config, log *zap.Logger) *service.Warmuper {
	return service.NewWarmuper(store, log.Named("warmup"), cfg.Trading.WarmupParallel)
}

// runWarmup: прогрев в фоне, ошибки только в лог - цикл всё равно перезапросит свечи.
func runWarmup(lc fx.Lifecycle, cfg *config.Config, wu *service.Warmuper, log *zap.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				began := time.Now()
				if err := wu.Warmup(ctx, cfg.Trading.Symbols, cfg.Trading.Interval, cfg.Trading.Lookback); err != nil {
					log.Warn("warmup finished with errors", zap.Error(err))
					return
				}
				log.Info("warmup done",
					zap.Int("symbols", len(cfg.Trading.Symbols)),
					zap.Duration("took", time.Since(began)),
				)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
			}
			return nil
		},
	})
}

// runStream вливает закрытые свечи из WS в Store. Выключено по умолчанию.
func runStream(
	lc fx.Lifecycle,
	cfg *config.Config,
	client *kucoin.Client,
	store *service.Store,
	state *health.State,
	m *metrics.Metrics,
	log *zap.Logger,
) {
	if !cfg.Stream.Enabled {
		return
	}
	client.SetConnState(state)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ch, err := client.StreamCandles(ctx, cfg.Trading.Symbols, cfg.Trading.Interval)
			if err != nil {
				cancel()
				return err
			}
			go func() {
				defer close(done)
				for sc := range ch {
					store.Ingest(sc.Symbol, []models.Candle{sc.Candle})
					m.CandlesIngested.WithLabelValues(sc.Symbol, "ws").Inc()
					log.Debug("ws candle",
						zap.String("symbol", sc.Symbol),
						zap.Time("at", sc.Candle.Time()),
						zap.Float64("close", sc.Candle.Close),
					)
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
			}
			return nil
		},
	})
}

func Module() fx.Option {
	return fx.Module("candles",
		fx.Provide(
			NewStore,
			NewWarmuper,
		),
		fx.Invoke(runWarmup, runStream),
	)
}
