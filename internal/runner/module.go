package runner

import (
	"context"

	candles "paper_bot/internal/modules/candles/service"
	"paper_bot/internal/modules/config"
	health "paper_bot/internal/modules/health/service"
	ledger "paper_bot/internal/modules/ledger/service"
	report "paper_bot/internal/modules/report/service"
	"paper_bot/internal/strategy"
	"paper_bot/pkg/metrics"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func NewRunner(
	cfg *config.Config,
	store *candles.Store,
	eval *strategy.Evaluator,
	l *ledger.Ledger,
	sink report.Sink,
	state *health.State,
	m *metrics.Metrics,
	log *zap.Logger,
) *Runner {
	t := cfg.Trading
	return New(Config{
		Symbols:       t.Symbols,
		Interval:      t.Interval,
		Lookback:      t.Lookback,
		PollInterval:  t.PollInterval,
		ErrorBackoff:  t.ErrorBackoff,
		FetchTimeout:  t.FetchTimeout,
		TradeQuantity: t.TradeQuantity,
		SignalHistory: t.SignalHistory,
	}, store, eval, l, sink, state, m, log.Named("runner"))
}

// Module: раннер стартует вместе с приложением, SIGINT/SIGTERM через fx -> Stop.
func Module() fx.Option {
	return fx.Module("runner",
		fx.Provide(
			NewRunner,
		),
		fx.Invoke(func(lc fx.Lifecycle, r *Runner) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					return r.Start(ctx)
				},
				OnStop: func(ctx context.Context) error {
					return r.Stop(ctx)
				},
			})
		}),
	)
}
