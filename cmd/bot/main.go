package main

import (
	"context"

	"paper_bot/internal/modules/candles"
	"paper_bot/internal/modules/config"
	"paper_bot/internal/modules/health"
	"paper_bot/internal/modules/kucoin"
	"paper_bot/internal/modules/ledger"
	"paper_bot/internal/modules/postgres"
	"paper_bot/internal/modules/report"
	"paper_bot/internal/runner"
	"paper_bot/internal/strategy"
	"paper_bot/pkg/logger"
	"paper_bot/pkg/metrics"
	"paper_bot/pkg/tracing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

const serviceName = "paper_bot"

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logger.SetServiceName(serviceName)
	return logger.New(cfg.Log.Level)
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func newMetrics(reg *prometheus.Registry) *metrics.Metrics {
	return metrics.NewMetrics(reg)
}

func initTracing(lc fx.Lifecycle, cfg *config.Config) error {
	tracing.SetServiceName(serviceName)
	_, closer, err := tracing.InitTracer(tracing.Config{
		Enabled: cfg.Tracing.Enabled,
		Host:    cfg.Tracing.Host,
		Port:    cfg.Tracing.Port,
	})
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			closer()
			return nil
		},
	})
	return nil
}

func main() {
	fx.New(
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		config.Module(),
		fx.Provide(
			newLogger,
			newRegistry,
			newMetrics,
		),
		fx.Invoke(initTracing),
		postgres.Module(),
		kucoin.Module(),
		candles.Module(),
		ledger.Module(),
		strategy.Module(),
		report.Module(),
		runner.Module(),
		health.Module(),
	).Run()
}
