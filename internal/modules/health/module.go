package health

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	candles "paper_bot/internal/modules/candles/service"
	"paper_bot/internal/modules/config"
	"paper_bot/internal/modules/health/service"
	ledger "paper_bot/internal/modules/ledger/service"
	"paper_bot/internal/runner"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Config struct {
	Addr string // например ":8080"
}

func NewConfig(cfg *config.Config) Config {
	return Config{Addr: fmt.Sprintf("%s:%d", cfg.Service.Host, cfg.Service.AdminPort)}
}

func NewRouter(
	state *service.State,
	l *ledger.Ledger,
	store *candles.Store,
	r *runner.Runner,
	reg *prometheus.Registry,
) *mux.Router {
	metrics := promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	return service.NewHandlers(state, l, store, r, metrics).Router()
}

func RunHTTP(lc fx.Lifecycle, cfg Config, router *mux.Router, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", cfg.Addr)
			if err != nil {
				return err
			}
			log.Info("status api listening", zap.String("addr", ln.Addr().String()))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("status api stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

func Module() fx.Option {
	return fx.Module("health",
		fx.Provide(
			service.NewState,
			NewConfig,
			NewRouter,
		),
		fx.Invoke(RunHTTP),
	)
}
