package ledger

import (
	"paper_bot/internal/modules/config"
	"paper_bot/internal/modules/ledger/service"

	"go.uber.org/fx"
)

// Module - один счёт на процесс, создаётся с начальным балансом из конфига.
func Module() fx.Option {
	return fx.Module("ledger",
		fx.Provide(
			func(cfg *config.Config) *service.Ledger {
				return service.New(cfg.Trading.InitialBalance)
			},
		),
	)
}
