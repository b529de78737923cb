package kucoin

import (
	"paper_bot/internal/modules/kucoin/service"

	"go.uber.org/fx"
)

// Module - REST/WS клиент KuCoin. Свечи публичные, подпись только при наличии ключей.
func Module() fx.Option {
	return fx.Module("kucoin",
		fx.Provide(
			service.NewClient,
		),
	)
}
