package service

import (
	"context"

	"paper_bot/internal/models"

	"go.uber.org/zap"
)

// LogBackend пишет события в zap. Включён всегда.
type LogBackend struct {
	log *zap.Logger
}

func NewLogBackend(log *zap.Logger) *LogBackend {
	return &LogBackend{log: log}
}

func (b *LogBackend) Name() string { return "log" }

func (b *LogBackend) Send(_ context.Context, e models.Event) error {
	fields := []zap.Field{
		zap.String("kind", string(e.Kind)),
		zap.Float64("cash", e.Cash),
		zap.Any("positions", e.Positions),
	}
	if e.Symbol != "" {
		fields = append(fields, zap.String("symbol", e.Symbol))
	}
	if e.Trade != nil {
		fields = append(fields,
			zap.String("trade_id", e.Trade.ID),
			zap.String("side", string(e.Trade.Side)),
			zap.Float64("qty", e.Trade.Quantity),
			zap.Float64("price", e.Trade.Price),
		)
	}
	if e.Signal != nil {
		fields = append(fields,
			zap.String("strategy", string(e.Signal.Strategy)),
			zap.Float64("confidence", e.Signal.Confidence),
		)
	}

	switch e.Kind {
	case models.EventCycleError:
		b.log.Error(e.Error, fields...)
	case models.EventTradeRejected:
		b.log.Warn("trade rejected: "+e.Error, fields...)
	default:
		b.log.Info(string(e.Kind), fields...)
	}
	return nil
}
