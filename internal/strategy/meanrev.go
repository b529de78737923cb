package strategy

import (
	"fmt"

	"paper_bot/internal/models"
)

const (
	meanReversionConfidence = 0.9

	RSIOversold   = 30.0
	RSIOverbought = 70.0
)

// MeanReversion: цена за нижней полосой Боллинджера при перепроданности - покупка,
// за верхней при перекупленности - продажа.
type MeanReversion struct{}

func NewMeanReversion() *MeanReversion { return &MeanReversion{} }

func (MeanReversion) Name() models.StrategyType { return models.StrategyMeanReversion }

func (MeanReversion) Check(s models.Snapshot) (models.Signal, bool) {
	if s.CurrentPrice == nil || s.RSI == nil || s.BBUpper == nil || s.BBLower == nil {
		return models.Signal{}, false
	}
	price, rsi := *s.CurrentPrice, *s.RSI

	switch {
	case price < *s.BBLower && rsi < RSIOversold:
		return models.Signal{
			Side:       models.SideBuy,
			Confidence: meanReversionConfidence,
			Reason:     fmt.Sprintf("price=%.6f < bb_lower=%.6f rsi=%.2f", price, *s.BBLower, rsi),
		}, true
	case price > *s.BBUpper && rsi > RSIOverbought:
		return models.Signal{
			Side:       models.SideSell,
			Confidence: meanReversionConfidence,
			Reason:     fmt.Sprintf("price=%.6f > bb_upper=%.6f rsi=%.2f", price, *s.BBUpper, rsi),
		}, true
	}
	return models.Signal{}, false
}
