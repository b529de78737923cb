package strategy

import (
	"fmt"

	"paper_bot/internal/models"
)

const trendConfidence = 0.8

// TrendFollowing: sma20 выше sma50 - покупаем, ниже - продаём.
type TrendFollowing struct{}

func NewTrendFollowing() *TrendFollowing { return &TrendFollowing{} }

func (TrendFollowing) Name() models.StrategyType { return models.StrategyTrendFollowing }

func (TrendFollowing) Check(s models.Snapshot) (models.Signal, bool) {
	if s.SMA20 == nil || s.SMA50 == nil {
		return models.Signal{}, false
	}
	fast, slow := *s.SMA20, *s.SMA50

	var side models.Side
	switch {
	case fast > slow:
		side = models.SideBuy
	case fast < slow:
		side = models.SideSell
	default:
		return models.Signal{}, false
	}

	return models.Signal{
		Side:       side,
		Confidence: trendConfidence,
		Reason:     fmt.Sprintf("sma20=%.6f sma50=%.6f", fast, slow),
	}, true
}
