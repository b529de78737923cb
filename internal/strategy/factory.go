package strategy

import (
	"fmt"
	"strings"

	"paper_bot/internal/models"
)

// Default - обе стратегии, трендовая первой.
func Default() *Evaluator {
	return NewEvaluator(NewTrendFollowing(), NewMeanReversion())
}

// NewFromNames собирает Evaluator по именам из конфига. Пустой список = Default().
func NewFromNames(names []string) (*Evaluator, error) {
	if len(names) == 0 {
		return Default(), nil
	}
	rules := make([]Rule, 0, len(names))
	for _, n := range names {
		switch models.StrategyType(strings.ToLower(strings.TrimSpace(n))) {
		case models.StrategyTrendFollowing:
			rules = append(rules, NewTrendFollowing())
		case models.StrategyMeanReversion:
			rules = append(rules, NewMeanReversion())
		default:
			return nil, fmt.Errorf("unknown strategy %q", n)
		}
	}
	return NewEvaluator(rules...), nil
}
