package models

import "time"

type StrategyType string

const (
	StrategyTrendFollowing StrategyType = "trend_following"
	StrategyMeanReversion  StrategyType = "mean_reversion"
)

type Side string

const (
	SideNone Side = ""
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Signal - решение правила. At проставляет раннер при записи в историю.
type Signal struct {
	Symbol     string       `json:"symbol,omitempty"`
	Side       Side         `json:"side"`
	Strategy   StrategyType `json:"strategy"`
	Confidence float64      `json:"confidence"`
	Price      float64      `json:"price,omitempty"`
	Reason     string       `json:"reason,omitempty"`
	At         time.Time    `json:"at,omitempty"`
}
