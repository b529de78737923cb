package models

import "time"

// Trade - результат успешно исполненной бумажной сделки.
type Trade struct {
	ID         string    `json:"id"`
	Side       Side      `json:"side"`
	Symbol     string    `json:"symbol"`
	Quantity   float64   `json:"quantity"`
	Price      float64   `json:"price"`
	ExecutedAt time.Time `json:"executed_at"`
}

func (t Trade) Notional() float64 { return t.Quantity * t.Price }

// Account - копия состояния счёта.
type Account struct {
	Cash      float64            `json:"cash"`
	Positions map[string]float64 `json:"positions"`
}

// Performance - сводка по истории сделок.
type Performance struct {
	Trades       int                `json:"trades"`
	Buys         int                `json:"buys"`
	Sells        int                `json:"sells"`
	WinningSells int                `json:"winning_sells"`
	LosingSells  int                `json:"losing_sells"`
	WinRate      float64            `json:"win_rate"`
	RealizedPnL  float64            `json:"realized_pnl"`
	Equity       float64            `json:"equity"`
	AvgEntry     map[string]float64 `json:"avg_entry"`
}
