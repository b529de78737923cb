package models

import "time"

// Candle - закрытая OHLCV свеча. Timestamp в unix миллисекундах (начало интервала).
type Candle struct {
	Timestamp int64   `json:"ts"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

func (c Candle) Time() time.Time { return time.UnixMilli(c.Timestamp) }

// Closes возвращает цены закрытия в порядке окна.
func Closes(window []Candle) []float64 {
	out := make([]float64, len(window))
	for i := range window {
		out[i] = window[i].Close
	}
	return out
}
