// Package indicators считает технические индикаторы по окну свечей.
// Все функции чистые: одно и то же окно всегда даёт один и тот же снапшот.
// Суммы считаются слева направо по срезу, чтобы результат воспроизводился.
package indicators

import (
	"math"

	"paper_bot/internal/models"
)

const (
	SMAFastPeriod = 20
	SMASlowPeriod = 50
	RSIPeriod     = 14
	BBPeriod      = 20
	BBWidth       = 2.0
)

// Compute собирает снапшот. Поле остаётся nil, если истории не хватает.
func Compute(window []models.Candle) models.Snapshot {
	var s models.Snapshot
	if len(window) == 0 {
		return s
	}
	closes := models.Closes(window)

	s.CurrentPrice = models.Float(closes[len(closes)-1])

	if v, ok := SMA(closes, SMAFastPeriod); ok {
		s.SMA20 = models.Float(v)
	}
	if v, ok := SMA(closes, SMASlowPeriod); ok {
		s.SMA50 = models.Float(v)
	}
	if v, ok := RSI(closes, RSIPeriod); ok {
		s.RSI = models.Float(v)
	}
	if up, low, ok := Bollinger(closes, BBPeriod, BBWidth); ok {
		s.BBUpper = models.Float(up)
		s.BBLower = models.Float(low)
	}
	return s
}

// SMA - среднее последних n закрытий.
func SMA(closes []float64, n int) (float64, bool) {
	if n <= 0 || len(closes) < n {
		return 0, false
	}
	return mean(closes[len(closes)-n:]), true
}

// RSI: дельты по всему окну, потом простое среднее последних period приростов и падений.
// avgLoss == 0 -> 100.
func RSI(closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) < period+1 {
		return 0, false
	}

	gains := make([]float64, len(closes)-1)
	losses := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gains[i-1] = d
		} else if d < 0 {
			losses[i-1] = -d
		}
	}

	avgGain := mean(gains[len(gains)-period:])
	avgLoss := mean(losses[len(losses)-period:])
	if avgLoss == 0 {
		return 100, true
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), true
}

// Bollinger - mean ± k*std по последним n закрытиям, std популяционное.
func Bollinger(closes []float64, n int, k float64) (upper, lower float64, ok bool) {
	if n <= 0 || len(closes) < n {
		return 0, 0, false
	}
	w := closes[len(closes)-n:]
	m := mean(w)

	var sq float64
	for _, x := range w {
		d := x - m
		sq += d * d
	}
	std := math.Sqrt(sq / float64(n))

	return m + k*std, m - k*std, true
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
