package indicators

import (
	"paper_bot/internal/models"

	"github.com/markcheno/go-talib"
)

const (
	macdFast   = 12
	macdSlow   = 26
	macdSignal = 9
	atrPeriod  = 14

	// talib паникует на коротких срезах, поэтому берём с запасом
	macdMinHistory = 40
	atrMinHistory  = 20
)

// ComputeExtras - MACD(12,26,9) и ATR(14) для отчётов. В гейтинг сигналов не входят.
func ComputeExtras(window []models.Candle) models.Extras {
	var e models.Extras
	closes := models.Closes(window)
	last := len(closes) - 1

	if len(closes) >= macdMinHistory {
		macd, signal, hist := talib.Macd(closes, macdFast, macdSlow, macdSignal)
		e.MACD = models.Float(macd[last])
		e.MACDSignal = models.Float(signal[last])
		e.MACDHist = models.Float(hist[last])
	}

	if len(window) >= atrMinHistory {
		highs := make([]float64, len(window))
		lows := make([]float64, len(window))
		for i, c := range window {
			highs[i] = c.High
			lows[i] = c.Low
		}
		atr := talib.Atr(highs, lows, closes, atrPeriod)
		e.ATR = models.Float(atr[last])
	}
	return e
}
