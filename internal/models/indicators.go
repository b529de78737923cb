package models

// Snapshot - значения индикаторов по окну. nil = не хватает истории.
type Snapshot struct {
	SMA20        *float64 `json:"sma20"`
	SMA50        *float64 `json:"sma50"`
	RSI          *float64 `json:"rsi"`
	BBUpper      *float64 `json:"bb_upper"`
	BBLower      *float64 `json:"bb_lower"`
	CurrentPrice *float64 `json:"current_price"`
}

// Complete - все поля на месте, можно гонять стратегии.
func (s Snapshot) Complete() bool {
	return s.SMA20 != nil &&
		s.SMA50 != nil &&
		s.RSI != nil &&
		s.BBUpper != nil &&
		s.BBLower != nil &&
		s.CurrentPrice != nil
}

// Extras - дополнительные индикаторы для отчётов. На сигналы не влияют.
type Extras struct {
	MACD       *float64 `json:"macd"`
	MACDSignal *float64 `json:"macd_signal"`
	MACDHist   *float64 `json:"macd_hist"`
	ATR        *float64 `json:"atr"`
}

func Float(v float64) *float64 { return &v }
