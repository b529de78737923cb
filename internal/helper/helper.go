package helper

import (
	"fmt"
	"strings"
	"time"
)

// NormTF приводит таймфрейм к короткой форме: "1MIN" -> "1m", "60m" -> "1h".
func NormTF(raw string) string {
	s := strings.TrimSpace(strings.ToLower(raw))
	s = strings.TrimPrefix(s, "candle")
	switch s {
	case "1min":
		return "1m"
	case "3min":
		return "3m"
	case "5min":
		return "5m"
	case "15min":
		return "15m"
	case "30min":
		return "30m"
	case "60m", "1hour":
		return "1h"
	case "2hour":
		return "2h"
	case "4hour":
		return "4h"
	case "6hour":
		return "6h"
	case "8hour":
		return "8h"
	case "12hour":
		return "12h"
	case "1day":
		return "1d"
	case "1week":
		return "1w"
	default:
		return s
	}
}

var kucoinTypes = map[string]string{
	"1m":  "1min",
	"3m":  "3min",
	"5m":  "5min",
	"15m": "15min",
	"30m": "30min",
	"1h":  "1hour",
	"2h":  "2hour",
	"4h":  "4hour",
	"6h":  "6hour",
	"8h":  "8hour",
	"12h": "12hour",
	"1d":  "1day",
	"1w":  "1week",
}

var tfDurations = map[string]time.Duration{
	"1m":  time.Minute,
	"3m":  3 * time.Minute,
	"5m":  5 * time.Minute,
	"15m": 15 * time.Minute,
	"30m": 30 * time.Minute,
	"1h":  time.Hour,
	"2h":  2 * time.Hour,
	"4h":  4 * time.Hour,
	"6h":  6 * time.Hour,
	"8h":  8 * time.Hour,
	"12h": 12 * time.Hour,
	"1d":  24 * time.Hour,
	"1w":  7 * 24 * time.Hour,
}

// KucoinType: "1m" / "1min" -> "1min" (параметр type у /market/candles).
func KucoinType(tf string) (string, error) {
	if t, ok := kucoinTypes[NormTF(tf)]; ok {
		return t, nil
	}
	return "", fmt.Errorf("unsupported timeframe for KuCoin: %q", tf)
}

// TimeframeToDuration: неизвестный таймфрейм -> 0.
func TimeframeToDuration(tf string) time.Duration {
	return tfDurations[NormTF(tf)]
}
