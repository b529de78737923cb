package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type EventKind string

const (
	EventTradeExecuted EventKind = "trade_executed"
	EventTradeRejected EventKind = "trade_rejected"
	EventCycleError    EventKind = "cycle_error"
	EventBotStarted    EventKind = "bot_started"
	EventBotStopped    EventKind = "bot_stopped"
)

// Event - то, что уходит в отчётные каналы (лог, телеграм, redis, журнал).
type Event struct {
	Kind      EventKind          `json:"kind"`
	Symbol    string             `json:"symbol,omitempty"`
	Trade     *Trade             `json:"trade,omitempty"`
	Signal    *Signal            `json:"signal,omitempty"`
	Error     string             `json:"error,omitempty"`
	Cash      float64            `json:"cash"`
	Positions map[string]float64 `json:"positions,omitempty"`
	At        time.Time          `json:"at"`
}

// Text - человекочитаемое сообщение для чатов.
func (e Event) Text() string {
	var b strings.Builder
	switch e.Kind {
	case EventTradeExecuted:
		fmt.Fprintf(&b, "✅ [%s] исполнено", e.Symbol)
		if e.Trade != nil {
			fmt.Fprintf(&b, " %s %.8g @ %.8g", e.Trade.Side, e.Trade.Quantity, e.Trade.Price)
		}
		if e.Signal != nil {
			fmt.Fprintf(&b, " | %s conf=%.2f", e.Signal.Strategy, e.Signal.Confidence)
		}
	case EventTradeRejected:
		fmt.Fprintf(&b, "⛔️ [%s] отклонено", e.Symbol)
		if e.Signal != nil {
			fmt.Fprintf(&b, " %s (%s)", e.Signal.Side, e.Signal.Strategy)
		}
		fmt.Fprintf(&b, ": %s", e.Error)
	case EventCycleError:
		fmt.Fprintf(&b, "❗️ [%s] ошибка цикла: %s", e.Symbol, e.Error)
	case EventBotStarted:
		b.WriteString("🚀 бот запущен")
	case EventBotStopped:
		b.WriteString("⏹ бот остановлен")
	default:
		b.WriteString(string(e.Kind))
	}
	fmt.Fprintf(&b, "\nBalance: %.2f USDT", e.Cash)
	if len(e.Positions) > 0 {
		keys := make([]string, 0, len(e.Positions))
		for k := range e.Positions {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("\nPositions:")
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%.8g", k, e.Positions[k])
		}
	}
	return b.String()
}
