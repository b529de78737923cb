package service

import (
	"fmt"
	"math"
	"sync"
	"time"

	"paper_bot/internal/models"

	"github.com/google/uuid"
)

// Ledger - бумажный счёт: кэш в USDT и позиции по символам.
// Все изменения идут через ExecuteTrade под одним мьютексом, геттеры отдают копии.
type Ledger struct {
	mu        sync.Mutex
	cash      float64
	positions map[string]float64
	history   []models.Trade

	now   func() time.Time
	newID func() string
}

func New(initialBalance float64) *Ledger {
	return &Ledger{
		cash:      initialBalance,
		positions: make(map[string]float64),
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// ExecuteTrade исполняет сделку по цене price.
// Отказы (ErrInsufficientBalance, ErrInsufficientPosition, ErrInvalidOrder) - обычный
// результат, состояние счёта при этом не меняется.
func (l *Ledger) ExecuteTrade(symbol string, side models.Side, quantity, price float64) (models.Trade, error) {
	if err := validateOrder(symbol, side, quantity, price); err != nil {
		return models.Trade{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	switch side {
	case models.SideBuy:
		cost := quantity * price
		if cost > l.cash {
			return models.Trade{}, fmt.Errorf("%w: cost %.8f > cash %.8f", models.ErrInsufficientBalance, cost, l.cash)
		}
		l.cash -= cost
		l.positions[symbol] += quantity

	case models.SideSell:
		held := l.positions[symbol]
		if held < quantity {
			return models.Trade{}, fmt.Errorf("%w: %s held %.8f < %.8f", models.ErrInsufficientPosition, symbol, held, quantity)
		}
		l.cash += quantity * price
		left := held - quantity
		if left == 0 {
			delete(l.positions, symbol)
		} else {
			l.positions[symbol] = left
		}
	}

	trade := models.Trade{
		ID:         l.newID(),
		Side:       side,
		Symbol:     symbol,
		Quantity:   quantity,
		Price:      price,
		ExecutedAt: l.now(),
	}
	l.history = append(l.history, trade)
	return trade, nil
}

func validateOrder(symbol string, side models.Side, quantity, price float64) error {
	switch {
	case symbol == "":
		return fmt.Errorf("%w: empty symbol", models.ErrInvalidOrder)
	case side != models.SideBuy && side != models.SideSell:
		return fmt.Errorf("%w: side %q", models.ErrInvalidOrder, side)
	case !(quantity > 0) || math.IsInf(quantity, 0):
		return fmt.Errorf("%w: quantity %v", models.ErrInvalidOrder, quantity)
	case !(price > 0) || math.IsInf(price, 0):
		return fmt.Errorf("%w: price %v", models.ErrInvalidOrder, price)
	}
	return nil
}

func (l *Ledger) Balance() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cash
}

func (l *Ledger) Position(symbol string) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.positions[symbol]
}

// Positions - копия, правки снаружи на счёт не влияют.
func (l *Ledger) Positions() map[string]float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.copyPositions()
}

// Account - кэш и позиции, снятые атомарно.
func (l *Ledger) Account() models.Account {
	l.mu.Lock()
	defer l.mu.Unlock()
	return models.Account{Cash: l.cash, Positions: l.copyPositions()}
}

func (l *Ledger) History() []models.Trade {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.Trade, len(l.history))
	copy(out, l.history)
	return out
}

func (l *Ledger) copyPositions() map[string]float64 {
	out := make(map[string]float64, len(l.positions))
	for k, v := range l.positions {
		out[k] = v
	}
	return out
}
