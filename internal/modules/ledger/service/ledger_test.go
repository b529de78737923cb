package service

import (
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"paper_bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const btc = "BTC-USDT"

func TestExecuteTrade_BuyRejectedOnInsufficientBalance(t *testing.T) {
	l := New(10000)

	_, err := l.ExecuteTrade(btc, models.SideBuy, 1, 20000)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInsufficientBalance))

	assert.Equal(t, 10000.0, l.Balance())
	assert.Empty(t, l.Positions())
	assert.Empty(t, l.History())
}

func TestExecuteTrade_BuyThenSellRemovesPosition(t *testing.T) {
	l := New(10000)
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return at }

	tr, err := l.ExecuteTrade(btc, models.SideBuy, 0.1, 20000)
	require.NoError(t, err)
	assert.Equal(t, models.SideBuy, tr.Side)
	assert.Equal(t, btc, tr.Symbol)
	assert.Equal(t, 0.1, tr.Quantity)
	assert.Equal(t, 20000.0, tr.Price)
	assert.Equal(t, at, tr.ExecutedAt)
	assert.NotEmpty(t, tr.ID)

	assert.InDelta(t, 8000.0, l.Balance(), 1e-9)
	assert.Equal(t, map[string]float64{btc: 0.1}, l.Positions())

	_, err = l.ExecuteTrade(btc, models.SideSell, 0.1, 21000)
	require.NoError(t, err)
	assert.InDelta(t, 10100.0, l.Balance(), 1e-9)

	_, ok := l.Positions()[btc]
	assert.False(t, ok, "position key must be removed at zero")
	assert.Len(t, l.History(), 2)
}

func TestExecuteTrade_SellRejectedOnInsufficientPosition(t *testing.T) {
	l := New(10000)

	_, err := l.ExecuteTrade(btc, models.SideSell, 0.001, 20000)
	assert.True(t, errors.Is(err, models.ErrInsufficientPosition))

	_, err = l.ExecuteTrade(btc, models.SideBuy, 0.001, 20000)
	require.NoError(t, err)
	_, err = l.ExecuteTrade(btc, models.SideSell, 0.002, 20000)
	assert.True(t, errors.Is(err, models.ErrInsufficientPosition))

	assert.InDelta(t, 9980.0, l.Balance(), 1e-9)
	assert.Equal(t, 0.001, l.Position(btc))
}

func TestExecuteTrade_BuyExactlyAllCash(t *testing.T) {
	l := New(100)
	_, err := l.ExecuteTrade(btc, models.SideBuy, 2, 50)
	require.NoError(t, err)
	assert.Equal(t, 0.0, l.Balance())
}

func TestExecuteTrade_InvalidOrder(t *testing.T) {
	l := New(100)
	cases := []struct {
		name   string
		symbol string
		side   models.Side
		qty    float64
		price  float64
	}{
		{"empty symbol", "", models.SideBuy, 1, 1},
		{"no side", btc, models.SideNone, 1, 1},
		{"zero qty", btc, models.SideBuy, 0, 1},
		{"negative qty", btc, models.SideSell, -1, 1},
		{"zero price", btc, models.SideBuy, 1, 0},
		{"negative price", btc, models.SideBuy, 1, -5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := l.ExecuteTrade(tc.symbol, tc.side, tc.qty, tc.price)
			assert.True(t, errors.Is(err, models.ErrInvalidOrder), "got %v", err)
		})
	}
	assert.Equal(t, 100.0, l.Balance())
}

func TestAccessors_ReturnCopies(t *testing.T) {
	l := New(10000)
	_, err := l.ExecuteTrade(btc, models.SideBuy, 0.1, 20000)
	require.NoError(t, err)

	pos := l.Positions()
	pos[btc] = 999
	pos["ETH-USDT"] = 1
	assert.Equal(t, 0.1, l.Position(btc))
	assert.NotContains(t, l.Positions(), "ETH-USDT")

	acc := l.Account()
	acc.Positions[btc] = 0
	assert.Equal(t, 0.1, l.Position(btc))

	hist := l.History()
	hist[0].Quantity = 42
	assert.Equal(t, 0.1, l.History()[0].Quantity)
}

func TestAccessors_Idempotent(t *testing.T) {
	l := New(10000)
	_, err := l.ExecuteTrade(btc, models.SideBuy, 0.05, 20000)
	require.NoError(t, err)

	assert.Equal(t, l.Balance(), l.Balance())
	assert.Equal(t, l.Positions(), l.Positions())
	assert.Equal(t, l.Account(), l.Account())
}

func TestExecuteTrade_ConcurrentConsistency(t *testing.T) {
	const initial = 1000.0
	l := New(initial)
	symbols := []string{"BTC-USDT", "ETH-USDT", "SOL-USDT"}

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rnd := rand.New(rand.NewSource(seed))
			for i := 0; i < 500; i++ {
				side := models.SideBuy
				if rnd.Intn(2) == 0 {
					side = models.SideSell
				}
				sym := symbols[rnd.Intn(len(symbols))]
				qty := float64(1+rnd.Intn(4)) * 0.25
				price := float64(50 + rnd.Intn(100))
				_, _ = l.ExecuteTrade(sym, side, qty, price)

				acc := l.Account()
				if acc.Cash < 0 {
					t.Errorf("negative cash %v", acc.Cash)
				}
				for s, q := range acc.Positions {
					if q < 0 {
						t.Errorf("negative position %s=%v", s, q)
					}
				}
			}
		}(int64(w))
	}
	wg.Wait()

	// баланс сходится с историей сделок
	cash := initial
	held := map[string]float64{}
	for _, tr := range l.History() {
		if tr.Side == models.SideBuy {
			cash -= tr.Notional()
			held[tr.Symbol] += tr.Quantity
		} else {
			cash += tr.Notional()
			held[tr.Symbol] -= tr.Quantity
		}
	}
	assert.InDelta(t, cash, l.Balance(), 1e-6)
	for s, q := range l.Positions() {
		assert.InDelta(t, held[s], q, 1e-9)
		assert.GreaterOrEqual(t, q, 0.0)
	}
}

func TestPerformance(t *testing.T) {
	l := New(10000)
	mustTrade := func(side models.Side, sym string, qty, price float64) {
		t.Helper()
		_, err := l.ExecuteTrade(sym, side, qty, price)
		require.NoError(t, err)
	}

	mustTrade(models.SideBuy, btc, 1, 100)
	mustTrade(models.SideBuy, btc, 1, 200)  // средняя 150
	mustTrade(models.SideSell, btc, 1, 180) // +30
	mustTrade(models.SideBuy, "ETH-USDT", 2, 50)
	mustTrade(models.SideSell, "ETH-USDT", 2, 40) // -20

	p := l.Performance(map[string]float64{btc: 160})
	assert.Equal(t, 5, p.Trades)
	assert.Equal(t, 3, p.Buys)
	assert.Equal(t, 2, p.Sells)
	assert.Equal(t, 1, p.WinningSells)
	assert.Equal(t, 1, p.LosingSells)
	assert.InDelta(t, 0.5, p.WinRate, 1e-12)
	assert.InDelta(t, 10.0, p.RealizedPnL, 1e-9)
	assert.InDelta(t, 150.0, p.AvgEntry[btc], 1e-9)
	assert.NotContains(t, p.AvgEntry, "ETH-USDT")

	// cash = 10000 -100 -200 +180 -100 +80 = 9860, плюс 1 BTC по 160
	assert.InDelta(t, 10020.0, p.Equity, 1e-9)

	// без цены - по средней входа
	assert.InDelta(t, 10010.0, l.Performance(nil).Equity, 1e-9)
}
