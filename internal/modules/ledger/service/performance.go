package service

import "paper_bot/internal/models"

// Performance считает сводку по истории: средняя цена входа, реализованный PnL,
// доля прибыльных продаж и equity по последним ценам.
// Если цены по символу нет, позиция оценивается по средней цене входа.
func (l *Ledger) Performance(lastPrices map[string]float64) models.Performance {
	l.mu.Lock()
	history := make([]models.Trade, len(l.history))
	copy(history, l.history)
	cash := l.cash
	positions := l.copyPositions()
	l.mu.Unlock()

	p := models.Performance{
		Trades:   len(history),
		AvgEntry: make(map[string]float64),
	}
	held := make(map[string]float64)

	for _, t := range history {
		switch t.Side {
		case models.SideBuy:
			p.Buys++
			q := held[t.Symbol] + t.Quantity
			p.AvgEntry[t.Symbol] = (p.AvgEntry[t.Symbol]*held[t.Symbol] + t.Price*t.Quantity) / q
			held[t.Symbol] = q
		case models.SideSell:
			p.Sells++
			pnl := (t.Price - p.AvgEntry[t.Symbol]) * t.Quantity
			p.RealizedPnL += pnl
			switch {
			case pnl > 0:
				p.WinningSells++
			case pnl < 0:
				p.LosingSells++
			}
			held[t.Symbol] -= t.Quantity
			if held[t.Symbol] == 0 {
				delete(held, t.Symbol)
				delete(p.AvgEntry, t.Symbol)
			}
		}
	}

	if closed := p.WinningSells + p.LosingSells; closed > 0 {
		p.WinRate = float64(p.WinningSells) / float64(closed)
	}

	p.Equity = cash
	for sym, qty := range positions {
		px, ok := lastPrices[sym]
		if !ok {
			px = p.AvgEntry[sym]
		}
		p.Equity += qty * px
	}
	return p
}
