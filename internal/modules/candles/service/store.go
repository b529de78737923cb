package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"paper_bot/internal/models"
	"paper_bot/pkg/metrics"
)

// MarketData - источник исторических свечей (REST биржи).
type MarketData interface {
	GetCandles(ctx context.Context, symbol, interval string, start, end time.Time) ([]models.Candle, error)
}

type Config struct {
	// не больше MaxCandles последних свечей
	MaxCandles int
	// и только свечи не старше newest-Retention; 0 = без ограничения по времени
	Retention time.Duration
}

// Store держит окно свечей по каждому символу.
// Окно отсортировано по времени, дубли по Timestamp схлопываются: побеждает последняя пришедшая.
type Store struct {
	src MarketData
	cfg Config
	m   *metrics.Metrics

	mu      sync.RWMutex
	windows map[string][]models.Candle
}

func NewStore(src MarketData, cfg Config, m *metrics.Metrics) *Store {
	return &Store{
		src:     src,
		cfg:     cfg,
		m:       m,
		windows: make(map[string][]models.Candle),
	}
}

// Refresh тянет свечи за [start, end] и вливает их в окно символа.
// Ошибка или пустой ответ источника -> ErrDataUnavailable, окно не трогаем.
func (s *Store) Refresh(ctx context.Context, symbol, interval string, start, end time.Time) ([]models.Candle, error) {
	began := time.Now()
	candles, err := s.src.GetCandles(ctx, symbol, interval, start, end)
	if s.m != nil {
		s.m.FetchDuration.WithLabelValues(symbol).Observe(time.Since(began).Seconds())
	}
	if err != nil {
		if errors.Is(err, models.ErrDataUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %w", models.ErrDataUnavailable, symbol, err)
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("%w: %s: empty response", models.ErrDataUnavailable, symbol)
	}

	if s.m != nil {
		s.m.CandlesIngested.WithLabelValues(symbol, "rest").Add(float64(len(candles)))
	}
	return s.Ingest(symbol, candles), nil
}

// Ingest вливает свечи в окно, применяет ретеншн и возвращает копию окна.
func (s *Store) Ingest(symbol string, candles []models.Candle) []models.Candle {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := merge(s.windows[symbol], candles, s.cfg)
	s.windows[symbol] = merged
	return clone(merged)
}

// Window - копия текущего окна символа.
func (s *Store) Window(symbol string) []models.Candle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.windows[symbol])
}

// Last - последняя свеча символа, если окно не пустое.
func (s *Store) Last(symbol string) (models.Candle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w := s.windows[symbol]
	if len(w) == 0 {
		return models.Candle{}, false
	}
	return w[len(w)-1], true
}

// LastPrices - последние close по всем символам (для оценки equity).
func (s *Store) LastPrices() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]float64, len(s.windows))
	for sym, w := range s.windows {
		if len(w) > 0 {
			out[sym] = w[len(w)-1].Close
		}
	}
	return out
}

func merge(cur, incoming []models.Candle, cfg Config) []models.Candle {
	byTS := make(map[int64]models.Candle, len(cur)+len(incoming))
	for _, c := range cur {
		byTS[c.Timestamp] = c
	}
	for _, c := range incoming {
		byTS[c.Timestamp] = c
	}

	out := make([]models.Candle, 0, len(byTS))
	for _, c := range byTS {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })

	if cfg.Retention > 0 && len(out) > 0 {
		cutoff := out[len(out)-1].Timestamp - cfg.Retention.Milliseconds()
		i := sort.Search(len(out), func(i int) bool { return out[i].Timestamp >= cutoff })
		out = out[i:]
	}
	if cfg.MaxCandles > 0 && len(out) > cfg.MaxCandles {
		out = out[len(out)-cfg.MaxCandles:]
	}
	return out
}

func clone(w []models.Candle) []models.Candle {
	if w == nil {
		return nil
	}
	out := make([]models.Candle, len(w))
	copy(out, w)
	return out
}
