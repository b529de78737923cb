package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Warmuper заранее заполняет окна, чтобы первый цикл уже видел полную историю.
type Warmuper struct {
	store *Store
	log   *zap.Logger

	// ограничитель параллелизма, чтобы не словить rate limit
	sem chan struct{}
}

func NewWarmuper(store *Store, log *zap.Logger, parallel int) *Warmuper {
	if parallel <= 0 {
		parallel = 1
	}
	return &Warmuper{
		store: store,
		log:   log,
		sem:   make(chan struct{}, parallel),
	}
}

// Warmup грузит span истории для каждого символа. Ошибки не фатальны: бот
// всё равно перезапросит данные в цикле. Возвращает объединённую ошибку для лога.
func (w *Warmuper) Warmup(ctx context.Context, symbols []string, interval string, span time.Duration) error {
	if len(symbols) == 0 {
		return nil
	}

	end := time.Now()
	start := end.Add(-span)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, sym := range symbols {
		sym := sym
		wg.Add(1)
		go func() {
			defer wg.Done()
			select {
			case w.sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-w.sem }()

			window, err := w.store.Refresh(ctx, sym, interval, start, end)
			if err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("warmup %s: %w", sym, err))
				mu.Unlock()
				return
			}
			w.log.Info("warmup done", zap.String("symbol", sym), zap.Int("candles", len(window)))
		}()
	}
	wg.Wait()

	return errors.Join(errs...)
}
