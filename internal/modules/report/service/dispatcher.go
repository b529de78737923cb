package service

import (
	"context"
	"sync"
	"time"

	"paper_bot/internal/models"
	"paper_bot/pkg/metrics"

	"go.uber.org/zap"
)

// Sink - куда раннер отдаёт события. Report не блокирует.
type Sink interface {
	Report(e models.Event)
}

// Backend - конкретный канал доставки.
type Backend interface {
	Name() string
	Send(ctx context.Context, e models.Event) error
}

const sendTimeout = 5 * time.Second

// Dispatcher раздаёт события по бэкендам из своей горутины.
// Буфер ограничен: при переполнении событие выкидывается и считается в метрике.
type Dispatcher struct {
	log      *zap.Logger
	m        *metrics.Metrics
	backends []Backend

	mu     sync.RWMutex
	ch     chan models.Event
	closed bool
	done   chan struct{}
}

func NewDispatcher(log *zap.Logger, m *metrics.Metrics, buffer int, backends ...Backend) *Dispatcher {
	if buffer <= 0 {
		buffer = 1
	}
	return &Dispatcher{
		log:      log,
		m:        m,
		backends: backends,
		ch:       make(chan models.Event, buffer),
		done:     make(chan struct{}),
	}
}

func (d *Dispatcher) Backends() []string {
	names := make([]string, 0, len(d.backends))
	for _, b := range d.backends {
		names = append(names, b.Name())
	}
	return names
}

func (d *Dispatcher) Start() {
	go d.loop()
}

func (d *Dispatcher) Report(e models.Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.dropped(e)
		return
	}
	select {
	case d.ch <- e:
	default:
		d.dropped(e)
	}
}

// Stop закрывает приём и ждёт, пока очередь разойдётся, или ctx.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.ch)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) loop() {
	defer close(d.done)
	for e := range d.ch {
		for _, b := range d.backends {
			d.send(b, e)
		}
	}
}

func (d *Dispatcher) send(b Backend, e models.Event) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("report backend panic", zap.String("sink", b.Name()), zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	if err := b.Send(ctx, e); err != nil {
		d.log.Warn("report failed",
			zap.String("sink", b.Name()),
			zap.String("kind", string(e.Kind)),
			zap.Error(err),
		)
		if d.m != nil {
			d.m.ReportSinkErrors.WithLabelValues(b.Name()).Inc()
		}
	}
}

func (d *Dispatcher) dropped(e models.Event) {
	if d.m != nil {
		d.m.ReportDropped.Inc()
	}
	d.log.Debug("report dropped", zap.String("kind", string(e.Kind)), zap.String("symbol", e.Symbol))
}
