package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"paper_bot/internal/indicators"
	"paper_bot/internal/models"
	report "paper_bot/internal/modules/report/service"
	"paper_bot/internal/strategy"
	"paper_bot/pkg/metrics"
	"paper_bot/pkg/tracing"

	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
)

var ErrAlreadyRunning = errors.New("runner: already running")

type State string

const (
	StateStopped State = "stopped"
	StateRunning State = "running"
)

// Candles - откуда раннер берёт окно свечей на цикл.
type Candles interface {
	Refresh(ctx context.Context, symbol, interval string, start, end time.Time) ([]models.Candle, error)
}

type Ledger interface {
	ExecuteTrade(symbol string, side models.Side, quantity, price float64) (models.Trade, error)
	Account() models.Account
}

// Status - readiness и время последнего цикла для health.
type Status interface {
	SetReady(v bool)
	TouchCycle(t time.Time)
}

type Config struct {
	Symbols       []string
	Interval      string
	Lookback      time.Duration
	PollInterval  time.Duration
	ErrorBackoff  time.Duration
	FetchTimeout  time.Duration
	TradeQuantity float64
	SignalHistory int
}

// Runner - цикл бота: для каждого символа по очереди свечи -> индикаторы ->
// сигналы -> сделки в бумажном счёте. Один воркер, циклы последовательные.
type Runner struct {
	cfg     Config
	candles Candles
	eval    *strategy.Evaluator
	ledger  Ledger
	sink    report.Sink
	status  Status
	m       *metrics.Metrics
	log     *zap.Logger
	now     func() time.Time

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}

	sigMu   sync.RWMutex
	signals []models.Signal
}

func New(
	cfg Config,
	candles Candles,
	eval *strategy.Evaluator,
	ledger Ledger,
	sink report.Sink,
	status Status,
	m *metrics.Metrics,
	log *zap.Logger,
) *Runner {
	if cfg.SignalHistory <= 0 {
		cfg.SignalHistory = 100
	}
	return &Runner{
		cfg:     cfg,
		candles: candles,
		eval:    eval,
		ledger:  ledger,
		sink:    sink,
		status:  status,
		m:       m,
		log:     log,
		now:     time.Now,
		state:   StateStopped,
	}
}

// Start запускает воркер. Цикл живёт до Stop, отмена ctx его не трогает.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateRunning {
		return ErrAlreadyRunning
	}

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	r.cancel = cancel
	r.done = make(chan struct{})
	r.state = StateRunning
	if r.status != nil {
		r.status.SetReady(true)
	}

	r.log.Info("runner started",
		zap.Strings("symbols", r.cfg.Symbols),
		zap.String("interval", r.cfg.Interval),
		zap.Duration("poll", r.cfg.PollInterval),
	)
	r.report(models.Event{Kind: models.EventBotStarted})

	go r.loop(loopCtx, r.done)
	return nil
}

// Stop просит воркер остановиться и ждёт его выхода (или ctx).
// Символ, который уже качается, доделывается. Повторный вызов безопасен.
func (r *Runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	if r.state == StateStopped {
		r.mu.Unlock()
		return nil
	}
	r.cancel()
	done := r.done
	r.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Signals - последние сигналы, старые первыми.
func (r *Runner) Signals() []models.Signal {
	r.sigMu.RLock()
	defer r.sigMu.RUnlock()
	out := make([]models.Signal, len(r.signals))
	copy(out, r.signals)
	return out
}

func (r *Runner) loop(ctx context.Context, done chan struct{}) {
	defer func() {
		r.mu.Lock()
		r.state = StateStopped
		r.cancel()
		if r.status != nil {
			r.status.SetReady(false)
		}
		r.mu.Unlock()

		r.log.Info("runner stopped")
		r.report(models.Event{Kind: models.EventBotStopped})
		close(done)
	}()

	for {
		r.cycle(ctx)
		if !sleep(ctx, r.cfg.PollInterval) {
			return
		}
	}
}

func (r *Runner) cycle(ctx context.Context) {
	span, ctx := tracing.StartSpan(ctx, "runner.cycle")
	defer span.Finish()

	began := r.now()
	for _, symbol := range r.cfg.Symbols {
		if ctx.Err() != nil {
			return
		}
		if err := r.processSymbol(ctx, symbol); err != nil {
			r.log.Error("symbol failed", zap.String("symbol", symbol), zap.Error(err))
			r.m.CycleErrors.WithLabelValues(symbol).Inc()
			r.report(models.Event{Kind: models.EventCycleError, Symbol: symbol, Error: err.Error()})
			if !sleep(ctx, r.cfg.ErrorBackoff) {
				return
			}
		}
	}

	r.m.CyclesTotal.Inc()
	r.m.CycleDuration.Observe(r.now().Sub(began).Seconds())
	r.m.CashBalance.Set(r.ledger.Account().Cash)
	if r.status != nil {
		r.status.TouchCycle(r.now())
	}
}

func (r *Runner) processSymbol(ctx context.Context, symbol string) (err error) {
	span, ctx := tracing.StartSpan(ctx, "runner.symbol", opentracing.Tag{Key: "symbol", Value: symbol})
	defer func() { tracing.Finish(span, err) }()
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()

	// запрос не зависит от Stop: начатый символ доводим до конца
	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.cfg.FetchTimeout)
	defer cancel()

	end := r.now()
	window, err := r.candles.Refresh(fetchCtx, symbol, r.cfg.Interval, end.Add(-r.cfg.Lookback), end)
	if err != nil {
		return err
	}

	snap := indicators.Compute(window)
	if r.log.Core().Enabled(zap.DebugLevel) {
		ex := indicators.ComputeExtras(window)
		r.log.Debug("snapshot",
			zap.String("symbol", symbol),
			zap.Int("candles", len(window)),
			zap.Float64p("price", snap.CurrentPrice),
			zap.Float64p("sma20", snap.SMA20),
			zap.Float64p("sma50", snap.SMA50),
			zap.Float64p("rsi", snap.RSI),
			zap.Float64p("macd_hist", ex.MACDHist),
			zap.Float64p("atr", ex.ATR),
		)
	}

	for _, sig := range r.eval.Evaluate(snap) {
		sig.Symbol = symbol
		sig.Price = *snap.CurrentPrice
		sig.At = r.now()
		r.remember(sig)
		r.m.SignalsTotal.WithLabelValues(string(sig.Strategy), string(sig.Side)).Inc()

		r.execute(sig)
	}
	return nil
}

func (r *Runner) execute(sig models.Signal) {
	trade, err := r.ledger.ExecuteTrade(sig.Symbol, sig.Side, r.cfg.TradeQuantity, sig.Price)
	if err != nil {
		r.m.TradesTotal.WithLabelValues(string(sig.Side), "rejected").Inc()
		r.report(models.Event{
			Kind:   models.EventTradeRejected,
			Symbol: sig.Symbol,
			Signal: &sig,
			Error:  err.Error(),
		})
		return
	}

	r.m.TradesTotal.WithLabelValues(string(sig.Side), "executed").Inc()
	r.report(models.Event{
		Kind:   models.EventTradeExecuted,
		Symbol: sig.Symbol,
		Trade:  &trade,
		Signal: &sig,
	})
}

func (r *Runner) remember(sig models.Signal) {
	r.sigMu.Lock()
	defer r.sigMu.Unlock()
	r.signals = append(r.signals, sig)
	if n := len(r.signals) - r.cfg.SignalHistory; n > 0 {
		r.signals = r.signals[n:]
	}
}

// report дополняет событие состоянием счёта.
func (r *Runner) report(e models.Event) {
	acc := r.ledger.Account()
	e.Cash = acc.Cash
	e.Positions = acc.Positions
	e.At = r.now()
	r.sink.Report(e)
}

// sleep прерывается отменой ctx. false - пора выходить.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
