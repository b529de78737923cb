package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"paper_bot/internal/models"
	"paper_bot/pkg/db"
	"paper_bot/pkg/metrics"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recBackend struct {
	name  string
	err   error
	block chan struct{}

	mu  sync.Mutex
	got []models.Event
}

func (b *recBackend) Name() string { return b.name }

func (b *recBackend) Send(_ context.Context, e models.Event) error {
	if b.block != nil {
		<-b.block
	}
	b.mu.Lock()
	b.got = append(b.got, e)
	b.mu.Unlock()
	return b.err
}

func (b *recBackend) events() []models.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Event(nil), b.got...)
}

func newMetrics() *metrics.Metrics {
	return metrics.NewMetrics(prometheus.NewRegistry())
}

func TestDispatcher_FansOutToAllBackends(t *testing.T) {
	a := &recBackend{name: "a"}
	b := &recBackend{name: "b", err: errors.New("down")}
	m := newMetrics()

	d := NewDispatcher(zap.NewNop(), m, 8, a, b)
	d.Start()

	d.Report(models.Event{Kind: models.EventBotStarted, Cash: 10000})
	d.Report(models.Event{Kind: models.EventCycleError, Symbol: "BTC-USDT", Error: "boom"})
	require.NoError(t, d.Stop(context.Background()))

	require.Len(t, a.events(), 2)
	require.Len(t, b.events(), 2)
	assert.Equal(t, models.EventBotStarted, a.events()[0].Kind)
	assert.False(t, a.events()[0].At.IsZero())
	// ошибка одного бэкенда не мешает остальным, но считается
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ReportSinkErrors.WithLabelValues("b")))
	assert.Equal(t, []string{"a", "b"}, d.Backends())
}

func TestDispatcher_ReportNeverBlocks(t *testing.T) {
	slow := &recBackend{name: "slow", block: make(chan struct{})}
	m := newMetrics()

	d := NewDispatcher(zap.NewNop(), m, 2, slow)
	d.Start()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			d.Report(models.Event{Kind: models.EventTradeExecuted})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Report blocked on a full buffer")
	}
	// одно событие в обработке, два в буфере, остальное выкинуто
	assert.GreaterOrEqual(t, testutil.ToFloat64(m.ReportDropped), 47.0)

	close(slow.block)
	require.NoError(t, d.Stop(context.Background()))
}

func TestDispatcher_StopRespectsContextAndReportAfterStop(t *testing.T) {
	slow := &recBackend{name: "slow", block: make(chan struct{})}
	m := newMetrics()

	d := NewDispatcher(zap.NewNop(), m, 4, slow)
	d.Start()
	d.Report(models.Event{Kind: models.EventBotStopped})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Stop(ctx), context.DeadlineExceeded)

	// после Stop событие просто считается выкинутым
	assert.NotPanics(t, func() { d.Report(models.Event{Kind: models.EventBotStarted}) })
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReportDropped))

	close(slow.block)
	require.NoError(t, d.Stop(context.Background()))
}

type panicBackend struct{}

func (panicBackend) Name() string { return "panic" }
func (panicBackend) Send(context.Context, models.Event) error { panic("bad backend") }

func TestDispatcher_BackendPanicContained(t *testing.T) {
	rec := &recBackend{name: "rec"}
	d := NewDispatcher(zap.NewNop(), nil, 4, panicBackend{}, rec)
	d.Start()
	d.Report(models.Event{Kind: models.EventBotStarted})
	require.NoError(t, d.Stop(context.Background()))
	assert.Len(t, rec.events(), 1)
}

func TestLogBackend_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	b := NewLogBackend(zap.New(core))

	trade := &models.Trade{ID: "t1", Side: models.SideBuy, Symbol: "BTC-USDT", Quantity: 0.001, Price: 20000}
	require.NoError(t, b.Send(context.Background(), models.Event{Kind: models.EventTradeExecuted, Symbol: "BTC-USDT", Trade: trade}))
	require.NoError(t, b.Send(context.Background(), models.Event{Kind: models.EventTradeRejected, Error: "insufficient balance"}))
	require.NoError(t, b.Send(context.Background(), models.Event{Kind: models.EventCycleError, Error: "data unavailable"}))

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "t1", entries[0].ContextMap()["trade_id"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "data unavailable", entries[2].Message)
}

type fakeBot struct {
	sent []tgbot.Chattable
	err  error
}

func (f *fakeBot) Send(c tgbot.Chattable) (tgbot.Message, error) {
	f.sent = append(f.sent, c)
	return tgbot.Message{}, f.err
}

func TestTelegram_SendsEventText(t *testing.T) {
	bot := &fakeBot{}
	tg := &Telegram{bot: bot, chatID: 42}

	e := models.Event{Kind: models.EventCycleError, Symbol: "ETH-USDT", Error: "timeout", Cash: 9000}
	require.NoError(t, tg.Send(context.Background(), e))
	require.Len(t, bot.sent, 1)

	msg, ok := bot.sent[0].(tgbot.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Equal(t, e.Text(), msg.Text)

	bot.err = errors.New("403")
	assert.Error(t, tg.Send(context.Background(), e))
}

type fakeTx struct {
	mu    sync.Mutex
	execs []string
	args  [][]any
}

func (f *fakeTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.execs = append(f.execs, sql)
	f.args = append(f.args, args)
	return pgconn.CommandTag{}, nil
}

func (f *fakeTx) Query(context.Context, string, ...interface{}) (pgx.Rows, error) {
	return nil, errors.New("not used")
}

func (f *fakeTx) QueryRow(context.Context, string, ...interface{}) pgx.Row { return nil }

type fakeTxManager struct{ tx *fakeTx }

func (m fakeTxManager) RunMaster(ctx context.Context, fn func(ctxTx context.Context, tx db.Transaction) error) error {
	return fn(ctx, m.tx)
}

func (m fakeTxManager) Conn() db.Transaction { return m.tx }

func TestJournal_InsertsTradeColumns(t *testing.T) {
	tx := &fakeTx{}
	j := NewJournal(fakeTxManager{tx: tx})

	require.NoError(t, j.EnsureSchema(context.Background()))
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	trade := &models.Trade{ID: "t1", Side: models.SideSell, Symbol: "BTC-USDT", Quantity: 0.5, Price: 101}
	require.NoError(t, j.Send(context.Background(), models.Event{
		Kind: models.EventTradeExecuted, Symbol: "BTC-USDT", Trade: trade, Cash: 50.5, At: at,
	}))
	require.NoError(t, j.Send(context.Background(), models.Event{Kind: models.EventBotStarted, Cash: 10000, At: at}))

	require.Len(t, tx.execs, 3)
	assert.Contains(t, tx.execs[0], "CREATE TABLE IF NOT EXISTS paper_events")

	args := tx.args[1]
	assert.Equal(t, "trade_executed", args[0])
	assert.Equal(t, "t1", *args[2].(*string))
	assert.Equal(t, "SELL", *args[3].(*string))
	assert.Equal(t, 0.5, *args[4].(*float64))
	assert.Equal(t, 50.5, args[7])
	assert.Equal(t, at, args[9])

	// без сделки торговые колонки NULL
	assert.Nil(t, tx.args[2][2].(*string))
	assert.Nil(t, tx.args[2][4].(*float64))
}
