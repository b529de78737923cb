package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"paper_bot/internal/models"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type connFlag struct {
	mu sync.Mutex
	v  []bool
}

func (c *connFlag) SetWSConnected(v bool) {
	c.mu.Lock()
	c.v = append(c.v, v)
	c.mu.Unlock()
}

func (c *connFlag) seen(v bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, x := range c.v {
		if x == v {
			return true
		}
	}
	return false
}

func candleMsg(symbol string, row ...string) string {
	b, _ := sonic.Marshal(map[string]any{
		"type":    "message",
		"topic":   candleTopic + symbol + "_1min",
		"subject": "trade.candles.update",
		"data": map[string]any{
			"symbol":  symbol,
			"candles": row,
			"time":    1,
		},
	})
	return string(b)
}

func TestStreamCandles_EmitsClosedCandles(t *testing.T) {
	upgrader := websocket.Upgrader{}
	topics := make(chan string, 4)

	var srvURL string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/bullet-public", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		wsURL := "ws" + strings.TrimPrefix(srvURL, "http") + "/ws"
		_, _ = w.Write([]byte(`{"code":"200000","data":{"token":"tkn","instanceServers":[{"endpoint":"` +
			wsURL + `","protocol":"websocket","pingInterval":50,"pingTimeout":1000}]}}`))
	})
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tkn", r.URL.Query().Get("token"))
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"id":"1","type":"welcome"}`))

		var sub wsRequest
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = sonic.Unmarshal(msg, &sub)
		topics <- sub.Topic
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"id":"`+sub.ID+`","type":"ack"}`))

		frames := []string{
			candleMsg("BTC-USDT", "1700000000", "100", "101", "102", "99", "1", "100"),
			candleMsg("BTC-USDT", "1700000000", "100", "105", "106", "99", "2", "200"),
			candleMsg("BTC-USDT", "1700000060", "105", "104", "105", "103", "1", "100"),
		}
		for _, f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}
		// держим соединение, читая ping'и, пока клиент не закроет
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	srvURL = srv.URL

	c := newTestClient(t, srv.URL, false)
	flag := &connFlag{}
	c.SetConnState(flag)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := c.StreamCandles(ctx, []string{"BTC-USDT"}, "1m")
	require.NoError(t, err)

	select {
	case got := <-ch:
		assert.Equal(t, "BTC-USDT", got.Symbol)
		// закрытая свеча - последнее обновление первой минуты
		assert.Equal(t, models.Candle{
			Timestamp: 1700000000000,
			Open:      100,
			Close:     105,
			High:      106,
			Low:       99,
			Volume:    2,
		}, got.Candle)
	case <-time.After(5 * time.Second):
		t.Fatal("no candle from stream")
	}

	assert.Equal(t, candleTopic+"BTC-USDT_1min", <-topics)
	assert.True(t, flag.seen(true))

	cancel()
	select {
	case _, ok := <-ch:
		for ok {
			_, ok = <-ch
		}
	case <-time.After(5 * time.Second):
		t.Fatal("stream channel not closed after cancel")
	}
	assert.True(t, flag.seen(false))
}

func TestDecodeCandleFrame(t *testing.T) {
	sc, ok, err := decodeCandleFrame([]byte(candleMsg("ETH-USDT", "1700000000", "10", "11", "12", "9", "3", "30")))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ETH-USDT", sc.Symbol)
	assert.Equal(t, 11.0, sc.Candle.Close)

	_, ok, err = decodeCandleFrame([]byte(`{"id":"1","type":"pong"}`))
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = decodeCandleFrame([]byte(`{`))
	assert.Error(t, err)
}

func TestCandleTracker(t *testing.T) {
	tr := newCandleTracker()
	mk := func(ts int64, px float64) StreamCandle {
		return StreamCandle{Symbol: "BTC-USDT", Candle: models.Candle{Timestamp: ts, Close: px}}
	}

	_, ok := tr.update(mk(1, 10))
	assert.False(t, ok)
	_, ok = tr.update(mk(1, 11))
	assert.False(t, ok)

	// запоздавшее обновление прошлой свечи игнорируем
	_, ok = tr.update(mk(0, 5))
	assert.False(t, ok)

	closed, ok := tr.update(mk(2, 12))
	require.True(t, ok)
	assert.Equal(t, int64(1), closed.Candle.Timestamp)
	assert.Equal(t, 11.0, closed.Candle.Close)

	// другой символ ведётся отдельно
	_, ok = tr.update(StreamCandle{Symbol: "ETH-USDT", Candle: models.Candle{Timestamp: 5}})
	assert.False(t, ok)
}
