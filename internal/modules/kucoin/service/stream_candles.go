package service

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"paper_bot/internal/helper"
	"paper_bot/internal/models"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const candleTopic = "/market/candles:"

// StreamCandles - один WebSocket на все символы. Отдаёт только закрытые свечи:
// KuCoin шлёт обновления текущей свечи, закрытой считаем её, когда пришла следующая.
// Канал закрывается по ctx.Done().
func (c *Client) StreamCandles(ctx context.Context, symbols []string, interval string) (<-chan StreamCandle, error) {
	typ, err := helper.KucoinType(interval)
	if err != nil {
		return nil, err
	}
	ch := make(chan StreamCandle)

	go func() {
		defer close(ch)
		if len(symbols) == 0 {
			return
		}

		tracker := newCandleTracker()
		for {
			err := c.runStream(ctx, symbols, typ, tracker, ch)
			c.setConnected(false)
			if ctx.Err() != nil {
				return
			}
			c.log.Warn("ws stream dropped, reconnecting", zap.Error(err))
			if c.m != nil {
				c.m.WSReconnects.Inc()
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(c.reconnectDelay):
			}
		}
	}()

	return ch, nil
}

func (c *Client) runStream(ctx context.Context, symbols []string, typ string, tracker *candleTracker, out chan<- StreamCandle) error {
	wsURL, pingEvery, err := c.bulletPublic(ctx)
	if err != nil {
		return err
	}

	conn, _, err := c.wsDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return errors.Wrap(err, "dial")
	}
	defer conn.Close()

	// после ctx.Done() рвём соединение, чтобы ReadMessage вернулся
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()

	if err := waitWelcome(conn); err != nil {
		return err
	}

	var writeMu sync.Mutex
	write := func(v any) error {
		b, err := sonic.Marshal(v)
		if err != nil {
			return err
		}
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteMessage(websocket.TextMessage, b)
	}

	for _, s := range symbols {
		if err := write(wsRequest{
			ID:       c.requestID(),
			Type:     "subscribe",
			Topic:    candleTopic + s + "_" + typ,
			Response: true,
		}); err != nil {
			return errors.Wrapf(err, "subscribe %s", s)
		}
	}
	c.setConnected(true)
	c.log.Info("ws subscribed", zap.Strings("symbols", symbols), zap.String("type", typ))

	// keepalive: без ping KuCoin закрывает соединение через pingTimeout
	go func() {
		t := time.NewTicker(pingEvery)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				if err := write(wsRequest{ID: c.requestID(), Type: "ping"}); err != nil {
					return
				}
			}
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return errors.Wrap(err, "read")
		}
		sc, ok, err := decodeCandleFrame(msg)
		if err != nil {
			c.log.Debug("skip ws frame", zap.Error(err))
			continue
		}
		if !ok {
			continue
		}
		closed, ok := tracker.update(sc)
		if !ok {
			continue
		}

		select {
		case out <- closed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// bulletPublic получает токен и адрес WS сервера.
func (c *Client) bulletPublic(ctx context.Context) (string, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/bullet-public", nil)
	if err != nil {
		return "", 0, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", 0, errors.Wrap(err, "bullet-public")
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, errors.Wrap(err, "bullet-public: read body")
	}
	if resp.StatusCode/100 != 2 {
		return "", 0, errors.Errorf("bullet-public: http %d: %s", resp.StatusCode, string(b))
	}

	var r bulletResponse
	if err := sonic.Unmarshal(b, &r); err != nil {
		return "", 0, errors.Wrap(err, "bullet-public: decode")
	}
	if r.Code != okCode || r.Data.Token == "" || len(r.Data.InstanceServers) == 0 {
		return "", 0, errors.Errorf("bullet-public: code=%s msg=%s", r.Code, r.Msg)
	}

	srv := r.Data.InstanceServers[0]
	u, err := url.Parse(srv.Endpoint)
	if err != nil {
		return "", 0, errors.Wrap(err, "bullet-public: endpoint")
	}
	q := u.Query()
	q.Set("token", r.Data.Token)
	q.Set("connectId", c.requestID())
	u.RawQuery = q.Encode()

	ping := time.Duration(srv.PingInterval) * time.Millisecond
	if ping <= 0 {
		ping = 18 * time.Second
	}
	return u.String(), ping, nil
}

func waitWelcome(conn *websocket.Conn) error {
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return errors.Wrap(err, "welcome")
	}
	var f wsFrame
	if err := sonic.Unmarshal(msg, &f); err != nil {
		return errors.Wrap(err, "welcome: decode")
	}
	if f.Type != "welcome" {
		return errors.Errorf("expected welcome, got %q", f.Type)
	}
	return nil
}

// decodeCandleFrame: ok=false для служебных кадров (ack, pong).
func decodeCandleFrame(msg []byte) (StreamCandle, bool, error) {
	var f wsFrame
	if err := sonic.Unmarshal(msg, &f); err != nil {
		return StreamCandle{}, false, errors.Wrap(err, "decode frame")
	}
	if f.Type != "message" || !strings.HasPrefix(f.Topic, candleTopic) {
		return StreamCandle{}, false, nil
	}
	cndl, err := parseRow(f.Data.Candles)
	if err != nil {
		return StreamCandle{}, false, err
	}
	sym := f.Data.Symbol
	if sym == "" {
		// "/market/candles:BTC-USDT_1min" -> "BTC-USDT"
		sym = strings.TrimPrefix(f.Topic, candleTopic)
		if i := strings.LastIndexByte(sym, '_'); i > 0 {
			sym = sym[:i]
		}
	}
	return StreamCandle{Symbol: sym, Candle: cndl}, true, nil
}

func (c *Client) requestID() string {
	return strconv.FormatInt(c.now().UnixNano(), 10)
}

// candleTracker помнит текущую (ещё не закрытую) свечу по символу.
type candleTracker struct {
	cur map[string]models.Candle
}

func newCandleTracker() *candleTracker {
	return &candleTracker{cur: make(map[string]models.Candle)}
}

// update возвращает предыдущую свечу, если началась новая.
func (t *candleTracker) update(sc StreamCandle) (StreamCandle, bool) {
	prev, had := t.cur[sc.Symbol]
	if had && sc.Candle.Timestamp < prev.Timestamp {
		return StreamCandle{}, false
	}
	t.cur[sc.Symbol] = sc.Candle
	if had && sc.Candle.Timestamp > prev.Timestamp {
		return StreamCandle{Symbol: sc.Symbol, Candle: prev}, true
	}
	return StreamCandle{}, false
}
