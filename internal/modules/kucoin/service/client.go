package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"
	"time"

	"paper_bot/internal/modules/config"
	"paper_bot/pkg/metrics"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const okCode = "200000"

// ConnState - кому сообщать о состоянии WS (health).
type ConnState interface {
	SetWSConnected(v bool)
}

type Client struct {
	baseURL string
	cfg     config.ExchangeConfig
	log     *zap.Logger
	m       *metrics.Metrics

	http     *http.Client
	wsDialer *websocket.Dialer
	now      func() time.Time

	reconnectDelay time.Duration
	conn           ConnState
}

func NewClient(cfg *config.Config, log *zap.Logger, m *metrics.Metrics) *Client {
	timeout := cfg.Exchange.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	delay := cfg.Stream.ReconnectDelay
	if delay <= 0 {
		delay = time.Second
	}
	return &Client{
		baseURL:        strings.TrimRight(cfg.Exchange.RestURL, "/"),
		cfg:            cfg.Exchange,
		log:            log.Named("kucoin"),
		m:              m,
		http:           &http.Client{Timeout: timeout},
		wsDialer:       &websocket.Dialer{HandshakeTimeout: timeout},
		now:            time.Now,
		reconnectDelay: delay,
	}
}

func (c *Client) SetConnState(s ConnState) { c.conn = s }

func (c *Client) setConnected(v bool) {
	if c.conn != nil {
		c.conn.SetWSConnected(v)
	}
}

// sign добавляет KC-API-* заголовки. Без ключей запрос уходит как публичный.
func (c *Client) sign(req *http.Request, body string) {
	if !c.cfg.HasCredentials() {
		return
	}
	ts := strconv.FormatInt(c.now().UnixMilli(), 10)
	prehash := ts + req.Method + req.URL.RequestURI() + body

	passphrase := c.cfg.APIPassphrase
	if c.cfg.KeyVersion != "1" {
		passphrase = hmacBase64(c.cfg.APISecret, c.cfg.APIPassphrase)
	}

	req.Header.Set("KC-API-KEY", c.cfg.APIKey)
	req.Header.Set("KC-API-SIGN", hmacBase64(c.cfg.APISecret, prehash))
	req.Header.Set("KC-API-TIMESTAMP", ts)
	req.Header.Set("KC-API-PASSPHRASE", passphrase)
	req.Header.Set("KC-API-KEY-VERSION", c.cfg.KeyVersion)
}

func hmacBase64(secret, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
