package service

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"paper_bot/internal/helper"
	"paper_bot/internal/models"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// GetCandles тянет свечи за [start, end] через /api/v1/market/candles.
// Ошибки сети, HTTP и бизнес-коды биржи оборачиваются в ErrDataUnavailable.
func (c *Client) GetCandles(ctx context.Context, symbol, interval string, start, end time.Time) ([]models.Candle, error) {
	typ, err := helper.KucoinType(interval)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("type", typ)
	q.Set("startAt", strconv.FormatInt(start.Unix(), 10))
	q.Set("endAt", strconv.FormatInt(end.Unix(), 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/market/candles?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	c.sign(req, "")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(models.ErrDataUnavailable, "candles %s: %v", symbol, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(models.ErrDataUnavailable, "candles %s: read body: %v", symbol, err)
	}
	if resp.StatusCode/100 != 2 {
		return nil, errors.Wrapf(models.ErrDataUnavailable, "candles %s: http %d: %s", symbol, resp.StatusCode, string(b))
	}

	var r candlesResponse
	if err := sonic.Unmarshal(b, &r); err != nil {
		return nil, errors.Wrapf(models.ErrDataUnavailable, "candles %s: decode: %v", symbol, err)
	}
	if r.Code != okCode {
		return nil, errors.Wrapf(models.ErrDataUnavailable, "candles %s: code=%s msg=%s", symbol, r.Code, r.Msg)
	}

	// KuCoin отдаёт newest-first, разворачиваем в порядок по времени
	out := make([]models.Candle, 0, len(r.Data))
	for i := len(r.Data) - 1; i >= 0; i-- {
		cndl, err := parseRow(r.Data[i])
		if err != nil {
			c.log.Debug("skip candle row", zap.String("symbol", symbol), zap.Error(err))
			continue
		}
		out = append(out, cndl)
	}
	return out, nil
}
