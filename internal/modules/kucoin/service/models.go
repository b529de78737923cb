package service

import (
	"strconv"

	"paper_bot/internal/models"

	"github.com/pkg/errors"
)

type candlesResponse struct {
	Code string     `json:"code"`
	Msg  string     `json:"msg"`
	Data [][]string `json:"data"`
}

type bulletResponse struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		Token           string           `json:"token"`
		InstanceServers []instanceServer `json:"instanceServers"`
	} `json:"data"`
}

type instanceServer struct {
	Endpoint     string `json:"endpoint"`
	Protocol     string `json:"protocol"`
	PingInterval int64  `json:"pingInterval"` // ms
	PingTimeout  int64  `json:"pingTimeout"`  // ms
}

type wsFrame struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Topic   string `json:"topic"`
	Subject string `json:"subject"`
	Data    struct {
		Symbol  string   `json:"symbol"`
		Candles []string `json:"candles"`
		Time    int64    `json:"time"`
	} `json:"data"`
}

type wsRequest struct {
	ID             string `json:"id"`
	Type           string `json:"type"`
	Topic          string `json:"topic,omitempty"`
	PrivateChannel bool   `json:"privateChannel"`
	Response       bool   `json:"response"`
}

// StreamCandle - закрытая свеча из WS.
type StreamCandle struct {
	Symbol string
	Candle models.Candle
}

// parseRow: KuCoin отдаёт [time(s), open, close, high, low, volume, turnover].
func parseRow(row []string) (models.Candle, error) {
	if len(row) < 6 {
		return models.Candle{}, errors.Errorf("short candle row: %d fields", len(row))
	}
	sec, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return models.Candle{}, errors.Wrap(err, "candle time")
	}

	var vals [5]float64
	for i := range vals {
		v, err := strconv.ParseFloat(row[i+1], 64)
		if err != nil {
			return models.Candle{}, errors.Wrapf(err, "candle field %d", i+1)
		}
		vals[i] = v
	}
	if vals[1] <= 0 {
		return models.Candle{}, errors.Errorf("non-positive close %v", vals[1])
	}

	return models.Candle{
		Timestamp: sec * 1000,
		Open:      vals[0],
		Close:     vals[1],
		High:      vals[2],
		Low:       vals[3],
		Volume:    vals[4],
	}, nil
}
