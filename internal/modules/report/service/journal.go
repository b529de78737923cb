package service

import (
	"context"

	"paper_bot/internal/models"
	"paper_bot/pkg/db"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

const createJournal = `
CREATE TABLE IF NOT EXISTS paper_events (
	id         BIGSERIAL PRIMARY KEY,
	kind       TEXT        NOT NULL,
	symbol     TEXT        NOT NULL DEFAULT '',
	trade_id   TEXT,
	side       TEXT,
	quantity   DOUBLE PRECISION,
	price      DOUBLE PRECISION,
	error      TEXT        NOT NULL DEFAULT '',
	cash       DOUBLE PRECISION NOT NULL,
	payload    JSONB       NOT NULL,
	at         TIMESTAMPTZ NOT NULL
)`

const insertJournal = `
INSERT INTO paper_events (kind, symbol, trade_id, side, quantity, price, error, cash, payload, at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

// Journal - append-only аудит в Postgres. Обратно не читается: счёт при рестарте пустой.
type Journal struct {
	tx db.TxManager
}

func NewJournal(tx db.TxManager) *Journal {
	return &Journal{tx: tx}
}

func (j *Journal) Name() string { return "journal" }

func (j *Journal) EnsureSchema(ctx context.Context) error {
	_, err := j.tx.Conn().Exec(ctx, createJournal)
	return errors.Wrap(err, "journal schema")
}

func (j *Journal) Send(ctx context.Context, e models.Event) error {
	payload, err := sonic.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "marshal event")
	}

	var (
		tradeID, side   *string
		quantity, price *float64
	)
	if e.Trade != nil {
		id, s := e.Trade.ID, string(e.Trade.Side)
		q, p := e.Trade.Quantity, e.Trade.Price
		tradeID, side, quantity, price = &id, &s, &q, &p
	}

	return j.tx.RunMaster(ctx, func(ctxTx context.Context, tx db.Transaction) error {
		_, err := tx.Exec(ctxTx, insertJournal,
			string(e.Kind), e.Symbol, tradeID, side, quantity, price, e.Error, e.Cash, payload, e.At,
		)
		return errors.Wrap(err, "journal insert")
	})
}
