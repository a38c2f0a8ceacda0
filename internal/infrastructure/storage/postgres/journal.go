package postgres

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"

	"novatrade/internal/application/port"
	"novatrade/internal/domain"
)

type Journal struct {
	db *sql.DB
}

func New(dsn string) (*Journal, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	j := &Journal{db: db}
	if err := j.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

func (j *Journal) Close() error { return j.db.Close() }

func (j *Journal) migrate(ctx context.Context) error {
	_, err := j.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS orders (
  tx_id TEXT PRIMARY KEY,
  kind TEXT NOT NULL,
  chain TEXT NOT NULL,
  symbol TEXT NOT NULL,
  side TEXT NOT NULL,
  amount DOUBLE PRECISION NOT NULL,
  price DOUBLE PRECISION NOT NULL,
  status TEXT NOT NULL,
  created_at BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_orders_created ON orders(created_at);
CREATE INDEX IF NOT EXISTS idx_orders_symbol ON orders(symbol);
`)
	return err
}

func (j *Journal) RecordOrder(ctx context.Context, rec *domain.OrderRecord) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO orders(tx_id, kind, chain, symbol, side, amount, price, status, created_at)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT(tx_id) DO UPDATE SET
		status=excluded.status
	`, rec.TxID, string(rec.Kind), string(rec.Chain), rec.Symbol, string(rec.Side),
		rec.Amount, rec.Price, rec.Status, rec.CreatedAt)
	return err
}

func (j *Journal) ListOrders(ctx context.Context, limit int) ([]*domain.OrderRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT tx_id, kind, chain, symbol, side, amount, price, status, created_at
		FROM orders ORDER BY created_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*domain.OrderRecord
	for rows.Next() {
		var rec domain.OrderRecord
		var kind, chain, side string
		if err := rows.Scan(&rec.TxID, &kind, &chain, &rec.Symbol, &side,
			&rec.Amount, &rec.Price, &rec.Status, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Kind = domain.MarketKind(kind)
		rec.Chain = domain.ChainID(chain)
		rec.Side = domain.Side(side)
		orders = append(orders, &rec)
	}
	return orders, rows.Err()
}

func (j *Journal) UpdateOrderStatus(ctx context.Context, txID, status string) error {
	res, err := j.db.ExecContext(ctx, `UPDATE orders SET status=$1 WHERE tx_id=$2`, status, txID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

var _ port.Journal = (*Journal)(nil)
