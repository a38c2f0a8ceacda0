package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"novatrade/internal/application/port"
	"novatrade/internal/domain"
)

type Journal struct {
	rdb         *redis.Client
	prefix      string
	ttl         time.Duration
	keyOrders   string // prefix + ":orders", hash tx_id -> json
	orderStream string // prefix + ":orders:stream"
}

func New(rdb *redis.Client, prefix string, ttl time.Duration) *Journal {
	return &Journal{
		rdb:         rdb,
		prefix:      prefix,
		ttl:         ttl,
		keyOrders:   prefix + ":orders",
		orderStream: prefix + ":orders:stream",
	}
}

type orderEntry struct {
	TxID      string  `json:"tx_id"`
	Kind      string  `json:"kind"`
	Chain     string  `json:"chain"`
	Symbol    string  `json:"symbol"`
	Side      string  `json:"side"`
	Amount    float64 `json:"amount"`
	Price     float64 `json:"price"`
	Status    string  `json:"status"`
	CreatedAt int64   `json:"created_at"`
}

func toEntry(rec *domain.OrderRecord) orderEntry {
	return orderEntry{
		TxID:      rec.TxID,
		Kind:      string(rec.Kind),
		Chain:     string(rec.Chain),
		Symbol:    rec.Symbol,
		Side:      string(rec.Side),
		Amount:    rec.Amount,
		Price:     rec.Price,
		Status:    rec.Status,
		CreatedAt: rec.CreatedAt,
	}
}

func (e orderEntry) record() *domain.OrderRecord {
	return &domain.OrderRecord{
		TxID:      e.TxID,
		Kind:      domain.MarketKind(e.Kind),
		Chain:     domain.ChainID(e.Chain),
		Symbol:    e.Symbol,
		Side:      domain.Side(e.Side),
		Amount:    e.Amount,
		Price:     e.Price,
		Status:    e.Status,
		CreatedAt: e.CreatedAt,
	}
}

// RecordOrder writes the order twice: a hash of latest state keyed by tx id,
// and an append-only stream for consumers tailing submissions.
func (j *Journal) RecordOrder(ctx context.Context, rec *domain.OrderRecord) error {
	b, _ := json.Marshal(toEntry(rec))

	pipe := j.rdb.Pipeline()
	pipe.HSet(ctx, j.keyOrders, rec.TxID, string(b))
	if j.ttl > 0 {
		pipe.Expire(ctx, j.keyOrders, j.ttl)
	}
	pipe.XAdd(ctx, &redis.XAddArgs{
		Stream: j.orderStream,
		Values: map[string]any{
			"tx_id":   rec.TxID,
			"symbol":  rec.Symbol,
			"status":  rec.Status,
			"payload": string(b),
		},
	})
	_, err := pipe.Exec(ctx)
	return err
}

func (j *Journal) ListOrders(ctx context.Context, limit int) ([]*domain.OrderRecord, error) {
	all, err := j.rdb.HGetAll(ctx, j.keyOrders).Result()
	if err != nil {
		return nil, err
	}

	orders := make([]*domain.OrderRecord, 0, len(all))
	for _, raw := range all {
		var e orderEntry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			continue
		}
		orders = append(orders, e.record())
	}
	// hash order is arbitrary; newest first
	for i := 1; i < len(orders); i++ {
		for k := i; k > 0 && orders[k].CreatedAt > orders[k-1].CreatedAt; k-- {
			orders[k], orders[k-1] = orders[k-1], orders[k]
		}
	}
	if limit > 0 && limit < len(orders) {
		orders = orders[:limit]
	}
	return orders, nil
}

func (j *Journal) UpdateOrderStatus(ctx context.Context, txID, status string) error {
	raw, err := j.rdb.HGet(ctx, j.keyOrders, txID).Result()
	if err != nil {
		return err
	}
	var e orderEntry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return err
	}
	e.Status = status
	b, _ := json.Marshal(e)
	return j.rdb.HSet(ctx, j.keyOrders, txID, string(b)).Err()
}

func (j *Journal) Close() error { return j.rdb.Close() }

var _ port.Journal = (*Journal)(nil)
