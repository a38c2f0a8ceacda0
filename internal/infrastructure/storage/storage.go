package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"novatrade/internal/application/port"
	"novatrade/internal/domain"
	"novatrade/internal/infrastructure/config"
	"novatrade/internal/infrastructure/storage/postgres"
	"novatrade/internal/infrastructure/storage/redis"
	"novatrade/internal/infrastructure/storage/sqlite"
)

// Open builds the order journal for the configured driver.
func Open(cfg *config.Config) (port.Journal, error) {
	switch cfg.Storage.Driver {
	case "", "memory":
		return NewInMemoryJournal(), nil
	case "sqlite":
		return sqlite.New(cfg.Storage.Path)
	case "postgres":
		return postgres.New(cfg.Storage.DSN)
	case "redis":
		rdb := goredis.NewClient(&goredis.Options{Addr: cfg.Storage.RedisAddr})
		ttl := time.Duration(cfg.Storage.RedisTTLMin) * time.Minute
		return redis.New(rdb, cfg.Storage.RedisPrefix, ttl), nil
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}
}

// InMemoryJournal keeps orders in process memory, newest first. It is the
// default when no durable driver is configured.
type InMemoryJournal struct {
	mu     sync.RWMutex
	orders []*domain.OrderRecord
}

func NewInMemoryJournal() *InMemoryJournal {
	return &InMemoryJournal{}
}

func (j *InMemoryJournal) RecordOrder(ctx context.Context, rec *domain.OrderRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	cp := *rec
	j.orders = append([]*domain.OrderRecord{&cp}, j.orders...)
	return nil
}

func (j *InMemoryJournal) ListOrders(ctx context.Context, limit int) ([]*domain.OrderRecord, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if limit <= 0 || limit > len(j.orders) {
		limit = len(j.orders)
	}
	out := make([]*domain.OrderRecord, limit)
	for i := 0; i < limit; i++ {
		cp := *j.orders[i]
		out[i] = &cp
	}
	return out, nil
}

func (j *InMemoryJournal) UpdateOrderStatus(ctx context.Context, txID, status string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, o := range j.orders {
		if o.TxID == txID {
			o.Status = status
			return nil
		}
	}
	return fmt.Errorf("order not found: %s", txID)
}

func (j *InMemoryJournal) Close() error { return nil }

var _ port.Journal = (*InMemoryJournal)(nil)
