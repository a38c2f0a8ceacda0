package storage

import (
	"context"
	"testing"

	"novatrade/internal/domain"
	"novatrade/internal/infrastructure/config"
)

func TestInMemoryJournalRoundTrip(t *testing.T) {
	j := NewInMemoryJournal()
	ctx := context.Background()

	j.RecordOrder(ctx, &domain.OrderRecord{
		TxID: "tx-1", Chain: domain.ChainNova, Symbol: "NOVA-USD",
		Side: domain.SideBuy, Amount: 1, Price: 10,
		Status: domain.OrderStatusSubmitted, CreatedAt: 1,
	})
	j.RecordOrder(ctx, &domain.OrderRecord{
		TxID: "tx-2", Chain: domain.ChainEVM, Symbol: "ETH-USD",
		Side: domain.SideSell, Amount: 2, Price: 2000,
		Status: domain.OrderStatusSubmitted, CreatedAt: 2,
	})

	orders, err := j.ListOrders(ctx, 0)
	if err != nil {
		t.Fatalf("ListOrders: %v", err)
	}
	if len(orders) != 2 || orders[0].TxID != "tx-2" {
		t.Fatalf("expected newest first, got %+v", orders)
	}

	if err := j.UpdateOrderStatus(ctx, "tx-1", domain.OrderStatusFilled); err != nil {
		t.Fatalf("UpdateOrderStatus: %v", err)
	}
	orders, _ = j.ListOrders(ctx, 10)
	if orders[1].Status != domain.OrderStatusFilled {
		t.Errorf("status = %s, want filled", orders[1].Status)
	}

	if err := j.UpdateOrderStatus(ctx, "tx-missing", domain.OrderStatusFilled); err == nil {
		t.Error("expected error for unknown order")
	}
}

func TestInMemoryJournalListLimit(t *testing.T) {
	j := NewInMemoryJournal()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		j.RecordOrder(ctx, &domain.OrderRecord{
			TxID: string(rune('a' + i)), Chain: domain.ChainNova,
			Symbol: "NOVA-USD", Side: domain.SideBuy, Amount: 1, Price: 1,
			Status: domain.OrderStatusSubmitted, CreatedAt: int64(i),
		})
	}
	orders, _ := j.ListOrders(ctx, 3)
	if len(orders) != 3 {
		t.Fatalf("got %d orders, want 3", len(orders))
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.Driver = "cassandra"
	if _, err := Open(cfg); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestOpenDefaultsToMemory(t *testing.T) {
	cfg := &config.Config{}
	j, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer j.Close()
	if _, ok := j.(*InMemoryJournal); !ok {
		t.Fatalf("expected in-memory journal, got %T", j)
	}
}
