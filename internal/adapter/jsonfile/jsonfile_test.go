package jsonfile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"catering-dispatch/internal/domain"
)

func TestOrderRepositoryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.json")
	repo := NewOrderRepository(path)

	got, err := repo.Load()
	if err != nil {
		t.Fatalf("Load on missing file: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("missing file loaded %d orders", len(got))
	}

	delivery := time.Date(2024, 3, 11, 17, 0, 0, 0, time.UTC)
	travel := 25
	orders := []*domain.Order{{
		ID:           "o1",
		OrderNumber:  "#1001",
		CustomerName: "Alice",
		Status:       domain.StatusPending,
		DeliveryTime: &delivery,
		TravelTime:   &travel,
		Address:      &domain.Address{Line1: "10 Ponsonby Road", City: "Auckland"},
		Items: []domain.OrderItem{
			{Product: domain.Product{Name: "Platter"}, Quantity: 2, Price: 89.5},
		},
	}}

	if err := repo.Save(orders); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err = repo.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("loaded %d orders, want 1", len(got))
	}
	o := got[0]
	if o.ID != "o1" || o.CustomerName != "Alice" || *o.TravelTime != 25 {
		t.Fatalf("round trip mismatch: %+v", o)
	}
	if o.Address == nil || o.Address.Line1 != "10 Ponsonby Road" {
		t.Fatalf("address lost in round trip: %+v", o.Address)
	}
	if len(o.Items) != 1 || o.Items[0].Quantity != 2 {
		t.Fatalf("items lost in round trip: %+v", o.Items)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	repo := NewOrderRepository(filepath.Join(dir, "orders.json"))

	if err := repo.Save([]*domain.Order{{ID: "o1"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := repo.Save([]*domain.Order{{ID: "o1"}, {ID: "o2"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "orders.json" {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Fatalf("unexpected directory contents: %v", names)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewOrderRepository(path).Load(); err == nil {
		t.Fatalf("expected error for malformed file")
	}
}

func TestOverrideCacheRoundTrip(t *testing.T) {
	cache := NewOverrideCache(filepath.Join(t.TempDir(), "overrides.json"))

	got, err := cache.Load()
	if err != nil {
		t.Fatalf("Load on missing file: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("missing file loaded %d overrides", len(got))
	}

	if err := cache.Save(map[string]int{"o1": 40, "o2": 15}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err = cache.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got["o1"] != 40 || got["o2"] != 15 {
		t.Fatalf("round trip mismatch: %v", got)
	}
}

func TestDriverRepositoryRoundTrip(t *testing.T) {
	repo := NewDriverRepository(filepath.Join(t.TempDir(), "drivers.json"))

	if err := repo.Save([]domain.Driver{{ID: "d1", Name: "Gero"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := repo.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Gero" {
		t.Fatalf("round trip mismatch: %v", got)
	}
}
