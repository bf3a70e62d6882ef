package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"catering-dispatch/internal/adapter/jsonfile"
	"catering-dispatch/internal/domain"
	"catering-dispatch/internal/interfaces"
)

type nopLogger struct{}

func (nopLogger) Info(string, string, string, map[string]interface{})         {}
func (nopLogger) Debug(string, string, string, map[string]interface{})        {}
func (nopLogger) Error(string, string, string, map[string]interface{}, error) {}

type memRepo struct {
	orders []*domain.Order
	saves  int
	fail   bool
}

func (r *memRepo) Load() ([]*domain.Order, error) { return r.orders, nil }

func (r *memRepo) Save(orders []*domain.Order) error {
	if r.fail {
		return errors.New("disk full")
	}
	r.saves++
	return nil
}

func newTestStore(t *testing.T, repo interfaces.OrderRepository) *Service {
	t.Helper()
	s, err := NewService(repo, nopLogger{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return s
}

func testOrder(id string) *domain.Order {
	delivery := time.Date(2024, 3, 11, 17, 0, 0, 0, time.UTC)
	return &domain.Order{
		ID:           id,
		OrderNumber:  "#1001",
		CustomerName: "Alice",
		Status:       domain.StatusPending,
		DeliveryTime: &delivery,
		Address:      &domain.Address{Line1: "10 Ponsonby Road", City: "Auckland"},
	}
}

func TestApplyUpdateMergesAndRecomputes(t *testing.T) {
	repo := &memRepo{orders: []*domain.Order{testOrder("o1")}}
	s := newTestStore(t, repo)

	travel := 25
	got, err := s.ApplyUpdate("o1", domain.OrderUpdate{TravelTime: &travel}, interfaces.OriginManual)
	if err != nil {
		t.Fatalf("ApplyUpdate: %v", err)
	}

	want := time.Date(2024, 3, 11, 16, 35, 0, 0, time.UTC)
	if got.DispatchTime == nil || !got.DispatchTime.Equal(want) {
		t.Fatalf("dispatch time = %v, want %v", got.DispatchTime, want)
	}
	if got.CustomerName != "Alice" {
		t.Fatalf("untouched field changed: %q", got.CustomerName)
	}
	if repo.saves != 1 {
		t.Fatalf("saves = %d, want 1", repo.saves)
	}
}

func TestApplyUpdateUnknownIDIsNoOp(t *testing.T) {
	repo := &memRepo{orders: []*domain.Order{testOrder("o1")}}
	s := newTestStore(t, repo)

	travel := 25
	_, err := s.ApplyUpdate("missing", domain.OrderUpdate{TravelTime: &travel}, interfaces.OriginManual)
	if !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("err = %v, want ErrOrderNotFound", err)
	}
	if repo.saves != 0 {
		t.Fatalf("store persisted on a failed update")
	}
	if got := s.GetAll()[0].TravelTime; got != nil {
		t.Fatalf("stored order mutated by failed update: %v", *got)
	}
}

func TestManualOriginMakesTravelTimeSticky(t *testing.T) {
	repo := &memRepo{orders: []*domain.Order{testOrder("o1")}}
	s := newTestStore(t, repo)

	travel := 40
	got, err := s.ApplyUpdate("o1", domain.OrderUpdate{TravelTime: &travel}, interfaces.OriginManual)
	if err != nil {
		t.Fatalf("ApplyUpdate: %v", err)
	}
	if !got.IsManualTravelTime {
		t.Fatalf("manual update did not set the override flag")
	}

	// An automatic refresh must not overwrite the override.
	auto := 12
	got, err = s.ApplyUpdate("o1", domain.OrderUpdate{TravelTime: &auto}, interfaces.OriginAutomatic)
	if err != nil {
		t.Fatalf("ApplyUpdate: %v", err)
	}
	if got.TravelTime == nil || *got.TravelTime != 40 {
		t.Fatalf("automatic update clobbered manual travel time: %v", got.TravelTime)
	}
	if !got.IsManualTravelTime {
		t.Fatalf("automatic update cleared the override flag")
	}
}

func TestAutomaticOriginNeverSetsFlag(t *testing.T) {
	repo := &memRepo{orders: []*domain.Order{testOrder("o1")}}
	s := newTestStore(t, repo)

	travel := 12
	manual := true
	got, err := s.ApplyUpdate("o1", domain.OrderUpdate{TravelTime: &travel, IsManualTravelTime: &manual}, interfaces.OriginAutomatic)
	if err != nil {
		t.Fatalf("ApplyUpdate: %v", err)
	}
	if got.IsManualTravelTime {
		t.Fatalf("automatic caller set the manual flag")
	}
	if got.TravelTime == nil || *got.TravelTime != 12 {
		t.Fatalf("travel time = %v, want 12", got.TravelTime)
	}
}

func TestPersistFailureKeepsMemoryAuthoritative(t *testing.T) {
	repo := &memRepo{orders: []*domain.Order{testOrder("o1")}, fail: true}
	s := newTestStore(t, repo)

	travel := 25
	if _, err := s.ApplyUpdate("o1", domain.OrderUpdate{TravelTime: &travel}, interfaces.OriginManual); err != nil {
		t.Fatalf("ApplyUpdate: %v", err)
	}

	got := s.GetAll()[0]
	if got.TravelTime == nil || *got.TravelTime != 25 {
		t.Fatalf("in-memory mutation rolled back on persist failure")
	}
}

func TestGetAllReturnsIsolatedSnapshot(t *testing.T) {
	repo := &memRepo{orders: []*domain.Order{testOrder("o1")}}
	s := newTestStore(t, repo)

	snap := s.GetAll()
	snap[0].CustomerName = "Mallory"

	if got := s.GetAll()[0].CustomerName; got != "Alice" {
		t.Fatalf("snapshot mutation leaked into the store: %q", got)
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.json")
	repo := jsonfile.NewOrderRepository(path)

	s := newTestStore(t, repo)
	if len(s.GetAll()) != 0 {
		t.Fatalf("expected empty store for missing file")
	}

	if err := repo.Save([]*domain.Order{testOrder("o1"), testOrder("o2")}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	s2 := newTestStore(t, repo)
	orders := s2.GetAll()
	if len(orders) != 2 {
		t.Fatalf("loaded %d orders, want 2", len(orders))
	}
	// Dispatch times are derived on load, never trusted from the file.
	want := time.Date(2024, 3, 11, 16, 55, 0, 0, time.UTC)
	if orders[0].DispatchTime == nil || !orders[0].DispatchTime.Equal(want) {
		t.Fatalf("dispatch time not recomputed on load: %v", orders[0].DispatchTime)
	}
}
