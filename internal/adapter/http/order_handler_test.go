package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"catering-dispatch/internal/domain"
	"catering-dispatch/internal/interfaces"
)

type nopLogger struct{}

func (nopLogger) Info(string, string, string, map[string]interface{})         {}
func (nopLogger) Debug(string, string, string, map[string]interface{})        {}
func (nopLogger) Error(string, string, string, map[string]interface{}, error) {}

type fakeStore struct{ orders []*domain.Order }

func (s *fakeStore) GetAll() []*domain.Order { return s.orders }

func (s *fakeStore) ApplyUpdate(string, domain.OrderUpdate, interfaces.UpdateOrigin) (*domain.Order, error) {
	return nil, domain.ErrOrderNotFound
}

type recordingBroadcaster struct{ messages []interfaces.Envelope }

func (b *recordingBroadcaster) Broadcast(msg interfaces.Envelope) {
	b.messages = append(b.messages, msg)
}

func TestGetOrders(t *testing.T) {
	store := &fakeStore{orders: []*domain.Order{{ID: "o1"}, {ID: "o2"}}}
	h := NewOrderHandler(store, &recordingBroadcaster{}, nopLogger{})

	rec := httptest.NewRecorder()
	h.GetOrders(rec, httptest.NewRequest(http.MethodGet, "/api/orders", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var orders []*domain.Order
	if err := json.NewDecoder(rec.Body).Decode(&orders); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(orders) != 2 || orders[0].ID != "o1" {
		t.Fatalf("orders = %+v", orders)
	}
}

func TestGetOrdersRejectsNonGet(t *testing.T) {
	h := NewOrderHandler(&fakeStore{}, &recordingBroadcaster{}, nopLogger{})

	rec := httptest.NewRecorder()
	h.GetOrders(rec, httptest.NewRequest(http.MethodPost, "/api/orders", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestBroadcastRelaysValidEnvelope(t *testing.T) {
	bc := &recordingBroadcaster{}
	h := NewOrderHandler(&fakeStore{}, bc, nopLogger{})

	body := `{"type":"ORDER_UPDATE","order":{"id":"o1"}}`
	rec := httptest.NewRecorder()
	h.Broadcast(rec, httptest.NewRequest(http.MethodPost, "/broadcast", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(bc.messages) != 1 || bc.messages[0].Order.ID != "o1" {
		t.Fatalf("broadcasts = %+v", bc.messages)
	}
}

func TestBroadcastRejectsInvalid(t *testing.T) {
	bc := &recordingBroadcaster{}
	h := NewOrderHandler(&fakeStore{}, bc, nopLogger{})

	for _, body := range []string{`{not json`, `{"type":"STOCK_UPDATE"}`} {
		rec := httptest.NewRecorder()
		h.Broadcast(rec, httptest.NewRequest(http.MethodPost, "/broadcast", strings.NewReader(body)))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d for body %s", rec.Code, body)
		}
	}
	if len(bc.messages) != 0 {
		t.Fatalf("invalid payload reached the hub")
	}
}
