package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/adesso-it/awesomepizza/libs/orderstate"
	"github.com/adesso-it/awesomepizza/services/order-service/internal/model"
	"github.com/adesso-it/awesomepizza/services/order-service/internal/orders"
	"github.com/adesso-it/awesomepizza/services/order-service/internal/storage"
)

type stubService struct {
	placed []orders.PlaceOrderInput
	orders map[string]model.Order
}

func newStubService() *stubService {
	return &stubService{orders: map[string]model.Order{}}
}

func (s *stubService) PlaceOrder(_ context.Context, in orders.PlaceOrderInput) (model.Order, error) {
	s.placed = append(s.placed, in)
	order := model.Order{
		OrderRef:  "ORD-001",
		PizzaType: strings.TrimSpace(in.PizzaType),
		Note:      strings.TrimSpace(in.Note),
		Status:    orderstate.StatusPending,
		OrderTime: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}
	s.orders[order.OrderRef] = order
	return order, nil
}

func (s *stubService) GetOrder(_ context.Context, ref string) (model.Order, error) {
	order, ok := s.orders[ref]
	if !ok {
		return model.Order{}, storage.ErrNotFound
	}
	return order, nil
}

func (s *stubService) ListOrders(context.Context) ([]model.Order, error) {
	var all []model.Order
	for _, order := range s.orders {
		all = append(all, order)
	}
	return all, nil
}

func newTestMux(svc OrderService) *http.ServeMux {
	mux := http.NewServeMux()
	NewOrderHandler(svc, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(mux)
	return mux
}

func TestCreateOrder(t *testing.T) {
	svc := newStubService()
	mux := newTestMux(svc)

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"pizza_type":"Margherita","note":"extra basil"}`)
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/orders", body))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp orderResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.OrderID != "ORD-001" || resp.Status != "PENDING" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.UpdateTime != nil {
		t.Fatal("update_time must be null on a fresh order")
	}
	if len(svc.placed) != 1 || svc.placed[0].PizzaType != "Margherita" {
		t.Fatalf("service not invoked as expected: %+v", svc.placed)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	mux := newTestMux(newStubService())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader("{not json")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid json, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{"note":"no pizza"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing pizza_type, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/orders", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestGetOrderStatus(t *testing.T) {
	svc := newStubService()
	if _, err := svc.PlaceOrder(context.Background(), orders.PlaceOrderInput{PizzaType: "Margherita"}); err != nil {
		t.Fatalf("seed order: %v", err)
	}
	mux := newTestMux(svc)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders/ORD-001", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp orderResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.OrderID != "ORD-001" {
		t.Fatalf("unexpected order: %+v", resp)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders/ORD-999", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown ref, got %d", rec.Code)
	}
}

func TestListOrders(t *testing.T) {
	svc := newStubService()
	if _, err := svc.PlaceOrder(context.Background(), orders.PlaceOrderInput{PizzaType: "Diavola"}); err != nil {
		t.Fatalf("seed order: %v", err)
	}
	mux := newTestMux(svc)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var items []orderResponse
	if err := json.NewDecoder(rec.Body).Decode(&items); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(items) != 1 || items[0].PizzaType != "Diavola" {
		t.Fatalf("unexpected list: %+v", items)
	}
}
