package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/adesso-it/awesomepizza/services/order-service/internal/model"
	"github.com/adesso-it/awesomepizza/services/order-service/internal/orders"
	"github.com/adesso-it/awesomepizza/services/order-service/internal/storage"
)

// OrderService is the slice of the application service the HTTP layer needs.
type OrderService interface {
	PlaceOrder(ctx context.Context, in orders.PlaceOrderInput) (model.Order, error)
	GetOrder(ctx context.Context, ref string) (model.Order, error)
	ListOrders(ctx context.Context) ([]model.Order, error)
}

type OrderHandler struct {
	svc    OrderService
	logger *slog.Logger
}

func NewOrderHandler(svc OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{svc: svc, logger: logger}
}

func (h *OrderHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/orders", h.handleOrders)
	mux.HandleFunc("/api/orders/", h.handleOrderByRef)
}

type createOrderRequest struct {
	PizzaType string `json:"pizza_type"`
	Note      string `json:"note"`
}

type orderResponse struct {
	OrderID    string  `json:"order_id"`
	PizzaType  string  `json:"pizza_type"`
	Note       string  `json:"note"`
	Status     string  `json:"status"`
	OrderTime  string  `json:"order_time"`
	UpdateTime *string `json:"update_time"`
}

func (h *OrderHandler) handleOrders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.create(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *OrderHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if strings.TrimSpace(req.PizzaType) == "" {
		writeError(w, http.StatusBadRequest, "pizza_type is required")
		return
	}

	order, err := h.svc.PlaceOrder(r.Context(), orders.PlaceOrderInput{
		PizzaType: req.PizzaType,
		Note:      req.Note,
	})
	if err != nil {
		if errors.Is(err, orders.ErrInvalidOrder) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("place order failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to place order")
		return
	}

	writeJSON(w, http.StatusCreated, toOrderResponse(order))
}

func (h *OrderHandler) list(w http.ResponseWriter, r *http.Request) {
	all, err := h.svc.ListOrders(r.Context())
	if err != nil {
		h.logger.Error("list orders failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	items := make([]orderResponse, 0, len(all))
	for _, order := range all {
		items = append(items, toOrderResponse(order))
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *OrderHandler) handleOrderByRef(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ref := strings.TrimPrefix(r.URL.Path, "/api/orders/")
	if ref == "" || strings.Contains(ref, "/") {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	order, err := h.svc.GetOrder(r.Context(), ref)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	if err != nil {
		h.logger.Error("get order failed", "err", err, "order_ref", ref)
		writeError(w, http.StatusInternalServerError, "failed to get order")
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func toOrderResponse(order model.Order) orderResponse {
	resp := orderResponse{
		OrderID:   order.OrderRef,
		PizzaType: order.PizzaType,
		Note:      order.Note,
		Status:    string(order.Status),
		OrderTime: order.OrderTime.UTC().Format(time.RFC3339),
	}
	if order.UpdateTime != nil {
		t := order.UpdateTime.UTC().Format(time.RFC3339)
		resp.UpdateTime = &t
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
