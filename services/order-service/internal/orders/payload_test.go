package orders

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/adesso-it/awesomepizza/libs/orderstate"
	"github.com/adesso-it/awesomepizza/services/order-service/internal/model"
)

func TestPayloadFromOrder(t *testing.T) {
	placed := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	order := model.Order{
		ID:        42,
		OrderRef:  "ORD-001",
		PizzaType: "Margherita",
		Note:      "extra basil",
		Status:    orderstate.StatusPending,
		OrderTime: placed,
	}

	raw, err := json.Marshal(payloadFromOrder(order))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded["order_id"] != "ORD-001" {
		t.Fatalf("expected order_id ORD-001, got %v", decoded["order_id"])
	}
	if decoded["status"] != "PENDING" {
		t.Fatalf("expected status PENDING, got %v", decoded["status"])
	}
	if decoded["update_time"] != nil {
		t.Fatalf("update_time should be null before the first transition, got %v", decoded["update_time"])
	}
	if _, ok := decoded["id"]; ok {
		t.Fatal("the local row id must never appear on the wire")
	}
}

func TestStatusPayloadValidate(t *testing.T) {
	p := statusPayload{OrderID: "ORD-001", Status: "IN_PROGRESS"}
	if err := p.validate(); err != nil {
		t.Fatalf("valid payload rejected: %v", err)
	}

	if err := (statusPayload{Status: "IN_PROGRESS"}).validate(); err == nil {
		t.Fatal("payload without order_id should be rejected")
	}
	if err := (statusPayload{OrderID: "ORD-001"}).validate(); err == nil {
		t.Fatal("payload without status should be rejected")
	}
}

func TestStatusPayloadRoundTrip(t *testing.T) {
	updated := time.Date(2026, 3, 14, 12, 6, 0, 0, time.UTC)
	in := statusPayload{
		OrderID:    "ORD-002",
		PizzaType:  "Diavola",
		Note:       "",
		Status:     "COMPLETED",
		OrderTime:  updated.Add(-6 * time.Minute),
		UpdateTime: &updated,
	}
	raw, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var out statusPayload
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if out.OrderID != in.OrderID || out.Status != in.Status {
		t.Fatalf("round trip mismatch: %+v", out)
	}
	if out.UpdateTime == nil || !out.UpdateTime.Equal(updated) {
		t.Fatalf("update_time lost in round trip: %v", out.UpdateTime)
	}
}
