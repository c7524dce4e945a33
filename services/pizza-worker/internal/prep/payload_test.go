package prep

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/adesso-it/awesomepizza/libs/orderstate"
	"github.com/adesso-it/awesomepizza/services/pizza-worker/internal/model"
)

func TestTicketPayloadValidate(t *testing.T) {
	p := ticketPayload{OrderID: "ORD-001", Status: "PENDING"}
	if err := p.validate(); err != nil {
		t.Fatalf("valid payload rejected: %v", err)
	}
	if err := (ticketPayload{Status: "PENDING"}).validate(); err == nil {
		t.Fatal("payload without order_id should be rejected")
	}
	if err := (ticketPayload{OrderID: "ORD-001"}).validate(); err == nil {
		t.Fatal("payload without status should be rejected")
	}
}

func TestTicketPayloadValidateNew(t *testing.T) {
	p := ticketPayload{OrderID: "ORD-001", Status: "PENDING", PizzaType: "Margherita"}
	if err := p.validateNew(); err != nil {
		t.Fatalf("valid creation payload rejected: %v", err)
	}
	p.PizzaType = ""
	if err := p.validateNew(); err == nil {
		t.Fatal("creation payload without pizza_type should be rejected")
	}
}

func TestPayloadFromTicket(t *testing.T) {
	received := time.Date(2026, 3, 14, 12, 0, 5, 0, time.UTC)
	started := received.Add(time.Second)
	ticket := model.Ticket{
		ID:           7,
		OrderRef:     "ORD-001",
		PizzaType:    "Margherita",
		Note:         "extra basil",
		Status:       orderstate.StatusInProgress,
		ReceivedTime: received,
		UpdateTime:   &started,
	}

	raw, err := json.Marshal(payloadFromTicket(ticket))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded["order_id"] != "ORD-001" || decoded["status"] != "IN_PROGRESS" {
		t.Fatalf("unexpected payload: %v", decoded)
	}
	if _, ok := decoded["id"]; ok {
		t.Fatal("the local row id must never appear on the wire")
	}
}
