package prep

import (
	"errors"
	"time"

	"github.com/adesso-it/awesomepizza/services/pizza-worker/internal/model"
)

// Event types the worker consumes from the order-events topic.
const (
	eventTypeOrderPlaced        = "OrderPlaced"
	eventTypeOrderStatusUpdated = "OrderStatusUpdated"
)

// ticketPayload is the wire contract shared with the ordering service, in
// both directions: a full snapshot of the order at the transition.
type ticketPayload struct {
	OrderID    string     `json:"order_id"`
	PizzaType  string     `json:"pizza_type"`
	Note       string     `json:"note"`
	Status     string     `json:"status"`
	OrderTime  time.Time  `json:"order_time"`
	UpdateTime *time.Time `json:"update_time"`
}

func (p ticketPayload) validate() error {
	if p.OrderID == "" {
		return errors.New("missing order_id")
	}
	if p.Status == "" {
		return errors.New("missing status")
	}
	return nil
}

// validateNew applies the stricter checks for events that create a ticket.
func (p ticketPayload) validateNew() error {
	if err := p.validate(); err != nil {
		return err
	}
	if p.PizzaType == "" {
		return errors.New("missing pizza_type")
	}
	return nil
}

func payloadFromTicket(ticket model.Ticket) ticketPayload {
	return ticketPayload{
		OrderID:    ticket.OrderRef,
		PizzaType:  ticket.PizzaType,
		Note:       ticket.Note,
		Status:     string(ticket.Status),
		OrderTime:  ticket.ReceivedTime,
		UpdateTime: ticket.UpdateTime,
	}
}
