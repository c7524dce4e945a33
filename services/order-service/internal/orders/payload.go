package orders

import (
	"errors"
	"time"

	"github.com/adesso-it/awesomepizza/services/order-service/internal/model"
)

// statusPayload is the wire contract shared with the preparation worker, in
// both directions. It is always a full snapshot of the order at the moment of
// the transition.
type statusPayload struct {
	OrderID    string     `json:"order_id"`
	PizzaType  string     `json:"pizza_type"`
	Note       string     `json:"note"`
	Status     string     `json:"status"`
	OrderTime  time.Time  `json:"order_time"`
	UpdateTime *time.Time `json:"update_time"`
}

func (p statusPayload) validate() error {
	if p.OrderID == "" {
		return errors.New("missing order_id")
	}
	if p.Status == "" {
		return errors.New("missing status")
	}
	return nil
}

func payloadFromOrder(order model.Order) statusPayload {
	return statusPayload{
		OrderID:    order.OrderRef,
		PizzaType:  order.PizzaType,
		Note:       order.Note,
		Status:     string(order.Status),
		OrderTime:  order.OrderTime,
		UpdateTime: order.UpdateTime,
	}
}
