package model

import (
	"time"

	"github.com/adesso-it/awesomepizza/libs/orderstate"
)

// Order is the ordering service's record of a customer order. OrderRef is the
// business identifier shared with the preparation worker; the numeric ID is
// local storage detail and never crosses the process boundary.
type Order struct {
	ID         int64
	OrderRef   string
	PizzaType  string
	Note       string
	Status     orderstate.Status
	OrderTime  time.Time
	UpdateTime *time.Time
}
