package model

import (
	"time"

	"github.com/adesso-it/awesomepizza/libs/orderstate"
)

// Ticket is the worker's shadow copy of a customer order, correlated with the
// ordering service only through OrderRef. The numeric ID stays local.
type Ticket struct {
	ID           int64
	OrderRef     string
	PizzaType    string
	Note         string
	Status       orderstate.Status
	ReceivedTime time.Time
	UpdateTime   *time.Time
}
