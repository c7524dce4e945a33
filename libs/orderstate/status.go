// Package orderstate holds the order lifecycle shared by the ordering service
// and the preparation worker. Both sides advance their own copy of an order by
// evaluating incoming events against this transition table, so duplicated or
// reordered deliveries can never move a record backwards.
package orderstate

import (
	"errors"
	"fmt"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

var ErrUnknownStatus = errors.New("unknown order status")

func Parse(raw string) (Status, error) {
	switch Status(raw) {
	case StatusPending, StatusInProgress, StatusCompleted:
		return Status(raw), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
}

// Terminal reports whether no further transition may leave s.
func (s Status) Terminal() bool {
	return s == StatusCompleted
}

// Decision is the outcome of evaluating an incoming status against the
// record's current status.
type Decision int

const (
	// Apply advances the record to the incoming status.
	Apply Decision = iota
	// Ignore drops the event without error: a redelivery, or anything
	// arriving after the terminal state.
	Ignore
	// Reject drops the event as out of order: it skips ahead or moves
	// backwards relative to the current status.
	Reject
)

func (d Decision) String() string {
	switch d {
	case Apply:
		return "apply"
	case Ignore:
		return "ignore"
	case Reject:
		return "reject"
	}
	return "unknown"
}

// Evaluate decides what to do with an event declaring the incoming status for
// a record currently at current. The only forward moves are
// PENDING → IN_PROGRESS → COMPLETED, one step at a time.
func Evaluate(current, incoming Status) Decision {
	switch {
	case current == incoming:
		return Ignore
	case current.Terminal():
		return Ignore
	case current == StatusPending && incoming == StatusInProgress:
		return Apply
	case current == StatusInProgress && incoming == StatusCompleted:
		return Apply
	}
	return Reject
}
