package outbox

// Event types emitted by the worker on the preparation-events topic.
const (
	AggregateTypeTicket = "preparation_ticket"

	EventTypePreparationStarted = "PreparationStarted"
	EventTypePizzaCompleted     = "PizzaCompleted"
)

// Event is the envelope written to the outbox table in the same transaction
// as the ticket mutation it describes.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}
