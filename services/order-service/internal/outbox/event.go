package outbox

// Event types emitted by the ordering service on the order-events topic. The
// type always travels explicitly (outbox column + Kafka header) so the worker
// never has to infer intent from the payload shape.
const (
	AggregateTypeOrder = "pizza_order"

	EventTypeOrderPlaced        = "OrderPlaced"
	EventTypeOrderStatusUpdated = "OrderStatusUpdated"
)

// Event is the domain event envelope written to the outbox table in the same
// transaction as the order mutation it describes.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}
