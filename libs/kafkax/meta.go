package kafkax

import (
	"strings"

	"github.com/segmentio/kafka-go"
)

// EventMeta is the event envelope the outbox publishers put on every message
// as Kafka headers.
type EventMeta struct {
	EventID   string
	EventType string
}

// ExtractEventMeta reads the envelope headers. A message without an event_id
// header falls back to the partition key; a missing event_type stays empty so
// handlers treat the message as unclassified instead of guessing.
func ExtractEventMeta(msg kafka.Message) EventMeta {
	eventID := HeaderValue(msg.Headers, "event_id")
	if eventID == "" {
		eventID = string(msg.Key)
	}
	return EventMeta{
		EventID:   eventID,
		EventType: HeaderValue(msg.Headers, "event_type"),
	}
}

func HeaderValue(headers []kafka.Header, key string) string {
	for _, h := range headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func SplitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
