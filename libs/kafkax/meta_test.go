package kafkax

import (
	"testing"

	"github.com/segmentio/kafka-go"
)

func TestExtractEventMeta(t *testing.T) {
	msg := kafka.Message{
		Topic: "preparation-events",
		Key:   []byte("ORD-001"),
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte("evt-123")},
			{Key: "event_type", Value: []byte("PizzaCompleted")},
		},
	}
	meta := ExtractEventMeta(msg)
	if meta.EventID != "evt-123" || meta.EventType != "PizzaCompleted" {
		t.Fatalf("unexpected meta: %+v", meta)
	}
}

func TestExtractEventMetaFallbacks(t *testing.T) {
	msg := kafka.Message{
		Topic: "order-events",
		Key:   []byte("ORD-002"),
	}
	meta := ExtractEventMeta(msg)
	if meta.EventID != "ORD-002" {
		t.Fatalf("expected key fallback for event id, got %q", meta.EventID)
	}
	if meta.EventType != "" {
		t.Fatalf("expected empty event type without header, got %q", meta.EventType)
	}
}

func TestSplitBrokers(t *testing.T) {
	brokers := SplitBrokers(" kafka-1:9092, ,kafka-2:9092 ")
	if len(brokers) != 2 || brokers[0] != "kafka-1:9092" || brokers[1] != "kafka-2:9092" {
		t.Fatalf("unexpected brokers: %v", brokers)
	}
	if got := SplitBrokers(""); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
}
