package consumer

import (
	"context"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/adesso-it/awesomepizza/libs/kafkax"
)

// Handler processes one event; nil acknowledges it, an error keeps it
// unacknowledged for retry.
type Handler func(ctx context.Context, meta kafkax.EventMeta, value []byte) error

// Consumer reads the order-events topic within the worker's consumer group,
// committing offsets only after the handler succeeds.
type Consumer struct {
	reader  *kafka.Reader
	logger  *slog.Logger
	handler Handler
}

type Config struct {
	Brokers string
	GroupID string
	Topic   string
}

func New(logger *slog.Logger, cfg Config, handler Handler) *Consumer {
	brokers := kafkax.SplitBrokers(cfg.Brokers)
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &Consumer{
		reader:  reader,
		logger:  logger,
		handler: handler,
	}
}

func (c *Consumer) Run(ctx context.Context) {
	defer c.reader.Close()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("kafka fetch error", "err", err)
			time.Sleep(1 * time.Second)
			continue
		}
		c.process(ctx, msg)
	}
}

func (c *Consumer) process(ctx context.Context, msg kafka.Message) {
	meta := kafkax.ExtractEventMeta(msg)

	for {
		ctxSpan, span := kafkax.StartConsumeSpan(ctx, msg)

		err := c.handler(ctxSpan, meta, msg.Value)
		if err == nil {
			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				c.logger.Error("offset commit failed", "err", err, "event_id", meta.EventID)
			}
			span.End()
			return
		}

		c.logger.Error("handler failed, message will be retried", "err", err, "event_id", meta.EventID, "event_type", meta.EventType)
		span.RecordError(err)
		span.End()

		select {
		case <-ctx.Done():
			return
		case <-time.After(1 * time.Second):
		}
	}
}
