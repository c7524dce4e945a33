package outbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/segmentio/kafka-go"

	"github.com/adesso-it/awesomepizza/libs/db"
	"github.com/adesso-it/awesomepizza/libs/kafkax"
	otelx "github.com/adesso-it/awesomepizza/libs/otel"
)

// Publisher drains the worker's outbox to the preparation-events topic,
// marking rows published only after the broker accepted them. Duplicates
// caused by a crash between send and mark are absorbed by the ordering
// service's inbox.
type Publisher struct {
	pool      *db.Pool
	repo      *Repository
	logger    *slog.Logger
	brokers   []string
	topic     string
	pollEvery time.Duration
	batchSize int
}

type PublisherConfig struct {
	Brokers   string
	Topic     string
	PollEvery time.Duration
	BatchSize int
}

func NewPublisher(pool *db.Pool, repo *Repository, logger *slog.Logger, cfg PublisherConfig) *Publisher {
	brokers := kafkax.SplitBrokers(cfg.Brokers)
	if cfg.Topic == "" {
		cfg.Topic = "preparation-events"
	}
	if cfg.PollEvery <= 0 {
		cfg.PollEvery = 4 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	return &Publisher{
		pool:      pool,
		repo:      repo,
		logger:    logger,
		brokers:   brokers,
		topic:     cfg.Topic,
		pollEvery: cfg.PollEvery,
		batchSize: cfg.BatchSize,
	}
}

func (p *Publisher) Run(ctx context.Context) {
	if len(p.brokers) == 0 {
		p.logger.Warn("outbox publisher disabled (no kafka brokers configured)")
		return
	}

	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  p.brokers,
		Topic:    p.topic,
		Balancer: &kafka.Hash{},
	})
	defer writer.Close()

	ticker := time.NewTicker(p.pollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.publishBatch(ctx, writer); err != nil {
				p.logger.Error("outbox publish failed", "err", err)
			}
		}
	}
}

func (p *Publisher) publishBatch(ctx context.Context, writer *kafka.Writer) error {
	return db.InTx(ctx, p.pool, func(tx pgx.Tx) error {
		records, err := p.repo.FetchUnpublished(ctx, tx, p.batchSize)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}

		var ids []int64
		for _, r := range records {
			msgCtx := otelx.ContextWithTraceContext(ctx, r.Traceparent, r.Tracestate)
			msg := kafka.Message{
				Key:   []byte(r.AggregateID),
				Value: r.Payload,
				Headers: []kafka.Header{
					{Key: "event_id", Value: []byte(r.EventID)},
					{Key: "event_type", Value: []byte(r.EventType)},
				},
			}
			msg.Headers = kafkax.InjectTraceHeaders(msgCtx, msg.Headers)
			if err := writer.WriteMessages(ctx, msg); err != nil {
				// Abort the cycle so later events for the same ticket cannot
				// overtake this one.
				return err
			}
			ids = append(ids, r.ID)
		}

		return p.repo.MarkPublished(ctx, tx, ids)
	})
}
