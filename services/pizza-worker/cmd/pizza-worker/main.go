package main

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/adesso-it/awesomepizza/libs/config"
	"github.com/adesso-it/awesomepizza/libs/db"
	"github.com/adesso-it/awesomepizza/libs/httpx"
	"github.com/adesso-it/awesomepizza/libs/kafkax"
	otelx "github.com/adesso-it/awesomepizza/libs/otel"
	"github.com/adesso-it/awesomepizza/libs/runtime"
	"github.com/adesso-it/awesomepizza/services/pizza-worker/internal/consumer"
	"github.com/adesso-it/awesomepizza/services/pizza-worker/internal/inbox"
	"github.com/adesso-it/awesomepizza/services/pizza-worker/internal/outbox"
	"github.com/adesso-it/awesomepizza/services/pizza-worker/internal/prep"
	"github.com/adesso-it/awesomepizza/services/pizza-worker/internal/storage"
)

func main() {
	service := config.String("SERVICE_NAME", "pizza-worker")
	port, err := config.Port("PORT", "8081")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	brokers := config.String("KAFKA_BROKERS", "")

	ticketRepo := storage.NewTicketRepository(pool)
	jobRepo := prep.NewJobRepository()
	outboxRepo := outbox.NewRepository(pool)
	inboxRepo := inbox.NewRepository()

	prepSvc := prep.NewService(pool, ticketRepo, jobRepo, outboxRepo, inboxRepo, logger,
		config.DurationSeconds("PREP_BAKE_SECONDS", 6))

	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   brokers,
		Topic:     config.String("KAFKA_PUBLISH_TOPIC", "preparation-events"),
		PollEvery: config.DurationSeconds("OUTBOX_POLL_SECONDS", 4),
		BatchSize: config.Int("OUTBOX_BATCH_SIZE", 50),
	})
	go outboxPublisher.Run(ctx)

	bakeWorker := prep.NewWorker(pool, jobRepo, ticketRepo, outboxRepo, logger, prep.WorkerConfig{
		Interval:  config.DurationSeconds("BAKE_POLL_SECONDS", 2),
		BatchSize: config.Int("BAKE_BATCH_SIZE", 50),
	})
	go bakeWorker.Run(ctx)

	eventConsumer := consumer.New(logger, consumer.Config{
		Brokers: brokers,
		GroupID: config.String("KAFKA_GROUP_ID", "pizza-worker"),
		Topic:   config.String("KAFKA_CONSUME_TOPIC", "order-events"),
	}, prepSvc.HandleOrderEvent)
	go eventConsumer.Run(ctx)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)},
	)
	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	handler = otelhttp.NewHandler(handler, "pizza-worker")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
