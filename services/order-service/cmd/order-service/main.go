package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/adesso-it/awesomepizza/libs/config"
	"github.com/adesso-it/awesomepizza/libs/db"
	"github.com/adesso-it/awesomepizza/libs/httpx"
	"github.com/adesso-it/awesomepizza/libs/kafkax"
	otelx "github.com/adesso-it/awesomepizza/libs/otel"
	"github.com/adesso-it/awesomepizza/libs/runtime"
	"github.com/adesso-it/awesomepizza/services/order-service/internal/consumer"
	"github.com/adesso-it/awesomepizza/services/order-service/internal/handlers"
	"github.com/adesso-it/awesomepizza/services/order-service/internal/inbox"
	"github.com/adesso-it/awesomepizza/services/order-service/internal/orders"
	"github.com/adesso-it/awesomepizza/services/order-service/internal/outbox"
	"github.com/adesso-it/awesomepizza/services/order-service/internal/storage"
)

func main() {
	service := config.String("SERVICE_NAME", "order-service")
	port, err := config.Port("PORT", "8080")
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

	orderRepo := storage.NewOrderRepository(pool)
	outboxRepo := outbox.NewRepository(pool)
	inboxRepo := inbox.NewRepository()
	orderSvc := orders.NewService(pool, orderRepo, outboxRepo, inboxRepo, logger)

	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   brokers,
		Topic:     config.String("KAFKA_PUBLISH_TOPIC", "order-events"),
		PollEvery: config.DurationSeconds("OUTBOX_POLL_SECONDS", 4),
		BatchSize: config.Int("OUTBOX_BATCH_SIZE", 50),
	})
	go outboxPublisher.Run(ctx)

	eventConsumer := consumer.New(logger, consumer.Config{
		Brokers: brokers,
		GroupID: config.String("KAFKA_GROUP_ID", "order-service"),
		Topic:   config.String("KAFKA_CONSUME_TOPIC", "preparation-events"),
	}, orderSvc.ApplyPreparationUpdate)
	go eventConsumer.Run(ctx)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)},
	)
	handlers.NewOrderHandler(orderSvc, logger).Register(mux)

	rateLimit := config.Int("RATE_LIMIT", 60)
	rateWindow := config.DurationSeconds("RATE_WINDOW_SECONDS", 60)
	var limiter httpx.Middleware
	if redisAddr := config.String("REDIS_ADDR", ""); redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
		defer func() { _ = rdb.Close() }()
		limiter = httpx.NewRedisRateLimiter(rdb, rateLimit, rateWindow, "orders").Middleware(logger, true)
	} else {
		limiter = httpx.NewRateLimiter(rateLimit, rateWindow).Middleware()
	}

	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithTimeout(15*time.Second),
		httpx.WithBodyLimit(1<<20),
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins: strings.Split(config.String("CORS_ALLOWED_ORIGINS", ""), ","),
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         10 * time.Minute,
		}),
		limiter,
	)
	handler = otelhttp.NewHandler(handler, "order-service")
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
