package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/studionail/nailbook/libs/config"
	"github.com/studionail/nailbook/libs/db"
	"github.com/studionail/nailbook/libs/httpx"
	"github.com/studionail/nailbook/libs/kafkax"
	otelx "github.com/studionail/nailbook/libs/otel"
	"github.com/studionail/nailbook/libs/runtime"
	"github.com/studionail/nailbook/services/booking-service/internal/catalog"
	"github.com/studionail/nailbook/services/booking-service/internal/consumer"
	"github.com/studionail/nailbook/services/booking-service/internal/handlers"
	"github.com/studionail/nailbook/services/booking-service/internal/inbox"
	"github.com/studionail/nailbook/services/booking-service/internal/metrics"
	"github.com/studionail/nailbook/services/booking-service/internal/outbox"
	"github.com/studionail/nailbook/services/booking-service/internal/slotcache"
	"github.com/studionail/nailbook/services/booking-service/internal/snapshot"
	"github.com/studionail/nailbook/services/booking-service/internal/storage"
)

func main() {
	_ = config.LoadDotenv()

	service := config.String("SERVICE_NAME", "booking-service")
	port, err := config.Port("PORT", "8083")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service, config.String("LOG_LEVEL", "info"))

	ctx, stop := runtime.SignalContext(logger)
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
	jwtSecret, err := config.RequiredString("JWT_SECRET")
	if err != nil {
		panic(err)
	}

	pool, err := db.Open(ctx, dbURL, db.Options{})
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	var rdb *redis.Client
	if addr := config.String("REDIS_ADDR", ""); addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: config.String("REDIS_PASSWORD", ""),
		})
		defer func() { _ = rdb.Close() }()
	}

	cat, err := catalog.Load(config.String("SLOT_CATALOG_FILE", ""))
	if err != nil {
		logger.Error("slot catalog load failed", "err", err)
		panic(err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	policy, err := retryPolicy()
	if err != nil {
		panic(err)
	}
	cacheTTL, err := config.Duration("SLOT_CACHE_TTL", 10*time.Minute)
	if err != nil {
		panic(err)
	}
	capacity, err := config.Int("SLOT_CACHE_CAPACITY", 1024)
	if err != nil {
		panic(err)
	}

	repo := storage.NewRepository(pool, logger)
	fetcher := snapshot.NewFetcher(repo, policy, logger, m)

	var (
		gens  slotcache.Generations
		store slotcache.Store
	)
	if rdb != nil {
		gens = slotcache.NewRedisGenerations(rdb, "")
		store = slotcache.NewRedisStore(rdb, cacheTTL, "")
	} else {
		memStore := slotcache.NewMemoryStore(capacity, cacheTTL)
		sweeper, err := slotcache.NewSweeper(memStore, config.String("CACHE_SWEEP_SCHEDULE", "@every 10m"), time.Local, logger)
		if err != nil {
			panic(err)
		}
		sweeper.Start()
		defer sweeper.Stop()
		gens = slotcache.NewMemoryGenerations()
		store = memStore
	}

	notifier := slotcache.NewNotifier(64)
	slots := slotcache.NewService(fetcher, cat.Func(), gens, store, notifier, logger, m, slotcache.Config{BypassFor: cacheTTL})
	go slotcache.NewWarmer(slots, logger, policy.Timeout).Run(ctx)

	brokers := config.String("KAFKA_BROKERS", "")
	outboxRepo := outbox.NewRepository()
	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   brokers,
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	if strings.TrimSpace(brokers) != "" {
		eventConsumer := consumer.New(logger, inbox.NewRepository(pool), m, consumer.Config{
			Brokers: brokers,
			GroupID: consumerGroup(service),
			Topics:  outbox.Topics,
		}, consumer.InvalidateHandler(slots))
		go eventConsumer.Run(ctx)
	}

	perMinute, err := config.Int("RATE_LIMIT_PER_MINUTE", 120)
	if err != nil {
		panic(err)
	}
	var public httpx.Middleware
	if rdb != nil {
		public = httpx.NewRedisRateLimiter(rdb, perMinute, time.Minute, "nailbook:ratelimit").Middleware(logger, true)
	} else {
		public = httpx.NewRateLimiter(perMinute).Middleware()
	}

	checks := []runtime.ReadyCheck{
		{Name: "db", Check: db.ReadyCheck(pool)},
		{Name: "kafka", Check: kafkax.ReadyCheck(brokers)},
	}
	if rdb != nil {
		checks = append(checks, runtime.ReadyCheck{Name: "redis", Check: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	}
	mux := runtime.NewBaseMuxWithReady(checks...)
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	bookingHandler := handlers.New(repo, outboxRepo, slots, cat, logger, config.String("PUBLIC_BASE_URL", ""))
	bookingHandler.Register(mux, public, httpx.RequireDesigner(jwtSecret))

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithRecover(logger),
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins:   config.List("CORS_ALLOWED_ORIGINS"),
			AllowCredentials: true,
			MaxAge:           10 * time.Minute,
		}),
		httpx.WithBodyLimit(64<<10),
		httpx.WithTimeout(15*time.Second),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "booking")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr, "catalog_overrides", len(cat.Overrides), "redis", rdb != nil)
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

func retryPolicy() (snapshot.RetryPolicy, error) {
	def := snapshot.DefaultRetryPolicy()
	attempts, err := config.Int("FETCH_MAX_ATTEMPTS", def.MaxAttempts)
	if err != nil {
		return snapshot.RetryPolicy{}, err
	}
	step, err := config.Duration("FETCH_RETRY_STEP", def.Step)
	if err != nil {
		return snapshot.RetryPolicy{}, err
	}
	timeout, err := config.Duration("FETCH_TIMEOUT", def.Timeout)
	if err != nil {
		return snapshot.RetryPolicy{}, err
	}
	return snapshot.RetryPolicy{MaxAttempts: attempts, Step: step, Timeout: timeout}, nil
}

// consumerGroup is unique per replica: every instance must see every change to
// invalidate its own cache. HOSTNAME is set by container runtimes.
func consumerGroup(service string) string {
	group := config.String("KAFKA_GROUP_ID", service)
	if host := config.String("HOSTNAME", ""); host != "" {
		group += "-" + host
	}
	return group
}
