package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	httpAdapter "github.com/dashfin/finmirror/internal/adapter/http"
	"github.com/dashfin/finmirror/internal/adapter/http/handler"
	"github.com/dashfin/finmirror/internal/adapter/http/middleware"
	"github.com/dashfin/finmirror/internal/adapter/repository/idgen"
	postgresRepo "github.com/dashfin/finmirror/internal/adapter/repository/postgres"
	redisRepo "github.com/dashfin/finmirror/internal/adapter/repository/redis"
	"github.com/dashfin/finmirror/internal/domain"
	"github.com/dashfin/finmirror/internal/infrastructure/auth"
	"github.com/dashfin/finmirror/internal/infrastructure/config"
	"github.com/dashfin/finmirror/internal/infrastructure/logger"
	"github.com/dashfin/finmirror/internal/infrastructure/metrics"
	"github.com/dashfin/finmirror/internal/infrastructure/postgres"
	"github.com/dashfin/finmirror/internal/infrastructure/redis"
	"github.com/dashfin/finmirror/internal/usecase"
)

// remoteCollection is the full surface the server needs from a driver:
// the standing query plus the write path.
type remoteCollection interface {
	usecase.CollectionWatcher
	usecase.CollectionWriter
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	var (
		remote      remoteCollection
		pool        *pgxpool.Pool
		redisClient *goredis.Client
	)

	ids := idgen.NewULIDGenerator()

	switch cfg.RemoteDriver {
	case config.DriverPostgres:
		pool, err = postgres.NewPool(ctx, postgres.PoolConfig{
			DatabaseURL: cfg.DatabaseURL,
			MaxConns:    cfg.DatabaseMaxConns,
			MinConns:    cfg.DatabaseMinConns,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to postgres")
		}
		defer pool.Close()
		log.Info().Msg("connected to postgres")

		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}

		remote = postgresRepo.NewCollectionRepository(pool, ids, log)

	case config.DriverRedis:
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		log.Info().Msg("connected to redis")

		remote = redisRepo.NewCollectionRepository(redisClient, ids, log)
	}

	m := metrics.New()
	instrumented := newInstrumentedCollection(remote, m)

	store := usecase.NewSnapshotStore()
	observeStore(m, cfg.Collection, store)

	manager := usecase.NewSubscriptionManager(instrumented, store, log)
	manager.Open(cfg.Collection)
	m.ActiveSubscriptions.Set(1)
	defer manager.CloseAll()

	mutationUC := usecase.NewMutationUseCase(instrumented, cfg.Collection, log)
	session := usecase.NewEditSession(mutationUC, middleware.ContextIdentity{})

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		RecordHandler: handler.NewRecordHandler(store, mutationUC),
		StatsHandler:  handler.NewStatsHandler(store, cfg.ChartPoints),
		EditorHandler: handler.NewEditorHandler(session, store),
		HealthHandler: handler.NewHealthHandler(pool, redisClient),
		TokenVerifier: auth.NewTokenVerifier(cfg.JWTSecret),
		RateLimiter:   middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		Logger:        log,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		log.Info().
			Str("port", cfg.HTTPPort).
			Str("driver", cfg.RemoteDriver).
			Str("collection", cfg.Collection).
			Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	manager.CloseAll()
	m.SubscriptionsClosed.Inc()
	m.ActiveSubscriptions.Set(0)

	log.Info().Msg("server stopped")
}

// observeStore mirrors the snapshot state into the prometheus gauges on
// every delivery.
func observeStore(m *metrics.Metrics, collection string, store *usecase.SnapshotStore) {
	store.Subscribe(func() {
		records, loading, err := store.State()

		m.SnapshotSize.WithLabelValues(collection).Set(float64(len(records)))
		m.SnapshotLoading.WithLabelValues(collection).Set(boolGauge(loading))
		m.SnapshotErrored.WithLabelValues(collection).Set(boolGauge(err != nil))

		totals := domain.ComputeTotals(records)
		m.TotalsIncome.WithLabelValues(collection).Set(totals.Income.InexactFloat64())
		m.TotalsExpense.WithLabelValues(collection).Set(totals.Expense.InexactFloat64())
		m.TotalsBalance.WithLabelValues(collection).Set(totals.Balance.InexactFloat64())

		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		m.SnapshotDeliveries.WithLabelValues(collection, outcome).Inc()
	})
}

func boolGauge(v bool) float64 {
	if v {
		return 1
	}
	return 0
}

// instrumentedCollection decorates a driver with prometheus counters.
// Each Watch call is a stream start; calls after the first per
// collection are restarts.
type instrumentedCollection struct {
	remote  remoteCollection
	metrics *metrics.Metrics

	mu      sync.Mutex
	started map[string]bool
}

func newInstrumentedCollection(remote remoteCollection, m *metrics.Metrics) *instrumentedCollection {
	return &instrumentedCollection{
		remote:  remote,
		metrics: m,
		started: make(map[string]bool),
	}
}

func (c *instrumentedCollection) Watch(ctx context.Context, collection string) (<-chan usecase.Delivery, error) {
	c.mu.Lock()
	if c.started[collection] {
		c.metrics.SubscriptionRestarts.WithLabelValues(collection).Inc()
	} else {
		c.started[collection] = true
		c.metrics.SubscriptionsOpened.Inc()
	}
	c.mu.Unlock()

	return c.remote.Watch(ctx, collection)
}

func (c *instrumentedCollection) Insert(ctx context.Context, collection string, fields domain.RecordFields) (*domain.Record, error) {
	start := time.Now()
	record, err := c.remote.Insert(ctx, collection, fields)
	c.observe("insert", start, err)
	return record, err
}

func (c *instrumentedCollection) Replace(ctx context.Context, collection, id string, fields domain.RecordFields) error {
	start := time.Now()
	err := c.remote.Replace(ctx, collection, id, fields)
	c.observe("replace", start, err)
	return err
}

func (c *instrumentedCollection) Delete(ctx context.Context, collection, id string) error {
	start := time.Now()
	err := c.remote.Delete(ctx, collection, id)
	c.observe("delete", start, err)
	return err
}

func (c *instrumentedCollection) observe(operation string, start time.Time, err error) {
	c.metrics.MutationLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	c.metrics.MutationsTotal.WithLabelValues(operation).Inc()
	if err != nil {
		c.metrics.MutationErrors.WithLabelValues(operation).Inc()
	}
}
