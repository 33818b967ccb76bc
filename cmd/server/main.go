package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/finledger/internal/adapter/http"
	"github.com/iho/finledger/internal/adapter/http/handler"
	"github.com/iho/finledger/internal/adapter/http/middleware"
	"github.com/iho/finledger/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/finledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/finledger/internal/adapter/repository/redis"
	"github.com/iho/finledger/internal/infrastructure/auth"
	"github.com/iho/finledger/internal/infrastructure/config"
	"github.com/iho/finledger/internal/infrastructure/eventpublisher"
	"github.com/iho/finledger/internal/infrastructure/logger"
	"github.com/iho/finledger/internal/infrastructure/metrics"
	"github.com/iho/finledger/internal/infrastructure/postgres"
	"github.com/iho/finledger/internal/infrastructure/redis"
	"github.com/iho/finledger/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}

	log.Info().Msg("server stopped")
}

// run serves HTTP and publishes outbox events until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a, err := newApp(ctx, cfg, log, reg)
	if err != nil {
		return err
	}
	defer a.close()

	listener, err := net.Listen("tcp", ":"+cfg.HTTPPort)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	server := &http.Server{
		Handler:      a.handler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return logger.WithContext(context.Background(), log) },
	}

	// runs before a.close so no worker touches a closed pool or writer
	stopWorkers := a.startWorkers(ctx)
	defer stopWorkers()

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", listener.Addr().String()).Str("storage", cfg.StorageDriver).Msg("starting server")
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	return nil
}

// worker is a background loop that runs until its context is cancelled.
type worker interface {
	Start(ctx context.Context) error
}

// app is the wired application.
type app struct {
	handler http.Handler
	outbox  worker
	limiter *middleware.RateLimiter
	closers []func()
}

// startWorkers runs the outbox publisher and the limiter sweep. The returned
// stop function cancels them and waits until they have returned.
func (a *app) startWorkers(ctx context.Context) func() {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup

	if a.outbox != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = a.outbox.Start(ctx)
		}()
	}
	if a.limiter != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.limiter.RunCleanup(ctx, time.Minute, 10*time.Minute)
		}()
	}

	return func() {
		cancel()
		wg.Wait()
	}
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// storage groups the repositories of one driver.
type storage struct {
	txManager  usecase.TransactionManager
	statements usecase.StatementRepository
	ledger     usecase.LedgerRepository
	users      usecase.UserRepository
	outbox     usecase.OutboxRepository
	ping       handler.Pinger
	close      func()
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	if cfg.StorageDriver == config.StorageMemory {
		log.Warn().Msg("using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		return &storage{
			txManager:  store,
			statements: store.Statements(),
			ledger:     store.Ledger(),
			users:      store.Users(),
			outbox:     store.Outbox(),
			close:      func() {},
		}, nil
	}

	if cfg.RunMigrations {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
			return nil, err
		}
	}

	pool, err := postgres.NewPool(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseConnectTimeout,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	log.Info().Msg("connected to postgres")

	return &storage{
		txManager:  postgresRepo.NewTxManager(pool),
		statements: postgresRepo.NewStatementRepository(pool),
		ledger:     postgresRepo.NewLedgerRepository(pool),
		users:      postgresRepo.NewUserRepository(pool),
		outbox:     postgresRepo.NewOutboxRepository(pool),
		ping:       pool,
		close:      pool.Close,
	}, nil
}

// newApp wires storage, use cases, handlers and background workers.
func newApp(ctx context.Context, cfg *config.Config, log zerolog.Logger, reg *prometheus.Registry) (*app, error) {
	a := &app{}

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, store.close)

	m := metrics.NewWithRegisterer(reg)
	health := handler.NewHealthHandler().WithCheck("postgres", store.ping)

	var idempotencyStore usecase.IdempotencyStore
	switch {
	case cfg.RedisURL != "":
		client, err := redis.NewClient(ctx, cfg.RedisURL, 0)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		log.Info().Msg("connected to redis")

		idempotencyStore = redisRepo.NewIdempotencyStore(client)
		health.WithCheck("redis", handler.PingerFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}))
	case cfg.StorageDriver == config.StorageMemory:
		idempotencyStore = memory.NewIdempotencyStore()
	default:
		log.Warn().Msg("REDIS_URL is empty, idempotency keys are disabled")
	}

	idGen := postgresRepo.NewULIDGenerator()

	statementUC := usecase.NewStatementUseCase(store.txManager, store.statements, store.outbox, idGen).WithMetrics(m)
	transferUC := usecase.NewTransferUseCase(store.txManager, store.statements, store.outbox, idGen).WithMetrics(m)
	ledgerUC := usecase.NewLedgerUseCase(store.ledger).WithMetrics(m)
	userUC := usecase.NewUserUseCase(store.users, idGen)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	a.limiter = middleware.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst)

	a.handler = httpAdapter.NewRouter(httpAdapter.RouterConfig{
		Logger:             log,
		StatementHandler:   handler.NewStatementHandler(statementUC),
		TransferHandler:    handler.NewTransferHandler(transferUC, userUC),
		UserHandler:        handler.NewUserHandler(userUC, jwtManager, m),
		LedgerHandler:      handler.NewLedgerHandler(ledgerUC),
		HealthHandler:      health,
		TokenVerifier:      jwtManager,
		IdempotencyStore:   idempotencyStore,
		IdempotencyTTL:     cfg.IdempotencyTTL,
		AuthRateLimiter:    a.limiter,
		Metrics:            m,
		Gatherer:           reg,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		TrustProxyHeaders:  cfg.TrustProxyHeaders,
	})

	var publisher eventpublisher.Publisher = eventpublisher.NewLogPublisher(log)
	if len(cfg.KafkaBrokers) > 0 {
		kafka := eventpublisher.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		a.closers = append(a.closers, func() { _ = kafka.Close() })
		publisher = kafka
		log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("publishing outbox events to kafka")
	}

	a.outbox = eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: store.outbox,
		Publisher:  publisher,
		Logger:     log,
		Metrics:    m,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxInterval,
	})

	return a, nil
}
