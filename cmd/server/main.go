package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	lendinghandler "creditline/internal/lending/handler"
	lendingmetrics "creditline/internal/lending/metrics"
	lendingservice "creditline/internal/lending/service"
	customerstore "creditline/internal/lending/store/customer"
	loanstore "creditline/internal/lending/store/loan"
	"creditline/internal/platform/config"
	"creditline/internal/platform/database"
	"creditline/internal/platform/httpserver"
	"creditline/internal/platform/logger"
	platformmetrics "creditline/internal/platform/metrics"
	"creditline/internal/platform/middleware"
	redisclient "creditline/internal/platform/redis"
	audit "creditline/pkg/platform/audit"
	"creditline/pkg/platform/audit/publisher"
	opsaudit "creditline/pkg/platform/audit/publishers/ops"
	kafkasink "creditline/pkg/platform/audit/store/kafka"
	auditmemory "creditline/pkg/platform/audit/store/memory"
	auditpostgres "creditline/pkg/platform/audit/store/postgres"
	"creditline/pkg/platform/circuit"
	"creditline/pkg/platform/httputil"
	"creditline/pkg/platform/middleware/request"
	"creditline/pkg/platform/middleware/requesttime"
)

const auditBufferSize = 1024

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Server.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := platformmetrics.New(reg)
	lendingMetrics := lendingmetrics.New(reg)

	backends, err := openInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer backends.close()

	deps, err := buildLending(cfg, log, backends, lendingMetrics, opsaudit.NewMetrics(reg))
	if err != nil {
		return err
	}
	defer deps.auditPublisher.Close()

	router := chi.NewRouter()
	router.Use(request.RequestID)
	router.Use(requesttime.Middleware)
	router.Use(middleware.AccessLog(log, httpMetrics))
	router.Use(chimw.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Get("/readyz", backends.readiness)
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	lendinghandler.New(deps.service, log).Register(router)

	srv := httpserver.New(cfg.Server.Addr, router)
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting creditline", "addr", cfg.Server.Addr,
			"postgres", cfg.Database.Enabled(),
			"redis", cfg.Redis.Enabled(),
			"kafka", cfg.Kafka.Enabled(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// infra holds the optional backing services.
type infra struct {
	db    *sql.DB
	redis *redisclient.Client
	kafka *kafkasink.Sink
}

func openInfra(ctx context.Context, cfg config.Config, log *slog.Logger) (*infra, error) {
	in := &infra{}
	if cfg.Database.Enabled() {
		db, err := database.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		in.db = db
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	client, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		// The cache is optional; lookups go straight to the store.
		log.Warn("redis unavailable, customer cache disabled", "error", err)
	}
	in.redis = client

	if cfg.Kafka.Enabled() {
		sink, err := kafkasink.NewSink(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			in.close()
			return nil, err
		}
		if err := sink.EnsureTopic(ctx); err != nil {
			log.Warn("could not ensure audit topic", "topic", cfg.Kafka.AuditTopic, "error", err)
		}
		in.kafka = sink
	}
	return in, nil
}

func (in *infra) close() {
	if in.kafka != nil {
		in.kafka.Close()
	}
	if in.redis != nil {
		_ = in.redis.Close()
	}
	if in.db != nil {
		_ = in.db.Close()
	}
}

func (in *infra) readiness(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	checks := map[string]string{}
	ready := true
	probe := func(name string, check func(context.Context) error) {
		if err := check(ctx); err != nil {
			checks[name] = err.Error()
			ready = false
			return
		}
		checks[name] = "ok"
	}
	if in.db != nil {
		probe("postgres", in.db.PingContext)
	}
	if in.redis != nil {
		probe("redis", in.redis.Health)
	}
	if in.kafka != nil {
		probe("kafka", in.kafka.Ping)
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	httputil.WriteJSON(w, status, checks)
}

type lendingDeps struct {
	service        *lendingservice.Service
	auditPublisher *publisher.Publisher
}

func buildLending(cfg config.Config, log *slog.Logger, in *infra, m *lendingmetrics.Metrics, opsMetrics *opsaudit.Metrics) (*lendingDeps, error) {
	var (
		customers lendingservice.CustomerStore
		loans     lendingservice.LoanStore
		lendingTx lendingservice.LendingTx
		auditLog  audit.Fanout
	)
	if in.db != nil {
		pgCustomers := customerstore.NewPostgres(in.db)
		customers = pgCustomers
		loans = loanstore.NewPostgres(in.db)
		lendingTx = newLendingPostgresTx(in.db, pgCustomers, cfg.Lending.TxTimeout)
		auditLog = append(auditLog, auditpostgres.New(in.db))
	} else {
		customers = customerstore.NewInMemory()
		loans = loanstore.NewInMemory()
		lendingTx = lendingservice.NewShardedTx(cfg.Lending.TxTimeout)
		auditLog = append(auditLog, auditmemory.NewInMemoryStore())
	}
	if in.kafka != nil {
		auditLog = append(auditLog, in.kafka)
	}

	if in.redis != nil {
		cached, err := customerstore.NewCached(customers, in.redis.Client,
			customerstore.WithTTL(cfg.Redis.CustomerTTL),
			customerstore.WithCacheLogger(log),
			customerstore.WithCacheObserver(m),
			customerstore.WithBreaker(circuit.New("customer-cache")),
		)
		if err != nil {
			return nil, err
		}
		customers = cached
	}

	sampled := opsaudit.NewSamplingAppender(auditLog, opsaudit.NewSampler(cfg.Kafka.OpsSampleRate), opsMetrics)
	auditPublisher := publisher.NewPublisher(sampled,
		publisher.WithAsyncBuffer(auditBufferSize),
		publisher.WithLogger(log),
	)
	svc, err := lendingservice.New(customers, loans, lendingTx,
		lendingservice.WithLogger(log),
		lendingservice.WithMetrics(m),
		lendingservice.WithAuditPublisher(auditPublisher),
	)
	if err != nil {
		auditPublisher.Close()
		return nil, err
	}
	return &lendingDeps{service: svc, auditPublisher: auditPublisher}, nil
}
