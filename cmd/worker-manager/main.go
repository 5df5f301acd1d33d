// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	awsclient "credit-workers/internal/common/aws"
	"credit-workers/internal/common/camunda"
	"credit-workers/internal/common/config"
	"credit-workers/internal/common/database"
	"credit-workers/internal/common/logger"
	"credit-workers/internal/common/observability"
	"credit-workers/internal/credit/decisionlog"
	"credit-workers/internal/credit/notify"
	"credit-workers/internal/credit/service"
	"credit-workers/internal/credit/store"

	ce "credit-workers/internal/workers/credit/check-eligibility"
	cl "credit-workers/internal/workers/credit/create-loan"
	rc "credit-workers/internal/workers/credit/register-customer"
	vcl "credit-workers/internal/workers/credit/view-customer-loans"
	vl "credit-workers/internal/workers/credit/view-loan"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog, err := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"service": cfg.App.Name,
		"version": cfg.App.Version,
	})
	zapLog.Info("Starting worker manager...", zap.String("environment", cfg.App.Environment))

	obs, err := observability.New(cfg.App.Name, cfg.App.Version)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}

	ctx := context.Background()

	// --- Zeebe ---
	zeebe, err := camunda.NewClientWithConfig(ctx, &camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: cfg.Camunda.UsePlaintext,
		ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
	})
	if err != nil {
		zapLog.Fatal("zeebe client failed", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	pgStore := store.NewPostgres(pg.DB)
	if cfg.Database.Postgres.AutoMigrate {
		if err := pgStore.Migrate(ctx); err != nil {
			zapLog.Fatal("schema migration failed", zap.Error(err))
		}
		zapLog.Info("Credit schema migrated")
	}

	var creditStore store.Store = pgStore

	// --- Redis customer cache ---
	if cfg.Database.Redis.Enabled {
		var rdb *database.RedisClient
		err = retryWithBackoff(func() error {
			rdb = database.NewRedis(cfg.Database.Redis)
			return rdb.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rdb.Close()
		creditStore = store.NewCachedStore(pgStore, rdb.Client, cfg.Credit.CacheTTL(), cfg.Credit.CacheKeyPrefix, log)
		zapLog.Info("Redis connected successfully", zap.Duration("customerCacheTTL", cfg.Credit.CacheTTL()))
	}

	opts := []service.Option{service.WithTracer(obs.Tracer())}

	loc, err := time.LoadLocation(cfg.Credit.Timezone)
	if err != nil {
		zapLog.Fatal("invalid credit timezone", zap.Error(err))
	}
	opts = append(opts, service.WithLocation(loc))

	// --- Elasticsearch decision log ---
	if cfg.Database.Elasticsearch.Enabled {
		var es *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return es.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		opts = append(opts, service.WithDecisionLog(decisionlog.NewElasticsearch(es.Client, cfg.Credit.DecisionIndex, log)))
		zapLog.Info("Elasticsearch connected successfully", zap.String("index", cfg.Credit.DecisionIndex))
	}

	// --- Notifications ---
	if cfg.Notifications.Enabled() {
		awsCfg, err := awsclient.LoadConfig(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("aws config load failed", zap.Error(err))
		}
		n := notify.New(cfg.Notifications, awsclient.NewSESClient(awsCfg), awsclient.NewSNSClient(awsCfg), log)
		opts = append(opts, service.WithNotifier(n))
		zapLog.Info("Notifications enabled",
			zap.Bool("email", cfg.Notifications.Email.Enabled),
			zap.Bool("sms", cfg.Notifications.SMS.Enabled),
		)
	}

	svc := service.New(creditStore, log, opts...)

	// --- Workers ---
	handlers := map[string]camunda.JobHandler{
		ce.TaskType:  ce.NewHandler(ce.NewConfig(config.GetWorkerConfig(cfg, ce.TaskType)), svc, log).Handle,
		cl.TaskType:  cl.NewHandler(cl.NewConfig(config.GetWorkerConfig(cfg, cl.TaskType)), svc, log).Handle,
		rc.TaskType:  rc.NewHandler(rc.NewConfig(config.GetWorkerConfig(cfg, rc.TaskType)), svc, log).Handle,
		vl.TaskType:  vl.NewHandler(vl.NewConfig(config.GetWorkerConfig(cfg, vl.TaskType)), svc, log).Handle,
		vcl.TaskType: vcl.NewHandler(vcl.NewConfig(config.GetWorkerConfig(cfg, vcl.TaskType)), svc, log).Handle,
	}

	var workers []*camunda.CamundaWorker
	for taskType, handle := range handlers {
		if !config.IsWorkerEnabled(cfg, taskType) {
			zapLog.Info("worker disabled", zap.String("taskType", taskType))
			continue
		}
		workers = append(workers, camunda.NewWorker(zeebe.Zeebe(), taskType, config.GetWorkerConfig(cfg, taskType), handle, obs, log))
	}
	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: newServeMux(zeebe, pg),
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	for _, w := range workers {
		w.Stop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error flushing telemetry", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

type pinger interface {
	Ping(ctx context.Context) error
}

type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

func newServeMux(zeebe healthChecker, db pinger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := map[string]string{"zeebe": "ok", "postgres": "ok"}
		code := http.StatusOK
		if err := zeebe.HealthCheck(ctx); err != nil {
			checks["zeebe"] = err.Error()
			code = http.StatusServiceUnavailable
		}
		if err := db.Ping(ctx); err != nil {
			checks["postgres"] = err.Error()
			code = http.StatusServiceUnavailable
		}

		status := "ready"
		if code != http.StatusOK {
			status = "not ready"
		}
		writeStatus(w, code, map[string]interface{}{
			"status": status,
			"checks": checks,
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func writeStatus(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
