// cmd/certificate-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"certificate-pipeline/internal/common/config"
	"certificate-pipeline/internal/common/database"
	"certificate-pipeline/internal/common/logger"
	"certificate-pipeline/internal/common/observability"
	"certificate-pipeline/internal/notify"
	"certificate-pipeline/internal/pipeline/assets"
	"certificate-pipeline/internal/pipeline/coordinator"
	"certificate-pipeline/internal/pipeline/delivery"
	"certificate-pipeline/internal/pipeline/pdf"
	"certificate-pipeline/internal/pipeline/render"
	"certificate-pipeline/internal/reminders"
	"certificate-pipeline/internal/scheduler"
	"certificate-pipeline/internal/store"
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
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New("info", "console")
		fallback.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting certificate manager...",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
	)

	obs := observability.New("certificate-pipeline")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
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

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Stores ---
	participants := store.NewParticipantStore(pg.DB)
	logs := store.NewCertificateLogStore(pg.DB)
	checkins := store.NewCheckInStore(pg.DB)
	programs := store.NewProgramStore(pg.DB)

	// --- Rendering pipeline ---
	resolver, err := assets.NewResolver(cfg.Assets.SearchDirs)
	if err != nil {
		zapLog.Fatal("asset resolver failed", zap.Error(err))
	}

	renderer, err := render.New(cfg.Event)
	if err != nil {
		zapLog.Fatal("certificate renderer failed", zap.Error(err))
	}

	converter := pdf.New(cfg.PDF, log)

	// --- Outbound mail transport ---
	var transport delivery.Transport
	var fromAddress, fromName string
	if cfg.AWS.UseSESTransport {
		sesTransport, err := delivery.NewSESTransport(ctx, cfg.AWS, log)
		if err != nil {
			zapLog.Fatal("ses transport failed", zap.Error(err))
		}
		transport = sesTransport
		fromAddress = cfg.AWS.SES.FromAddress
		fromName = cfg.SMTP.FromName
		zapLog.Info("Using SES mail transport")
	} else {
		transport = delivery.NewSMTPTransport(cfg.SMTP, log)
		fromAddress = cfg.SMTP.FromAddress
		fromName = cfg.SMTP.FromName
		zapLog.Info("Using SMTP mail transport",
			zap.String("host", cfg.SMTP.Host),
			zap.Int("port", cfg.SMTP.Port),
		)
	}

	// --- Coordinator ---
	locker := coordinator.NewRedisLocker(redis, config.GetDuration(cfg.Pipeline.LockTTLMs), log)

	coord := coordinator.New(coordinator.Deps{
		Participants:  participants,
		Logs:          logs,
		Resolver:      resolver,
		Renderer:      renderer,
		Converter:     converter,
		Transport:     transport,
		Locker:        locker,
		Observability: obs,
		Logger:        log,
	}, cfg.Pipeline, fromAddress, fromName)

	// --- Bulk run summaries over SNS ---
	var notifier coordinator.Notifier
	if cfg.AWS.SNS.Enabled {
		snsNotifier, err := notify.NewSNSNotifier(ctx, cfg.AWS, log)
		if err != nil {
			zapLog.Fatal("sns notifier failed", zap.Error(err))
		}
		notifier = snsNotifier
		zapLog.Info("SNS bulk summaries enabled", zap.String("topic", cfg.AWS.SNS.TopicARN))
	}

	// --- Scheduler, operations facade & check-in intake ---
	sched := scheduler.New(log)
	defer sched.Stop()

	// These are the surfaces a future transport layer plugs into.
	_ = coordinator.NewService(coord, sched)
	_ = coordinator.NewIntake(
		checkins, coord, sched, notifier,
		config.GetDuration(cfg.Scheduler.CertificateDelayMs), log,
	)

	if cfg.Scheduler.RemindersEnabled {
		reminderSvc := reminders.New(programs, participants, transport, fromAddress, fromName, log)
		sched.ScheduleEvery("program-reminders", config.GetDuration(cfg.Scheduler.ReminderIntervalMs),
			func(jobCtx context.Context) {
				if _, err := reminderSvc.Run(jobCtx); err != nil {
					log.Error("program reminder run failed", map[string]interface{}{
						"error": err.Error(),
					})
				}
			})
		zapLog.Info("Program reminders scheduled",
			zap.Duration("interval", config.GetDuration(cfg.Scheduler.ReminderIntervalMs)),
		)
	}

	zapLog.Info("Certificate pipeline ready")

	// --- Health & Metrics Server ---
	if cfg.Metrics.Enabled {
		go func() {
			mux := http.NewServeMux()
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "healthy",
					"time":   time.Now().Format(time.RFC3339),
				})
			})
			mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				if err := pg.Ping(r.Context()); err != nil {
					w.WriteHeader(http.StatusServiceUnavailable)
					json.NewEncoder(w).Encode(map[string]string{
						"status": "not ready",
						"error":  err.Error(),
					})
					return
				}
				w.WriteHeader(http.StatusOK)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "ready",
					"time":   time.Now().Format(time.RFC3339),
				})
			})
			mux.Handle("/metrics", promhttp.Handler())

			addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
			zapLog.Info("Health/Metrics server listening", zap.String("addr", addr))
			if err := http.ListenAndServe(addr, mux); err != nil {
				zapLog.Error("Health/Metrics server failed", zap.Error(err))
			}
		}()
	}

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping scheduler...")
	sched.Stop()

	zapLog.Info("Certificate manager stopped gracefully")
}
