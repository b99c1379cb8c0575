package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"maintenance-service/internal/alerting"
	"maintenance-service/internal/api"
	"maintenance-service/internal/config"
	"maintenance-service/internal/db"
	"maintenance-service/internal/logging"
	"maintenance-service/internal/notify"
	"maintenance-service/internal/risk"
	"maintenance-service/internal/scheduling"
	"maintenance-service/internal/telemetry"
	"maintenance-service/internal/worker"
	"maintenance-service/pkg/prediction"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging.Dir, cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbConn, err := db.New(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	defer dbConn.Close()
	logger.Infof("Connected to database")

	// Notification sinks. Kafka and the WebSocket hub are always on;
	// Telegram and email only when configured.
	hub := notify.NewHub(logger)
	sinks := []notify.Sink{
		notify.NewKafkaSink(cfg.Kafka.Broker, cfg.Kafka.Topic),
		hub,
	}
	if cfg.Telegram.BotToken != "" {
		tg, err := notify.NewTelegramSink(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.RatePerSecond)
		if err != nil {
			logger.Errorf("Telegram sink disabled: %v", err)
		} else {
			sinks = append(sinks, tg)
		}
	}
	if cfg.Email.SMTPServer != "" && cfg.Email.Recipients != "" {
		sinks = append(sinks, notify.NewEmailSink(
			cfg.Email.SMTPServer, cfg.Email.SMTPPort,
			cfg.Email.Username, cfg.Email.Password, cfg.Email.Recipients, logger))
	}
	notifier := notify.New(logger, sinks...)

	predictor := prediction.NewClient(cfg.PredictionAPI.BaseURL, cfg.PredictionAPI.Timeout)
	if predictor.Enabled() {
		if predictor.Healthy(ctx) {
			logger.Infof("Prediction service reachable at %s", cfg.PredictionAPI.BaseURL)
		} else {
			logger.Warnf("Prediction service unhealthy, rule-based scoring will be used")
		}
	} else {
		logger.Infof("No prediction service configured, using rule-based scoring")
	}

	provider := telemetry.NewSimulatedProvider(time.Now().UnixNano())
	resolver := scheduling.NewTechnicianResolver(dbConn)
	scheduler := scheduling.NewScheduler(dbConn, resolver, logger)

	riskEngine := risk.NewEngine(dbConn, scheduler, predictor, provider, notifier, logger)
	alertEngine := alerting.NewEngine(dbConn, scheduler, notifier, logger)
	monitor := telemetry.NewMonitor(dbConn, provider, notifier, logger)
	routine := scheduling.NewRoutineService(dbConn, scheduler, notifier, logger)

	runner := worker.NewRunner(worker.RealClock(), logger)
	runner.Start(ctx, worker.Worker{
		Name:         "alert-engine",
		InitialDelay: 30 * time.Second,
		Period:       cfg.Workers.AlertPeriod,
		Cooldown:     cfg.Workers.CycleCooldown,
		Run:          alertEngine.RunCycle,
	})
	runner.Start(ctx, worker.Worker{
		Name:         "telemetry-monitor",
		InitialDelay: 1 * time.Minute,
		Period:       cfg.Workers.TelemetryPeriod,
		Cooldown:     cfg.Workers.CycleCooldown,
		Run:          monitor.RunCycle,
	})
	runner.Start(ctx, worker.Worker{
		Name:         "risk-engine",
		InitialDelay: 2 * time.Minute,
		Period:       cfg.Workers.RiskPeriod,
		Cooldown:     cfg.Workers.CycleCooldown,
		Run:          riskEngine.RunCycle,
	})
	runner.Start(ctx, worker.Worker{
		Name:         "routine-scheduler",
		InitialDelay: cfg.Workers.RoutineDelay,
		Period:       cfg.Workers.RoutinePeriod,
		Cooldown:     cfg.Workers.CycleCooldown,
		Run:          routine.RunCycle,
	})

	router := api.NewRouter(hub, logger)
	srv := &http.Server{Addr: cfg.API.Port, Handler: router}
	go func() {
		logger.Infof("API server listening on %s", cfg.API.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("API server failed: %v", err)
		}
	}()

	// Graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	logger.Infof("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("API shutdown failed: %v", err)
	}
	runner.Wait()
	logger.Infof("Service stopped")
}
