package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	DB struct {
		DSN string
	}
	Kafka struct {
		Broker string
		Topic  string
	}
	PredictionAPI struct {
		BaseURL string
		Timeout time.Duration
	}
	Email struct {
		SMTPServer string
		SMTPPort   int
		Username   string
		Password   string
		Recipients string // comma-separated digest recipients
	}
	Telegram struct {
		BotToken      string
		ChatID        int64
		RatePerSecond int
	}
	Workers struct {
		AlertPeriod     time.Duration
		TelemetryPeriod time.Duration
		RiskPeriod      time.Duration
		RoutinePeriod   time.Duration
		RoutineDelay    time.Duration
		CycleCooldown   time.Duration
	}
	API struct {
		Port string
	}
	Logging struct {
		Dir   string
		Level string
	}
}

// Load reads environment variables, applies defaults, and returns a Config.
func Load() (Config, error) {
	// Load .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config

	cfg.DB.DSN = os.Getenv("DB_DSN")

	cfg.Kafka.Broker = os.Getenv("KAFKA_BROKER")
	cfg.Kafka.Topic = os.Getenv("KAFKA_TOPIC")

	cfg.PredictionAPI.BaseURL = os.Getenv("PREDICTION_API_URL")
	cfg.PredictionAPI.Timeout = durationEnv("PREDICTION_API_TIMEOUT", 30*time.Second)

	cfg.Email.SMTPServer = os.Getenv("EMAIL_SMTP_SERVER")
	if p, err := strconv.Atoi(os.Getenv("EMAIL_SMTP_PORT")); err == nil {
		cfg.Email.SMTPPort = p
	}
	cfg.Email.Username = os.Getenv("EMAIL_USERNAME")
	cfg.Email.Password = os.Getenv("EMAIL_PASSWORD")
	cfg.Email.Recipients = os.Getenv("EMAIL_RECIPIENTS")

	cfg.Telegram.BotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if id, err := strconv.ParseInt(os.Getenv("TELEGRAM_CHAT_ID"), 10, 64); err == nil {
		cfg.Telegram.ChatID = id
	}
	if r, err := strconv.Atoi(os.Getenv("TELEGRAM_RATE_LIMIT")); err == nil {
		cfg.Telegram.RatePerSecond = r
	}

	cfg.Workers.AlertPeriod = durationEnv("ALERT_WORKER_PERIOD", 10*time.Minute)
	cfg.Workers.TelemetryPeriod = durationEnv("TELEMETRY_WORKER_PERIOD", 5*time.Minute)
	cfg.Workers.RiskPeriod = durationEnv("RISK_WORKER_PERIOD", 30*time.Minute)
	cfg.Workers.RoutinePeriod = durationEnv("ROUTINE_WORKER_PERIOD", 6*time.Hour)
	cfg.Workers.RoutineDelay = durationEnv("ROUTINE_WORKER_DELAY", 4*time.Minute)
	cfg.Workers.CycleCooldown = durationEnv("WORKER_CYCLE_COOLDOWN", 2*time.Minute)

	cfg.API.Port = os.Getenv("API_PORT")
	cfg.Logging.Dir = os.Getenv("LOG_DIR")
	cfg.Logging.Level = os.Getenv("LOG_LEVEL")

	// Validate required settings
	missing := []string{}
	if cfg.DB.DSN == "" {
		missing = append(missing, "DB_DSN")
	}
	if cfg.Kafka.Broker == "" {
		missing = append(missing, "KAFKA_BROKER")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required configurations: %v", missing)
	}

	// Apply defaults
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = "maintenance_events"
	}
	if cfg.Telegram.RatePerSecond == 0 {
		cfg.Telegram.RatePerSecond = 1
	}
	if cfg.API.Port == "" {
		cfg.API.Port = ":8080"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	return cfg, nil
}

func durationEnv(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
