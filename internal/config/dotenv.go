package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

type Config struct {
	Addr                     string
	RoundDuration            time.Duration
	AnnounceDelay            time.Duration
	ResultsDelay             time.Duration
	ScoreboardDelay          time.Duration
	MessagesPerSecond        float64
	MessageBurst             int
	OutboxSize               int
	LogLevel                 string
	LogPretty                bool
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeSeconds int
}

func Default() Config {
	return Config{
		Addr:                     ":8080",
		RoundDuration:            3 * time.Minute,
		AnnounceDelay:            5 * time.Second,
		ResultsDelay:             5 * time.Second,
		ScoreboardDelay:          10 * time.Second,
		MessagesPerSecond:        10,
		MessageBurst:             20,
		OutboxSize:               32,
		LogLevel:                 "info",
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           10,
		DBConnMaxLifetimeSeconds: 300,
	}
}

func Load() Config {
	cfg := Default()
	if raw := os.Getenv("PORT"); raw != "" {
		cfg.Addr = ":" + raw
	}
	if value, ok := durationEnv("ROUND_DURATION"); ok && value > 0 {
		cfg.RoundDuration = value
	}
	if value, ok := durationEnv("ANNOUNCE_DELAY"); ok {
		cfg.AnnounceDelay = value
	}
	if value, ok := durationEnv("RESULTS_DELAY"); ok {
		cfg.ResultsDelay = value
	}
	if value, ok := durationEnv("SCOREBOARD_DELAY"); ok {
		cfg.ScoreboardDelay = value
	}
	if raw := os.Getenv("WS_MESSAGES_PER_SECOND"); raw != "" {
		if value, err := strconv.ParseFloat(raw, 64); err == nil && value > 0 {
			cfg.MessagesPerSecond = value
		}
	}
	if raw := os.Getenv("WS_MESSAGE_BURST"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.MessageBurst = value
		}
	}
	if raw := os.Getenv("WS_OUTBOX_SIZE"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.OutboxSize = value
		}
	}
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		cfg.LogLevel = raw
	}
	if raw := os.Getenv("LOG_PRETTY"); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			cfg.LogPretty = value
		}
	}
	if raw := os.Getenv("DB_MAX_OPEN_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxOpenConns = value
		}
	}
	if raw := os.Getenv("DB_MAX_IDLE_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxIdleConns = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_LIFETIME_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxLifetimeSeconds = value
		}
	}
	return cfg
}

func durationEnv(key string) (time.Duration, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value < 0 {
		return 0, false
	}
	return value, true
}
