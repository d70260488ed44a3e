package config

import (
	"os"
	"strconv"
	"strings"

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
	HandSize                 int
	MinPlayers               int
	MaxPlayers               int
	RoundLimit               int
	TurnTimeLimitSeconds     int
	DealAttempts             int
	TimerSweepSeconds        int
	CardPacks                []string
	LogLevel                 string
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeSeconds int
	DBConnMaxIdleTimeSeconds int
}

func Default() Config {
	return Config{
		HandSize:                 10,
		MinPlayers:               2,
		MaxPlayers:               8,
		RoundLimit:               10,
		TurnTimeLimitSeconds:     120,
		DealAttempts:             5,
		TimerSweepSeconds:        5,
		CardPacks:                []string{"Geek Pack"},
		LogLevel:                 "info",
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           10,
		DBConnMaxLifetimeSeconds: 300,
		DBConnMaxIdleTimeSeconds: 60,
	}
}

func Load() Config {
	cfg := Default()
	positive := func(key string, target *int) {
		if raw := os.Getenv(key); raw != "" {
			if value, err := strconv.Atoi(raw); err == nil && value > 0 {
				*target = value
			}
		}
	}
	positive("HAND_SIZE", &cfg.HandSize)
	positive("MIN_PLAYERS", &cfg.MinPlayers)
	positive("MAX_PLAYERS", &cfg.MaxPlayers)
	positive("ROUND_LIMIT", &cfg.RoundLimit)
	positive("TURN_SECONDS", &cfg.TurnTimeLimitSeconds)
	positive("DEAL_ATTEMPTS", &cfg.DealAttempts)
	positive("TIMER_SWEEP_SECONDS", &cfg.TimerSweepSeconds)
	positive("DB_MAX_OPEN_CONNS", &cfg.DBMaxOpenConns)
	positive("DB_MAX_IDLE_CONNS", &cfg.DBMaxIdleConns)
	positive("DB_CONN_MAX_LIFETIME_SECONDS", &cfg.DBConnMaxLifetimeSeconds)
	positive("DB_CONN_MAX_IDLE_SECONDS", &cfg.DBConnMaxIdleTimeSeconds)
	if raw := os.Getenv("CARD_PACKS"); raw != "" {
		if packs := splitList(raw); len(packs) > 0 {
			cfg.CardPacks = packs
		}
	}
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(raw))
	}
	return cfg
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
