package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gigaverse-tools/dungeon-agent/pkg/gigaverse"
)

type Config struct {
	Environment string
	LogLevel    slog.Level

	// Game API
	GigaverseAPIURL string
	GigaverseToken  string
	WalletAddress   string

	// Offline mode swaps the live game API for the simulated client.
	OfflineMode bool

	// LLM
	LLMProvider string // "venice" or "mock"
	LLMAPIKey   string
	ModelName   string

	// Persistence
	RedisURL string

	// Dungeon to crawl. The live action endpoint serves dungeon 0.
	DungeonID int

	// Autonomous loop pacing. MaxTurns 0 means run until interrupted.
	TurnInterval time.Duration
	MaxTurns     int
}

func Load() (*Config, error) {
	cfg := &Config{
		Environment:     getEnv("ENVIRONMENT", "development"),
		LogLevel:        parseLogLevel(getEnv("LOG_LEVEL", "info")),
		GigaverseAPIURL: getEnv("GIGAVERSE_API_URL", gigaverse.DefaultBaseURL),
		GigaverseToken:  getEnv("GIGAVERSE_AUTH_TOKEN", ""),
		WalletAddress:   getEnv("WALLET_ADDRESS", ""),
		OfflineMode:     strings.EqualFold(getEnv("OFFLINE_MODE", "false"), "true"),
		LLMProvider:     getEnv("LLM_PROVIDER", "venice"),
		LLMAPIKey:       getEnv("LLM_API_KEY", ""),
		ModelName:       getEnv("MODEL_NAME", "llama-3.3-70b"),
		RedisURL:        getEnv("REDIS_URL", "localhost:6379"),
		DungeonID:       0,
		TurnInterval:    parseDuration(getEnv("TURN_INTERVAL", "10s")),
		MaxTurns:        parseInt(getEnv("MAX_TURNS", "0")),
	}

	if !cfg.OfflineMode {
		if cfg.GigaverseToken == "" {
			return nil, fmt.Errorf("GIGAVERSE_AUTH_TOKEN is required unless OFFLINE_MODE=true")
		}
		if cfg.WalletAddress == "" {
			return nil, fmt.Errorf("WALLET_ADDRESS is required unless OFFLINE_MODE=true")
		}
	}

	return cfg, nil
}

// SessionOptions builds the per-session options passed into the game
// client and action handlers.
func (c *Config) SessionOptions() gigaverse.SessionOptions {
	return gigaverse.SessionOptions{
		BaseURL:       c.GigaverseAPIURL,
		AuthToken:     c.GigaverseToken,
		WalletAddress: c.WalletAddress,
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

func parseInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
