package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/gigaverse-tools/dungeon-agent/internal/agent"
	"github.com/gigaverse-tools/dungeon-agent/internal/config"
	"github.com/gigaverse-tools/dungeon-agent/internal/logger"
	"github.com/gigaverse-tools/dungeon-agent/internal/services"
	"github.com/gigaverse-tools/dungeon-agent/internal/storage"
	"github.com/gigaverse-tools/dungeon-agent/pkg/chat"
	"github.com/gigaverse-tools/dungeon-agent/pkg/gigaverse"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Dungeon Agent",
		"environment", cfg.Environment,
		"offline_mode", cfg.OfflineMode,
		"llm_provider", cfg.LLMProvider,
		"model_name", cfg.ModelName,
		"turn_interval", cfg.TurnInterval)

	var llmService services.LLMService
	switch strings.ToLower(cfg.LLMProvider) {
	case "venice":
		if cfg.LLMAPIKey == "" {
			log.Error("LLM API key is required when using venice provider")
			os.Exit(1)
		}
		llmService = services.NewVeniceService(cfg.LLMAPIKey, cfg.ModelName)
		log.Info("Using Venice LLM provider")
	case "mock":
		llmService = services.NewMockLLMAPI()
		log.Warn("Using mock LLM provider; decisions are canned")
	default:
		log.Error("Invalid LLM provider specified", "provider", cfg.LLMProvider, "supported", []string{"venice", "mock"})
		os.Exit(1)
	}

	var client gigaverse.GameClient
	if cfg.OfflineMode {
		sim, err := gigaverse.NewSimClient(time.Now().UnixNano())
		if err != nil {
			log.Error("Failed to create simulated game client", "error", err)
			os.Exit(1)
		}
		client = sim
		log.Info("Offline mode: using simulated dungeon")
	} else {
		client = gigaverse.NewHTTPClient(cfg.SessionOptions())
	}

	var store storage.Storage
	if cfg.OfflineMode {
		store = storage.NewMockStorage()
	} else {
		store = storage.NewRedisStorage(cfg.RedisURL, log)
		storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer storageCancel()
		if err := store.Ping(storageCtx); err != nil {
			log.Error("Failed to connect to storage", "error", err)
			os.Exit(1)
		}
		log.Info("Storage connection established successfully")
	}

	sessionID := uuid.New()
	if raw := os.Getenv("SESSION_ID"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			log.Error("Invalid SESSION_ID", "value", raw, "error", err)
			os.Exit(1)
		}
		sessionID = parsed
	}
	log.Info("Session ready", "session_id", sessionID.String())

	actions := agent.NewActions(client, log)
	loader := agent.NewLoader(client, cfg.WalletAddress, log)
	runner := agent.NewRunner(store, llmService, actions, loader, log)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.TurnInterval)
	defer ticker.Stop()

	turns := 0
loop:
	for {
		turnCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		resp, err := runner.ProcessTurn(turnCtx, chat.ChatRequest{SessionID: sessionID})
		cancel()
		if err != nil {
			log.Error("Turn failed", "session_id", sessionID.String(), "error", err)
		} else {
			log.Info("Turn complete", "session_id", sessionID.String(), "summary", resp.Message)
		}

		turns++
		if cfg.MaxTurns > 0 && turns >= cfg.MaxTurns {
			log.Info("Reached turn limit", "turns", turns)
			break loop
		}

		select {
		case <-quit:
			log.Info("Agent is shutting down...")
			break loop
		case <-ticker.C:
		}
	}

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}
	log.Info("Agent exited")
}
