package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/gigaverse-tools/dungeon-agent/internal/agent"
	"github.com/gigaverse-tools/dungeon-agent/internal/config"
	"github.com/gigaverse-tools/dungeon-agent/internal/services"
	"github.com/gigaverse-tools/dungeon-agent/internal/storage"
	"github.com/gigaverse-tools/dungeon-agent/pkg/gigaverse"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\nFor local play without credentials, set OFFLINE_MODE=true\n", err)
		os.Exit(1)
	}

	// The TUI owns the terminal; route logs away from it.
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	if logPath := os.Getenv("CONSOLE_LOG_FILE"); logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			log = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: cfg.LogLevel}))
		}
	}

	var llmService services.LLMService
	if cfg.LLMProvider == "venice" && cfg.LLMAPIKey != "" {
		llmService = services.NewVeniceService(cfg.LLMAPIKey, cfg.ModelName)
	} else {
		llmService = services.NewMockLLMAPI()
	}

	var client gigaverse.GameClient
	if cfg.OfflineMode {
		sim, err := gigaverse.NewSimClient(time.Now().UnixNano())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create simulated dungeon: %v\n", err)
			os.Exit(1)
		}
		client = sim
	} else {
		client = gigaverse.NewHTTPClient(cfg.SessionOptions())
	}

	var store storage.Storage
	if cfg.OfflineMode {
		store = storage.NewMockStorage()
	} else {
		store = storage.NewRedisStorage(cfg.RedisURL, log)
	}
	defer func() {
		_ = store.Close() // Ignore error in defer
	}()

	actions := agent.NewActions(client, log)
	loader := agent.NewLoader(client, cfg.WalletAddress, log)
	runner := agent.NewRunner(store, llmService, actions, loader, log)

	backend := NewBackend(runner, actions, loader, store, uuid.New())

	p := tea.NewProgram(NewConsoleUI(backend, cfg.OfflineMode),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
