package services

import (
	"context"

	"github.com/gigaverse-tools/dungeon-agent/pkg/chat"
)

// LLMService defines the interface for interacting with the LLM API
type LLMService interface {
	// Chat generates a free-form chat response.
	Chat(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error)

	// Decide generates a structured action decision for the agent turn.
	// The returned string is the raw JSON content.
	Decide(ctx context.Context, messages []chat.ChatMessage) (string, error)
}
