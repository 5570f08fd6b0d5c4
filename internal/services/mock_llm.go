package services

import (
	"context"
	"sync"

	"github.com/gigaverse-tools/dungeon-agent/pkg/chat"
)

// MockLLMAPI is a mock implementation of LLMService for testing
type MockLLMAPI struct {
	ChatFunc   func(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error)
	DecideFunc func(ctx context.Context, messages []chat.ChatMessage) (string, error)

	// Track calls for testing
	ChatCalls   [][]chat.ChatMessage
	DecideCalls [][]chat.ChatMessage

	mu sync.Mutex // protects all fields above
}

// Ensure MockLLMAPI implements LLMService interface
var _ LLMService = (*MockLLMAPI)(nil)

// NewMockLLMAPI creates a new mock LLM service
func NewMockLLMAPI() *MockLLMAPI {
	return &MockLLMAPI{
		ChatCalls:   make([][]chat.ChatMessage, 0),
		DecideCalls: make([][]chat.ChatMessage, 0),
	}
}

func (m *MockLLMAPI) Chat(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChatCalls = append(m.ChatCalls, messages)

	if m.ChatFunc != nil {
		return m.ChatFunc(ctx, messages)
	}
	return &chat.ChatResponse{Message: "mock response"}, nil
}

func (m *MockLLMAPI) Decide(ctx context.Context, messages []chat.ChatMessage) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DecideCalls = append(m.DecideCalls, messages)

	if m.DecideFunc != nil {
		return m.DecideFunc(ctx, messages)
	}
	return `{"action":"attack","move":"rock","reason":"mock decision"}`, nil
}
