package chat

import (
	"fmt"

	"github.com/google/uuid"
)

const (
	ChatRoleUser   = "user"      // Operator
	ChatRoleAgent  = "assistant" // LLM agent
	ChatRoleSystem = "system"    // Prompt context and action results
)

// MaxMessageLength is the maximum user message size in characters.
const MaxMessageLength = 1000

// ChatMessage represents a single message in the agent transcript.
// The role/content shape matches what the LLM chat APIs expect.
type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// ChatRequest is a user-originated instruction to the agent for one session.
type ChatRequest struct {
	SessionID uuid.UUID `json:"session_id"`
	Message   string    `json:"message"`
}

// ChatResponse is the agent's reply for one turn, including the
// transcript entries the turn produced.
type ChatResponse struct {
	SessionID  uuid.UUID     `json:"session_id,omitempty"`
	Message    string        `json:"message,omitempty"`
	Transcript []ChatMessage `json:"transcript,omitempty"`
}

func (cr *ChatRequest) Validate() error {
	if cr.Message == "" {
		return fmt.Errorf("message cannot be empty")
	}
	if len(cr.Message) > MaxMessageLength {
		return fmt.Errorf("message exceeds maximum length of %d characters", MaxMessageLength)
	}
	return nil
}
