package prompts

import (
	"fmt"

	"github.com/gigaverse-tools/dungeon-agent/pkg/chat"
	"github.com/gigaverse-tools/dungeon-agent/pkg/snapshot"
)

// Builder constructs the chat messages for one agent turn using a
// fluent interface. It keeps prompt assembly apart from snapshot
// bookkeeping.
type Builder struct {
	snap         *snapshot.GameSnapshot
	transcript   []chat.ChatMessage
	userMessage  string
	historyLimit int
	messages     []chat.ChatMessage
}

// New creates a prompt builder with default settings.
func New() *Builder {
	return &Builder{
		historyLimit: 10, // default history window
		messages:     make([]chat.ChatMessage, 0),
	}
}

// WithSnapshot sets the session snapshot the prompt describes.
func (b *Builder) WithSnapshot(snap *snapshot.GameSnapshot) *Builder {
	b.snap = snap
	return b
}

// WithTranscript sets the session transcript to window into the prompt.
func (b *Builder) WithTranscript(transcript []chat.ChatMessage) *Builder {
	b.transcript = transcript
	return b
}

// WithUserMessage sets an optional operator instruction for this turn.
func (b *Builder) WithUserMessage(message string) *Builder {
	b.userMessage = message
	return b
}

// WithHistoryLimit sets the transcript window size.
func (b *Builder) WithHistoryLimit(limit int) *Builder {
	b.historyLimit = limit
	return b
}

// Build constructs the final message array for LLM consumption.
func (b *Builder) Build() ([]chat.ChatMessage, error) {
	if b.snap == nil {
		return nil, fmt.Errorf("snapshot is required")
	}

	// Reset messages
	b.messages = make([]chat.ChatMessage, 0)

	vars := b.snap.TemplateVars()
	b.messages = append(b.messages, chat.ChatMessage{
		Role:    chat.ChatRoleSystem,
		Content: Interpolate(SystemPrompt, vars),
	})

	b.addHistory()

	if b.userMessage != "" {
		b.messages = append(b.messages, chat.ChatMessage{
			Role:    chat.ChatRoleUser,
			Content: b.userMessage,
		})
	}

	b.messages = append(b.messages, chat.ChatMessage{
		Role:    chat.ChatRoleSystem,
		Content: Interpolate(b.instruction(), vars),
	})

	return b.messages, nil
}

// instruction picks the per-phase directive for this turn.
func (b *Builder) instruction() string {
	switch {
	case b.snap.LootPhase:
		return LootInstruction
	case b.snap.IsDead():
		return DeadInstruction
	case b.snap.Room == 0:
		return NoRunInstruction
	default:
		return CombatInstruction
	}
}

// addHistory appends the windowed transcript.
func (b *Builder) addHistory() {
	if len(b.transcript) == 0 {
		return
	}
	start := 0
	if b.historyLimit > 0 && len(b.transcript) > b.historyLimit {
		start = len(b.transcript) - b.historyLimit
	}
	b.messages = append(b.messages, b.transcript[start:]...)
}
