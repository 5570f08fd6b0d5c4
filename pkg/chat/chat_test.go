package chat

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestChatRequest_Validate(t *testing.T) {
	sessionID := uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")

	tests := []struct {
		name    string
		req     ChatRequest
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid short message",
			req: ChatRequest{
				SessionID: sessionID,
				Message:   "Open with rock.",
			},
			wantErr: false,
		},
		{
			name: "valid message at max length",
			req: ChatRequest{
				SessionID: sessionID,
				Message:   strings.Repeat("a", MaxMessageLength),
			},
			wantErr: false,
		},
		{
			name: "message too long",
			req: ChatRequest{
				SessionID: sessionID,
				Message:   strings.Repeat("a", MaxMessageLength+1),
			},
			wantErr: true,
			errMsg:  "exceeds maximum length",
		},
		{
			name: "empty message",
			req: ChatRequest{
				SessionID: sessionID,
				Message:   "",
			},
			wantErr: true,
			errMsg:  "cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr && err != nil && tt.errMsg != "" {
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("Validate() error = %v, want error containing %q", err, tt.errMsg)
				}
			}
		})
	}
}
