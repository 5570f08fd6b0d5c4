package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigaverse-tools/dungeon-agent/pkg/chat"
)

func newVeniceTestServer(t *testing.T, content string, capture *VeniceChatRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		if capture != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(capture))
		}

		resp := VeniceChatResponse{
			ID:     "chatcmpl-test",
			Object: "chat.completion",
			Model:  "llama-3.3-70b",
		}
		choice := VeniceChatChoice{FinishReason: "stop"}
		choice.Message.Role = chat.ChatRoleAgent
		choice.Message.Content = content
		resp.Choices = []VeniceChatChoice{choice}

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestVeniceService_Chat(t *testing.T) {
	var captured VeniceChatRequest
	server := newVeniceTestServer(t, "The enemy looks weak to scissors.", &captured)
	defer server.Close()

	svc := NewVeniceService("test-key", "llama-3.3-70b")
	svc.baseURL = server.URL

	resp, err := svc.Chat(context.Background(), []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: "You are a dungeon crawler."},
		{Role: chat.ChatRoleUser, Content: "What next?"},
	})
	require.NoError(t, err)
	assert.Equal(t, "The enemy looks weak to scissors.", resp.Message)

	assert.Equal(t, "llama-3.3-70b", captured.Model)
	assert.Len(t, captured.Messages, 2)
	assert.InDelta(t, DefaultVeniceTemperature, captured.Temperature, 0.001)
	assert.Nil(t, captured.ResponseFormat, "free-form chat must not force a schema")
	assert.False(t, captured.VeniceParameters.IncludeVeniceSystemPrompt)
}

func TestVeniceService_Decide(t *testing.T) {
	var captured VeniceChatRequest
	server := newVeniceTestServer(t, `{"action":"attack","move":"scissor","reason":"enemy paper is spent"}`, &captured)
	defer server.Close()

	svc := NewVeniceService("test-key", "llama-3.3-70b")
	svc.baseURL = server.URL

	raw, err := svc.Decide(context.Background(), []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: "Choose an action."},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"action":"attack","move":"scissor","reason":"enemy paper is spent"}`, raw)

	assert.Zero(t, captured.Temperature, "decisions are sampled at temperature 0")
	require.NotNil(t, captured.ResponseFormat)
	assert.Equal(t, "json_schema", captured.ResponseFormat.Type)
	assert.Equal(t, "choose_action", captured.ResponseFormat.JSONSchema.Name)
	assert.True(t, captured.ResponseFormat.JSONSchema.Strict)
}

func TestVeniceService_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer server.Close()

	svc := NewVeniceService("test-key", "llama-3.3-70b")
	svc.baseURL = server.URL

	_, err := svc.Decide(context.Background(), []chat.ChatMessage{{Role: chat.ChatRoleUser, Content: "go"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
