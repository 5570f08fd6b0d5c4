package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gigaverse-tools/dungeon-agent/pkg/chat"
)

const (
	veniceBaseURL = "https://api.venice.ai/api/v1"
	msgNoResponse = "(no response)"

	DefaultVeniceTemperature = 0.7
	DefaultVeniceMaxTokens   = 512
)

// VeniceService implements LLMService for Venice AI
type VeniceService struct {
	apiKey     string
	modelName  string
	baseURL    string
	httpClient *http.Client
}

// Ensure VeniceService implements LLMService interface
var _ LLMService = (*VeniceService)(nil)

type VeniceResponseFormat struct {
	Type       string           `json:"type"`
	JSONSchema VeniceJSONSchema `json:"json_schema"`
}

type VeniceJSONSchema struct {
	Name   string                 `json:"name"`
	Strict bool                   `json:"strict"`
	Schema map[string]interface{} `json:"schema"`
}

type VeniceParameters struct {
	IncludeVeniceSystemPrompt bool   `json:"include_venice_system_prompt"`
	EnableWebSearch           string `json:"enable_web_search"`
}

// VeniceChatRequest represents the request structure for Venice AI chat completions
type VeniceChatRequest struct {
	Model            string                `json:"model"`
	Messages         []chat.ChatMessage    `json:"messages"`
	Temperature      float64               `json:"temperature,omitempty"`
	MaxTokens        int                   `json:"max_tokens,omitempty"`
	Stream           bool                  `json:"stream"`
	ResponseFormat   *VeniceResponseFormat `json:"response_format,omitempty"`
	VeniceParameters VeniceParameters      `json:"venice_parameters"`
}

// VeniceChatChoice represents a single choice in the Venice AI response
type VeniceChatChoice struct {
	Index   int `json:"index"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

// VeniceChatResponse represents the response structure for Venice AI chat completions
type VeniceChatResponse struct {
	ID      string             `json:"id"`
	Object  string             `json:"object"`
	Created int64              `json:"created"`
	Model   string             `json:"model"`
	Choices []VeniceChatChoice `json:"choices"`
	Error   *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// NewVeniceService creates a new Venice AI service
func NewVeniceService(apiKey string, modelName string) *VeniceService {
	return &VeniceService{
		apiKey:    apiKey,
		modelName: modelName,
		baseURL:   veniceBaseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// chatCompletion makes a chat completion request to Venice AI
func (v *VeniceService) chatCompletion(ctx context.Context, messages []chat.ChatMessage, temperature float64, responseFormat *VeniceResponseFormat) (string, error) {
	veniceReq := VeniceChatRequest{
		Model:       v.modelName,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   DefaultVeniceMaxTokens,
		Stream:      false,
		VeniceParameters: VeniceParameters{
			IncludeVeniceSystemPrompt: false,
			EnableWebSearch:           "off",
		},
	}

	if responseFormat != nil {
		veniceReq.ResponseFormat = responseFormat
	}

	reqBody, err := json.Marshal(veniceReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", v.baseURL+"/chat/completions", bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+v.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var veniceResp VeniceChatResponse
	if err := json.Unmarshal(body, &veniceResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if veniceResp.Error != nil {
		return "", fmt.Errorf("API error: %s", veniceResp.Error.Message)
	}

	if len(veniceResp.Choices) == 0 {
		return msgNoResponse, nil
	}

	return veniceResp.Choices[0].Message.Content, nil
}

// getDecisionResponseFormat returns the structured response format for
// agent action decisions.
func (v *VeniceService) getDecisionResponseFormat() *VeniceResponseFormat {
	return &VeniceResponseFormat{
		Type: "json_schema",
		JSONSchema: VeniceJSONSchema{
			Name:   "choose_action",
			Strict: true,
			Schema: map[string]interface{}{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]interface{}{
					"action": map[string]interface{}{
						"type": "string",
						"enum": []string{"attack", "start_run"},
					},
					"move": map[string]interface{}{
						"type": []string{"string", "null"},
						"enum": []interface{}{"rock", "paper", "scissor", "loot_one", "loot_two", "loot_three", nil},
					},
					"dungeonId": map[string]interface{}{
						"type": []string{"integer", "null"},
					},
					"reason": map[string]interface{}{
						"type": "string",
					},
				},
				"required": []string{"action", "reason"},
			},
		},
	}
}

// Chat generates a free-form chat response using Venice AI
func (v *VeniceService) Chat(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
	content, err := v.chatCompletion(ctx, messages, DefaultVeniceTemperature, nil)
	if err != nil {
		return nil, err
	}

	return &chat.ChatResponse{
		Message: content,
	}, nil
}

// Decide generates a structured action decision with temperature 0 for
// deterministic output.
func (v *VeniceService) Decide(ctx context.Context, messages []chat.ChatMessage) (string, error) {
	return v.chatCompletion(ctx, messages, 0.0, v.getDecisionResponseFormat())
}
