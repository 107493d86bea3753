package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/marketpulse/internal/resilience"
)

func writeMessage(t *testing.T, w http.ResponseWriter, text string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(map[string]any{
		"id":   "msg_test_001",
		"type": "message",
		"role": "assistant",
		"content": []map[string]any{
			{"type": "text", "text": text},
		},
		"model":       "claude-sonnet-4-5-20250929",
		"stop_reason": "end_turn",
		"usage": map[string]any{
			"input_tokens":                10,
			"output_tokens":               5,
			"cache_creation_input_tokens": 100,
			"cache_read_input_tokens":     0,
		},
	})
	require.NoError(t, err)
}

func TestCreateMessage(t *testing.T) {
	var body map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "/messages")
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeMessage(t, w, "[SUMMARY]Acme[/SUMMARY]")
	}))
	defer ts.Close()

	temp := 0.2
	client := NewClient("test-key", WithBaseURL(ts.URL), WithMaxRetries(0))
	resp, err := client.CreateMessage(context.Background(), MessageRequest{
		MaxTokens:   4096,
		System:      CachedSystem("You are a market analyst."),
		Messages:    []Message{{Role: "user", Content: "Analyze Acme"}},
		Temperature: &temp,
	})

	require.NoError(t, err)
	assert.Equal(t, "msg_test_001", resp.ID)
	assert.Equal(t, "end_turn", resp.StopReason)
	assert.Equal(t, "[SUMMARY]Acme[/SUMMARY]", resp.Text())
	assert.Equal(t, int64(100), resp.Usage.CacheCreationInputTokens)

	assert.Equal(t, DefaultModel, body["model"])
	assert.InDelta(t, 4096, body["max_tokens"], 0.1)
	system, ok := body["system"].([]any)
	require.True(t, ok)
	require.Len(t, system, 1)
	block := system[0].(map[string]any)
	assert.Equal(t, "You are a market analyst.", block["text"])
	assert.Contains(t, block, "cache_control")
}

func TestCreateMessage_StatusErrors(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		errType       string
		wantTransient bool
	}{
		{"unauthorized", http.StatusUnauthorized, "authentication_error", false},
		{"rate_limited", http.StatusTooManyRequests, "rate_limit_error", true},
		{"server_error", http.StatusInternalServerError, "api_error", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				calls.Add(1)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"type":  "error",
					"error": map[string]any{"type": tt.errType, "message": "nope"},
				})
			}))
			defer ts.Close()

			client := NewClient("test-key", WithBaseURL(ts.URL), WithMaxRetries(0))
			_, err := client.CreateMessage(context.Background(), MessageRequest{
				MaxTokens: 16,
				Messages:  []Message{{Role: "user", Content: "hi"}},
			})

			require.Error(t, err)
			assert.Equal(t, tt.status, resilience.HTTPStatus(err))
			assert.Equal(t, tt.wantTransient, resilience.IsTransient(err))
			assert.Equal(t, int32(1), calls.Load())
		})
	}
}

func TestText(t *testing.T) {
	resp := &MessageResponse{Content: []ContentBlock{
		{Type: "text", Text: "[SUMMARY]"},
		{Type: "tool_use"},
		{Type: "text", Text: "Acme[/SUMMARY]"},
	}}
	assert.Equal(t, "[SUMMARY]Acme[/SUMMARY]", resp.Text())

	var nilResp *MessageResponse
	assert.Equal(t, "", nilResp.Text())
}

func TestCachedSystem(t *testing.T) {
	assert.Nil(t, CachedSystem(""))

	blocks := CachedSystem("instructions")
	require.Len(t, blocks, 1)
	assert.Equal(t, "instructions", blocks[0].Text)
	require.NotNil(t, blocks[0].CacheControl)
	assert.Empty(t, blocks[0].CacheControl.TTL)
}

func TestFromSDKMessage(t *testing.T) {
	resp := fromSDKMessage(&sdk.Message{
		ID:         "msg_test_123",
		Model:      "claude-sonnet-4-5-20250929",
		StopReason: "end_turn",
		Content: []sdk.ContentBlockUnion{
			{Type: "text", Text: "Hello world"},
			{Type: "text", Text: "Second block"},
		},
		Usage: sdk.Usage{
			InputTokens:              100,
			OutputTokens:             50,
			CacheCreationInputTokens: 2000,
			CacheReadInputTokens:     3000,
		},
	})

	require.Len(t, resp.Content, 2)
	assert.Equal(t, "Hello worldSecond block", resp.Text())
	assert.Equal(t, TokenUsage{
		InputTokens:              100,
		OutputTokens:             50,
		CacheCreationInputTokens: 2000,
		CacheReadInputTokens:     3000,
	}, resp.Usage)
}

func TestToSDKMessages(t *testing.T) {
	msgs := toSDKMessages([]Message{
		{Role: "user", Content: "q"},
		{Role: "assistant", Content: "a"},
		{Role: "system", Content: "odd"},
	})
	require.Len(t, msgs, 3)
	assert.Equal(t, sdk.MessageParamRoleUser, msgs[0].Role)
	assert.Equal(t, sdk.MessageParamRoleAssistant, msgs[1].Role)
	assert.Equal(t, sdk.MessageParamRoleUser, msgs[2].Role)
}

func TestToSDKSystemBlocks(t *testing.T) {
	blocks := toSDKSystemBlocks([]SystemBlock{
		{Text: "plain"},
		{Text: "cached", CacheControl: &CacheControl{TTL: "1h"}},
	})
	require.Len(t, blocks, 2)
	assert.Equal(t, "plain", blocks[0].Text)
	assert.Equal(t, sdk.CacheControlEphemeralTTL("1h"), blocks[1].CacheControl.TTL)
}
