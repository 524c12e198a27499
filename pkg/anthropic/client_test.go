package anthropic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testModel = "claude-haiku-4-5-20251001"

func newTestClient(baseURL string) Client {
	return NewClient("test-key", option.WithBaseURL(baseURL), option.WithMaxRetries(0))
}

func TestSDKClient_Ask(t *testing.T) {
	var body map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "/messages")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":   "msg_test_001",
			"type": "message",
			"role": "assistant",
			"content": []map[string]any{
				{"type": "text", "text": "Irrigate at dawn."},
				{"type": "text", "text": "Mulch the beds."},
			},
			"model":       testModel,
			"stop_reason": "end_turn",
			"usage": map[string]any{
				"input_tokens":                120,
				"output_tokens":               40,
				"cache_creation_input_tokens": 900,
				"cache_read_input_tokens":     0,
			},
		})
	}))
	defer ts.Close()

	resp, err := newTestClient(ts.URL).Ask(context.Background(), Request{
		Model:     testModel,
		MaxTokens: 256,
		System:    "You are a crop advisor.",
		CacheTTL:  "5m",
		Prompt:    "When should I water?",
	})
	require.NoError(t, err)
	assert.Equal(t, "msg_test_001", resp.ID)
	assert.Equal(t, "Irrigate at dawn.\nMulch the beds.", resp.Text)
	assert.False(t, resp.Truncated())
	assert.Equal(t, int64(120), resp.Usage.InputTokens)
	assert.Equal(t, int64(900), resp.Usage.CacheWriteTokens)

	assert.Equal(t, testModel, body["model"])
	assert.EqualValues(t, 256, body["max_tokens"])

	system, ok := body["system"].([]any)
	require.True(t, ok)
	require.Len(t, system, 1)
	block := system[0].(map[string]any)
	assert.Equal(t, "You are a crop advisor.", block["text"])
	cc := block["cache_control"].(map[string]any)
	assert.Equal(t, "5m", cc["ttl"])

	messages := body["messages"].([]any)
	require.Len(t, messages, 1)
	assert.Equal(t, "user", messages[0].(map[string]any)["role"])
}

func TestSDKClient_Ask_Error(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"bad request"}}`))
	}))
	defer ts.Close()

	_, err := newTestClient(ts.URL).Ask(context.Background(), Request{Model: testModel, MaxTokens: 64, Prompt: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic: ask")
	assert.Equal(t, http.StatusBadRequest, StatusCode(err))
}

func TestStatusCode(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"overloaded_error","message":"busy"}}`))
	}))
	defer ts.Close()

	_, err := newTestClient(ts.URL).Ask(context.Background(), Request{Model: testModel, MaxTokens: 16, Prompt: "hi"})
	require.Error(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, StatusCode(err))

	assert.Equal(t, 0, StatusCode(nil))
	assert.Equal(t, 0, StatusCode(context.Canceled))
}

func TestSystemBlock(t *testing.T) {
	plain := systemBlock("plain", "")
	assert.Equal(t, "plain", plain.Text)
	assert.Empty(t, plain.CacheControl.TTL)

	cached := systemBlock("cached", "1h")
	assert.Equal(t, sdk.CacheControlEphemeralTTL("1h"), cached.CacheControl.TTL)
}

func TestToResponse(t *testing.T) {
	resp := toResponse(&sdk.Message{
		ID:         "msg_1",
		Model:      testModel,
		StopReason: sdk.StopReasonMaxTokens,
		Content: []sdk.ContentBlockUnion{
			{Type: "text", Text: "partial"},
			{Type: "tool_use"},
			{Type: "text", Text: ""},
		},
		Usage: sdk.Usage{InputTokens: 10, OutputTokens: 512, CacheReadInputTokens: 7},
	})
	assert.Equal(t, "msg_1", resp.ID)
	assert.Equal(t, "partial", resp.Text)
	assert.True(t, resp.Truncated())
	assert.Equal(t, int64(7), resp.Usage.CacheReadTokens)
}

func TestUsage_CostUSD(t *testing.T) {
	u := Usage{InputTokens: 1_000_000, OutputTokens: 1_000_000}
	assert.InDelta(t, 4.80, u.CostUSD(testModel), 1e-9)

	cached := Usage{CacheWriteTokens: 1_000_000, CacheReadTokens: 1_000_000}
	assert.InDelta(t, 0.80*1.25+0.80*0.1, cached.CostUSD(testModel), 1e-9)

	assert.Zero(t, u.CostUSD("mystery"))
}

func TestUsage_Log(t *testing.T) {
	assert.NotPanics(t, func() {
		Usage{InputTokens: 1, OutputTokens: 1}.Log(testModel, "FOREST_1")
	})
}
