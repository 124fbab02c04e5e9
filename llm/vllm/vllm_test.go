package vllm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cineanalyst/cineanalyst/llm/vllm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
)

type capturedRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

func newFakeServer(t *testing.T, status int, body string, captured *capturedRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		if captured != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestGenerateContent(t *testing.T) {
	var captured capturedRequest
	server := newFakeServer(t, http.StatusOK, `{
		"id": "cmpl-1",
		"object": "chat.completion",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": "분석 완료되었습니다."}, "finish_reason": "stop"}]
	}`, &captured)
	defer server.Close()

	model, err := vllm.New(
		vllm.WithBaseURL(server.URL+"/v1"),
		vllm.WithModel("tuned_adapter"),
	)
	require.NoError(t, err)

	resp, err := model.GenerateContent(context.Background(),
		[]llms.MessageContent{
			llms.TextParts(schema.ChatMessageTypeSystem, "당신은 영화 전문가입니다."),
			llms.TextParts(schema.ChatMessageTypeHuman, "기생충 분석해줘"),
		},
		llms.WithTemperature(0.2),
		llms.WithMaxTokens(512),
	)
	require.NoError(t, err)

	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "분석 완료되었습니다.", resp.Choices[0].Content)
	assert.Equal(t, "stop", resp.Choices[0].StopReason)

	assert.Equal(t, "tuned_adapter", captured.Model)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.Equal(t, "기생충 분석해줘", captured.Messages[1].Content)
	assert.InDelta(t, 0.2, captured.Temperature, 1e-6)
	assert.Equal(t, 512, captured.MaxTokens)
}

func TestGenerateContentServerError(t *testing.T) {
	server := newFakeServer(t, http.StatusInternalServerError, `{"error": {"message": "boom"}}`, nil)
	defer server.Close()

	model, err := vllm.New(vllm.WithBaseURL(server.URL + "/v1"))
	require.NoError(t, err)

	_, err = model.GenerateContent(context.Background(),
		[]llms.MessageContent{llms.TextParts(schema.ChatMessageTypeHuman, "질문")})
	assert.Error(t, err)
}

func TestGenerateContentEmptyChoices(t *testing.T) {
	server := newFakeServer(t, http.StatusOK, `{"id": "cmpl-2", "object": "chat.completion", "choices": []}`, nil)
	defer server.Close()

	model, err := vllm.New(vllm.WithBaseURL(server.URL + "/v1"))
	require.NoError(t, err)

	_, err = model.GenerateContent(context.Background(),
		[]llms.MessageContent{llms.TextParts(schema.ChatMessageTypeHuman, "질문")})
	assert.ErrorIs(t, err, vllm.ErrEmptyResponse)
}

func TestGenerateContentUnreachableServer(t *testing.T) {
	model, err := vllm.New(vllm.WithBaseURL("http://127.0.0.1:1/v1"))
	require.NoError(t, err)

	_, err = model.GenerateContent(context.Background(),
		[]llms.MessageContent{llms.TextParts(schema.ChatMessageTypeHuman, "질문")})
	assert.Error(t, err)
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := vllm.New(vllm.WithBaseURL(""))
	assert.Error(t, err)
}
