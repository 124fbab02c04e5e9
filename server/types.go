package server

import (
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"

	"github.com/cineanalyst/cineanalyst/agent"
)

// AnalyzeRequest is the body of POST /api/v1/analyze. History is optional;
// clients maintaining a multi-turn session resubmit the history echoed by the
// previous response.
type AnalyzeRequest struct {
	Query   string        `json:"query" binding:"required"`
	UserID  string        `json:"user_id,omitempty"`
	History []ChatMessage `json:"history,omitempty"`
}

// ChatMessage is one prior conversation turn on the wire.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AnalyzeResponse mirrors agent.Analysis plus the updated history for the
// next turn.
type AnalyzeResponse struct {
	Answer          string        `json:"answer"`
	Context         string        `json:"context"`
	Recommendations []string      `json:"recommendations"`
	ConfidenceScore float64       `json:"confidence_score"`
	Degraded        bool          `json:"degraded"`
	History         []ChatMessage `json:"history"`
}

func (r AnalyzeRequest) history() ([]llms.MessageContent, error) {
	if len(r.History) == 0 {
		return nil, nil
	}

	history := make([]llms.MessageContent, 0, len(r.History))
	for _, m := range r.History {
		role, err := parseRole(m.Role)
		if err != nil {
			return nil, err
		}
		history = append(history, llms.TextParts(role, m.Content))
	}
	return history, nil
}

func parseRole(role string) (schema.ChatMessageType, error) {
	switch role {
	case "user", "human":
		return schema.ChatMessageTypeHuman, nil
	case "assistant", "ai":
		return schema.ChatMessageTypeAI, nil
	case "system":
		return schema.ChatMessageTypeSystem, nil
	default:
		return "", fmt.Errorf("unknown message role %q", role)
	}
}

func wireRole(role schema.ChatMessageType) string {
	switch role {
	case schema.ChatMessageTypeHuman:
		return "user"
	case schema.ChatMessageTypeAI:
		return "assistant"
	default:
		return string(role)
	}
}

func newAnalyzeResponse(analysis *agent.Analysis) AnalyzeResponse {
	history := make([]ChatMessage, 0, len(analysis.History))
	for _, m := range analysis.History {
		text := ""
		for _, part := range m.Parts {
			if content, ok := part.(llms.TextContent); ok {
				text += content.Text
			}
		}
		history = append(history, ChatMessage{Role: wireRole(m.Role), Content: text})
	}

	return AnalyzeResponse{
		Answer:          analysis.Answer,
		Context:         analysis.Context,
		Recommendations: analysis.Recommendations,
		ConfidenceScore: analysis.ConfidenceScore,
		Degraded:        analysis.Degraded,
		History:         history,
	}
}
