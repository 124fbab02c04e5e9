package agent

import (
	"context"
	"strings"

	"github.com/cineanalyst/cineanalyst/rag"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
)

// Analysis is the caller-facing result of one workflow pass.
type Analysis struct {
	// Answer is the assistant's final answer text.
	Answer string `json:"answer"`

	// Context is the retrieved context block that backed the answer.
	Context string `json:"context,omitempty"`

	// Recommendations is reserved for graph-based recommendation lists;
	// it is always present and currently always empty.
	Recommendations []string `json:"recommendations"`

	// ConfidenceScore is the quality-of-service score of the answer.
	ConfidenceScore float64 `json:"confidence_score"`

	// Degraded reports that the model was unreachable and Answer is the
	// availability fallback.
	Degraded bool `json:"degraded"`

	// History is the full conversation including the new answer, for callers
	// that maintain multi-turn sessions by resubmitting it.
	History []llms.MessageContent `json:"-"`
}

// Assistant is the request-level facade over the workflow: it seeds the
// per-request state from the query and prior history, runs one pass, and
// extracts the answer.
type Assistant struct {
	workflow *Workflow
}

// NewAssistant creates an Assistant over a compiled workflow.
func NewAssistant(workflow *Workflow) *Assistant {
	return &Assistant{workflow: workflow}
}

// Analyze runs one analysis turn. History may be nil for a fresh
// conversation; state is never kept between calls.
func (a *Assistant) Analyze(ctx context.Context, query string, history []llms.MessageContent) (*Analysis, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	initial := State{
		Messages: append(append([]llms.MessageContent{}, history...),
			llms.TextParts(schema.ChatMessageTypeHuman, query)),
		RetrievedContext: []string{},
	}

	final, err := a.workflow.Run(ctx, initial)
	if err != nil {
		return nil, err
	}

	answer := ""
	for i := len(final.Messages) - 1; i >= 0; i-- {
		if final.Messages[i].Role == schema.ChatMessageTypeAI {
			answer = flattenMessage(final.Messages[i])
			break
		}
	}

	return &Analysis{
		Answer:          answer,
		Context:         rag.Merge(final.RetrievedContext),
		Recommendations: []string{},
		ConfidenceScore: final.ConfidenceScore,
		Degraded:        final.Degraded,
		History:         final.Messages,
	}, nil
}
