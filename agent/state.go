package agent

import (
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
)

var (
	// ErrEmptyConversation is returned when a workflow is invoked without a
	// single user turn in the conversation history.
	ErrEmptyConversation = errors.New("conversation has no user turn")

	// ErrEmptyQuery is returned when an inbound request carries a blank query.
	ErrEmptyQuery = errors.New("query is empty")
)

// Route is the retrieval strategy chosen by the planner. It is a closed
// enumeration: the zero value is invalid and the dispatch step fails fast on
// anything outside the two known variants.
type Route int

const (
	routeInvalid Route = iota

	// RouteVector dispatches to the semantic similarity search.
	RouteVector

	// RouteGraph dispatches to the relational movie-graph search.
	RouteGraph
)

// String returns the route's wire label.
func (r Route) String() string {
	switch r {
	case RouteVector:
		return "vector"
	case RouteGraph:
		return "graph"
	default:
		return fmt.Sprintf("invalid(%d)", int(r))
	}
}

// State is the conversation state threaded through one workflow pass. A State
// value is constructed per request, never shared across requests, and never
// mutated in place: nodes emit Update records and the Schema computes each
// successor state.
type State struct {
	// Messages is the role-tagged conversation history, append-only.
	Messages []llms.MessageContent

	// RetrievedContext holds the snippets collected by whichever retrieval
	// strategy ran this turn. It is replaced, not appended, each turn.
	RetrievedContext []string

	// ConfidenceScore is a quality-of-service score in [0,1] attached to the
	// latest answer.
	ConfidenceScore float64

	// Degraded reports whether the latest answer is the degraded fallback
	// produced while the model was unreachable.
	Degraded bool

	// NextStep is the transient routing decision written by the planner and
	// consumed exactly once by the dispatch step. It carries no meaning
	// across turns.
	NextStep Route
}

// Update is the partial state written by a single node. Unset fields leave
// the corresponding state field untouched.
type Update struct {
	// Messages are appended to the conversation history.
	Messages []llms.MessageContent

	// RetrievedContext replaces this turn's context when non-nil.
	RetrievedContext []string

	ConfidenceScore *float64
	Degraded        *bool
	NextStep        *Route
}

// Schema merges node updates into the running state: history fields append,
// per-turn fields replace.
type Schema struct{}

// Apply implements graph.Schema.
func (Schema) Apply(current State, update Update) (State, error) {
	next := current

	if len(update.Messages) > 0 {
		merged := make([]llms.MessageContent, 0, len(current.Messages)+len(update.Messages))
		merged = append(merged, current.Messages...)
		merged = append(merged, update.Messages...)
		next.Messages = merged
	}
	if update.RetrievedContext != nil {
		next.RetrievedContext = update.RetrievedContext
	}
	if update.ConfidenceScore != nil {
		next.ConfidenceScore = *update.ConfidenceScore
	}
	if update.Degraded != nil {
		next.Degraded = *update.Degraded
	}
	if update.NextStep != nil {
		next.NextStep = *update.NextStep
	}

	return next, nil
}

// latestUserQuery returns the text of the most recent user turn.
func latestUserQuery(state State) (string, error) {
	for i := len(state.Messages) - 1; i >= 0; i-- {
		if state.Messages[i].Role != schema.ChatMessageTypeHuman {
			continue
		}
		if text := flattenMessage(state.Messages[i]); text != "" {
			return text, nil
		}
	}
	return "", ErrEmptyConversation
}

func flattenMessage(message llms.MessageContent) string {
	text := ""
	for _, part := range message.Parts {
		if content, ok := part.(llms.TextContent); ok {
			text += content.Text
		}
	}
	return text
}
