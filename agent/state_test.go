package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
)

func human(text string) llms.MessageContent {
	return llms.TextParts(schema.ChatMessageTypeHuman, text)
}

func ai(text string) llms.MessageContent {
	return llms.TextParts(schema.ChatMessageTypeAI, text)
}

func TestSchemaAppendsMessages(t *testing.T) {
	t.Parallel()

	current := State{Messages: []llms.MessageContent{human("first")}}
	next, err := Schema{}.Apply(current, Update{Messages: []llms.MessageContent{ai("second")}})
	require.NoError(t, err)

	require.Len(t, next.Messages, 2)
	assert.Equal(t, schema.ChatMessageTypeHuman, next.Messages[0].Role)
	assert.Equal(t, schema.ChatMessageTypeAI, next.Messages[1].Role)

	// The prior state keeps its own history.
	assert.Len(t, current.Messages, 1)
}

func TestSchemaDoesNotAliasMessageSlices(t *testing.T) {
	t.Parallel()

	current := State{Messages: make([]llms.MessageContent, 1, 8)}
	current.Messages[0] = human("first")

	next, err := Schema{}.Apply(current, Update{Messages: []llms.MessageContent{ai("a")}})
	require.NoError(t, err)
	_, err = Schema{}.Apply(current, Update{Messages: []llms.MessageContent{ai("b")}})
	require.NoError(t, err)

	// A second merge from the same base must not overwrite the first
	// successor's tail through shared backing storage.
	assert.Equal(t, "a", flattenMessage(next.Messages[1]))
}

func TestSchemaReplacesRetrievedContext(t *testing.T) {
	t.Parallel()

	current := State{RetrievedContext: []string{"old one", "old two"}}
	next, err := Schema{}.Apply(current, Update{RetrievedContext: []string{"fresh"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"fresh"}, next.RetrievedContext)
}

func TestSchemaLeavesUnsetFieldsUntouched(t *testing.T) {
	t.Parallel()

	current := State{
		Messages:         []llms.MessageContent{human("q")},
		RetrievedContext: []string{"ctx"},
		ConfidenceScore:  0.9,
		Degraded:         true,
		NextStep:         RouteGraph,
	}

	next, err := Schema{}.Apply(current, Update{})
	require.NoError(t, err)
	assert.Equal(t, current, next)
}

func TestSchemaSetsScalarFields(t *testing.T) {
	t.Parallel()

	score := 0.2
	degraded := true
	route := RouteVector

	next, err := Schema{}.Apply(State{}, Update{
		ConfidenceScore: &score,
		Degraded:        &degraded,
		NextStep:        &route,
	})
	require.NoError(t, err)

	assert.Equal(t, 0.2, next.ConfidenceScore)
	assert.True(t, next.Degraded)
	assert.Equal(t, RouteVector, next.NextStep)
}

func TestLatestUserQuery(t *testing.T) {
	t.Parallel()

	state := State{Messages: []llms.MessageContent{
		human("old question"),
		ai("old answer"),
		human("new question"),
	}}

	query, err := latestUserQuery(state)
	require.NoError(t, err)
	assert.Equal(t, "new question", query)
}

func TestLatestUserQueryEmptyConversation(t *testing.T) {
	t.Parallel()

	_, err := latestUserQuery(State{})
	assert.ErrorIs(t, err, ErrEmptyConversation)

	// AI-only history has no user turn either.
	_, err = latestUserQuery(State{Messages: []llms.MessageContent{ai("hello")}})
	assert.ErrorIs(t, err, ErrEmptyConversation)
}

func TestRouteString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "vector", RouteVector.String())
	assert.Equal(t, "graph", RouteGraph.String())
	assert.Contains(t, Route(0).String(), "invalid")
}
