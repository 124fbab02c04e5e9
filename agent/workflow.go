package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/cineanalyst/cineanalyst/graph"
	"github.com/cineanalyst/cineanalyst/rag"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
)

// Node names of the analysis workflow.
const (
	nodePlanner      = "planner"
	nodeVectorSearch = "vector_retrieve"
	nodeGraphSearch  = "graph_retrieve"
	nodeAnalyst      = "analyst"
)

const defaultSearchLimit = 3

// WorkflowOptions wires the workflow's collaborators.
type WorkflowOptions struct {
	// Vector is the semantic retrieval strategy.
	Vector rag.Searcher

	// Graph is the relational retrieval strategy.
	Graph rag.Searcher

	// Analyst generates the final answer.
	Analyst *Analyst

	// SearchLimit bounds retrieval result counts. Default 3.
	SearchLimit int
}

// Workflow is the compiled analysis pipeline:
//
//	planner → (vector_retrieve | graph_retrieve) → analyst → END
//
// One user turn is exactly one pass through this DAG; there are no cycles,
// no retries and no parallel branches.
type Workflow struct {
	vector   rag.Searcher
	graph    rag.Searcher
	analyst  *Analyst
	limit    int
	runnable *graph.Runnable[State, Update]
}

// NewWorkflow builds and compiles the analysis workflow.
func NewWorkflow(opts WorkflowOptions) (*Workflow, error) {
	if opts.Vector == nil {
		return nil, errors.New("vector searcher is required")
	}
	if opts.Graph == nil {
		return nil, errors.New("graph searcher is required")
	}
	if opts.Analyst == nil {
		return nil, errors.New("analyst is required")
	}
	if opts.SearchLimit == 0 {
		opts.SearchLimit = defaultSearchLimit
	}

	w := &Workflow{
		vector:  opts.Vector,
		graph:   opts.Graph,
		analyst: opts.Analyst,
		limit:   opts.SearchLimit,
	}

	g := graph.NewStateGraph[State, Update](Schema{})
	g.AddNode(nodePlanner, "classify the user's intent and choose a retrieval strategy", w.planNode)
	g.AddNode(nodeVectorSearch, "semantic similarity search over movie overviews", w.vectorRetrieveNode)
	g.AddNode(nodeGraphSearch, "relational search over the movie graph", w.graphRetrieveNode)
	g.AddNode(nodeAnalyst, "generate the final answer from context and history", w.analyzeNode)

	g.SetEntryPoint(nodePlanner)
	g.AddConditionalEdge(nodePlanner, func(ctx context.Context, state State) string {
		return routeTarget(state.NextStep)
	})
	g.AddEdge(nodeVectorSearch, nodeAnalyst)
	g.AddEdge(nodeGraphSearch, nodeAnalyst)
	g.AddEdge(nodeAnalyst, graph.END)

	runnable, err := g.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile workflow: %w", err)
	}
	w.runnable = runnable

	return w, nil
}

// routeTarget maps the routing decision onto a workflow node. Anything
// outside the two known variants yields no target, which the engine turns
// into a fail-fast configuration error rather than a silent default branch.
func routeTarget(route Route) string {
	switch route {
	case RouteVector:
		return nodeVectorSearch
	case RouteGraph:
		return nodeGraphSearch
	default:
		return ""
	}
}

// Run executes one pass over the workflow and returns the terminal state.
func (w *Workflow) Run(ctx context.Context, initial State) (State, error) {
	return w.runnable.Invoke(ctx, initial)
}

func (w *Workflow) planNode(ctx context.Context, state State) (Update, error) {
	route, err := DecideRoute(state)
	if err != nil {
		return Update{}, err
	}
	return Update{NextStep: &route}, nil
}

func (w *Workflow) vectorRetrieveNode(ctx context.Context, state State) (Update, error) {
	return w.retrieve(ctx, state, w.vector, "semantic retrieval")
}

func (w *Workflow) graphRetrieveNode(ctx context.Context, state State) (Update, error) {
	return w.retrieve(ctx, state, w.graph, "relational retrieval")
}

func (w *Workflow) retrieve(ctx context.Context, state State, searcher rag.Searcher, kind string) (Update, error) {
	query, err := latestUserQuery(state)
	if err != nil {
		return Update{}, err
	}

	results, err := searcher.Search(ctx, query, w.limit)
	if err != nil {
		return Update{}, fmt.Errorf("%s: %w", kind, err)
	}

	return Update{RetrievedContext: rag.Snippets(results)}, nil
}

func (w *Workflow) analyzeNode(ctx context.Context, state State) (Update, error) {
	if len(state.Messages) == 0 {
		return Update{}, ErrEmptyConversation
	}

	answer := w.analyst.Generate(ctx, state.Messages, rag.Merge(state.RetrievedContext))

	confidence := confidenceAnswered
	if answer.Degraded {
		confidence = confidenceDegraded
	}

	return Update{
		Messages:        []llms.MessageContent{llms.TextParts(schema.ChatMessageTypeAI, answer.Text)},
		ConfidenceScore: &confidence,
		Degraded:        &answer.Degraded,
	}, nil
}
