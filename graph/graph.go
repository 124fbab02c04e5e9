package graph

import (
	"context"
	"errors"
	"fmt"
)

// END is a special constant used to represent the terminal node in the graph.
const END = "END"

var (
	// ErrEntryPointNotSet is returned when the entry point of the graph is not set.
	ErrEntryPointNotSet = errors.New("entry point not set")

	// ErrNodeNotFound is returned when a node is not found in the graph.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNoOutgoingEdge is returned when no outgoing edge is found for a node.
	ErrNoOutgoingEdge = errors.New("no outgoing edge found for node")

	// ErrNoMatchingBranch is returned when a conditional edge yields a target
	// that is not registered in the graph. This indicates a contract violation
	// between the condition and the graph topology, so execution must not
	// silently fall through to a default branch.
	ErrNoMatchingBranch = errors.New("conditional edge yielded no matching branch")

	// ErrCycleDetected is returned when execution visits more nodes than the
	// graph contains. The engine runs exactly one pass over an acyclic graph.
	ErrCycleDetected = errors.New("cycle detected during graph execution")
)

// NodeFunc is the function executed by a node. It receives the current state
// and returns a partial update, never the full next state. The engine merges
// the update into the running state through the graph's Schema.
type NodeFunc[S, U any] func(ctx context.Context, state S) (U, error)

// Node represents a node in the graph.
type Node[S, U any] struct {
	// Name is the unique identifier for the node.
	Name string

	// Description describes the functionality of the node.
	Description string

	// Function is the function associated with the node.
	Function NodeFunc[S, U]
}

// Edge represents an unconditional edge in the graph.
type Edge struct {
	// From is the name of the node from which the edge originates.
	From string

	// To is the name of the node to which the edge points.
	To string
}

// Condition picks the name of the next node based on the current state.
type Condition[S any] func(ctx context.Context, state S) string

// Schema defines how a node's partial update is merged into the running
// state. Append-only fields (conversation history) and per-turn fields
// (retrieved context) get their merge semantics here, not inside node
// functions.
type Schema[S, U any] interface {
	Apply(current S, update U) (S, error)
}

// StateGraph is a directed graph of nodes threaded by a shared state value.
// It is generic over the state type S and the per-node update type U.
type StateGraph[S, U any] struct {
	nodes            map[string]Node[S, U]
	edges            []Edge
	conditionalEdges map[string]Condition[S]
	entryPoint       string
	schema           Schema[S, U]
}

// NewStateGraph creates a new StateGraph with the given merge schema.
func NewStateGraph[S, U any](schema Schema[S, U]) *StateGraph[S, U] {
	return &StateGraph[S, U]{
		nodes:            make(map[string]Node[S, U]),
		conditionalEdges: make(map[string]Condition[S]),
		schema:           schema,
	}
}

// AddNode adds a new node to the graph with the given name, description and function.
func (g *StateGraph[S, U]) AddNode(name, description string, fn NodeFunc[S, U]) {
	g.nodes[name] = Node[S, U]{
		Name:        name,
		Description: description,
		Function:    fn,
	}
}

// AddEdge adds an unconditional edge between the "from" and "to" nodes.
func (g *StateGraph[S, U]) AddEdge(from, to string) {
	g.edges = append(g.edges, Edge{
		From: from,
		To:   to,
	})
}

// AddConditionalEdge adds an edge whose target node is determined at runtime.
func (g *StateGraph[S, U]) AddConditionalEdge(from string, condition Condition[S]) {
	g.conditionalEdges[from] = condition
}

// SetEntryPoint sets the entry point node name for the graph.
func (g *StateGraph[S, U]) SetEntryPoint(name string) {
	g.entryPoint = name
}

// Compile validates the graph topology and returns a Runnable instance.
func (g *StateGraph[S, U]) Compile() (*Runnable[S, U], error) {
	if g.entryPoint == "" {
		return nil, ErrEntryPointNotSet
	}
	if _, ok := g.nodes[g.entryPoint]; !ok {
		return nil, fmt.Errorf("entry point %q: %w", g.entryPoint, ErrNodeNotFound)
	}

	for _, edge := range g.edges {
		if _, ok := g.nodes[edge.From]; !ok {
			return nil, fmt.Errorf("edge source %q: %w", edge.From, ErrNodeNotFound)
		}
		if edge.To == END {
			continue
		}
		if _, ok := g.nodes[edge.To]; !ok {
			return nil, fmt.Errorf("edge target %q: %w", edge.To, ErrNodeNotFound)
		}
	}

	for from := range g.conditionalEdges {
		if _, ok := g.nodes[from]; !ok {
			return nil, fmt.Errorf("conditional edge source %q: %w", from, ErrNodeNotFound)
		}
	}

	return &Runnable[S, U]{graph: g}, nil
}

// Runnable represents a compiled state graph that can be invoked.
type Runnable[S, U any] struct {
	graph *StateGraph[S, U]
}

// Invoke executes the compiled graph with the given initial state and returns
// the terminal state. Execution is a single linear pass: one node at a time,
// no parallelism, no retries. The initial state is never mutated; each step
// produces the next state by applying the node's update through the schema.
func (r *Runnable[S, U]) Invoke(ctx context.Context, initialState S) (S, error) {
	state := initialState
	current := r.graph.entryPoint

	steps := 0
	for current != END {
		if steps++; steps > len(r.graph.nodes) {
			return state, ErrCycleDetected
		}

		node, ok := r.graph.nodes[current]
		if !ok {
			return state, fmt.Errorf("node %q: %w", current, ErrNodeNotFound)
		}

		update, err := node.Function(ctx, state)
		if err != nil {
			return state, fmt.Errorf("node %q: %w", current, err)
		}

		state, err = r.graph.schema.Apply(state, update)
		if err != nil {
			return state, fmt.Errorf("merge update from node %q: %w", current, err)
		}

		current, err = r.nextNode(ctx, current, state)
		if err != nil {
			return state, err
		}
	}

	return state, nil
}

// nextNode resolves the successor of the given node, consulting a conditional
// edge first and falling back to the static edge list.
func (r *Runnable[S, U]) nextNode(ctx context.Context, current string, state S) (string, error) {
	if condition, ok := r.graph.conditionalEdges[current]; ok {
		target := condition(ctx, state)
		if target == END {
			return END, nil
		}
		if _, ok := r.graph.nodes[target]; !ok {
			return "", fmt.Errorf("node %q chose target %q: %w", current, target, ErrNoMatchingBranch)
		}
		return target, nil
	}

	for _, edge := range r.graph.edges {
		if edge.From == current {
			return edge.To, nil
		}
	}

	return "", fmt.Errorf("node %q: %w", current, ErrNoOutgoingEdge)
}
