package graph_test

import (
	"context"
	"errors"
	"testing"

	"github.com/cineanalyst/cineanalyst/graph"
)

// trace is the state used by the engine tests: an ordered list of visited
// node names. Updates carry the single name a node appends.
type trace struct {
	visited []string
}

type traceUpdate struct {
	name string
}

type traceSchema struct{}

func (traceSchema) Apply(current trace, update traceUpdate) (trace, error) {
	next := trace{visited: make([]string, 0, len(current.visited)+1)}
	next.visited = append(next.visited, current.visited...)
	if update.name != "" {
		next.visited = append(next.visited, update.name)
	}
	return next, nil
}

func visit(name string) graph.NodeFunc[trace, traceUpdate] {
	return func(ctx context.Context, state trace) (traceUpdate, error) {
		return traceUpdate{name: name}, nil
	}
}

func TestInvokeLinearPass(t *testing.T) {
	t.Parallel()

	g := graph.NewStateGraph[trace, traceUpdate](traceSchema{})
	g.AddNode("a", "first", visit("a"))
	g.AddNode("b", "second", visit("b"))
	g.AddEdge("a", "b")
	g.AddEdge("b", graph.END)
	g.SetEntryPoint("a")

	runnable, err := g.Compile()
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}

	final, err := runnable.Invoke(context.Background(), trace{})
	if err != nil {
		t.Fatalf("invoke failed: %v", err)
	}

	if len(final.visited) != 2 || final.visited[0] != "a" || final.visited[1] != "b" {
		t.Errorf("unexpected visit order: %v", final.visited)
	}
}

func TestInvokeConditionalBranching(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		target  string
		want    []string
		wantErr error
	}{
		{name: "left branch", target: "left", want: []string{"start", "left"}},
		{name: "right branch", target: "right", want: []string{"start", "right"}},
		{name: "straight to END", target: graph.END, want: []string{"start"}},
		{name: "unknown branch fails fast", target: "nowhere", wantErr: graph.ErrNoMatchingBranch},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			g := graph.NewStateGraph[trace, traceUpdate](traceSchema{})
			g.AddNode("start", "entry", visit("start"))
			g.AddNode("left", "left branch", visit("left"))
			g.AddNode("right", "right branch", visit("right"))
			g.AddConditionalEdge("start", func(ctx context.Context, state trace) string {
				return tt.target
			})
			g.AddEdge("left", graph.END)
			g.AddEdge("right", graph.END)
			g.SetEntryPoint("start")

			runnable, err := g.Compile()
			if err != nil {
				t.Fatalf("compile failed: %v", err)
			}

			final, err := runnable.Invoke(context.Background(), trace{})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("invoke failed: %v", err)
			}

			if len(final.visited) != len(tt.want) {
				t.Fatalf("visited %v, want %v", final.visited, tt.want)
			}
			for i := range tt.want {
				if final.visited[i] != tt.want[i] {
					t.Errorf("visited %v, want %v", final.visited, tt.want)
					break
				}
			}
		})
	}
}

func TestInvokeOnlyChosenBranchRuns(t *testing.T) {
	t.Parallel()

	ran := map[string]int{}
	count := func(name string) graph.NodeFunc[trace, traceUpdate] {
		return func(ctx context.Context, state trace) (traceUpdate, error) {
			ran[name]++
			return traceUpdate{name: name}, nil
		}
	}

	g := graph.NewStateGraph[trace, traceUpdate](traceSchema{})
	g.AddNode("start", "entry", count("start"))
	g.AddNode("left", "left branch", count("left"))
	g.AddNode("right", "right branch", count("right"))
	g.AddConditionalEdge("start", func(ctx context.Context, state trace) string {
		return "left"
	})
	g.AddEdge("left", graph.END)
	g.AddEdge("right", graph.END)
	g.SetEntryPoint("start")

	runnable, err := g.Compile()
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if _, err := runnable.Invoke(context.Background(), trace{}); err != nil {
		t.Fatalf("invoke failed: %v", err)
	}

	if ran["left"] != 1 || ran["right"] != 0 {
		t.Errorf("branches are not mutually exclusive: %v", ran)
	}
}

func TestCompileValidation(t *testing.T) {
	t.Parallel()

	t.Run("missing entry point", func(t *testing.T) {
		g := graph.NewStateGraph[trace, traceUpdate](traceSchema{})
		g.AddNode("a", "only", visit("a"))
		if _, err := g.Compile(); !errors.Is(err, graph.ErrEntryPointNotSet) {
			t.Errorf("expected ErrEntryPointNotSet, got %v", err)
		}
	})

	t.Run("entry point unknown", func(t *testing.T) {
		g := graph.NewStateGraph[trace, traceUpdate](traceSchema{})
		g.AddNode("a", "only", visit("a"))
		g.SetEntryPoint("missing")
		if _, err := g.Compile(); !errors.Is(err, graph.ErrNodeNotFound) {
			t.Errorf("expected ErrNodeNotFound, got %v", err)
		}
	})

	t.Run("edge to unknown node", func(t *testing.T) {
		g := graph.NewStateGraph[trace, traceUpdate](traceSchema{})
		g.AddNode("a", "only", visit("a"))
		g.AddEdge("a", "missing")
		g.SetEntryPoint("a")
		if _, err := g.Compile(); !errors.Is(err, graph.ErrNodeNotFound) {
			t.Errorf("expected ErrNodeNotFound, got %v", err)
		}
	})
}

func TestInvokeNodeErrorAborts(t *testing.T) {
	t.Parallel()

	boom := errors.New("backend unreachable")

	g := graph.NewStateGraph[trace, traceUpdate](traceSchema{})
	g.AddNode("a", "entry", visit("a"))
	g.AddNode("b", "fails", func(ctx context.Context, state trace) (traceUpdate, error) {
		return traceUpdate{}, boom
	})
	g.AddNode("c", "unreached", visit("c"))
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	g.AddEdge("c", graph.END)
	g.SetEntryPoint("a")

	runnable, err := g.Compile()
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}

	final, err := runnable.Invoke(context.Background(), trace{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped node error, got %v", err)
	}
	// The error carries the state as of the failing node.
	if len(final.visited) != 1 || final.visited[0] != "a" {
		t.Errorf("unexpected partial state: %v", final.visited)
	}
}

func TestInvokeCycleGuard(t *testing.T) {
	t.Parallel()

	g := graph.NewStateGraph[trace, traceUpdate](traceSchema{})
	g.AddNode("a", "loops", visit("a"))
	g.AddEdge("a", "a")
	g.SetEntryPoint("a")

	runnable, err := g.Compile()
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if _, err := runnable.Invoke(context.Background(), trace{}); !errors.Is(err, graph.ErrCycleDetected) {
		t.Errorf("expected ErrCycleDetected, got %v", err)
	}
}

func TestInvokeNoOutgoingEdge(t *testing.T) {
	t.Parallel()

	g := graph.NewStateGraph[trace, traceUpdate](traceSchema{})
	g.AddNode("a", "dead end", visit("a"))
	g.SetEntryPoint("a")

	runnable, err := g.Compile()
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if _, err := runnable.Invoke(context.Background(), trace{}); !errors.Is(err, graph.ErrNoOutgoingEdge) {
		t.Errorf("expected ErrNoOutgoingEdge, got %v", err)
	}
}
