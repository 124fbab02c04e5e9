// Package graph implements a minimal state-machine engine for directed
// acyclic workflows. A StateGraph is built from named nodes, unconditional
// edges and conditional edges, then compiled into a Runnable that executes a
// single linear pass over the graph.
//
// Each node is a total function from the current state to a partial update;
// the engine merges every update into the running state through the graph's
// Schema before invoking the next node. This keeps merge semantics (append
// for history fields, replace for per-turn fields) in one place and lets the
// same state value be replayed deterministically in tests.
package graph
