// Package agent implements the movie-analysis workflow: a planner that
// classifies the user's intent, two mutually exclusive retrieval branches
// (semantic vector search and relational movie-graph search), and an analyst
// that prompts the remote model and degrades gracefully when the model is
// unreachable.
//
// The workflow is a single-pass DAG over the graph engine:
//
//	planner → vector_retrieve ─┐
//	        ↘ graph_retrieve ──┴→ analyst → END
//
// State is threaded immutably: every node returns an Update record and the
// Schema merges it, appending to conversation history and replacing per-turn
// fields.
package agent
