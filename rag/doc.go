// Package rag defines the retrieval contracts of the assistant: the uniform
// Searcher interface implemented by the semantic and the relational strategy,
// the vector-store and movie-graph store abstractions behind them, and the
// context merger that folds retrieval results into the prompt context.
package rag
