// Package retriever provides the two retrieval strategies of the assistant,
// semantic vector search and relational movie-graph traversal, behind the
// uniform rag.Searcher contract, plus a langchaingo vector-store variant and
// a Redis read-through cache decorator.
package retriever
