// Package store provides the retrieval backends: an in-memory vector store
// for tests and demos, a FalkorDB movie graph reached over the Redis
// protocol, and SQLite/Postgres movie graphs over a relational credits
// schema. All graph variants satisfy rag.MovieGraph; the vector store
// satisfies rag.VectorStore.
package store
