// CineAnalyst - Retrieval-Augmented Movie Analysis Assistant
//
// CineAnalyst answers natural-language questions about movies. Each question
// runs through a single-pass workflow: a planner classifies the question's
// intent, exactly one retrieval strategy gathers context, and a fine-tuned
// model served by vLLM generates the answer.
//
//	planner -> (vector_retrieve | graph_retrieve) -> analyst -> END
//
// Questions about people and relationships between productions (directors,
// cast, co-appearances) go to a relational movie graph; everything else goes
// to a semantic similarity search over movie overviews. When the model
// server is unreachable the assistant degrades gracefully, answering with a
// fixed apology plus the retrieved context instead of failing the request.
//
// # Packages
//
//   - graph: the generic typed state-graph engine the workflow runs on
//   - agent: routing, answer generation and the compiled workflow
//   - rag: retrieval contracts shared by both strategies
//   - rag/retriever: the semantic and relational searchers plus a Redis cache
//   - rag/store: FalkorDB, SQLite, Postgres and in-memory backends
//   - llm/vllm: langchaingo Model over a vLLM OpenAI-compatible endpoint
//   - server: the HTTP API
//   - data: dataset download, preprocessing and ingestion
//   - training: LoRA fine-tuning job files
//
// # Quick Start
//
// Start the API server:
//
//	cineanalyst serve
//
// Ask a question:
//
//	curl -X POST localhost:8001/api/v1/analyze \
//	  -H 'Content-Type: application/json' \
//	  -d '{"query": "봉준호 감독 작품 알려줘"}'
package cineanalyst
