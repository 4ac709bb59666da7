package rag

import "context"

// Passage is one unit of retrieved text plus whatever metadata was stored
// alongside it.
type Passage struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ScoredPassage pairs a passage with the index's relevance score.
type ScoredPassage struct {
	Passage
	Score float64 `json:"score"`
}

// VectorDB is the retrieval-index capability set. Both the remote Pinecone
// client and the local pgvector store implement it, and the pipeline only
// ever sees this interface, so tests substitute an in-memory double.
type VectorDB interface {
	// Ingest embeds each text and upserts it under namespace, returning the
	// ids that made it in. Tags label every chunk of the call (document-level
	// labels like the source file); pass nil for none. Upserts happen in
	// batches; a failed batch is logged and its ids omitted, never escalated
	// to an error for the whole call.
	Ingest(ctx context.Context, texts []string, tags []string, namespace string) ([]string, error)

	// Retrieve embeds query and returns the top passages in the index's own
	// ranking order (descending relevance).
	Retrieve(ctx context.Context, query, namespace string) ([]ScoredPassage, error)

	// DeleteNamespace irreversibly drops every vector in namespace.
	DeleteNamespace(ctx context.Context, namespace string) error
}
