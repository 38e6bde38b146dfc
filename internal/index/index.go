// Package index stores document embeddings and answers nearest-neighbor
// queries. Document sourcing and ingestion policy live with the callers;
// the pipeline only drives the VectorIndex interface.
package index

import (
	"context"
	"errors"

	"ragflow/pkg/pipeline"
)

// ErrIndexUnavailable signals a backend failure. An empty index is not a
// failure: Query on an empty index returns an empty result.
var ErrIndexUnavailable = errors.New("index: unavailable")

// VectorIndex persists document vectors and supports similarity search.
// Implementations must be safe for concurrent use.
type VectorIndex interface {
	// Upsert stores the documents with their embeddings, replacing any
	// existing entries with the same IDs.
	Upsert(ctx context.Context, docs []pipeline.Document, vectors [][]float32) error

	// Query returns up to topK documents ordered by decreasing similarity,
	// with Score populated. An empty index yields an empty slice, never an
	// error.
	Query(ctx context.Context, vector []float32, topK int) ([]pipeline.Document, error)
}
