package stages

import (
	"context"
	"fmt"

	"ragflow/internal/embed"
	"ragflow/internal/index"
	"ragflow/pkg/pipeline"
)

// Retriever embeds the working query and pulls the nearest documents from
// the index.
type Retriever struct {
	Embedder embed.Embedder
	Index    index.VectorIndex
	TopK     int
}

// Run fills qc.Candidates with up to TopK documents. An empty result is a
// valid outcome meaning no relevant context was found; only a collaborator
// failure returns an error.
func (r *Retriever) Run(ctx context.Context, qc *pipeline.QueryContext) error {
	vec, err := r.Embedder.Embed(ctx, qc.WorkingQuery)
	if err != nil {
		return fmt.Errorf("embed query: %w", err)
	}
	docs, err := r.Index.Query(ctx, vec, r.TopK)
	if err != nil {
		return fmt.Errorf("query index: %w", err)
	}
	qc.Candidates = docs
	return nil
}
