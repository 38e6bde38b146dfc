package corpus

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"ragflow/internal/embed"
	"ragflow/internal/index"
	"ragflow/pkg/pipeline"
)

// ingestConcurrency bounds parallel embedding calls so a remote embedder
// is not flooded during bulk indexing.
const ingestConcurrency = 4

// Ingest embeds every document and upserts the batch into the index.
// Embedding runs concurrently; the upsert happens once, after all vectors
// are in, so a failed embedding leaves the index untouched.
func Ingest(ctx context.Context, e embed.Embedder, idx index.VectorIndex, docs []pipeline.Document) error {
	if len(docs) == 0 {
		return nil
	}

	vectors := make([][]float32, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ingestConcurrency)
	for i, d := range docs {
		g.Go(func() error {
			vec, err := e.Embed(gctx, d.Content)
			if err != nil {
				return fmt.Errorf("embed %s: %w", d.ID, err)
			}
			vectors[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return idx.Upsert(ctx, docs, vectors)
}
