// Package embed converts free text into vector representations for the
// index. How embeddings are computed is opaque to the pipeline; stages
// only see the Embedder interface.
package embed

import "context"

// Embedder produces a fixed-dimension vector for the given text.
// Implementations must be safe for concurrent use.
type Embedder interface {
	Name() string
	Embed(ctx context.Context, text string) ([]float32, error)
}
