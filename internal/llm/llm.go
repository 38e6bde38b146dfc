// Package llm provides the text-completion capability used by every
// pipeline stage that needs generation or classification. Backends are
// opaque collaborators; the pipeline only sees the Service interface.
package llm

import (
	"context"
	"errors"
)

// ErrModelUnavailable signals that the backing model cannot be reached.
// Stage functions propagate it unwrapped; the executor wraps it with
// stage identity.
var ErrModelUnavailable = errors.New("llm: model unavailable")

// Request is a single completion request. Temperature defaults to 0 for
// deterministic pipeline behavior.
type Request struct {
	System      string
	Prompt      string
	Temperature float64
}

// Service is a stateless text-completion backend. Implementations must be
// safe for concurrent use; any retry policy lives here, never in the
// pipeline.
type Service interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}
