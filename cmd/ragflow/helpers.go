package main

import (
	"context"
	"fmt"

	"ragflow/internal/config"
	"ragflow/internal/embed"
	"ragflow/internal/index"
	"ragflow/internal/logging"
	"ragflow/internal/stages"
	"ragflow/pkg/pipeline"
)

// runtime bundles the wired collaborators behind one setup call so every
// command builds them the same way.
type runtime struct {
	Embedder embed.Embedder
	Index    index.VectorIndex
	Plan     *pipeline.Plan

	cleanup func()
}

func (r *runtime) Close() {
	if r.cleanup != nil {
		r.cleanup()
	}
}

// buildRuntime constructs the backends and compiles the pipeline from the
// loaded config.
func buildRuntime(ctx context.Context, cfg config.Config) (*runtime, error) {
	model, err := cfg.BuildLLM()
	if err != nil {
		return nil, fmt.Errorf("build llm: %w", err)
	}
	embedder, err := cfg.BuildEmbedder()
	if err != nil {
		return nil, fmt.Errorf("build embedder: %w", err)
	}
	idx, cleanup, err := cfg.BuildIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}

	plan, err := stages.Build(
		stages.Deps{LLM: model, Embedder: embedder, Index: idx},
		stages.Config{TopK: cfg.Pipeline.TopK, RerankKeep: cfg.Pipeline.RerankKeep},
	)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("compile pipeline: %w", err)
	}

	logging.Component("runtime").Debug("pipeline ready",
		"llm", model.Name(), "embedder", embedder.Name(), "index", cfg.Index.Type)
	return &runtime{Embedder: embedder, Index: idx, Plan: plan, cleanup: cleanup}, nil
}
