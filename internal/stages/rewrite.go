// Package stages implements the five NLP stage functions and wires them
// into the pipeline topology: rewrite -> retrieve -> classify ->
// [reject | rerank -> generate].
package stages

import (
	"context"
	"fmt"
	"strings"

	"ragflow/internal/llm"
	"ragflow/pkg/pipeline"
)

// Stage and terminal node names as they appear in the graph and in traces.
const (
	StageRewrite  = "rewrite_query"
	StageRetrieve = "retrieve_documents"
	StageClassify = "classify_topic"
	StageRerank   = "rerank_documents"
	StageGenerate = "generate_answer"

	TerminalRejected = "off_topic_response"
	TerminalDone     = "done"
)

// Rewriter converts the working query into a version optimized for
// retrieval.
type Rewriter struct {
	LLM llm.Service
}

// Run rewrites the working query. A degenerate model response (empty or
// whitespace-only) falls back to the query unchanged, so an empty working
// query never propagates downstream.
func (r *Rewriter) Run(ctx context.Context, qc *pipeline.QueryContext) error {
	out, err := r.LLM.Complete(ctx, llm.Request{
		System: rewriterSystem,
		Prompt: fmt.Sprintf(rewriterPrompt, qc.WorkingQuery),
	})
	if err != nil {
		return fmt.Errorf("rewrite query: %w", err)
	}
	rewritten := strings.TrimSpace(out)
	if rewritten == "" {
		return nil
	}
	qc.WorkingQuery = rewritten
	return nil
}
