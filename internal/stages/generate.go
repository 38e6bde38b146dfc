package stages

import (
	"context"
	"fmt"
	"strings"

	"ragflow/internal/llm"
	"ragflow/pkg/pipeline"
)

// Generator produces the final answer from the ranked context.
type Generator struct {
	LLM llm.Service
}

// Run sets qc.Answer. With no candidate documents it produces the
// explicit insufficient-context answer instead of asking the model to
// answer from no evidence.
func (g *Generator) Run(ctx context.Context, qc *pipeline.QueryContext) error {
	if len(qc.Candidates) == 0 {
		qc.Answer = InsufficientContextAnswer
		return nil
	}

	var contents []string
	for _, d := range qc.Candidates {
		contents = append(contents, d.Content)
	}
	out, err := g.LLM.Complete(ctx, llm.Request{
		Prompt: fmt.Sprintf(answerPrompt, strings.Join(contents, "\n"), qc.WorkingQuery),
	})
	if err != nil {
		return fmt.Errorf("generate answer: %w", err)
	}
	qc.Answer = strings.TrimSpace(out)
	return nil
}
