package stages

import (
	"context"
	"fmt"
	"strings"

	"ragflow/internal/llm"
	"ragflow/pkg/pipeline"
)

// Classifier decides whether the query is in the corpus domain. It runs
// before rerank/generate so out-of-domain queries are rejected without
// paying for the expensive stages.
type Classifier struct {
	LLM llm.Service
}

// Run sets qc.Verdict from the model's on-topic/off-topic response,
// grounding the decision on the retrieved candidates. A response matching
// neither label leaves the verdict Unknown, which continues the pipeline.
func (c *Classifier) Run(ctx context.Context, qc *pipeline.QueryContext) error {
	var docs []string
	for _, d := range qc.Candidates {
		docs = append(docs, d.Content)
	}
	out, err := c.LLM.Complete(ctx, llm.Request{
		System: classifierSystem,
		Prompt: fmt.Sprintf(classifierPrompt, qc.WorkingQuery, strings.Join(docs, "\n")),
	})
	if err != nil {
		return fmt.Errorf("classify topic: %w", err)
	}
	qc.Verdict = parseVerdict(out)
	return nil
}

// parseVerdict checks the off-topic label first: "off-topic" never
// contains "on-topic", but a hedging response can mention both and a
// rejection must win over an accept in that case.
func parseVerdict(response string) pipeline.Verdict {
	lower := strings.ToLower(response)
	switch {
	case strings.Contains(lower, "off-topic"):
		return pipeline.VerdictOutOfDomain
	case strings.Contains(lower, "on-topic"):
		return pipeline.VerdictInDomain
	}
	return pipeline.VerdictUnknown
}
