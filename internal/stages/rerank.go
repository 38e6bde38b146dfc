package stages

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"ragflow/internal/llm"
	"ragflow/pkg/pipeline"
)

var numberRe = regexp.MustCompile(`\d+`)

// Reranker asks the model to order the candidates by preference and keeps
// at most Keep of them.
type Reranker struct {
	LLM  llm.Service
	Keep int
}

// Run replaces qc.Candidates with a fresh slice: a permutation or subset
// of the input in preference order, with updated scores. The input slice
// is never mutated, so the retrieval ordering stays inspectable. If the
// model output yields no usable ranking, the retrieval order and scores
// are kept as they are.
func (r *Reranker) Run(ctx context.Context, qc *pipeline.QueryContext) error {
	if len(qc.Candidates) == 0 {
		return nil
	}

	var listing strings.Builder
	for i, d := range qc.Candidates {
		fmt.Fprintf(&listing, "%d. %s\n", i+1, d.Content)
	}
	out, err := r.LLM.Complete(ctx, llm.Request{
		Prompt: fmt.Sprintf(rerankerPrompt, qc.WorkingQuery, listing.String()),
	})
	if err != nil {
		return fmt.Errorf("rerank documents: %w", err)
	}

	order := parseRanking(out, len(qc.Candidates))
	keep := r.Keep
	if keep <= 0 || keep > len(qc.Candidates) {
		keep = len(qc.Candidates)
	}

	if len(order) == 0 {
		// No usable ranking: keep retrieval order, truncated to the cap.
		// Equal-score ties keep their original relative order by
		// construction.
		qc.Candidates = append([]pipeline.Document{}, qc.Candidates[:keep]...)
		return nil
	}

	if len(order) > keep {
		order = order[:keep]
	}
	ranked := make([]pipeline.Document, 0, len(order))
	for rank, idx := range order {
		score := float64(len(order)-rank) / float64(len(order))
		ranked = append(ranked, qc.Candidates[idx].WithScore(score))
	}
	qc.Candidates = ranked
	return nil
}

// parseRanking extracts 1-based document numbers from the model response
// in order of first mention, dropping duplicates and out-of-range values.
func parseRanking(response string, n int) []int {
	seen := make(map[int]bool, n)
	var order []int
	for _, m := range numberRe.FindAllString(response, -1) {
		num, err := strconv.Atoi(m)
		if err != nil || num < 1 || num > n || seen[num] {
			continue
		}
		seen[num] = true
		order = append(order, num-1)
	}
	return order
}
