package pipeline

import "time"

// Verdict is the topic classification outcome that gates whether
// generation proceeds or the query is rejected.
type Verdict string

const (
	VerdictUnknown     Verdict = "unknown"
	VerdictInDomain    Verdict = "in_domain"
	VerdictOutOfDomain Verdict = "out_of_domain"
)

// Document is one retrieved unit of context. Immutable once constructed;
// reranking builds a new slice instead of mutating scores in place so
// earlier orderings stay inspectable.
type Document struct {
	ID       string
	Content  string
	Metadata map[string]string
	Score    *float64 // nil until retrieve/rerank assigns one
}

// WithScore returns a copy of the document carrying the given score.
func (d Document) WithScore(score float64) Document {
	d.Score = &score
	return d
}

// TraceEntry records one stage transition for observability.
type TraceEntry struct {
	Stage string
	At    time.Time
}

// QueryContext is the mutable per-query record threaded through all
// stages. Created fresh for each incoming query and discarded after the
// answer (or rejection) is returned; no cross-query state lives here.
type QueryContext struct {
	// OriginalQuery is set once at entry and never overwritten.
	OriginalQuery string

	// WorkingQuery starts equal to OriginalQuery and is replaced by the
	// rewrite stage. Never empty.
	WorkingQuery string

	// Candidates is the ordered retrieval set; replaced (not mutated) by
	// the rerank stage.
	Candidates []Document

	Verdict Verdict
	Answer  string

	trace []TraceEntry
}

// NewQueryContext creates the per-query context for one pipeline run.
func NewQueryContext(query string) *QueryContext {
	return &QueryContext{
		OriginalQuery: query,
		WorkingQuery:  query,
		Verdict:       VerdictUnknown,
	}
}

// Trace returns a copy of the append-only stage transition log.
func (qc *QueryContext) Trace() []TraceEntry {
	out := make([]TraceEntry, len(qc.trace))
	copy(out, qc.trace)
	return out
}

func (qc *QueryContext) recordStage(stage string, at time.Time) {
	qc.trace = append(qc.trace, TraceEntry{Stage: stage, At: at})
}
