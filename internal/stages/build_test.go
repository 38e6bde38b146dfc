package stages

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"ragflow/internal/index"
	"ragflow/internal/llm"
	"ragflow/pkg/pipeline"
)

// scriptedLLM routes each request to a per-stage response by inspecting
// the prompt, and counts how often each stage asked.
type scriptedLLM struct {
	rewrite  string
	classify string
	rerank   string
	answer   string

	rerankCalls int
	answerCalls int
}

func (s *scriptedLLM) Name() string { return "scripted" }

func (s *scriptedLLM) Complete(_ context.Context, req llm.Request) (string, error) {
	switch {
	case req.System == rewriterSystem:
		return s.rewrite, nil
	case req.System == classifierSystem:
		return s.classify, nil
	case strings.HasPrefix(req.Prompt, "Given the question"):
		s.rerankCalls++
		return s.rerank, nil
	case strings.HasPrefix(req.Prompt, "Answer the question"):
		s.answerCalls++
		return s.answer, nil
	}
	return "", errors.New("unexpected request")
}

func testDeps(model *scriptedLLM, idx index.VectorIndex) Deps {
	return Deps{LLM: model, Embedder: &stubEmbedder{vec: []float32{1, 0}}, Index: idx}
}

func TestBuild_CompilesDefaultTopology(t *testing.T) {
	plan, err := Build(testDeps(&scriptedLLM{}, &stubIndex{}), Config{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if plan.Entry() != StageRewrite {
		t.Errorf("entry = %q, want %q", plan.Entry(), StageRewrite)
	}
	if outcome, ok := plan.IsTerminal(TerminalDone); !ok || outcome != pipeline.OutcomeCompleted {
		t.Errorf("IsTerminal(done) = %q, %v", outcome, ok)
	}
	if outcome, ok := plan.IsTerminal(TerminalRejected); !ok || outcome != pipeline.OutcomeRejected {
		t.Errorf("IsTerminal(off_topic_response) = %q, %v", outcome, ok)
	}
}

func TestRun_InDomainQueryCompletes(t *testing.T) {
	model := &scriptedLLM{
		rewrite:  "What is the capital city of France?",
		classify: "on-topic",
		rerank:   "1",
		answer:   "The capital of France is Paris.",
	}
	idx := &stubIndex{docs: []pipeline.Document{
		{ID: "geo-1", Content: "Paris is the capital of France."},
	}}
	plan, err := Build(testDeps(model, idx), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	res, err := pipeline.NewExecutor(plan).Run(context.Background(), "What is the capital of France?")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Outcome != pipeline.OutcomeCompleted {
		t.Fatalf("outcome = %q, want completed", res.Outcome)
	}
	if !strings.Contains(res.Answer, "Paris") {
		t.Errorf("answer %q does not mention Paris", res.Answer)
	}

	var visited []string
	for _, e := range res.Context.Trace() {
		visited = append(visited, e.Stage)
	}
	want := []string{StageRewrite, StageRetrieve, StageClassify, StageRerank, StageGenerate, TerminalDone}
	if diff := cmp.Diff(want, visited); diff != "" {
		t.Errorf("trace mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_OffTopicQueryIsRejected(t *testing.T) {
	model := &scriptedLLM{
		rewrite:  "How do I bake sourdough bread?",
		classify: "off-topic",
	}
	idx := &stubIndex{docs: []pipeline.Document{
		{ID: "sales-1", Content: "The sales team met on Tuesday."},
	}}
	plan, err := Build(testDeps(model, idx), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	res, err := pipeline.NewExecutor(plan).Run(context.Background(), "how do I bake bread")
	if err != nil {
		t.Fatalf("rejection is not an error, got %v", err)
	}
	if res.Outcome != pipeline.OutcomeRejected {
		t.Fatalf("outcome = %q, want rejected", res.Outcome)
	}
	if res.Reason != pipeline.RejectionMessage {
		t.Errorf("reason = %q, want the fixed rejection message", res.Reason)
	}
	if res.Answer != "" {
		t.Errorf("rejected run must not carry an answer, got %q", res.Answer)
	}
	if model.rerankCalls != 0 || model.answerCalls != 0 {
		t.Errorf("rejection must skip rerank and generate, got %d/%d calls",
			model.rerankCalls, model.answerCalls)
	}
	// The candidates that grounded the verdict stay inspectable.
	if len(res.Context.Candidates) != 1 {
		t.Errorf("expected the retrieved candidate to survive, got %d", len(res.Context.Candidates))
	}
}

func TestRun_UnknownVerdictContinues(t *testing.T) {
	model := &scriptedLLM{
		rewrite:  "q",
		classify: "I am not sure about this one.",
		rerank:   "1",
		answer:   "best effort answer",
	}
	idx := &stubIndex{docs: docsNamed("d1")}
	plan, err := Build(testDeps(model, idx), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	res, err := pipeline.NewExecutor(plan).Run(context.Background(), "q")
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != pipeline.OutcomeCompleted {
		t.Errorf("unknown verdict must take the default edge, outcome = %q", res.Outcome)
	}
}

func TestRun_IndexFailureFailsAtRetrieve(t *testing.T) {
	model := &scriptedLLM{rewrite: "q"}
	idx := &stubIndex{err: index.ErrIndexUnavailable}
	plan, err := Build(testDeps(model, idx), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	res, err := pipeline.NewExecutor(plan).Run(context.Background(), "q")
	if res.Outcome != pipeline.OutcomeFailed {
		t.Fatalf("outcome = %q, want failed", res.Outcome)
	}
	var serr *pipeline.StageError
	if !errors.As(err, &serr) {
		t.Fatalf("expected *StageError, got %T: %v", err, err)
	}
	if serr.Stage != StageRetrieve {
		t.Errorf("failing stage = %q, want %q", serr.Stage, StageRetrieve)
	}
	if !errors.Is(err, index.ErrIndexUnavailable) {
		t.Errorf("cause not preserved: %v", err)
	}
}

func TestRun_EmptyIndexCompletesWithInsufficientContext(t *testing.T) {
	model := &scriptedLLM{
		rewrite:  "q",
		classify: "on-topic",
	}
	plan, err := Build(testDeps(model, &stubIndex{}), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	res, err := pipeline.NewExecutor(plan).Run(context.Background(), "q")
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != pipeline.OutcomeCompleted {
		t.Fatalf("outcome = %q, want completed", res.Outcome)
	}
	if res.Answer != InsufficientContextAnswer {
		t.Errorf("answer = %q, want the insufficient-context answer", res.Answer)
	}
	if model.answerCalls != 0 {
		t.Errorf("generation must not hit the model with no evidence, got %d calls", model.answerCalls)
	}
}
