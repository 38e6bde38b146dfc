package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// buildBranchPlan compiles a small branching topology mirroring the real
// pipeline shape: enter -> decide -> [reject | answer -> done].
func buildBranchPlan(t *testing.T, decide StageFunc) *Plan {
	t.Helper()
	g := NewGraph()
	if err := g.AddNode("decide", decide); err != nil {
		t.Fatal(err)
	}
	if err := g.AddNode("answer", func(ctx context.Context, qc *QueryContext) error {
		qc.Answer = "ok: " + qc.WorkingQuery
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if err := g.AddTerminal("rejected", OutcomeRejected); err != nil {
		t.Fatal(err)
	}
	if err := g.AddTerminal("done", OutcomeCompleted); err != nil {
		t.Fatal(err)
	}
	if err := g.AddEdge("decide", "rejected", func(qc *QueryContext) bool {
		return qc.Verdict == VerdictOutOfDomain
	}); err != nil {
		t.Fatal(err)
	}
	if err := g.AddEdge("decide", "answer", nil); err != nil {
		t.Fatal(err)
	}
	if err := g.AddEdge("answer", "done", nil); err != nil {
		t.Fatal(err)
	}
	if err := g.SetEntry("decide"); err != nil {
		t.Fatal(err)
	}
	plan, err := g.Compile()
	if err != nil {
		t.Fatal(err)
	}
	return plan
}

func TestExecutor_CompletedRun(t *testing.T) {
	plan := buildBranchPlan(t, func(ctx context.Context, qc *QueryContext) error {
		qc.Verdict = VerdictInDomain
		return nil
	})

	res, err := NewExecutor(plan).Run(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Outcome != OutcomeCompleted {
		t.Errorf("outcome = %q, want completed", res.Outcome)
	}
	if res.Answer != "ok: hello" {
		t.Errorf("answer = %q", res.Answer)
	}
	if res.Reason != "" {
		t.Errorf("reason should be empty on completion, got %q", res.Reason)
	}
}

func TestExecutor_RejectedRun(t *testing.T) {
	plan := buildBranchPlan(t, func(ctx context.Context, qc *QueryContext) error {
		qc.Verdict = VerdictOutOfDomain
		return nil
	})

	res, err := NewExecutor(plan).Run(context.Background(), "pineapple?")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Outcome != OutcomeRejected {
		t.Errorf("outcome = %q, want rejected", res.Outcome)
	}
	if res.Reason != RejectionMessage {
		t.Errorf("reason = %q, want fixed rejection message", res.Reason)
	}
	if res.Answer != "" {
		t.Errorf("answer must stay empty on rejection, got %q", res.Answer)
	}
	if len(res.Context.Candidates) != 0 {
		t.Errorf("candidates must stay untouched on rejection, got %d", len(res.Context.Candidates))
	}
}

func TestExecutor_FirstMatchingEdgeWins(t *testing.T) {
	// Both edges from decide match when the verdict is out-of-domain; the
	// rejection edge was declared first and must win.
	plan := buildBranchPlan(t, func(ctx context.Context, qc *QueryContext) error {
		qc.Verdict = VerdictOutOfDomain
		return nil
	})
	res, err := NewExecutor(plan).Run(context.Background(), "q")
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != OutcomeRejected {
		t.Errorf("declaration order broken: outcome = %q", res.Outcome)
	}
}

func TestExecutor_StageErrorWrapsStageIdentity(t *testing.T) {
	cause := errors.New("backend down")
	plan := buildBranchPlan(t, func(ctx context.Context, qc *QueryContext) error {
		return cause
	})

	res, err := NewExecutor(plan).Run(context.Background(), "q")
	if res.Outcome != OutcomeFailed {
		t.Errorf("outcome = %q, want failed", res.Outcome)
	}
	var serr *StageError
	if !errors.As(err, &serr) {
		t.Fatalf("expected *StageError, got %v", err)
	}
	if serr.Stage != "decide" {
		t.Errorf("stage = %q, want decide", serr.Stage)
	}
	if serr.Query != "q" {
		t.Errorf("query = %q, want q", serr.Query)
	}
	if !errors.Is(err, cause) {
		t.Error("StageError must unwrap to the collaborator failure")
	}
}

func TestExecutor_NoMatchingEdgeIsStructuralFault(t *testing.T) {
	// Build a plan whose predicates can all be false at run time. Compile
	// cannot see predicate truth, so this passes validation but must fail
	// the run with ErrNoEdge.
	g := NewGraph()
	if err := g.AddNode("A", noopStage); err != nil {
		t.Fatal(err)
	}
	if err := g.AddTerminal("done", OutcomeCompleted); err != nil {
		t.Fatal(err)
	}
	if err := g.AddEdge("A", "done", func(qc *QueryContext) bool { return false }); err != nil {
		t.Fatal(err)
	}
	if err := g.SetEntry("A"); err != nil {
		t.Fatal(err)
	}
	plan, err := g.Compile()
	if err != nil {
		t.Fatal(err)
	}

	res, err := NewExecutor(plan).Run(context.Background(), "q")
	if res.Outcome != OutcomeFailed {
		t.Errorf("outcome = %q, want failed", res.Outcome)
	}
	if !errors.Is(err, ErrNoEdge) {
		t.Errorf("expected ErrNoEdge, got %v", err)
	}
}

func TestExecutor_TraceRecordsStagesInOrder(t *testing.T) {
	plan := buildBranchPlan(t, func(ctx context.Context, qc *QueryContext) error {
		qc.Verdict = VerdictInDomain
		return nil
	})

	tick := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	res, err := NewExecutor(plan, WithClock(clock)).Run(context.Background(), "q")
	if err != nil {
		t.Fatal(err)
	}

	var stages []string
	for _, entry := range res.Context.Trace() {
		stages = append(stages, entry.Stage)
	}
	want := []string{"decide", "answer", "done"}
	if diff := cmp.Diff(want, stages); diff != "" {
		t.Errorf("trace mismatch (-want +got):\n%s", diff)
	}

	trace := res.Context.Trace()
	for i := 1; i < len(trace); i++ {
		if !trace[i].At.After(trace[i-1].At) {
			t.Errorf("trace timestamps not increasing at %d", i)
		}
	}
}

func TestExecutor_ObserverSeesLifecycle(t *testing.T) {
	plan := buildBranchPlan(t, func(ctx context.Context, qc *QueryContext) error {
		qc.Verdict = VerdictInDomain
		return nil
	})

	var events []EventType
	obs := ObserverFunc(func(e Event) { events = append(events, e.Type) })
	if _, err := NewExecutor(plan, WithObserver(obs)).Run(context.Background(), "q"); err != nil {
		t.Fatal(err)
	}

	want := []EventType{
		EventStageEnter, EventStageExit, EventTransition, // decide
		EventStageEnter, EventStageExit, EventTransition, // answer
		EventRunComplete,
	}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Errorf("event sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestExecutor_ContextCancellation(t *testing.T) {
	plan := buildBranchPlan(t, func(ctx context.Context, qc *QueryContext) error {
		qc.Verdict = VerdictInDomain
		return nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := NewExecutor(plan).Run(ctx, "q")
	if res.Outcome != OutcomeFailed {
		t.Errorf("outcome = %q, want failed", res.Outcome)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in chain, got %v", err)
	}
}

func TestExecutor_ConcurrentRunsAreIndependent(t *testing.T) {
	plan := buildBranchPlan(t, func(ctx context.Context, qc *QueryContext) error {
		qc.Verdict = VerdictInDomain
		return nil
	})
	exec := NewExecutor(plan)

	const n = 16
	done := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			res, err := exec.Run(context.Background(), "q")
			if err == nil && res.Outcome != OutcomeCompleted {
				err = errors.New("unexpected outcome " + string(res.Outcome))
			}
			done <- err
		}()
	}
	for i := 0; i < n; i++ {
		if err := <-done; err != nil {
			t.Fatal(err)
		}
	}
}
