package pipeline

import (
	"context"
	"fmt"
	"time"
)

// RejectionMessage is the fixed user-facing output for out-of-domain
// queries. Rejection is a normal terminal outcome, not an error.
const RejectionMessage = "The question is off-topic, ending the process."

// Result is what a run produces. Exactly one of Answer (completed) or
// Reason (rejected) is populated; on failure the error returned alongside
// carries the stage identity.
type Result struct {
	Outcome Outcome
	Answer  string
	Reason  string

	// Context is the final QueryContext, kept for trace inspection.
	Context *QueryContext
}

// Executor walks a compiled Plan once per incoming query. It holds no
// mutable state across queries: the Plan and the collaborators behind the
// stage functions are shared and read-mostly, so concurrent Run calls are
// independent.
type Executor struct {
	plan     *Plan
	observer Observer
	now      func() time.Time
}

// ExecutorOption configures an Executor during construction.
type ExecutorOption func(*Executor)

// WithObserver attaches an observer that receives stage and transition
// events for every run.
func WithObserver(obs Observer) ExecutorOption {
	return func(e *Executor) { e.observer = obs }
}

// WithClock overrides the time source used for trace timestamps.
func WithClock(now func() time.Time) ExecutorOption {
	return func(e *Executor) { e.now = now }
}

// NewExecutor creates an executor over a compiled plan.
func NewExecutor(plan *Plan, opts ...ExecutorOption) *Executor {
	e := &Executor{plan: plan, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run processes one query through the plan. At each stage, outgoing edges
// are evaluated against the current QueryContext in declaration order and
// the first match is taken. A stage failure is wrapped as *StageError and
// returned with a failed result; no retries happen at this layer. If no
// edge matches, compile-time validation had a gap and the run fails with
// ErrNoEdge.
//
// The caller owns any deadline: wrap ctx before calling Run.
func (e *Executor) Run(ctx context.Context, query string) (Result, error) {
	qc := NewQueryContext(query)
	node := e.plan.entry

	for {
		if err := ctx.Err(); err != nil {
			emitEvent(e.observer, Event{Type: EventRunError, Stage: node, Err: err})
			return Result{Outcome: OutcomeFailed, Context: qc}, &StageError{Stage: node, Query: query, Err: err}
		}

		if outcome, ok := e.plan.terminals[node]; ok {
			qc.recordStage(node, e.now())
			emitEvent(e.observer, Event{Type: EventRunComplete, Stage: node, Outcome: outcome})
			res := Result{Outcome: outcome, Context: qc}
			switch outcome {
			case OutcomeCompleted:
				res.Answer = qc.Answer
			case OutcomeRejected:
				res.Reason = RejectionMessage
			}
			return res, nil
		}

		fn := e.plan.stages[node]
		qc.recordStage(node, e.now())
		emitEvent(e.observer, Event{Type: EventStageEnter, Stage: node})
		start := e.now()

		err := fn(ctx, qc)
		elapsed := e.now().Sub(start)

		if err != nil {
			serr := &StageError{Stage: node, Query: query, Err: err}
			emitEvent(e.observer, Event{Type: EventStageExit, Stage: node, Elapsed: elapsed, Err: err})
			emitEvent(e.observer, Event{Type: EventRunError, Stage: node, Outcome: OutcomeFailed, Err: serr})
			return Result{Outcome: OutcomeFailed, Context: qc}, serr
		}
		emitEvent(e.observer, Event{Type: EventStageExit, Stage: node, Elapsed: elapsed})

		next := ""
		for _, edge := range e.plan.edges[node] {
			if edge.when == nil || edge.when(qc) {
				next = edge.to
				break
			}
		}
		if next == "" {
			err := fmt.Errorf("%w: %q", ErrNoEdge, node)
			emitEvent(e.observer, Event{Type: EventRunError, Stage: node, Outcome: OutcomeFailed, Err: err})
			return Result{Outcome: OutcomeFailed, Context: qc}, err
		}

		emitEvent(e.observer, Event{Type: EventTransition, Stage: node, Next: next})
		node = next
	}
}
