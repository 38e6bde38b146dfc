package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDuplicateNode is returned when a node name is registered twice.
	ErrDuplicateNode = errors.New("pipeline: duplicate node")

	// ErrUnknownNode is returned when an edge or entry references a node
	// that was never registered.
	ErrUnknownNode = errors.New("pipeline: unknown node")

	// ErrNoEntry is returned by Compile when no entry node was set.
	ErrNoEntry = errors.New("pipeline: entry node not set")

	// ErrEdgeFromTerminal is returned when an edge starts at a terminal node.
	ErrEdgeFromTerminal = errors.New("pipeline: terminal node cannot have outgoing edges")

	// ErrNoEdge signals that no outgoing edge matched during a run. Compile
	// time reachability checks are supposed to make this impossible, so its
	// occurrence is an internal consistency fault, not a user-facing error.
	ErrNoEdge = errors.New("pipeline: no matching edge from stage")
)

// ValidationError reports every structural problem Compile found in the
// graph: cycles, nodes unreachable from the entry, and reachable nodes
// with no path to a terminal.
type ValidationError struct {
	Cycles      [][]string
	Unreachable []string
	DeadEnds    []string
}

func (e *ValidationError) Error() string {
	var parts []string
	for _, c := range e.Cycles {
		parts = append(parts, fmt.Sprintf("cycle %s", strings.Join(c, " -> ")))
	}
	if len(e.Unreachable) > 0 {
		parts = append(parts, fmt.Sprintf("unreachable from entry: %s", strings.Join(e.Unreachable, ", ")))
	}
	if len(e.DeadEnds) > 0 {
		parts = append(parts, fmt.Sprintf("no path to terminal: %s", strings.Join(e.DeadEnds, ", ")))
	}
	return "pipeline: invalid graph: " + strings.Join(parts, "; ")
}

// StageError wraps a collaborator failure with the stage and query it
// occurred on. The executor never retries; the error is surfaced to the
// caller as a failed result for that query only.
type StageError struct {
	Stage string
	Query string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline: stage %s failed for query %q: %v", e.Stage, e.Query, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
