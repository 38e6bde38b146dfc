package pipeline

import (
	"context"
	"fmt"
	"sort"
)

// StageFunc is one named unit of work. It reads and mutates the shared
// QueryContext; a returned error aborts the current run.
type StageFunc func(ctx context.Context, qc *QueryContext) error

// Predicate guards an edge. A nil predicate always matches.
type Predicate func(qc *QueryContext) bool

// Outcome classifies how a run terminated.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeRejected  Outcome = "rejected"
	OutcomeFailed    Outcome = "failed"
)

// Graph declares the stage topology before any query is processed.
// Declaration (AddNode/AddEdge) is decoupled from Compile so the topology
// can be unit-tested without a live model or index behind the stages.
type Graph struct {
	stages    map[string]StageFunc
	terminals map[string]Outcome
	order     []string // node declaration order, for deterministic diagnostics
	edges     []edgeDef
	entry     string
}

type edgeDef struct {
	from string
	to   string
	when Predicate
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		stages:    make(map[string]StageFunc),
		terminals: make(map[string]Outcome),
	}
}

// AddNode registers a named stage. Fails with ErrDuplicateNode if the
// name is already taken by a stage or a terminal.
func (g *Graph) AddNode(name string, fn StageFunc) error {
	if g.exists(name) {
		return fmt.Errorf("%w: %q", ErrDuplicateNode, name)
	}
	if fn == nil {
		return fmt.Errorf("pipeline: node %q has nil stage function", name)
	}
	g.stages[name] = fn
	g.order = append(g.order, name)
	return nil
}

// AddTerminal registers a terminal node with the outcome a run adopts on
// reaching it. Only OutcomeCompleted and OutcomeRejected are valid.
func (g *Graph) AddTerminal(name string, outcome Outcome) error {
	if g.exists(name) {
		return fmt.Errorf("%w: %q", ErrDuplicateNode, name)
	}
	if outcome != OutcomeCompleted && outcome != OutcomeRejected {
		return fmt.Errorf("pipeline: terminal %q has invalid outcome %q", name, outcome)
	}
	g.terminals[name] = outcome
	g.order = append(g.order, name)
	return nil
}

// AddEdge connects two registered nodes. Edges are evaluated in the order
// they were added; the first whose predicate matches wins. A nil predicate
// always matches.
func (g *Graph) AddEdge(from, to string, when Predicate) error {
	if !g.exists(from) {
		return fmt.Errorf("%w: edge source %q", ErrUnknownNode, from)
	}
	if !g.exists(to) {
		return fmt.Errorf("%w: edge target %q", ErrUnknownNode, to)
	}
	if _, ok := g.terminals[from]; ok {
		return fmt.Errorf("%w: %q", ErrEdgeFromTerminal, from)
	}
	g.edges = append(g.edges, edgeDef{from: from, to: to, when: when})
	return nil
}

// SetEntry designates the node every run starts from.
func (g *Graph) SetEntry(name string) error {
	if !g.exists(name) {
		return fmt.Errorf("%w: entry %q", ErrUnknownNode, name)
	}
	g.entry = name
	return nil
}

func (g *Graph) exists(name string) bool {
	if _, ok := g.stages[name]; ok {
		return true
	}
	_, ok := g.terminals[name]
	return ok
}

// Compile validates the topology and returns an immutable Plan. The graph
// must be acyclic, every declared node must be reachable from the entry,
// and every reachable stage must have a path to some terminal. All
// violations found are reported together in a *ValidationError.
func (g *Graph) Compile() (*Plan, error) {
	if g.entry == "" {
		return nil, ErrNoEntry
	}

	out := make(map[string][]edgeDef, len(g.stages))
	for _, e := range g.edges {
		out[e.from] = append(out[e.from], e)
	}

	verr := &ValidationError{}

	// Cycle detection: DFS with three colors over stage nodes.
	const (
		white = iota
		grey
		black
	)
	color := make(map[string]int, len(g.order))
	var stack []string
	var visit func(name string)
	visit = func(name string) {
		color[name] = grey
		stack = append(stack, name)
		for _, e := range out[name] {
			switch color[e.to] {
			case white:
				visit(e.to)
			case grey:
				// Found a back edge; capture the cycle slice of the stack.
				for i, n := range stack {
					if n == e.to {
						cycle := append(append([]string{}, stack[i:]...), e.to)
						verr.Cycles = append(verr.Cycles, cycle)
						break
					}
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[name] = black
	}
	visit(g.entry)

	for _, name := range g.order {
		if color[name] == white {
			verr.Unreachable = append(verr.Unreachable, name)
		}
	}

	// Path-to-terminal check: reverse reachability from the terminals.
	canFinish := make(map[string]bool, len(g.order))
	for t := range g.terminals {
		canFinish[t] = true
	}
	for changed := true; changed; {
		changed = false
		for _, e := range g.edges {
			if canFinish[e.to] && !canFinish[e.from] {
				canFinish[e.from] = true
				changed = true
			}
		}
	}
	for _, name := range g.order {
		if color[name] != white && !canFinish[name] {
			verr.DeadEnds = append(verr.DeadEnds, name)
		}
	}

	if len(verr.Cycles) > 0 || len(verr.Unreachable) > 0 || len(verr.DeadEnds) > 0 {
		sort.Strings(verr.Unreachable)
		sort.Strings(verr.DeadEnds)
		return nil, verr
	}

	stages := make(map[string]StageFunc, len(g.stages))
	for k, v := range g.stages {
		stages[k] = v
	}
	terminals := make(map[string]Outcome, len(g.terminals))
	for k, v := range g.terminals {
		terminals[k] = v
	}
	edges := make(map[string][]planEdge, len(out))
	for from, defs := range out {
		for _, e := range defs {
			edges[from] = append(edges[from], planEdge{to: e.to, when: e.when})
		}
	}
	return &Plan{
		entry:     g.entry,
		stages:    stages,
		terminals: terminals,
		edges:     edges,
		order:     append([]string{}, g.order...),
	}, nil
}

// Plan is the validated, immutable execution topology produced by Compile.
// It holds no per-query state and is safe to share across concurrent runs.
type Plan struct {
	entry     string
	stages    map[string]StageFunc
	terminals map[string]Outcome
	edges     map[string][]planEdge
	order     []string
}

type planEdge struct {
	to   string
	when Predicate
}

// Entry returns the name of the entry node.
func (p *Plan) Entry() string { return p.entry }

// Nodes returns all node names in declaration order.
func (p *Plan) Nodes() []string { return append([]string{}, p.order...) }

// IsTerminal reports whether the named node is a terminal, and its outcome.
func (p *Plan) IsTerminal(name string) (Outcome, bool) {
	o, ok := p.terminals[name]
	return o, ok
}
