package stages

import (
	"fmt"

	"ragflow/internal/embed"
	"ragflow/internal/index"
	"ragflow/internal/llm"
	"ragflow/pkg/pipeline"
)

// Config holds the tunable stage parameters. Retrieval cap and rerank
// keep are deliberately explicit settings rather than constants.
type Config struct {
	TopK       int // retrieval cap
	RerankKeep int // max documents surviving rerank
}

// DefaultConfig mirrors the historical top-3 retrieval window.
func DefaultConfig() Config {
	return Config{TopK: 3, RerankKeep: 3}
}

// Deps are the collaborators behind the stage functions. All three are
// shared, read-mostly, and must be safe for concurrent queries.
type Deps struct {
	LLM      llm.Service
	Embedder embed.Embedder
	Index    index.VectorIndex
}

// Build declares the full query-answering topology and compiles it:
//
//	rewrite_query -> retrieve_documents -> classify_topic
//	classify_topic -> off_topic_response   (verdict out-of-domain)
//	classify_topic -> rerank_documents     (otherwise)
//	rerank_documents -> generate_answer -> done
//
// The conditional fork is a guarded edge in the topology rather than an
// inline conditional, so the branch is visible and testable on its own.
func Build(deps Deps, cfg Config) (*pipeline.Plan, error) {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultConfig().TopK
	}
	if cfg.RerankKeep <= 0 {
		cfg.RerankKeep = DefaultConfig().RerankKeep
	}

	rewriter := &Rewriter{LLM: deps.LLM}
	retriever := &Retriever{Embedder: deps.Embedder, Index: deps.Index, TopK: cfg.TopK}
	classifier := &Classifier{LLM: deps.LLM}
	reranker := &Reranker{LLM: deps.LLM, Keep: cfg.RerankKeep}
	generator := &Generator{LLM: deps.LLM}

	g := pipeline.NewGraph()
	steps := []error{
		g.AddNode(StageRewrite, rewriter.Run),
		g.AddNode(StageRetrieve, retriever.Run),
		g.AddNode(StageClassify, classifier.Run),
		g.AddNode(StageRerank, reranker.Run),
		g.AddNode(StageGenerate, generator.Run),
		g.AddTerminal(TerminalRejected, pipeline.OutcomeRejected),
		g.AddTerminal(TerminalDone, pipeline.OutcomeCompleted),

		g.AddEdge(StageRewrite, StageRetrieve, nil),
		g.AddEdge(StageRetrieve, StageClassify, nil),
		g.AddEdge(StageClassify, TerminalRejected, func(qc *pipeline.QueryContext) bool {
			return qc.Verdict == pipeline.VerdictOutOfDomain
		}),
		g.AddEdge(StageClassify, StageRerank, nil),
		g.AddEdge(StageRerank, StageGenerate, nil),
		g.AddEdge(StageGenerate, TerminalDone, nil),

		g.SetEntry(StageRewrite),
	}
	for _, err := range steps {
		if err != nil {
			return nil, fmt.Errorf("build pipeline graph: %w", err)
		}
	}
	return g.Compile()
}
