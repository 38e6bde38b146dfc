// Package mcp exposes the question-answering pipeline as MCP tools over
// stdio, so editor agents can ask questions and index documents directly.
package mcp

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"ragflow/internal/corpus"
	"ragflow/internal/embed"
	"ragflow/internal/index"
	"ragflow/internal/logging"
	"ragflow/pkg/pipeline"
)

// Server wraps the MCP SDK server around a compiled pipeline.
type Server struct {
	MCPServer *sdkmcp.Server

	executor *pipeline.Executor
	embedder embed.Embedder
	index    index.VectorIndex
}

// NewServer creates an MCP server exposing ask and index_documents tools.
func NewServer(exec *pipeline.Executor, e embed.Embedder, idx index.VectorIndex) *Server {
	s := &Server{executor: exec, embedder: e, index: idx}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "ragflow", Version: "dev"},
		nil,
	)
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "ask",
		Description: "Ask a question against the indexed documents. Returns the answer, or a rejection for off-topic questions.",
	}, s.handleAsk)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "index_documents",
		Description: "Embed and index documents so later ask calls can retrieve them. Replaces documents with the same id.",
	}, s.handleIndexDocuments)
}

type askInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the indexed documents"`
}

type askOutput struct {
	Outcome string   `json:"outcome"`
	Answer  string   `json:"answer,omitempty"`
	Reason  string   `json:"reason,omitempty"`
	Stages  []string `json:"stages"`
}

type toolDocument struct {
	ID      string `json:"id,omitempty" jsonschema:"stable document id; generated when omitted"`
	Source  string `json:"source,omitempty" jsonschema:"where the document came from"`
	Content string `json:"content" jsonschema:"the document text"`
}

type indexDocumentsInput struct {
	Documents []toolDocument `json:"documents" jsonschema:"documents to embed and index"`
}

type indexDocumentsOutput struct {
	Indexed int `json:"indexed"`
}

func (s *Server) handleAsk(ctx context.Context, _ *sdkmcp.CallToolRequest, input askInput) (*sdkmcp.CallToolResult, askOutput, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, askOutput{}, fmt.Errorf("question is required")
	}

	res, err := s.executor.Run(ctx, question)
	if err != nil {
		return nil, askOutput{}, fmt.Errorf("ask: %w", err)
	}

	out := askOutput{
		Outcome: string(res.Outcome),
		Answer:  res.Answer,
		Reason:  res.Reason,
	}
	for _, entry := range res.Context.Trace() {
		out.Stages = append(out.Stages, entry.Stage)
	}
	logging.Component("mcp").Info("ask handled",
		"outcome", out.Outcome, "stages", len(out.Stages))
	return nil, out, nil
}

func (s *Server) handleIndexDocuments(ctx context.Context, _ *sdkmcp.CallToolRequest, input indexDocumentsInput) (*sdkmcp.CallToolResult, indexDocumentsOutput, error) {
	if len(input.Documents) == 0 {
		return nil, indexDocumentsOutput{}, fmt.Errorf("documents is required")
	}

	docs := make([]pipeline.Document, 0, len(input.Documents))
	for i, td := range input.Documents {
		if strings.TrimSpace(td.Content) == "" {
			return nil, indexDocumentsOutput{}, fmt.Errorf("document %d has no content", i)
		}
		id := td.ID
		if id == "" {
			id = fmt.Sprintf("mcp-doc-%d", i)
		}
		meta := map[string]string{}
		if td.Source != "" {
			meta["source"] = td.Source
		}
		docs = append(docs, pipeline.Document{ID: id, Content: td.Content, Metadata: meta})
	}

	if err := corpus.Ingest(ctx, s.embedder, s.index, docs); err != nil {
		return nil, indexDocumentsOutput{}, fmt.Errorf("index_documents: %w", err)
	}
	logging.Component("mcp").Info("documents indexed", "count", len(docs))
	return nil, indexDocumentsOutput{Indexed: len(docs)}, nil
}
