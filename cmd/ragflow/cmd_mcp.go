package main

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"ragflow/internal/corpus"
	"ragflow/internal/logging"
	mcpserver "ragflow/internal/mcp"
	"ragflow/pkg/pipeline"
)

var mcpSeed bool

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server over stdio for editor integration",
	Long: "Starts an MCP server over stdin/stdout exposing ask and\n" +
		"index_documents tools. The server watches for parent process death\nand self-terminates, so a disconnected editor leaves no zombies.",
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().BoolVar(&mcpSeed, "seed", false, "index the built-in demo corpus on startup")
}

func runMCP(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	rt, err := buildRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	if mcpSeed {
		if err := corpus.Ingest(ctx, rt.Embedder, rt.Index, corpus.Seed()); err != nil {
			return fmt.Errorf("seed corpus: %w", err)
		}
	}

	exec := pipeline.NewExecutor(rt.Plan,
		pipeline.WithObserver(&pipeline.LogObserver{Logger: logging.Component("pipeline")}))
	srv := mcpserver.NewServer(exec, rt.Embedder, rt.Index)

	mcpserver.WatchParent(ctx, cancel)

	logging.Component("mcp").Info("starting MCP server over stdio")
	return srv.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}
