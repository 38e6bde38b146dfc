package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ragflow/internal/config"
	"ragflow/internal/corpus"
	"ragflow/internal/logging"
	"ragflow/pkg/pipeline"
)

var (
	askSeed  bool
	askTrace bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Run one question through the pipeline and print the answer",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askSeed, "seed", false, "index the built-in demo corpus before asking")
	askCmd.Flags().BoolVar(&askTrace, "trace", false, "print the visited stages after the answer")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	question := strings.Join(args, " ")

	rt, err := buildRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	// A memory index starts empty every run, so seed it with the demo
	// corpus; a persistent index is only seeded on request.
	if askSeed || cfg.Index.Type == config.IndexMemory {
		if err := corpus.Ingest(ctx, rt.Embedder, rt.Index, corpus.Seed()); err != nil {
			return fmt.Errorf("seed corpus: %w", err)
		}
	}

	exec := pipeline.NewExecutor(rt.Plan,
		pipeline.WithObserver(&pipeline.LogObserver{Logger: logging.Component("pipeline")}))
	res, err := exec.Run(ctx, question)
	if err != nil {
		var serr *pipeline.StageError
		if errors.As(err, &serr) {
			return fmt.Errorf("stage %s failed: %w", serr.Stage, serr.Err)
		}
		return err
	}

	switch res.Outcome {
	case pipeline.OutcomeRejected:
		fmt.Println(res.Reason)
	default:
		fmt.Println(res.Answer)
	}

	if askTrace {
		fmt.Println()
		for _, e := range res.Context.Trace() {
			fmt.Printf("  %s\n", e.Stage)
		}
	}
	return nil
}
