package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"ragflow/internal/corpus"
	"ragflow/internal/logging"
	"ragflow/pkg/pipeline"
)

var (
	batchFile     string
	batchSeed     bool
	batchParallel int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Answer a file of questions, one per line",
	Long: "Reads questions from a file (one per line, blank lines and #-comments\n" +
		"skipped) and runs them through the pipeline concurrently. Answers print\nin input order once all runs finish.",
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchFile, "file", "f", "", "path to the questions file (required)")
	batchCmd.Flags().BoolVar(&batchSeed, "seed", false, "index the built-in demo corpus first")
	batchCmd.Flags().IntVar(&batchParallel, "parallel", 4, "max concurrent pipeline runs")
	_ = batchCmd.MarkFlagRequired("file")
}

func runBatch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	questions, err := readQuestions(batchFile)
	if err != nil {
		return err
	}
	if len(questions) == 0 {
		return fmt.Errorf("%s contains no questions", batchFile)
	}

	rt, err := buildRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	if batchSeed {
		if err := corpus.Ingest(ctx, rt.Embedder, rt.Index, corpus.Seed()); err != nil {
			return fmt.Errorf("seed corpus: %w", err)
		}
	}

	logger := logging.Component("batch")
	exec := pipeline.NewExecutor(rt.Plan)

	type answer struct {
		text string
		err  error
	}
	answers := make([]answer, len(questions))

	parallel := batchParallel
	if parallel <= 0 {
		parallel = 1
	}
	var mu sync.Mutex
	var failed int

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, q := range questions {
		g.Go(func() error {
			res, err := exec.Run(gctx, q)
			if err != nil {
				// One bad question must not sink the batch.
				logger.Warn("question failed", "question", q, "error", err)
				answers[i] = answer{err: err}
				mu.Lock()
				failed++
				mu.Unlock()
				return nil
			}
			text := res.Answer
			if res.Outcome == pipeline.OutcomeRejected {
				text = res.Reason
			}
			answers[i] = answer{text: text}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, q := range questions {
		fmt.Printf("Q: %s\n", q)
		if answers[i].err != nil {
			fmt.Printf("A: (failed: %v)\n\n", answers[i].err)
			continue
		}
		fmt.Printf("A: %s\n\n", answers[i].text)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d questions failed", failed, len(questions))
	}
	return nil
}

func readQuestions(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open questions: %w", err)
	}
	defer f.Close()

	var questions []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		questions = append(questions, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read questions: %w", err)
	}
	return questions, nil
}
