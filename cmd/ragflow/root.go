// ragflow answers questions over an indexed document corpus through a
// staged pipeline: rewrite, retrieve, classify, rerank, generate.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"ragflow/internal/config"
	"ragflow/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "ragflow",
	Short: "Question answering over an indexed document corpus",
	Long: "Ragflow runs questions through a staged retrieval pipeline:\n" +
		"rewrite, retrieve, classify, rerank, generate. Off-topic questions\nare rejected before the expensive stages run.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: setup,
	SilenceUsage:      true,
}

// cfg is the loaded configuration, available to all commands after setup.
var cfg config.Config

func setup(cmd *cobra.Command, _ []string) error {
	// A missing .env is fine; explicit config and real env still apply.
	_ = godotenv.Load()

	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}

	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logging.Setup(level, cfg.Log.Format, nil)
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
