// Package main provides the citegraph CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/matsen/citegraph/internal/logger"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	logLevel    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// SilenceErrors hides cobra's own messages (unknown flags, bad arg counts)
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "citegraph",
	Short: "Citation graphs from OpenAlex works",
	Long: `citegraph builds citation graphs from OpenAlex work records.

Commands:
  fetch   download authors and works from OpenAlex as JSON lines
  graph   build a works or authors citation graph (GML or GraphML)
  plot    draw a histogram of the citations received per year
  view    write an interactive HTML view of a works or authors graph

Records are exchanged as JSONL: one OpenAlex object per line.
Status output is JSON by default; use --human for plain text.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Load .env file if present (for OPENALEX_EMAIL, OPENALEX_API_KEY)
	_ = godotenv.Load()

	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", logger.DefaultLevel, "Log level (debug, info, warn, error)")
	rootCmd.Version = Version
}

// mustNewLogger creates the stderr logger, exits on an invalid level.
func mustNewLogger() *logger.Logger {
	log, err := logger.New(logLevel)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	return log
}
