// Package cli implements the gobulk command line
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// ErrItemsFailed is returned when a run finished with at least one failed item
var ErrItemsFailed = errors.New("one or more items failed")

// flags shared by the document commands
type runFlags struct {
	configPath     string
	itemsPath      string
	outputJSON     bool
	metricsFile    string
	parallel       bool
	batchSize      int
	maxConcurrency int
	stopOnError    bool
}

// NewRootCmd builds the gobulk command tree
func NewRootCmd() *cobra.Command {
	flags := &runFlags{}

	rootCmd := &cobra.Command{
		Use:   "gobulk",
		Short: "Bulk document operations against Appwrite",
		Long: `gobulk creates, updates or deletes many Appwrite documents in one run.

Items are processed in chunks, optionally in parallel, with transient
failures retried using exponential backoff.

Examples:
  # create documents from a JSON array
  gobulk create --config gobulk.yaml --items docs.json

  # delete in parallel and print the full result as JSON
  gobulk delete --config gobulk.yaml --items ids.json --parallel --json`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "gobulk.yaml", "path to the YAML config")
	pf.StringVarP(&flags.itemsPath, "items", "i", "", "path to the JSON item array, - for stdin")
	pf.BoolVarP(&flags.outputJSON, "json", "j", false, "print the full result as JSON")
	pf.StringVar(&flags.metricsFile, "metrics-file", "", "write Prometheus metrics to this file after the run")
	pf.BoolVar(&flags.parallel, "parallel", false, "process the items of a chunk concurrently")
	pf.IntVar(&flags.batchSize, "batch-size", 0, "items per chunk (overrides config)")
	pf.IntVar(&flags.maxConcurrency, "max-concurrency", 0, "concurrent operations per chunk (overrides config)")
	pf.BoolVar(&flags.stopOnError, "stop-on-error", false, "stop after the first chunk with a failure")

	rootCmd.AddCommand(newCreateCmd(flags))
	rootCmd.AddCommand(newUpdateCmd(flags))
	rootCmd.AddCommand(newDeleteCmd(flags))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Execute runs the command line and returns the process exit code
func Execute() int {
	return run(NewRootCmd(), os.Args[1:], os.Stderr)
}

func run(cmd *cobra.Command, args []string, stderr io.Writer) int {
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, ErrItemsFailed) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}
