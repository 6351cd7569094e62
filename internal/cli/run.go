package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jzx17/gobulk/internal/logging"
	"github.com/jzx17/gobulk/pkg/batch"
	"github.com/jzx17/gobulk/pkg/config"
	"github.com/jzx17/gobulk/pkg/documents"
)

// metricsNamespace prefixes every exported metric
const metricsNamespace = "gobulk"

// runDocuments loads config and items, runs the batch and prints the outcome
func runDocuments[T, R any](
	cmd *cobra.Command,
	flags *runFlags,
	parse func([]byte) ([]T, error),
	operation func(*documents.Client) batch.Operation[T, R],
) error {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	flags.apply(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	raw, err := readItems(cmd.InOrStdin(), flags.itemsPath)
	if err != nil {
		return err
	}
	items, err := parse(raw)
	if err != nil {
		return err
	}

	clientCfg := cfg.ClientConfig()
	clientCfg.Logger = logger.Named("appwrite")
	client, err := documents.NewClient(clientCfg)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	metrics, err := batch.NewMetrics(registry, metricsNamespace)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	coord := batch.NewCoordinator(
		batch.WithLogger(logger.Named("batch")),
		batch.WithMetrics(metrics),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	result, err := batch.Run(coord, ctx, items, operation(client), cfg.BatchOptions())
	if err != nil {
		return err
	}

	if flags.metricsFile != "" {
		if err := prometheus.WriteToTextfile(flags.metricsFile, registry); err != nil {
			logger.Warn("Failed to write metrics", zap.String("path", flags.metricsFile), zap.Error(err))
		}
	}

	if err := printResult(cmd.OutOrStdout(), result, flags.outputJSON); err != nil {
		return err
	}

	if result.Failed > 0 {
		return ErrItemsFailed
	}
	return nil
}

// apply lets explicitly set flags override the config file
func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("parallel") {
		cfg.Batch.Parallel = f.parallel
	}
	if flags.Changed("batch-size") {
		cfg.Batch.BatchSize = f.batchSize
	}
	if flags.Changed("max-concurrency") {
		cfg.Batch.MaxConcurrency = f.maxConcurrency
	}
	if flags.Changed("stop-on-error") {
		continueOnError := !f.stopOnError
		cfg.Batch.ContinueOnError = &continueOnError
	}
}

func readItems(stdin io.Reader, path string) ([]byte, error) {
	switch path {
	case "":
		return nil, fmt.Errorf("--items is required")
	case "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read items from stdin: %w", err)
		}
		return data, nil
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read items: %w", err)
		}
		return data, nil
	}
}

// jsonOutput is the document printed with --json
type jsonOutput[R any] struct {
	Summary string           `json:"summary"`
	Details batch.Details    `json:"details"`
	Result  *batch.Result[R] `json:"result"`
}

func printResult[R any](out io.Writer, result *batch.Result[R], asJSON bool) error {
	formatted := batch.Format(result)

	if asJSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(jsonOutput[R]{
			Summary: formatted.Summary,
			Details: formatted.Details,
			Result:  result,
		})
	}

	fmt.Fprintln(out, formatted.Summary)
	if !result.Complete() {
		fmt.Fprintf(out, "Stopped early: %d of %d items were not attempted\n",
			result.Total-len(result.Results), result.Total)
	}
	for _, e := range formatted.Details.Errors {
		message := e.Message
		if e.Err != nil {
			message = documents.FormatError(e.Err)
		}
		fmt.Fprintf(out, "  item %d: %s\n", e.Index, message)
	}
	return nil
}
