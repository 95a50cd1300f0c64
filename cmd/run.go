package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/namepairs/internal/pipeline"
)

var (
	runStatements string
	runResolver   string
	runDB         string
	runOutput     string
	runFormat     string
	runStages     string
	runSeed       int64
	runSampleSize int
	runJSON       bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pair generation pipeline",
	Long: `Loads statements and resolver judgements into the working store, builds
positive and negative name pairs, scores them and exports the pair table.

Examples:
  # Full run with defaults from config.yaml / NAMEPAIRS_* env
  namepairs run

  # Re-export an existing working store as TSV
  namepairs run --stages export --format tsv --output pairs.tsv`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		applyRunFlags(cmd)

		if err := cfg.Validate("run"); err != nil {
			return err
		}
		stages, err := pipeline.ParseStages(runStages)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		result, err := pipeline.New(cfg, st).Run(ctx, stages)
		if err != nil {
			return eris.Wrap(err, "run")
		}

		if runJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		zap.L().Info("run complete",
			zap.String("run_id", result.RunID),
			zap.String("output", cfg.Output.Path),
			zap.Int64("positive", result.Counters.Positive),
			zap.Int64("negative", result.Counters.Negative),
		)
		return nil
	},
}

// applyRunFlags copies explicitly set flags over the loaded configuration.
func applyRunFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("statements") {
		cfg.Input.StatementsPath = runStatements
	}
	if flags.Changed("resolver") {
		cfg.Input.ResolverPath = runResolver
	}
	if flags.Changed("db") {
		cfg.Store.Path = runDB
	}
	if flags.Changed("output") {
		cfg.Output.Path = runOutput
	}
	if flags.Changed("format") {
		cfg.Output.Format = runFormat
	}
	if flags.Changed("seed") {
		cfg.Pairs.Seed = runSeed
	}
	if flags.Changed("sample-size") {
		cfg.Pairs.SampleSize = runSampleSize
	}
}

func init() {
	runCmd.Flags().StringVar(&runStatements, "statements", "", "statements CSV or ZIP (overrides input.statements_path)")
	runCmd.Flags().StringVar(&runResolver, "resolver", "", "resolver NDJSON log (overrides input.resolver_path)")
	runCmd.Flags().StringVar(&runDB, "db", "", "working store path (overrides store.path)")
	runCmd.Flags().StringVar(&runOutput, "output", "", "pairs output path (overrides output.path)")
	runCmd.Flags().StringVar(&runFormat, "format", "", "output format: csv, tsv or xlsx (overrides output.format)")
	runCmd.Flags().StringVar(&runStages, "stages", "", "comma-separated stages to run (default all)")
	runCmd.Flags().Int64Var(&runSeed, "seed", 0, "random seed for negative sampling (overrides pairs.seed)")
	runCmd.Flags().IntVar(&runSampleSize, "sample-size", 0, "number of ids sampled for negative pairs (overrides pairs.sample_size)")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "print the run result as JSON")
	rootCmd.AddCommand(runCmd)
}
