// cmd/chatgen/generate.go
package chatgen

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mwiater/chatgen/internal/batch"
	"github.com/mwiater/chatgen/internal/config"
	"github.com/mwiater/chatgen/internal/generator"
	"github.com/mwiater/chatgen/internal/llm"
	"github.com/mwiater/chatgen/internal/metrics"
	"github.com/mwiater/chatgen/internal/scenario"
	"github.com/mwiater/chatgen/internal/tui"
)

// generateCmd implements 'generate', which runs one batch of transcripts.
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a batch of chat transcripts",
	Long: `The 'generate' command samples scenario parameters, asks the configured
model for one conversation per scenario, and writes each transcript to
<output-dir>/chat_NNN_<issue>_<resolution>_<sentiment>_<tone>_<follow|violate>.txt.
A failed generation is written as a placeholder transcript and the batch
continues.`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindGenerateFlags(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerateCmd(cmd)
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	addGenerateFlags(generateCmd)
}

// generateFlags maps flag names to config keys.
var generateFlags = map[string]string{
	"count":        config.KeyCount,
	"output-dir":   config.KeyOutputDir,
	"seed":         config.KeySeed,
	"tui":          config.KeyTUI,
	"metrics-file": config.KeyMetricsFile,
	"model":        config.KeyModel,
	"base-url":     config.KeyBaseURL,
	"timeout":      config.KeyRequestTimeout,
	"temperature":  config.KeyTemperature,
	"max-tokens":   config.KeyMaxTokens,
}

func addGenerateFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntP("count", "n", config.DefaultCount, "number of transcripts to generate")
	f.StringP("output-dir", "o", config.DefaultOutputDir, "directory the transcripts are written to")
	f.Uint64("seed", 0, "random seed for scenario sampling (0 derives one from the clock)")
	f.Bool("tui", false, "show an interactive progress view")
	f.String("metrics-file", "", "write Prometheus metrics for the run to this file")
	f.String("model", config.DefaultModel, "chat-completion model")
	f.String("base-url", llm.DefaultBaseURL, "OpenAI-compatible API base URL")
	f.Duration("timeout", 0, "per-request timeout (0 for none)")
	f.Float64("temperature", 0, "sampling temperature (endpoint default when unset)")
	f.Int("max-tokens", 0, "maximum completion tokens (endpoint default when unset)")
}

// bindGenerateFlags binds the generation flags of the command being run, so
// the root command and 'generate' can share config keys.
func bindGenerateFlags(cmd *cobra.Command) error {
	for name, key := range generateFlags {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// runBatch is swapped out in tests.
var runBatch = executeBatch

func runGenerateCmd(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateForGeneration(); err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	return runBatch(cmd.Context(), cfg, log, cmd.OutOrStdout())
}

// executeBatch wires the client, generator, metrics and driver for cfg and
// runs one batch, printing a summary to out.
func executeBatch(ctx context.Context, cfg *config.Config, log *zap.Logger, out io.Writer) error {
	catalog, err := cfg.Catalog()
	if err != nil {
		return err
	}

	seed := cfg.ResolveSeed(time.Now())
	if cfg.Seed == 0 {
		log.Info("derived sampling seed from clock", zap.Uint64("seed", seed))
	}

	opts := generator.Options{Model: cfg.Model, Temperature: cfg.Temperature}
	if cfg.MaxTokens != nil {
		opts.MaxTokens = *cfg.MaxTokens
	}
	client := llm.NewClient(cfg.BaseURL, cfg.APIKey, cfg.RequestTimeout)
	recorder := metrics.NewRecorder()

	d := &batch.Driver{
		Generator: generator.New(client, catalog, opts, log),
		Sampler:   scenario.NewSeededSampler(catalog, seed),
		Fs:        afero.NewOsFs(),
		Seed:      seed,
		Metrics:   recorder,
		Logger:    log.Named("batch"),
	}

	var sum *batch.Summary
	if cfg.TUI {
		sum, err = tui.Run(ctx, d, cfg.Count, cfg.OutputDir)
	} else {
		d.Reporter = batch.NewPlainReporter(out)
		sum, err = d.Run(ctx, cfg.Count, cfg.OutputDir)
	}
	if sum != nil {
		fmt.Fprint(out, "\n"+batch.RenderSummary(sum))
	}

	if cfg.MetricsFile != "" && sum != nil {
		if merr := recorder.WriteTextfile(cfg.MetricsFile); merr != nil {
			log.Error("failed to write metrics file", zap.String("path", cfg.MetricsFile), zap.Error(merr))
		}
	}
	return err
}
