// cmd/chatgen/root.go
package chatgen

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mwiater/chatgen/internal/config"
	"github.com/mwiater/chatgen/internal/logger"
)

var cfgFile string

// rootCmd is the base command. Run without a subcommand it generates a batch
// exactly like 'chatgen generate'.
var rootCmd = &cobra.Command{
	Use:   "chatgen",
	Short: "Generate synthetic customer-support chat transcripts",
	Long: `chatgen asks an OpenAI-compatible chat-completion endpoint for synthetic
customer-support conversations. Each conversation is built from a randomly
sampled issue, resolution, sentiment and tone, and alternately follows or
violates a checklist of agent rules. Every result is written to its own text
file in the output directory.

Run without a subcommand, chatgen generates a full batch with the configured
defaults (50 transcripts into ./chats).`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindGenerateFlags(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerateCmd(cmd)
	},
}

// Execute runs the root command with a context that is cancelled on SIGINT
// or SIGTERM. It prints any returned error and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadEnvFile)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default ./config.json if present)")
	rootCmd.PersistentFlags().String("log-level", config.DefaultLogLevel, "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", config.DefaultLogFormat, "log format: console or json")

	viper.BindPFlag(config.KeyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag(config.KeyLogFormat, rootCmd.PersistentFlags().Lookup("log-format"))

	addGenerateFlags(rootCmd)
}

func loadEnvFile() {
	if err := config.LoadEnvFile(config.EnvFileFromEnv()); err != nil {
		fmt.Fprintln(os.Stderr, "Warning:", err)
	}
}

// loadConfig resolves the configuration on the global viper instance.
var loadConfig = func() (*config.Config, error) {
	return config.Load(viper.GetViper(), cfgFile)
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.New(cfg.LogLevel, cfg.LogFormat)
}
