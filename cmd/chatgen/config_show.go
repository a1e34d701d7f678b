// cmd/chatgen/config_show.go
package chatgen

import (
	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"
)

// configCmd groups configuration subcommands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
	Long:  `The 'config' command groups subcommands that inspect the effective configuration. It performs no action on its own.`,
}

// configShowCmd implements 'config show'.
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long:  `The 'show' subcommand resolves defaults, the config file, CHATGEN_* environment variables and flags, and prints the result with the API key redacted.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		pp.ColoringEnabled = false
		_, err = pp.Fprintln(cmd.OutOrStdout(), cfg.Redacted())
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
}
