// cmd/chatgen/list_transcripts.go
package chatgen

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mwiater/chatgen/internal/config"
	"github.com/mwiater/chatgen/internal/generator"
	"github.com/mwiater/chatgen/internal/store"
)

var failedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))

// transcriptsFs is swapped for an in-memory filesystem in tests.
var transcriptsFs = afero.NewOsFs()

// transcriptsCmd implements 'list transcripts', which lists the transcript
// files in the output directory and marks the ones holding the failure
// placeholder.
var transcriptsCmd = &cobra.Command{
	Use:   "transcripts",
	Short: "List generated transcripts in the output directory",
	Long:  `The 'transcripts' subcommand lists the .txt transcript files in the configured output directory, in name order, and marks every file whose content is the generation failure placeholder.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := viper.BindPFlag(config.KeyOutputDir, cmd.Flags().Lookup("output-dir")); err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return listTranscripts(cmd.OutOrStdout(), store.New(transcriptsFs, cfg.OutputDir), transcriptsFs)
	},
}

func init() {
	listCmd.AddCommand(transcriptsCmd)
	transcriptsCmd.Flags().StringP("output-dir", "o", config.DefaultOutputDir, "directory to list")
}

func listTranscripts(w io.Writer, st *store.TranscriptStore, fs afero.Fs) error {
	if ok, _ := afero.DirExists(fs, st.Dir()); !ok {
		fmt.Fprintf(w, "0 transcripts in %s, 0 failed\n", st.Dir())
		return nil
	}
	names, err := st.List()
	if err != nil {
		return err
	}
	failed := 0
	for _, name := range names {
		text, err := st.Get(name)
		if err != nil {
			return err
		}
		if text == generator.Sentinel {
			failed++
			fmt.Fprintf(w, "  %s %s\n", name, failedStyle.Render("(failed)"))
			continue
		}
		fmt.Fprintf(w, "  %s\n", name)
	}
	fmt.Fprintf(w, "%d transcripts in %s, %d failed\n", len(names), st.Dir(), failed)
	return nil
}
