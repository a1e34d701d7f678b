// cmd/chatgen/prompt.go
package chatgen

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mwiater/chatgen/internal/config"
	"github.com/mwiater/chatgen/internal/generator"
	"github.com/mwiater/chatgen/internal/scenario"
)

var (
	promptSeed  uint64
	promptIndex int
)

var roleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))

// promptCmd implements 'prompt', which prints the messages one batch
// iteration would send, without calling the endpoint.
var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Preview the prompt for one sampled scenario",
	Long:  `The 'prompt' command samples scenario parameters exactly as a batch with the same seed would, and prints the system and user messages for the iteration at --index. No request is sent and no API key is needed.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if promptIndex < 0 {
			return fmt.Errorf("index must not be negative, got %d", promptIndex)
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		catalog, err := cfg.Catalog()
		if err != nil {
			return err
		}
		if promptSeed != 0 {
			cfg.Seed = promptSeed
		}
		seed := cfg.ResolveSeed(time.Now())
		renderPrompt(cmd.OutOrStdout(), cfg, catalog, seed, promptIndex)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(promptCmd)
	promptCmd.Flags().Uint64Var(&promptSeed, "seed", 0, "sampling seed (defaults to the configured seed, or the clock)")
	promptCmd.Flags().IntVar(&promptIndex, "index", 0, "0-based batch iteration to preview")
}

// renderPrompt replays the sampler up to index and prints that iteration's
// file name and messages.
func renderPrompt(w io.Writer, cfg *config.Config, catalog scenario.Catalog, seed uint64, index int) {
	sampler := scenario.NewSeededSampler(catalog, seed)
	var p scenario.Params
	for i := 0; i <= index; i++ {
		p = sampler.Sample(i)
	}

	req := generator.New(nil, catalog, generator.Options{Model: cfg.Model}, nil).Request(p)

	fmt.Fprintf(w, "# %s (seed %d, model %s)\n\n", p.FileName(index+1), seed, req.Model)
	for _, m := range req.Messages {
		fmt.Fprintln(w, roleStyle.Render(m.Role+":"))
		fmt.Fprintln(w, m.Content)
		fmt.Fprintln(w)
	}
}
