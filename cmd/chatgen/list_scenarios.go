// cmd/chatgen/list_scenarios.go
package chatgen

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mwiater/chatgen/internal/prompt"
	"github.com/mwiater/chatgen/internal/scenario"
)

var sectionStyle = lipgloss.NewStyle().Bold(true).Underline(true)

// scenariosCmd implements 'list scenarios', which prints the catalog the
// sampler draws from, including any configured overrides.
var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List issues, outcomes, sentiments, tones and rules",
	Long:  `The 'scenarios' subcommand prints the scenario catalog: the issue descriptions, the resolution, sentiment and tone values, and the numbered rule checklist every prompt embeds.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		catalog, err := cfg.Catalog()
		if err != nil {
			return err
		}
		printCatalog(cmd.OutOrStdout(), catalog)
		return nil
	},
}

func init() {
	listCmd.AddCommand(scenariosCmd)
}

func printCatalog(w io.Writer, c scenario.Catalog) {
	fmt.Fprintln(w, sectionStyle.Render("Issues"))
	for _, issue := range c.Issues() {
		fmt.Fprintf(w, "  - %s\n", issue)
	}

	fmt.Fprintln(w, "\n"+sectionStyle.Render("Resolutions"))
	for _, r := range c.Resolutions() {
		fmt.Fprintf(w, "  - %s\n", r)
	}

	fmt.Fprintln(w, "\n"+sectionStyle.Render("Sentiments"))
	for _, s := range c.Sentiments() {
		fmt.Fprintf(w, "  - %s\n", s)
	}
	fmt.Fprintf(w, "  %s\n", prompt.SentimentLegend)

	fmt.Fprintln(w, "\n"+sectionStyle.Render("Tones"))
	for _, t := range c.Tones() {
		fmt.Fprintf(w, "  - %s\n", t)
	}
	fmt.Fprintf(w, "  %s\n", prompt.ToneLegend)

	fmt.Fprintln(w, "\n"+sectionStyle.Render("Rules"))
	for i, rule := range c.Rules() {
		fmt.Fprintf(w, "  %2d. %s\n", i+1, rule)
	}
}
