package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/0ne-nine9/arbitr/internal/extract"
)

var classifyTaxonomy string

// classifyCmd represents the classify command
var classifyCmd = &cobra.Command{
	Use:   "classify [text...]",
	Short: "Classify a piece of text and print the analysis as JSON",
	Long: `Classify runs the industry, country and attribution classifiers over
the given text (or stdin when no text is given) and prints the analysis.

Example:
  arbitr classify "GRU officers blamed for sabotage of a gas pipeline in Germany"
  curl -s https://example.com/story.txt | arbitr classify`,
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().StringVar(&classifyTaxonomy, "taxonomy", "", "YAML industry taxonomy replacing the built-in one")
}

func runClassify(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	if len(args) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = string(data)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("no text to classify")
	}

	var taxonomy *extract.Taxonomy
	if classifyTaxonomy != "" {
		t, err := extract.LoadTaxonomy(classifyTaxonomy)
		if err != nil {
			return err
		}
		taxonomy = t
	}

	analysis := extract.NewAnalyzer(taxonomy).Analyze(strings.ToLower(text))

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(analysis)
}
