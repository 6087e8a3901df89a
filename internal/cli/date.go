package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/0ne-nine9/arbitr/internal/dates"
	"github.com/0ne-nine9/arbitr/internal/pipeline"
)

var (
	dateContext string
	dateNow     string
)

// dateCmd represents the date command
var dateCmd = &cobra.Command{
	Use:   "date <text>...",
	Short: "Normalize a raw date string",
	Long: `Date resolves a raw date string the way listing, meta and body dates are
resolved during analysis, and prints it as YYYY-MM-DD. Unresolvable input
prints "unknown" and exits non-zero.

Example:
  arbitr date "3 days ago" --now 2024-06-10
  arbitr date --context meta 2024-03-05T10:00:00Z
  arbitr date --context body "Posted on 12 March 2024 by staff"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDate,
}

func init() {
	rootCmd.AddCommand(dateCmd)
	dateCmd.Flags().StringVar(&dateContext, "context", "search", "where the text came from (search, meta, body)")
	dateCmd.Flags().StringVar(&dateNow, "now", "", "reference date for relative phrases (YYYY-MM-DD, default today)")
}

func runDate(cmd *cobra.Command, args []string) error {
	c, err := dates.ParseContext(dateContext)
	if err != nil {
		return err
	}

	now := time.Now()
	if dateNow != "" {
		d, err := dates.Parse(dateNow)
		if err != nil {
			return fmt.Errorf("parse --now: %w", err)
		}
		now = d.Time()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	d := pipeline.NewNormalizer(cfg.Dates).Normalize(strings.Join(args, " "), c, now)
	if d.IsZero() {
		fmt.Fprintln(cmd.OutOrStdout(), "unknown")
		return fmt.Errorf("no date found in %q", strings.Join(args, " "))
	}

	fmt.Fprintln(cmd.OutOrStdout(), d.String())
	return nil
}
