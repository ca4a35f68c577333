package main

import (
	"fmt"
	"time"

	"tagexport/internal/logging"
	"tagexport/internal/report"
	"tagexport/internal/tags"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// normalizeCmd rewrites an existing export without touching the console
var normalizeCmd = &cobra.Command{
	Use:   "normalize <raw.csv> <report.csv>",
	Short: "Normalize a Tag Editor CSV export that is already on disk",
	Long: `Reads a CSV exported from Tag Editor by hand and writes the canonical
12-column report, exactly as "run" does after its download.

Example:
  tagexport normalize resources.csv alice_all_20250303.csv`,
	Args: cobra.ExactArgs(2),
	RunE: normalizeFile,
}

func normalizeFile(cmd *cobra.Command, args []string) error {
	src, dst := args[0], args[1]
	timer := logging.StartTimer(logging.CategoryExport, "normalize")
	records, err := tags.NormalizeFile(src, dst)
	timer.StopWithThreshold(5 * time.Second)
	if err != nil {
		return fmt.Errorf("normalize %s: %w", src, err)
	}
	logging.Get(logging.CategoryExport).Info("Report written",
		zap.String("src", src), zap.String("dst", dst), zap.Int("records", len(records)))

	report.Summarize(dst, records).Render(cmd.OutOrStdout())
	return nil
}
