package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"tagexport/internal/history"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var historyLimit int

// historyCmd lists past runs from the ledger
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List previous export runs",
	Args:  cobra.NoArgs,
	RunE:  showHistory,
}

func showHistory(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if _, err := os.Stat(cfg.History.Path); os.IsNotExist(err) {
		fmt.Fprintln(out, "No runs recorded yet.")
		return nil
	}

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	runs, err := store.List(ctx, historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded yet.")
		return nil
	}

	aborted := color.New(color.FgRed).SprintFunc()
	exported := color.New(color.FgGreen).SprintFunc()

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Started", "User", "Region", "Outcome", "Records", "Fully Tagged", "Duration", "Detail"})
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	for _, r := range runs {
		outcome, detail := exported(r.Outcome), r.ReportPath
		if r.Outcome == history.OutcomeAborted {
			outcome, detail = aborted(r.Outcome), r.Error
		}
		table.Append([]string{
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.Username,
			r.Region,
			outcome,
			strconv.Itoa(r.Records),
			strconv.Itoa(r.FullyTagged),
			r.Duration().Round(time.Second).String(),
			detail,
		})
	}
	table.Render()
	return nil
}
