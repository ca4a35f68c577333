package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tagexport/internal/browser"
	"tagexport/internal/config"
	"tagexport/internal/console"
	"tagexport/internal/export"
	"tagexport/internal/history"
	"tagexport/internal/logging"
	"tagexport/internal/prompt"
	"tagexport/internal/report"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Run flags, shared by the root command and "run".
var (
	accountID string
	username  string
	outputDir string
	headless  bool
	strict    bool
	plain     bool
)

// runCmd performs one export
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Sign in to the console and export the Tag Editor inventory",
	Long: `Drives the AWS console through sign-in (with MFA when required), opens
Tag Editor, selects all regions or a single one and every resource type,
exports all tags and writes the canonical report to the output directory
as <username>_<region>_<YYYYMMDD>.csv.

The password and MFA code are only ever read from the terminal.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&accountID, "account", "", "AWS account id (prompted when empty)")
	cmd.Flags().StringVarP(&username, "username", "u", "", "IAM username (prompted when empty)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (overrides config)")
	cmd.Flags().BoolVar(&headless, "headless", false, "Run Chrome without a window")
	cmd.Flags().BoolVar(&strict, "strict", false, "Abort when results are not ready instead of exporting anyway")
	cmd.Flags().BoolVar(&plain, "plain", false, "Use plain line prompts and no spinner")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	applyRunFlags(cmd, cfg)
	out := cmd.OutOrStdout()
	runID := uuid.NewString()
	interactive := !plain && prompt.IsInteractive(os.Stdin)

	mgr := browser.NewSessionManager(browserConfig(cfg), logging.Get(logging.CategoryBrowser))
	driver, err := mgr.NewDriver(ctx)
	if err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}

	coord := export.NewCoordinator(cfg.Export.OutputDir,
		export.WithLogger(logging.Get(logging.CategoryExport)))
	logger.Info("Starting export run", zap.String("run", runID), zap.String("output_dir", coord.OutputDir()))

	var observer console.Observer = logObserver{}
	var spinner *spinnerObserver
	if interactive {
		spinner = newSpinnerObserver(cmd.ErrOrStderr())
		observer = spinner
	}

	machine := console.NewMachine(driver, newPrompter(cmd, interactive), coord, console.Options{
		SignInURL:       cfg.Console.SignInURL,
		DropdownCSS:     cfg.Console.DropdownSelector,
		Timings:         timings(cfg.Console.Timeouts),
		StrictReadiness: cfg.Console.StrictReadiness,
		Credentials:     console.Credentials{AccountID: accountID, Username: username},
		Observer:        observer,
		Logger:          logging.Get(logging.CategorySession).With(zap.String("run", runID)),
	})

	started := time.Now()
	outcome, runErr := machine.Run(ctx)
	if spinner != nil {
		spinner.Stop()
	}

	var summary *report.Summary
	if runErr == nil && outcome.Result != nil {
		s := report.Summarize(outcome.Result.Path, outcome.Result.Records)
		s.Render(out)
		summary = &s
	}

	recordRun(runID, started, outcome, summary, runErr)

	if runErr != nil {
		explain(cmd.ErrOrStderr(), runErr)
		return runErr
	}
	return nil
}

func applyRunFlags(cmd *cobra.Command, c *config.Config) {
	if cmd.Flags().Changed("headless") {
		c.Browser.Headless = headless
	}
	if cmd.Flags().Changed("strict") {
		c.Console.StrictReadiness = strict
	}
	if outputDir != "" {
		c.Export.OutputDir = outputDir
	}
}

func newPrompter(cmd *cobra.Command, interactive bool) console.Prompter {
	if interactive {
		return prompt.NewTerminal(os.Stdin, cmd.OutOrStdout())
	}
	return prompt.NewLine(cmd.InOrStdin(), cmd.OutOrStdout())
}

// browserConfig maps the file config onto the browser package's settings.
func browserConfig(c *config.Config) browser.Config {
	bc := browser.Config{
		DebuggerURL:         c.Browser.DebuggerURL,
		Headless:            c.Browser.Headless,
		ViewportWidth:       c.Browser.ViewportWidth,
		ViewportHeight:      c.Browser.ViewportHeight,
		NavigationTimeoutMs: int(c.Browser.GetNavigationTimeout().Milliseconds()),
		ActionTimeoutMs:     int(c.Browser.GetActionTimeout().Milliseconds()),
		DownloadTimeoutMs:   int(c.Browser.GetDownloadTimeout().Milliseconds()),
		DownloadDir:         c.Export.DownloadDir,
	}
	bin := c.Browser.ChromeBin
	if bin == "" && len(c.Browser.Flags) > 0 {
		bin, _ = launcher.LookPath()
	}
	if bin != "" {
		bc.Launch = append([]string{bin}, c.Browser.Flags...)
	}
	return bc
}

func timings(t config.TimeoutsConfig) console.Timings {
	return console.Timings{
		StepPause:     t.GetStepPause(),
		MFAProbe:      t.GetMFAProbe(),
		Dropdown:      t.GetDropdown(),
		FeatureSearch: t.GetFeatureSearch(),
		ResultsReady:  t.GetResultsReady(),
		ExportMenu:    t.GetExportMenu(),
		NetworkIdle:   t.GetNetworkIdle(),
	}
}

// recordRun appends the run to the ledger. Ledger failures never fail the
// export.
func recordRun(runID string, started time.Time, outcome *console.Outcome, summary *report.Summary, runErr error) {
	if !cfg.History.Enabled || outcome == nil {
		return
	}
	log := logging.Get(logging.CategoryHistory)

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		log.Warn("Failed to open history", zap.Error(err))
		return
	}
	defer store.Close()

	run := newRun(runID, started, time.Now(), outcome, summary, runErr)
	// The run context may already be canceled; the ledger write is short.
	if err := store.Record(context.Background(), &run); err != nil {
		log.Warn("Failed to record run", zap.Error(err))
	}
}

func newRun(runID string, started, finished time.Time, outcome *console.Outcome, summary *report.Summary, runErr error) history.Run {
	run := history.Run{
		ID:         runID,
		StartedAt:  started,
		FinishedAt: finished,
		Username:   outcome.Username,
		Region:     outcome.Region.Label(),
		Outcome:    history.OutcomeExported,
		FinalState: outcome.State.String(),
	}
	if runErr != nil {
		run.Outcome = history.OutcomeAborted
		run.Error = runErr.Error()
	}
	if summary != nil {
		run.ReportPath = summary.Path
		run.Records = summary.Total
		run.FullyTagged = summary.FullyTagged()
	}
	return run
}

// explain prints a hint for failures the user can act on.
func explain(w io.Writer, err error) {
	var se *console.StepError
	if errors.As(err, &se) {
		fmt.Fprintf(w, "Export aborted while %s.\n", se.State)
	}
	switch {
	case errors.Is(err, console.ErrFeatureNotFound):
		fmt.Fprintln(w, "Tag Editor did not appear in the console search. Check the sign-in succeeded.")
	case errors.Is(err, console.ErrMaterializationFailed):
		fmt.Fprintln(w, "Tag Editor never produced results. Try a single region or raise console.timeouts.results_ready.")
	case errors.Is(err, console.ErrResultsNotReady):
		fmt.Fprintln(w, "Results were still loading. Rerun without --strict to export anyway.")
	case errors.Is(err, console.ErrInvalidChoice):
		fmt.Fprintln(w, "Choose 1 for all regions or 2 for a single region.")
	case errors.Is(err, export.ErrDownloadFailed):
		fmt.Fprintln(w, "The export download did not complete.")
	case errors.Is(err, prompt.ErrAborted):
		fmt.Fprintln(w, "Input was canceled.")
	}
}
