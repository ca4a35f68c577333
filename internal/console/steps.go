package console

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// signIn opens the sign-in page and submits the credentials.
func (m *Machine) signIn(ctx context.Context, s *Session) (State, error) {
	m.logger.Info("Navigating to sign-in page", zap.String("url", m.opts.SignInURL))
	if err := m.remote.Navigate(ctx, m.opts.SignInURL); err != nil {
		return Aborted, stepErr(Unauthenticated, "open sign-in page", err)
	}

	if ok, _ := m.remote.Visible(ctx, locSignInLink); ok {
		if err := m.remote.Click(ctx, locSignInLink); err != nil {
			return Aborted, stepErr(Unauthenticated, "follow sign-in link", err)
		}
	}

	fields := []struct {
		loc   Locator
		value string
		name  string
	}{
		{locAccount, s.creds.AccountID, "account"},
		{locUsername, s.creds.Username, "username"},
		{locPassword, s.creds.Password, "password"},
	}
	for _, f := range fields {
		if err := m.remote.Fill(ctx, f.loc, f.value); err != nil {
			return Aborted, stepErr(Unauthenticated, "fill "+f.name, err)
		}
		if err := pause(ctx, m.opts.Timings.StepPause); err != nil {
			return Aborted, stepErr(Unauthenticated, "fill "+f.name, err)
		}
	}

	if err := m.remote.Click(ctx, locSignInButton); err != nil {
		return Aborted, stepErr(Unauthenticated, "submit credentials", err)
	}
	s.forgetSecrets()
	m.logger.Info("Credentials submitted", zap.String("username", s.creds.Username))
	return Authenticating, nil
}

// probeChallenge looks for the MFA screen once after a short wait. A
// challenge that renders later than MFAProbe is missed and the run carries
// on as if none was required.
func (m *Machine) probeChallenge(ctx context.Context, s *Session) (State, error) {
	if err := pause(ctx, m.opts.Timings.MFAProbe); err != nil {
		return Aborted, stepErr(Authenticating, "wait for challenge", err)
	}
	ok, err := m.remote.Visible(ctx, locMFAMethod)
	if err != nil {
		m.logger.Debug("MFA probe failed, assuming no challenge", zap.Error(err))
	}
	if ok {
		m.prompter.Notify("MFA authentication required")
		return ChallengePending, nil
	}
	m.logger.Info("No MFA challenge detected")
	return Authenticated, nil
}

// answerChallenge completes the authenticator-app challenge.
func (m *Machine) answerChallenge(ctx context.Context, s *Session) (State, error) {
	if err := m.remote.Click(ctx, locMFAMethod); err != nil {
		return Aborted, stepErr(ChallengePending, "select authenticator app", err)
	}
	if err := m.remote.Click(ctx, locMFAContinue); err != nil {
		return Aborted, stepErr(ChallengePending, "continue to code entry", err)
	}
	code, err := m.prompter.AskSecret(ctx, "Enter your MFA code:")
	if err != nil {
		return Aborted, stepErr(ChallengePending, "read MFA code", err)
	}
	if err := m.remote.Fill(ctx, locMFACode, strings.TrimSpace(code)); err != nil {
		return Aborted, stepErr(ChallengePending, "fill MFA code", err)
	}
	if err := m.remote.Click(ctx, locMFASubmit); err != nil {
		return Aborted, stepErr(ChallengePending, "submit MFA code", err)
	}
	if err := m.remote.WaitIdle(ctx, m.opts.Timings.NetworkIdle); err != nil {
		return Aborted, stepErr(ChallengePending, "wait for sign-in", err)
	}
	m.logger.Info("MFA authentication completed")
	return Authenticated, nil
}

// searchFeature types the Tag Editor service name into the console search.
func (m *Machine) searchFeature(ctx context.Context, s *Session) (State, error) {
	m.logger.Info("Searching for Resource Groups & Tag Editor")
	if err := m.remote.Fill(ctx, locServiceSearch, featureSearchQuery); err != nil {
		return Aborted, stepErr(Authenticated, "search console", fmt.Errorf("%w: %w", ErrFeatureNotFound, err))
	}
	if err := pause(ctx, m.opts.Timings.StepPause); err != nil {
		return Aborted, stepErr(Authenticated, "search console", err)
	}
	return NavigatingToFeature, nil
}

// openFeature follows the search result into the Tag Editor.
func (m *Machine) openFeature(ctx context.Context, s *Session) (State, error) {
	if err := m.remote.WaitVisible(ctx, locFeatureResult, m.opts.Timings.FeatureSearch); err != nil {
		return Aborted, stepErr(NavigatingToFeature, "wait for search result", fmt.Errorf("%w: %w", ErrFeatureNotFound, err))
	}
	if err := m.remote.Click(ctx, locFeatureResult); err != nil {
		return Aborted, stepErr(NavigatingToFeature, "open resource groups", err)
	}
	if err := m.remote.Click(ctx, locTagEditorLink); err != nil {
		return Aborted, stepErr(NavigatingToFeature, "open tag editor", fmt.Errorf("%w: %w", ErrFeatureNotFound, err))
	}
	return ScopeSelection, nil
}

// selectScope applies the region and resource-type filters and starts the
// results query.
func (m *Machine) selectScope(ctx context.Context, s *Session) (State, error) {
	region, err := m.chooseRegion(ctx)
	if err != nil {
		return Aborted, err
	}
	s.Region = region

	m.prompter.Notify(fmt.Sprintf("Selecting region: %s", region))
	if err := m.openRegionDropdown(ctx); err != nil {
		return Aborted, stepErr(ScopeSelection, "open region selector", err)
	}
	if err := m.remote.Click(ctx, optionNamed(region.Option())); err != nil {
		return Aborted, stepErr(ScopeSelection, "select region "+region.String(), err)
	}

	m.logger.Info("Selecting all resource types")
	if err := m.remote.Click(ctx, locResourceTypes); err != nil {
		return Aborted, stepErr(ScopeSelection, "open resource types", err)
	}
	if err := m.remote.Click(ctx, locAllResourceTypes); err != nil {
		return Aborted, stepErr(ScopeSelection, "select all resource types", err)
	}
	s.ResourceTypes = locAllResourceTypes.Text

	if err := m.remote.Click(ctx, locShowResults); err != nil {
		return Aborted, stepErr(ScopeSelection, "search resources", err)
	}
	m.prompter.Notify("Waiting for results to load (this may take several minutes)...")
	return ResultsLoading, nil
}

func (m *Machine) chooseRegion(ctx context.Context) (RegionSelection, error) {
	m.prompter.Notify("Region Selection Options:\n1. Use all regions (default)\n2. Specify a single region")
	choice, err := m.prompter.Ask(ctx, "Choose an option (1 or 2):")
	if err != nil {
		return RegionSelection{}, stepErr(ScopeSelection, "read region option", err)
	}

	regions, err := m.availableRegions(ctx)
	if err != nil {
		return RegionSelection{}, stepErr(ScopeSelection, "list regions", err)
	}

	var entry string
	if strings.TrimSpace(choice) == ChoiceSingleRegion {
		var b strings.Builder
		b.WriteString("Available regions:")
		for i, r := range regions {
			fmt.Fprintf(&b, "\n%d. %s", i+1, r)
		}
		m.prompter.Notify(b.String())
		if entry, err = m.prompter.Ask(ctx, "Enter the number or name of the region:"); err != nil {
			return RegionSelection{}, stepErr(ScopeSelection, "read region", err)
		}
	}

	sel, err := ResolveRegion(choice, entry, regions)
	if err != nil {
		return RegionSelection{}, stepErr(ScopeSelection, "resolve region", err)
	}
	return sel, nil
}

// availableRegions opens the region selector, reads its options and closes
// it again.
func (m *Machine) availableRegions(ctx context.Context) ([]string, error) {
	if err := m.openRegionDropdown(ctx); err != nil {
		return nil, err
	}
	texts, err := m.remote.Texts(ctx, locOption)
	if err != nil {
		return nil, err
	}
	if err := m.remote.Click(ctx, locRegionButton); err != nil {
		return nil, err
	}
	regions := filterRegions(texts)
	m.logger.Debug("Regions available", zap.Strings("regions", regions))
	return regions, nil
}

func (m *Machine) openRegionDropdown(ctx context.Context) error {
	if err := m.remote.Click(ctx, locRegionButton); err != nil {
		return err
	}
	return m.remote.WaitVisible(ctx, m.dropdown, m.opts.Timings.Dropdown)
}

// awaitResults waits for the export control to become enabled. When the
// window runs out the run only aborts if the control is missing entirely;
// a present but disabled control is exported anyway unless strict
// readiness is set.
func (m *Machine) awaitResults(ctx context.Context, s *Session) (State, error) {
	err := m.remote.WaitVisible(ctx, locExportEnabled, m.opts.Timings.ResultsReady)
	if err == nil {
		return ExportReady, nil
	}
	if ctx.Err() != nil {
		return Aborted, stepErr(ResultsLoading, "wait for results", ctx.Err())
	}

	m.logger.Warn("Export button not enabled after timeout, results may be incomplete", zap.Error(err))
	present, perr := m.remote.Visible(ctx, locExportButton)
	if perr != nil || !present {
		return Aborted, stepErr(ResultsLoading, "wait for results", errors.Join(ErrMaterializationFailed, err))
	}
	if m.opts.StrictReadiness {
		return Aborted, stepErr(ResultsLoading, "wait for results", fmt.Errorf("%w: %w", ErrResultsNotReady, err))
	}
	m.prompter.Notify("Warning: export button not enabled after timeout. Results may be incomplete.")
	return ExportReady, nil
}

// exportAll opens the export menu, picks "Export all tags" and hands the
// download to the exporter.
func (m *Machine) exportAll(ctx context.Context, s *Session) (State, error) {
	m.prompter.Notify("Exporting to CSV...")
	artifact, err := m.remote.ExpectDownload(ctx)
	if err != nil {
		return Aborted, stepErr(ExportReady, "arm download", err)
	}
	if err := m.remote.Click(ctx, locExportButton); err != nil {
		return Aborted, stepErr(ExportReady, "open export menu", err)
	}
	if err := m.remote.WaitVisible(ctx, m.dropdown, m.opts.Timings.ExportMenu); err != nil {
		return Aborted, stepErr(ExportReady, "wait for export menu", err)
	}
	if err := m.remote.Click(ctx, locExportAllMenuItem); err != nil {
		return Aborted, stepErr(ExportReady, "export all tags", err)
	}

	res, err := m.exporter.Process(ctx, artifact, s.Username(), s.Region.Label())
	if err != nil {
		return Aborted, stepErr(ExportReady, "process export", err)
	}
	m.result = res
	return Exported, nil
}
