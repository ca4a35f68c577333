package console

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tagexport/internal/export"

	"go.uber.org/zap"
)

var (
	// ErrFeatureNotFound means the Tag Editor entry never showed up in the
	// console search.
	ErrFeatureNotFound = errors.New("tag editor not found")
	// ErrMaterializationFailed means the results query ended without any
	// export control on the page.
	ErrMaterializationFailed = errors.New("results materialization failed")
	// ErrResultsNotReady means the export control stayed disabled past the
	// readiness window while strict readiness is on.
	ErrResultsNotReady = errors.New("results not ready for export")
)

// StepError records where an aborted run stopped.
type StepError struct {
	State State
	Step  string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.State, e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Timings bounds every wait in the flow.
type Timings struct {
	StepPause     time.Duration // settle time after filling a field
	MFAProbe      time.Duration // wait before probing for the MFA screen
	Dropdown      time.Duration
	FeatureSearch time.Duration
	ResultsReady  time.Duration
	ExportMenu    time.Duration
	NetworkIdle   time.Duration
}

// DefaultTimings returns the timings the console flow was tuned with.
func DefaultTimings() Timings {
	return Timings{
		StepPause:     time.Second,
		MFAProbe:      2 * time.Second,
		Dropdown:      30 * time.Second,
		FeatureSearch: 10 * time.Second,
		ResultsReady:  5 * time.Minute,
		ExportMenu:    60 * time.Second,
		NetworkIdle:   30 * time.Second,
	}
}

// Options configures a Machine.
type Options struct {
	SignInURL   string
	DropdownCSS string
	Timings     Timings
	// StrictReadiness aborts when the export control is still disabled at
	// the end of the readiness window instead of trying the export anyway.
	StrictReadiness bool
	// Credentials fields that are already set are not prompted for.
	Credentials Credentials
	Observer    Observer
	Logger      *zap.Logger
}

// DefaultSignInURL is the console sign-in entry point.
const DefaultSignInURL = "https://signin.aws.amazon.com/"

// DefaultDropdownCSS matches the open dropdown panel of the console UI.
const DefaultDropdownCSS = `.awsui_dropdown_qwoo0_1n520_149[aria-hidden='false']`

// Outcome summarizes a finished run, successful or not.
type Outcome struct {
	Username string
	Region   RegionSelection
	Result   *export.Result
	State    State
	Trail    []State
}

// Machine runs the export flow once.
type Machine struct {
	remote   Remote
	prompter Prompter
	exporter Exporter
	opts     Options
	dropdown Locator
	logger   *zap.Logger
	observer Observer

	state  State
	trail  []State
	result *export.Result
}

type handler func(ctx context.Context, s *Session) (State, error)

// NewMachine wires the collaborators for one run.
func NewMachine(remote Remote, prompter Prompter, exporter Exporter, opts Options) *Machine {
	if opts.SignInURL == "" {
		opts.SignInURL = DefaultSignInURL
	}
	if opts.DropdownCSS == "" {
		opts.DropdownCSS = DefaultDropdownCSS
	}
	if opts.Timings == (Timings{}) {
		opts.Timings = DefaultTimings()
	}
	m := &Machine{
		remote:   remote,
		prompter: prompter,
		exporter: exporter,
		opts:     opts,
		dropdown: Locator{CSS: opts.DropdownCSS},
		logger:   opts.Logger,
		observer: opts.Observer,
		state:    Unauthenticated,
		trail:    []State{Unauthenticated},
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	if m.observer == nil {
		m.observer = nopObserver{}
	}
	return m
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

func (m *Machine) handlers() map[State]handler {
	return map[State]handler{
		Unauthenticated:     m.signIn,
		Authenticating:      m.probeChallenge,
		ChallengePending:    m.answerChallenge,
		Authenticated:       m.searchFeature,
		NavigatingToFeature: m.openFeature,
		ScopeSelection:      m.selectScope,
		ResultsLoading:      m.awaitResults,
		ExportReady:         m.exportAll,
	}
}

func (m *Machine) transition(to State) {
	from := m.state
	m.state = to
	m.trail = append(m.trail, to)
	m.logger.Debug("State transition", zap.Stringer("from", from), zap.Stringer("to", to))
	m.observer.Transition(from, to)
}

// Run drives the flow from sign-in to the persisted report. The remote is
// released exactly once whatever the outcome; the returned Outcome is
// non-nil even when err is not.
func (m *Machine) Run(ctx context.Context) (out *Outcome, err error) {
	sess := newSession(m.remote, Credentials{})
	out = &Outcome{}

	defer func() {
		if err != nil {
			m.logger.Error("Export run aborted", zap.Stringer("state", m.state), zap.Error(err))
			m.transition(Aborted)
		}
		sess.release(m.logger)
		if err == nil {
			m.transition(Closed)
		}
		out.Username = sess.Username()
		out.Region = sess.Region
		out.State = m.state
		out.Trail = m.trail
	}()

	if sess.creds, err = m.collectCredentials(ctx); err != nil {
		return out, stepErr(Unauthenticated, "collect credentials", err)
	}

	handlers := m.handlers()
	for m.state != Exported {
		h, ok := handlers[m.state]
		if !ok {
			return out, fmt.Errorf("no handler for state %s", m.state)
		}
		from := m.state
		next, herr := h(ctx, sess)
		if herr != nil {
			var se *StepError
			if errors.As(herr, &se) {
				return out, herr
			}
			return out, stepErr(from, from.String(), herr)
		}
		m.transition(next)
	}
	out.Result = m.result
	return out, nil
}

func (m *Machine) collectCredentials(ctx context.Context) (Credentials, error) {
	creds := m.opts.Credentials
	var err error
	if creds.AccountID == "" {
		if creds.AccountID, err = m.prompter.Ask(ctx, "Enter Account ID:"); err != nil {
			return creds, err
		}
	}
	if creds.Username == "" {
		if creds.Username, err = m.prompter.Ask(ctx, "Enter your IAM username:"); err != nil {
			return creds, err
		}
	}
	if creds.Password == "" {
		if creds.Password, err = m.prompter.AskSecret(ctx, "Enter your IAM password:"); err != nil {
			return creds, err
		}
	}
	return creds, nil
}

func stepErr(s State, step string, err error) error {
	return &StepError{State: s, Step: step, Err: err}
}

// pause is a fixed settle delay around UI re-renders.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
