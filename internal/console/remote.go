package console

import (
	"context"
	"time"

	"tagexport/internal/export"
)

// Locator addresses an element by CSS selector, optionally narrowed to the
// element whose trimmed visible text equals Text.
type Locator struct {
	CSS  string
	Text string
}

func (l Locator) String() string {
	if l.Text == "" {
		return l.CSS
	}
	return l.CSS + " >> text=" + l.Text
}

// Remote is the page-level browser primitive set the flow runs on. Calls
// that act on an element wait for it to appear within the driver's default
// action timeout.
type Remote interface {
	Navigate(ctx context.Context, url string) error
	// Visible probes once without waiting.
	Visible(ctx context.Context, l Locator) (bool, error)
	WaitVisible(ctx context.Context, l Locator, timeout time.Duration) error
	Fill(ctx context.Context, l Locator, text string) error
	Click(ctx context.Context, l Locator) error
	// Texts returns the trimmed text of every element matching l.CSS.
	Texts(ctx context.Context, l Locator) ([]string, error)
	// WaitIdle waits until the page has settled after a navigation.
	WaitIdle(ctx context.Context, timeout time.Duration) error
	// ExpectDownload arms a download listener; call it before the click
	// that starts the download.
	ExpectDownload(ctx context.Context) (export.Artifact, error)
	Close() error
}

// Prompter collects input from the human running the export.
type Prompter interface {
	Ask(ctx context.Context, label string) (string, error)
	AskSecret(ctx context.Context, label string) (string, error)
	Notify(msg string)
}

// Exporter turns the pending download into the canonical report.
type Exporter interface {
	Process(ctx context.Context, a export.Artifact, username, regionLabel string) (*export.Result, error)
}

// Observer is told about every state change.
type Observer interface {
	Transition(from, to State)
}

type nopObserver struct{}

func (nopObserver) Transition(State, State) {}
