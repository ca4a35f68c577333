package console

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tagexport/internal/export"
)

type fakeArtifact struct{ path string }

func (a fakeArtifact) Wait(context.Context) (string, error) { return a.path, nil }

// fakeRemote simulates the console page. Elements are visible unless
// listed in waitErr; probes answer from visible.
type fakeRemote struct {
	visible  map[Locator]bool
	waitErr  map[Locator]error
	clickErr map[Locator]error
	options  []string

	calls      []string
	filled     map[Locator]string
	closeCalls int
	closeErr   error
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		visible:  map[Locator]bool{},
		waitErr:  map[Locator]error{},
		clickErr: map[Locator]error{},
		filled:   map[Locator]string{},
		options:  []string{"All regions", "us-east-1", "us-west-2"},
	}
}

func (f *fakeRemote) Navigate(_ context.Context, url string) error {
	f.calls = append(f.calls, "navigate "+url)
	return nil
}

func (f *fakeRemote) Visible(_ context.Context, l Locator) (bool, error) {
	f.calls = append(f.calls, "probe "+l.String())
	return f.visible[l], nil
}

func (f *fakeRemote) WaitVisible(_ context.Context, l Locator, timeout time.Duration) error {
	f.calls = append(f.calls, "wait "+l.String())
	if err, ok := f.waitErr[l]; ok {
		return fmt.Errorf("wait %s for %s: %w", l, timeout, err)
	}
	return nil
}

func (f *fakeRemote) Fill(_ context.Context, l Locator, text string) error {
	f.calls = append(f.calls, "fill "+l.String())
	f.filled[l] = text
	return nil
}

func (f *fakeRemote) Click(_ context.Context, l Locator) error {
	f.calls = append(f.calls, "click "+l.String())
	return f.clickErr[l]
}

func (f *fakeRemote) Texts(_ context.Context, l Locator) ([]string, error) {
	f.calls = append(f.calls, "texts "+l.String())
	return f.options, nil
}

func (f *fakeRemote) WaitIdle(context.Context, time.Duration) error {
	f.calls = append(f.calls, "idle")
	return nil
}

func (f *fakeRemote) ExpectDownload(context.Context) (export.Artifact, error) {
	f.calls = append(f.calls, "expect download")
	return fakeArtifact{path: "/tmp/download"}, nil
}

func (f *fakeRemote) Close() error {
	f.closeCalls++
	return f.closeErr
}

func (f *fakeRemote) clicked(l Locator) bool {
	for _, c := range f.calls {
		if c == "click "+l.String() {
			return true
		}
	}
	return false
}

// fakePrompter answers Ask and AskSecret from queues.
type fakePrompter struct {
	answers []string
	secrets []string
	asked   []string
	notes   []string
}

func (p *fakePrompter) Ask(_ context.Context, label string) (string, error) {
	p.asked = append(p.asked, label)
	if len(p.answers) == 0 {
		return "", errors.New("no answer scripted for " + label)
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	return a, nil
}

func (p *fakePrompter) AskSecret(_ context.Context, label string) (string, error) {
	p.asked = append(p.asked, label)
	if len(p.secrets) == 0 {
		return "", errors.New("no secret scripted for " + label)
	}
	s := p.secrets[0]
	p.secrets = p.secrets[1:]
	return s, nil
}

func (p *fakePrompter) Notify(msg string) {
	p.notes = append(p.notes, msg)
}

type fakeExporter struct {
	calls    int
	username string
	region   string
	err      error
}

func (e *fakeExporter) Process(_ context.Context, a export.Artifact, username, regionLabel string) (*export.Result, error) {
	e.calls++
	e.username = username
	e.region = regionLabel
	if e.err != nil {
		return nil, e.err
	}
	return &export.Result{Path: "tags_services_account/" + export.FileName(username, regionLabel, time.Now())}, nil
}

type recordingObserver struct {
	seen [][2]State
}

func (o *recordingObserver) Transition(from, to State) {
	o.seen = append(o.seen, [2]State{from, to})
}

func fastTimings() Timings {
	return Timings{
		Dropdown:      time.Millisecond,
		FeatureSearch: time.Millisecond,
		ResultsReady:  time.Millisecond,
		ExportMenu:    time.Millisecond,
		NetworkIdle:   time.Millisecond,
	}
}
