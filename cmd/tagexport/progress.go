package main

import (
	"io"
	"sync"
	"time"

	"tagexport/internal/console"
	"tagexport/internal/logging"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// logObserver records state changes in the session log.
type logObserver struct{}

func (logObserver) Transition(from, to console.State) {
	logging.Get(logging.CategorySession).Info("State changed",
		zap.Stringer("from", from), zap.Stringer("to", to))
}

// spinnerObserver shows a spinner while Tag Editor builds its results.
type spinnerObserver struct {
	w    io.Writer
	mu   sync.Mutex
	bar  *progressbar.ProgressBar
	done chan struct{}
	wg   sync.WaitGroup
}

func newSpinnerObserver(w io.Writer) *spinnerObserver {
	return &spinnerObserver{w: w}
}

func (s *spinnerObserver) Transition(from, to console.State) {
	logObserver{}.Transition(from, to)
	switch {
	case to == console.ResultsLoading:
		s.start("[cyan]Waiting for Tag Editor results[reset]")
	case from == console.ResultsLoading || to.Terminal():
		s.Stop()
	}
}

func (s *spinnerObserver) start(desc string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bar != nil {
		return
	}
	s.bar = progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(s.w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionClearOnFinish(),
	)
	s.done = make(chan struct{})
	s.wg.Add(1)
	go s.spin(s.bar, s.done)
}

func (s *spinnerObserver) spin(bar *progressbar.ProgressBar, done <-chan struct{}) {
	defer s.wg.Done()
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			_ = bar.Add(1)
		}
	}
}

// Stop removes the spinner. It is safe to call when none is running.
func (s *spinnerObserver) Stop() {
	s.mu.Lock()
	bar, done := s.bar, s.done
	s.bar, s.done = nil, nil
	s.mu.Unlock()
	if bar == nil {
		return
	}
	close(done)
	s.wg.Wait()
	_ = bar.Finish()
}
