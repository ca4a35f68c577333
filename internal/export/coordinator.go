// Package export turns a downloaded Tag Editor artifact into the canonical
// report file.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tagexport/internal/tags"

	"go.uber.org/zap"
)

// ErrDownloadFailed is returned when the export never produced an artifact.
var ErrDownloadFailed = errors.New("export download failed")

// Artifact is a pending download started by the export trigger.
type Artifact interface {
	// Wait blocks until the download completes and returns its local path.
	Wait(ctx context.Context) (string, error)
}

// Result describes a persisted canonical report.
type Result struct {
	Path    string
	Records []tags.CanonicalRecord
}

// Coordinator waits for the raw artifact, normalizes it and persists the
// canonical file under OutputDir.
type Coordinator struct {
	outputDir string
	now       func() time.Time
	remove    func(string) error
	logger    *zap.Logger
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithClock overrides the clock used for the filename date.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// WithLogger sets the coordinator logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCoordinator creates a coordinator writing into outputDir.
func NewCoordinator(outputDir string, opts ...Option) *Coordinator {
	c := &Coordinator{
		outputDir: outputDir,
		now:       time.Now,
		remove:    os.Remove,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OutputDir returns the directory reports are written to.
func (c *Coordinator) OutputDir() string {
	return c.outputDir
}

// FileName builds the report name {username}_{region}_{YYYYMMDD}.csv.
func FileName(username, regionLabel string, day time.Time) string {
	return fmt.Sprintf("%s_%s_%s.csv", pathSafe(username), pathSafe(regionLabel), day.Format("20060102"))
}

func pathSafe(s string) string {
	return strings.NewReplacer("/", "_", `\`, "_").Replace(s)
}

// Process waits once for the artifact, normalizes it, writes the canonical
// report and removes the raw download. A failed removal is logged and does
// not invalidate the report.
func (c *Coordinator) Process(ctx context.Context, a Artifact, username, regionLabel string) (*Result, error) {
	rawPath, err := a.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	c.logger.Info("Download complete", zap.String("raw", rawPath))

	raws, err := tags.ReadRawFile(rawPath)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(c.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	dest := filepath.Join(c.outputDir, FileName(username, regionLabel, c.now()))

	records := tags.Normalize(raws)
	if err := tags.WriteCanonicalFile(dest, records); err != nil {
		return nil, err
	}
	c.logger.Info("Canonical report written",
		zap.String("path", dest),
		zap.Int("records", len(records)))

	if err := c.remove(rawPath); err != nil {
		c.logger.Warn("Failed to remove raw download", zap.String("raw", rawPath), zap.Error(err))
	}

	return &Result{Path: dest, Records: records}, nil
}
