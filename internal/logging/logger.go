// Package logging provides config-driven categorized logging for tagexport.
// Every category shares one zap core; a category disabled in the config
// gets a no-op logger. Before Initialize, every category is a no-op.
package logging

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"tagexport/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot    Category = "boot"    // Startup, config loading
	CategorySession Category = "session" // Console state machine
	CategoryBrowser Category = "browser" // Browser process and page actions
	CategoryExport  Category = "export"  // Download handling and normalization
	CategoryHistory Category = "history" // Run ledger
)

var (
	mu      sync.RWMutex
	root    *zap.Logger
	cfg     config.LoggingConfig
	loggers = make(map[Category]*zap.Logger)
	file    *os.File
)

// Initialize builds the shared logger from cfg. Output goes to stderr and,
// when cfg.File is set, is appended to that file too. Calling Initialize
// again replaces the previous setup.
func Initialize(c config.LoggingConfig) error {
	if err := c.Validate(); err != nil {
		return err
	}

	enc := newEncoder(c.Format)
	level := parseLevel(c.Level)

	cores := []zapcore.Core{
		zapcore.NewCore(enc, zapcore.Lock(os.Stderr), level),
	}

	var f *os.File
	if c.File != "" {
		var err error
		f, err = os.OpenFile(c.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		// The file always gets JSON so it can be grepped and parsed later.
		cores = append(cores, zapcore.NewCore(newEncoder("json"), zapcore.AddSync(f), level))
	}

	logger := zap.New(zapcore.NewTee(cores...))

	mu.Lock()
	closeLocked()
	root = logger
	cfg = c
	file = f
	loggers = make(map[Category]*zap.Logger)
	mu.Unlock()

	Get(CategoryBoot).Debug("Logging initialized",
		zap.String("level", level.String()),
		zap.String("format", c.Format),
		zap.String("file", c.File))
	return nil
}

// Use installs an existing logger for all categories. Tests use it with
// zaptest loggers.
func Use(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	closeLocked()
	root = l
	cfg = config.LoggingConfig{}
	loggers = make(map[Category]*zap.Logger)
}

// Get returns the logger for a category.
func Get(category Category) *zap.Logger {
	mu.RLock()
	l, ok := loggers[category]
	r := root
	mu.RUnlock()
	if ok {
		return l
	}
	if r == nil {
		return zap.NewNop()
	}

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}
	if !cfg.IsCategoryEnabled(string(category)) {
		l = zap.NewNop()
	} else {
		l = root.Named(string(category))
	}
	loggers[category] = l
	return l
}

// IsCategoryEnabled reports whether category produces output.
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	return root != nil && cfg.IsCategoryEnabled(string(category))
}

// CloseAll flushes buffered entries and closes the log file.
func CloseAll() {
	mu.Lock()
	defer mu.Unlock()
	closeLocked()
	root = nil
	loggers = make(map[Category]*zap.Logger)
}

func closeLocked() {
	if root != nil {
		_ = root.Sync()
	}
	if file != nil {
		_ = file.Close()
		file = nil
	}
}

func newEncoder(format string) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	if format == "json" {
		return zapcore.NewJSONEncoder(ec)
	}
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewConsoleEncoder(ec)
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Timer tracks operation duration
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation
func StartTimer(category Category, operation string) *Timer {
	return &Timer{
		category: category,
		op:       operation,
		start:    time.Now(),
	}
}

// StopWithThreshold logs warning if duration exceeds threshold
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warn("Operation slow",
			zap.String("op", t.op),
			zap.Duration("elapsed", elapsed),
			zap.Duration("threshold", threshold))
	} else {
		Get(t.category).Debug("Operation completed", zap.String("op", t.op), zap.Duration("elapsed", elapsed))
	}
	return elapsed
}
