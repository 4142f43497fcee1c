// Package logging configures edlgen's structured JSONL session log plus
// a colorized console logger for interactive use.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/lestrrat-go/strftime"
)

// filenamePattern is a strftime template so a log file started on one
// calendar day never collides with, or gets silently appended to by, a
// run started on another.
const filenamePattern = "edlgen-%Y%m%d.log"

// Runtime bundles the configured JSONL logger, the console logger, and
// the open file handle's lifecycle.
type Runtime struct {
	Logger  *slog.Logger
	Console *charmlog.Logger
	Path    string
	closer  io.Closer
}

// Close flushes and closes the JSONL log file. The console logger writes
// to stderr and owns no resource to release.
func (r Runtime) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// New builds a JSONL file logger rooted at dir, named by the current
// date, plus a console logger writing to stderr.
func New(dir string) (Runtime, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Runtime{}, err
	}

	name, err := strftime.Format(filenamePattern, time.Now())
	if err != nil {
		return Runtime{}, err
	}
	path := filepath.Join(dir, name)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return Runtime{}, err
	}

	handler := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(handler)

	console := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
		Prefix:          "edlgen",
	})

	return Runtime{Logger: logger, Console: console, Path: path, closer: f}, nil
}
