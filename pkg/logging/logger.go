// Package logging provides per-component file logging for the
// framework. All loggers of one process append to a single run file
// under ~/.anchor/logs/, keyed by a run id, so a parallel test run
// produces one interleaved, greppable log.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/entrhq/anchor/pkg/decorate"
)

// Logger writes structured entries for one framework component.
// Methods are safe for concurrent use; parallel test goroutines share
// the underlying file.
type Logger struct {
	runID     string
	component string
	file      *os.File
	logger    *log.Logger
	logPath   string
	mu        sync.Mutex
	closeOnce sync.Once
}

var (
	runID     string
	runIDOnce sync.Once

	logDir  string
	dirOnce sync.Once
	dirErr  error
)

// getRunID returns the process-wide run correlation id.
func getRunID() string {
	runIDOnce.Do(func() {
		runID = uuid.New().String()
	})
	return runID
}

func initLogDirectory() error {
	dirOnce.Do(func() {
		home, err := os.UserHomeDir()
		if err != nil {
			dirErr = fmt.Errorf("resolving home directory: %w", err)
			return
		}
		logDir = filepath.Join(home, ".anchor", "logs")
		if err := os.MkdirAll(logDir, 0750); err != nil {
			dirErr = fmt.Errorf("creating log directory: %w", err)
		}
	})
	return dirErr
}

// New creates a logger for one component, writing to
// ~/.anchor/logs/<run-id>-anchor.log. When the file cannot be opened
// it returns a stderr fallback logger together with the error, so
// callers can warn about degraded logging but keep running.
func New(component string) (*Logger, error) {
	if err := initLogDirectory(); err != nil {
		return newFallback(component, err), err
	}

	id := getRunID()
	logPath := filepath.Join(logDir, fmt.Sprintf("%s-anchor.log", id))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		err = fmt.Errorf("opening log file: %w", err)
		return newFallback(component, err), err
	}

	return &Logger{
		runID:     id,
		component: component,
		file:      file,
		logger:    log.New(file, "", 0),
		logPath:   logPath,
	}, nil
}

func newFallback(component string, cause error) *Logger {
	logger := log.New(os.Stderr, fmt.Sprintf("[%s] ", component), log.LstdFlags)
	logger.Printf("WARNING: file logging unavailable: %v", cause)

	return &Logger{
		runID:     getRunID(),
		component: component,
		logger:    logger,
	}
}

func (l *Logger) emit(level, format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	l.logger.Printf("[%s] [%s] [%s] %s", timestamp, l.component, level, fmt.Sprintf(format, v...))
}

// Debugf logs a debug-level message.
func (l *Logger) Debugf(format string, v ...interface{}) { l.emit("DEBUG", format, v...) }

// Infof logs an info-level message.
func (l *Logger) Infof(format string, v ...interface{}) { l.emit("INFO", format, v...) }

// Warnf logs a warning-level message.
func (l *Logger) Warnf(format string, v ...interface{}) { l.emit("WARN", format, v...) }

// Errorf logs an error-level message.
func (l *Logger) Errorf(format string, v ...interface{}) { l.emit("ERROR", format, v...) }

// Emit implements decorate.TraceSink, so a component logger can serve
// directly as the sink of the trace decorator.
func (l *Logger) Emit(ev decorate.TraceEvent) {
	switch {
	case ev.Phase == decorate.PhaseBegin:
		l.Debugf("session=%s %s %s %s", ev.Session, ev.Kind, ev.Name, ev.Locator)
	case ev.Err != nil:
		l.Errorf("session=%s %s %s %s failed after %s: %v",
			ev.Session, ev.Kind, ev.Name, ev.Locator, ev.Elapsed.Round(time.Millisecond), ev.Err)
	default:
		l.Debugf("session=%s %s %s %s ok in %s",
			ev.Session, ev.Kind, ev.Name, ev.Locator, ev.Elapsed.Round(time.Millisecond))
	}
}

// Writer exposes the underlying destination.
func (l *Logger) Writer() io.Writer {
	if l.file != nil {
		return l.file
	}
	return os.Stderr
}

// RunID returns the process-wide run id this logger tags entries with.
func (l *Logger) RunID() string { return l.runID }

// LogPath returns the log file path; empty in fallback mode.
func (l *Logger) LogPath() string { return l.logPath }

// Close closes the log file. Safe to call multiple times.
func (l *Logger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		if l.file != nil {
			err = l.file.Close()
		}
	})
	return err
}
