// Package log is the lazycvs debug log. Lines are buffered in memory until a
// destination is chosen, so tool invocations made before flags and config
// are parsed are not lost.
package log

import (
	"io"
	"log"
	"os"
	"sync"
)

// sink is the io.Writer behind the package logger.
type sink struct {
	mu      sync.Mutex
	out     io.Writer
	file    *os.File
	pending []byte
	discard bool
}

var (
	debugSink = &sink{}
	logger    = log.New(debugSink, "", log.LstdFlags|log.Lmicroseconds)
)

func (s *sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.discard:
		return len(p), nil
	case s.file != nil:
		n, err := s.file.Write(p)
		_ = s.file.Sync()
		return n, err
	case s.out != nil:
		return s.out.Write(p)
	}
	s.pending = append(s.pending, p...)
	return len(p), nil
}

// flushLocked hands buffered lines to w. Caller holds s.mu.
func (s *sink) flushLocked(w io.Writer) {
	if len(s.pending) > 0 {
		_, _ = w.Write(s.pending)
	}
	s.pending = nil
}

// closeLocked releases the log file. Caller holds s.mu.
func (s *sink) closeLocked() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// SetFile appends the debug log to path, flushing anything buffered so far.
// An empty path, or a path that cannot be opened, turns logging off.
func SetFile(path string) error {
	debugSink.mu.Lock()
	defer debugSink.mu.Unlock()

	_ = debugSink.closeLocked()
	debugSink.out = nil
	if path == "" {
		debugSink.discard = true
		debugSink.pending = nil
		return nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) //nolint:gosec
	if err != nil {
		debugSink.discard = true
		debugSink.pending = nil
		return err
	}
	debugSink.file = f
	debugSink.discard = false
	debugSink.flushLocked(f)
	_ = f.Sync()
	return nil
}

// SetOutput streams the debug log to w (for example os.Stderr with --verbose).
// A nil writer turns logging off.
func SetOutput(w io.Writer) {
	debugSink.mu.Lock()
	defer debugSink.mu.Unlock()

	_ = debugSink.closeLocked()
	debugSink.out = w
	debugSink.discard = w == nil
	if w == nil {
		debugSink.pending = nil
		return
	}
	debugSink.flushLocked(w)
}

// Printf writes a formatted debug line.
func Printf(format string, args ...any) {
	logger.Printf(format, args...)
}

// Close closes the debug log file, if any.
func Close() error {
	debugSink.mu.Lock()
	defer debugSink.mu.Unlock()
	return debugSink.closeLocked()
}
