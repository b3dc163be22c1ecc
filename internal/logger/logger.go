package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LogFilePath is the default log file, relative to the working directory.
const LogFilePath = "logs/viewer.txt"

// maxLines bounds the in-memory history shown by hosts.
const maxLines = 500

// Logger writes structured records to a log file and keeps the most recent lines in memory
// for on-screen display. The zero value is not usable; use New or Discard.
type Logger struct {
	slog *slog.Logger
	sink *sink
}

// sink receives formatted records. Each Write from slog is one record.
type sink struct {
	mu    sync.Mutex
	lines []string
	file  io.WriteCloser
}

func (s *sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, strings.TrimRight(string(p), "\n"))
	if len(s.lines) > maxLines {
		s.lines = append(s.lines[:0:0], s.lines[len(s.lines)-maxLines:]...)
	}
	if s.file != nil {
		_, _ = s.file.Write(p)
	}
	return len(p), nil
}

// New returns a Logger appending to path, creating its directory. An empty path uses
// LogFilePath. If the file cannot be opened the logger keeps lines in memory only and
// the error is returned alongside it.
func New(path string, level slog.Level) (*Logger, error) {
	if path == "" {
		path = LogFilePath
	}
	s := &sink{}
	var openErr error
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		openErr = err
	} else if f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644); err != nil {
		openErr = err
	} else {
		s.file = f
	}
	return newLogger(s, level), openErr
}

// Discard returns a Logger that only keeps lines in memory.
func Discard() *Logger {
	return newLogger(&sink{}, slog.LevelDebug)
}

func newLogger(s *sink, level slog.Level) *Logger {
	h := slog.NewTextHandler(s, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.String(slog.TimeKey, a.Value.Time().Format(time.DateTime))
			}
			return a
		},
	})
	return &Logger{slog: slog.New(h), sink: s}
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *Logger) *Logger {
	if l == nil {
		return Discard()
	}
	return l
}

func (l *Logger) Debug(msg string, args ...any) { l.slog.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.slog.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.slog.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.slog.Error(msg, args...) }

// Log records a raw line, such as console input, at info level.
func (l *Logger) Log(line string) {
	l.slog.Info(line)
}

// With returns a logger that adds args to every record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{slog: l.slog.With(args...), sink: l.sink}
}

// Slog returns the underlying structured logger.
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

// Lines returns a copy of the most recent formatted lines.
func (l *Logger) Lines() []string {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	out := make([]string, len(l.sink.lines))
	copy(out, l.sink.lines)
	return out
}

// Close closes the log file.
func (l *Logger) Close() error {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	if l.sink.file == nil {
		return nil
	}
	err := l.sink.file.Close()
	l.sink.file = nil
	return err
}
