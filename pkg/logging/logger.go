package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger is the structured logger every pipeline component receives.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	// With returns a child logger that prepends fields to every entry.
	With(fields ...Field) Logger
	Enabled(level Level) bool
}

// Entry is one line of JSON output. The run_id and component fields are
// lifted out of Fields so that entries can be filtered without unpacking.
type Entry struct {
	Time      string         `json:"time"`
	Level     string         `json:"level"`
	Message   string         `json:"msg"`
	RunID     string         `json:"run_id,omitempty"`
	Component string         `json:"component,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// JSONLogger writes one JSON object per line. Child loggers created by With
// share the parent's writer and lock.
type JSONLogger struct {
	out    io.Writer
	mu     *sync.Mutex
	level  Level
	fields []Field
	now    func() time.Time
}

// NewJSONLogger creates a logger writing entries at or above level to w.
func NewJSONLogger(w io.Writer, level Level) *JSONLogger {
	return &JSONLogger{out: w, mu: &sync.Mutex{}, level: level, now: time.Now}
}

// Open creates a logger at the named level writing to path, or to stderr
// when path is empty. LOG_LEVEL overrides level when set. The returned
// closer releases the log file.
func Open(path, level string) (*JSONLogger, io.Closer, error) {
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		level = env
	}
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}
	if path == "" {
		return NewJSONLogger(os.Stderr, lvl), nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return NewJSONLogger(f, lvl), f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func (l *JSONLogger) Debug(msg string, fields ...Field) { l.log(DebugLevel, msg, fields) }
func (l *JSONLogger) Info(msg string, fields ...Field)  { l.log(InfoLevel, msg, fields) }
func (l *JSONLogger) Warn(msg string, fields ...Field)  { l.log(WarnLevel, msg, fields) }
func (l *JSONLogger) Error(msg string, fields ...Field) { l.log(ErrorLevel, msg, fields) }

func (l *JSONLogger) Enabled(level Level) bool { return level >= l.level }

func (l *JSONLogger) With(fields ...Field) Logger {
	merged := make([]Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	child := *l
	child.fields = merged
	return &child
}

func (l *JSONLogger) log(level Level, msg string, fields []Field) {
	if !l.Enabled(level) {
		return
	}

	e := Entry{
		Time:    l.now().UTC().Format(time.RFC3339Nano),
		Level:   level.String(),
		Message: msg,
	}
	// later fields win, so call-site fields override those set through With
	for _, set := range [][]Field{l.fields, fields} {
		for _, f := range set {
			switch f.Key {
			case runIDKey:
				e.RunID = fmt.Sprint(f.Value)
			case componentKey:
				e.Component = fmt.Sprint(f.Value)
			default:
				if e.Fields == nil {
					e.Fields = make(map[string]any, len(l.fields)+len(fields))
				}
				e.Fields[f.Key] = f.Value
			}
		}
	}

	data, err := json.Marshal(e)
	if err != nil {
		data = fmt.Appendf(nil, `{"level":"ERROR","msg":"unencodable log entry","error":%q}`, err.Error())
	}
	data = append(data, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.out.Write(data)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Debug(string, ...Field) {}
func (Nop) Info(string, ...Field)  {}
func (Nop) Warn(string, ...Field)  {}
func (Nop) Error(string, ...Field) {}
func (n Nop) With(...Field) Logger { return n }
func (Nop) Enabled(Level) bool     { return false }

// NewNopLogger returns a Logger for tests and library callers without one.
func NewNopLogger() Logger { return Nop{} }
