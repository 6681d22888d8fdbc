package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func decodeEntries(t *testing.T, buf *bytes.Buffer) []Entry {
	t.Helper()
	var entries []Entry
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("line %q is not JSON: %v", sc.Text(), err)
		}
		entries = append(entries, e)
	}
	return entries
}

func fixedClock(l *JSONLogger) {
	l.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", DebugLevel, false},
		{"INFO", InfoLevel, false},
		{"", InfoLevel, false},
		{"warning", WarnLevel, false},
		{" Warn ", WarnLevel, false},
		{"error", ErrorLevel, false},
		{"verbose", InfoLevel, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLevelString(t *testing.T) {
	if DebugLevel.String() != "DEBUG" || ErrorLevel.String() != "ERROR" {
		t.Errorf("unexpected level names %s %s", DebugLevel, ErrorLevel)
	}
	if got := Level(9).String(); got != "LEVEL(9)" {
		t.Errorf("Level(9) = %s", got)
	}
}

func TestJSONLogger_Entry(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)
	fixedClock(logger)

	logger.Info("graph built",
		RunID("run-1"),
		Component("network"),
		GraphName("diffusion"),
		Count(42),
		Error(nil),
	)

	entries := decodeEntries(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.Time != "2024-03-01T12:00:00Z" {
		t.Errorf("time = %s", e.Time)
	}
	if e.Level != "INFO" || e.Message != "graph built" {
		t.Errorf("level/msg = %s/%s", e.Level, e.Message)
	}
	if e.RunID != "run-1" || e.Component != "network" {
		t.Errorf("run_id/component = %s/%s", e.RunID, e.Component)
	}
	if _, ok := e.Fields["run_id"]; ok {
		t.Error("run_id should not be repeated inside fields")
	}
	if e.Fields["graph"] != "diffusion" {
		t.Errorf("graph = %v", e.Fields["graph"])
	}
	if e.Fields["count"] != float64(42) {
		t.Errorf("count = %v", e.Fields["count"])
	}
	if v, ok := e.Fields["error"]; !ok || v != nil {
		t.Errorf("nil error should be recorded as null, got %v (present %v)", v, ok)
	}
}

func TestJSONLogger_NoFields(t *testing.T) {
	var buf bytes.Buffer
	NewJSONLogger(&buf, DebugLevel).Debug("plain")

	if strings.Contains(buf.String(), `"fields"`) {
		t.Errorf("empty fields should be omitted: %s", buf.String())
	}
	if strings.Contains(buf.String(), `"run_id"`) {
		t.Errorf("empty run_id should be omitted: %s", buf.String())
	}
}

func TestJSONLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, WarnLevel)

	logger.Debug("d")
	logger.Info("i")
	logger.Warn("w")
	logger.Error("e")

	entries := decodeEntries(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Level != "WARN" || entries[1].Level != "ERROR" {
		t.Errorf("levels = %s, %s", entries[0].Level, entries[1].Level)
	}
	if logger.Enabled(InfoLevel) || !logger.Enabled(ErrorLevel) {
		t.Error("Enabled disagrees with the configured level")
	}
}

func TestJSONLogger_With(t *testing.T) {
	var buf bytes.Buffer
	parent := NewJSONLogger(&buf, InfoLevel)
	child := parent.With(RunID("run-7"), Metric("pagerank"))
	grandchild := child.With(Metric("betweenness"))

	parent.Info("parent")
	child.Info("child")
	grandchild.Info("grandchild", Component("analysis"))

	entries := decodeEntries(t, &buf)
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if entries[0].RunID != "" || entries[0].Fields != nil {
		t.Errorf("parent picked up child fields: %+v", entries[0])
	}
	if entries[1].RunID != "run-7" || entries[1].Fields["metric"] != "pagerank" {
		t.Errorf("child entry = %+v", entries[1])
	}
	if entries[2].Fields["metric"] != "betweenness" {
		t.Errorf("later field should win, got %v", entries[2].Fields["metric"])
	}
	if entries[2].Component != "analysis" || entries[2].RunID != "run-7" {
		t.Errorf("grandchild entry = %+v", entries[2])
	}
}

func TestJSONLogger_ConcurrentChildren(t *testing.T) {
	var buf bytes.Buffer
	parent := NewJSONLogger(&buf, InfoLevel)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			child := parent.With(Int("worker", i))
			for j := 0; j < 50; j++ {
				child.Info("tick")
			}
		}(i)
	}
	wg.Wait()

	if got := len(decodeEntries(t, &buf)); got != 400 {
		t.Errorf("got %d entries, want 400", got)
	}
}

func TestTimedOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	timer := StartTimer(logger, "measures computed", GraphName("friendship"))
	timer.End()
	StartTimer(logger, "render").EndError(errors.New("disk full"))

	entries := decodeEntries(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if _, ok := entries[0].Fields["latency_ms"].(float64); !ok {
		t.Errorf("latency_ms missing: %+v", entries[0].Fields)
	}
	if entries[0].Fields["graph"] != "friendship" {
		t.Errorf("timer lost its fields: %+v", entries[0].Fields)
	}
	if entries[1].Level != "ERROR" || entries[1].Fields["error"] != "disk full" {
		t.Errorf("error entry = %+v", entries[1])
	}
	if timer.Elapsed() <= 0 {
		t.Error("Elapsed should be positive")
	}
}

func TestNopLogger(t *testing.T) {
	logger := NewNopLogger()
	logger.With(RunID("x")).Error("ignored")
	if logger.Enabled(ErrorLevel) {
		t.Error("nop logger should report every level disabled")
	}
}

func TestOpen_File(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	path := filepath.Join(t.TempDir(), "logs", "run.log")

	logger, closer, err := Open(path, "debug")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	logger.Debug("first")
	logger.Info("second", Path(path))
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	entries := decodeEntries(t, bytes.NewBuffer(data))
	if len(entries) != 2 || entries[0].Message != "first" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestOpen_EnvOverridesLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")

	logger, closer, err := Open("", "debug")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer closer.Close()

	if logger.Enabled(WarnLevel) {
		t.Error("LOG_LEVEL=error should disable warn")
	}
}

func TestOpen_UnknownLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	if _, _, err := Open("", "loud"); err == nil {
		t.Error("expected an error for an unknown level")
	}
}
