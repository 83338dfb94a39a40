package log

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLevelFromVerbosity(t *testing.T) {
	tests := []struct {
		verbosity int
		want      Level
	}{
		{-1, FatalLevel},
		{0, FatalLevel},
		{1, WarnLevel},
		{2, InfoLevel},
		{3, DebugLevel},
		{10, DebugLevel},
	}
	for _, tt := range tests {
		if got := LevelFromVerbosity(tt.verbosity); got != tt.want {
			t.Errorf("LevelFromVerbosity(%d) = %v, want %v", tt.verbosity, got, tt.want)
		}
	}
}

func TestNewLevelAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(UseOutput(&buf), UseVerbosity(1), UseFields("run_id", "abc123"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("hidden message")
	logger.Warn("shown message", "path", "/tmp/a")

	out := buf.String()
	if strings.Contains(out, "hidden message") {
		t.Errorf("info record written at warn level: %q", out)
	}
	for _, want := range []string{"shown message", "run_id", "abc123", "/tmp/a"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q does not contain %q", out, want)
		}
	}
}

func TestNewSilentByDefault(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(UseOutput(&buf))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Error("not shown")
	if buf.Len() != 0 {
		t.Errorf("output = %q, want nothing below fatal", buf.String())
	}
}

func TestRotateWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "rmt.log")
	w, err := NewRotateWriter(path, "10B", 2)
	if err != nil {
		t.Fatalf("NewRotateWriter() error = %v", err)
	}
	t.Cleanup(func() { w.Close() })

	for _, chunk := range []string{"11111111", "22222222", "33333333", "44444444"} {
		if _, err := w.Write([]byte(chunk)); err != nil {
			t.Fatalf("Write(%q) error = %v", chunk, err)
		}
	}

	want := map[string]string{
		path:        "44444444",
		path + ".1": "33333333",
		path + ".2": "22222222",
	}
	for file, content := range want {
		data, err := os.ReadFile(file)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != content {
			t.Errorf("%s = %q, want %q", filepath.Base(file), data, content)
		}
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Errorf("backup beyond the limit kept: %v", err)
	}
}

func TestRotateWriterAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rmt.log")
	if err := os.WriteFile(path, []byte("old\n"), 0644); err != nil {
		t.Fatal(err)
	}
	w, err := NewRotateWriter(path, "1KB", 1)
	if err != nil {
		t.Fatalf("NewRotateWriter() error = %v", err)
	}
	if _, err := w.Write([]byte("new\n")); err != nil {
		t.Fatal(err)
	}
	w.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "old\nnew\n" {
		t.Errorf("log = %q", data)
	}
}

func TestNewRotateWriterInvalidSize(t *testing.T) {
	if _, err := NewRotateWriter(filepath.Join(t.TempDir(), "rmt.log"), "lots", 1); err == nil {
		t.Error("expected error for invalid size")
	}
}

func TestUseFileWritesPlainText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rmt.log")
	logger, err := New(UseFile(path), UseLevel(DebugLevel), UseTimestamp(true))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Error("something failed", "id", "42")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "something failed") {
		t.Errorf("log file = %q", data)
	}
	if strings.Contains(string(data), "\x1b[") {
		t.Errorf("log file contains escape sequences: %q", data)
	}
}

func TestUseFileUnwritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(UseFile(filepath.Join(blocker, "rmt.log"))); err == nil {
		t.Error("expected error when the log directory is a file")
	}
}
