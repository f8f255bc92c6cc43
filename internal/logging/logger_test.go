package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewWritesFormattedLinesToFile(t *testing.T) {
	dir := t.TempDir()
	l, closer, err := New(dir, "debug")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if l.GetLevel() != logrus.DebugLevel {
		t.Fatalf("expected debug level, got %v", l.GetLevel())
	}
	l.WithFields(logrus.Fields{"op": "add", "id": "task-1"}).Info("task stored")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "logs", "tareas.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := string(b)
	for _, want := range []string{"Event Source: tareas", "Event Type: INFO", "Message: task stored", "id=task-1, op=add"} {
		if !strings.Contains(line, want) {
			t.Fatalf("log line missing %q: %s", want, line)
		}
	}
}

func TestNewFallsBackToInfo(t *testing.T) {
	l, closer, err := New(t.TempDir(), "loud")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer closer.Close()
	if l.GetLevel() != logrus.InfoLevel {
		t.Fatalf("expected info fallback, got %v", l.GetLevel())
	}
}
