package logger

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewWritesRotatingFile(t *testing.T) {
	dir := t.TempDir()

	log, err := New(dir, "debug", true)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	log.Info("booking created")
	_ = log.Sync()

	if _, err := os.Stat(filepath.Join(dir, "tourbirth-api.log")); err != nil {
		t.Fatalf("expected log file: %v", err)
	}
}

func TestNewWithoutDir(t *testing.T) {
	log, err := New("", "not-a-level", false)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if log == nil {
		t.Fatal("expected logger")
	}
}
