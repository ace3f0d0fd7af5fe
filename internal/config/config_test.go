package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultHasNonZeroRetentionPoolAndSegments(t *testing.T) {
	cfg := Default()
	if cfg.HistoryRetentionMS == 0 || cfg.WorkerPoolSize < 1 {
		t.Fatalf("expected non-zero retention and a positive worker pool size, got %+v", cfg)
	}
	if len(cfg.DefaultHumanSegments) == 0 {
		t.Fatalf("expected default human segments to be non-empty")
	}
}

func TestLoadOverlaysOnlySetFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cobot.yaml")
	if err := os.WriteFile(path, []byte("worker_pool_size: 8\n"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.WorkerPoolSize != 8 {
		t.Errorf("expected overlay worker_pool_size=8, got %d", cfg.WorkerPoolSize)
	}
	if cfg.HistoryRetentionMS != Default().HistoryRetentionMS {
		t.Errorf("expected unset fields to fall back to defaults")
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load("/nonexistent/path/cobot.yaml"); err == nil {
		t.Errorf("expected an error for a missing config file")
	}
}
