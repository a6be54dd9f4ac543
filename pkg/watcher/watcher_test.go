package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestWatcher(t *testing.T, content string) (*ConfigWatcher, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	w, err := NewConfigWatcher(path, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("NewConfigWatcher: %v", err)
	}
	t.Cleanup(func() { w.Close() })
	return w, path
}

func TestBurstOfEventsReloadsOnce(t *testing.T) {
	w, _ := newTestWatcher(t, "api:\n  base_url: http://localhost:8000\n")

	for i := 0; i < 5; i++ {
		w.schedule()
	}

	time.Sleep(150 * time.Millisecond)
	if n := w.reloads.Load(); n != 1 {
		t.Errorf("reloads = %d, want 1", n)
	}
	select {
	case change := <-w.Changes():
		if change.Err != nil {
			t.Fatalf("reload error: %v", change.Err)
		}
	default:
		t.Fatal("expected a published change")
	}
}

func TestCloseAbandonsPendingReload(t *testing.T) {
	w, _ := newTestWatcher(t, "api:\n  base_url: http://localhost:8000\n")

	w.schedule()
	w.Close()

	time.Sleep(80 * time.Millisecond)
	if n := w.reloads.Load(); n != 0 {
		t.Errorf("reloads = %d, want 0", n)
	}
}

func TestStaleTimerDoesNotReload(t *testing.T) {
	w, _ := newTestWatcher(t, "api:\n  base_url: http://localhost:8000\n")

	w.mu.Lock()
	w.gen = 7
	w.mu.Unlock()
	w.settled(6)

	if n := w.reloads.Load(); n != 0 {
		t.Errorf("reloads = %d, want 0", n)
	}
}

func TestDefaultSettleDelay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	w, err := NewConfigWatcher(path, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if w.settle != DefaultSettleDelay {
		t.Errorf("settle = %v", w.settle)
	}
}

func TestConfigWatcherReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("api:\n  base_url: http://localhost:8000\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	w, err := NewConfigWatcher(path, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("NewConfigWatcher: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	if err := os.WriteFile(path, []byte("api:\n  base_url: http://reviews.internal:9000\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case change := <-w.Changes():
		if change.Err != nil {
			t.Fatalf("reload error: %v", change.Err)
		}
		if change.Config.API.BaseURL != "http://reviews.internal:9000" {
			t.Errorf("BaseURL = %q", change.Config.API.BaseURL)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for config change")
	}
}

func TestConfigWatcherReportsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("api: {}\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	w, err := NewConfigWatcher(path, 20*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	if err := os.WriteFile(path, []byte("api:\n  base_url: ftp://nope\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case change := <-w.Changes():
		if change.Err == nil {
			t.Fatal("expected validation error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for config change")
	}
}

func TestNewConfigWatcherNoPath(t *testing.T) {
	if _, err := NewConfigWatcher("", 0); err == nil {
		t.Fatal("expected error")
	}
}
