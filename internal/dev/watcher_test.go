package dev

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vango-dev/lumen/internal/logging"
)

func TestWatcherDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.yaml")
	writeManifest(t, path, counter)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan struct{}, 8)
	w := NewWatcher(path, 50*time.Millisecond, logging.NewNop())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, func() { changes <- struct{}{} }) }()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	writeManifest(t, filepath.Join(dir, "other.yaml"), "x")
	for i := 0; i < 3; i++ {
		writeManifest(t, path, counter)
	}

	select {
	case <-changes:
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}
	select {
	case <-changes:
		t.Error("burst of writes should be reported once")
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run = %v", err)
	}
}

func TestRelevant(t *testing.T) {
	path, _ := filepath.Abs("app.yaml")
	tests := []struct {
		event fsnotify.Event
		want  bool
	}{
		{fsnotify.Event{Name: "app.yaml", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "app.yaml", Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: "app.yaml", Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: "other.yaml", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		if got := relevant(tt.event, path); got != tt.want {
			t.Errorf("relevant(%v) = %v, want %v", tt.event, got, tt.want)
		}
	}
}

func TestWatcherMissingDirectory(t *testing.T) {
	w := NewWatcher(filepath.Join(t.TempDir(), "nope", "app.yaml"), 0, nil)
	if err := w.Run(context.Background(), func() {}); err == nil {
		t.Error("watching a missing directory should fail")
	}
}
