package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestWatcher(t *testing.T) *FileWatcher {
	t.Helper()
	w, err := NewFileWatcher(WithDebounceDelay(10 * time.Millisecond))
	if err != nil {
		t.Fatalf("NewFileWatcher error = %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile error = %v", err)
	}
}

func TestFileWatcher_WatchUnwatch(t *testing.T) {
	w := newTestWatcher(t)
	dir := t.TempDir()
	file := filepath.Join(dir, "a.txt")
	writeFile(t, file, "x")

	if err := w.Watch(file); err != nil {
		t.Fatalf("Watch error = %v", err)
	}
	if err := w.Watch(file); err != nil {
		t.Fatalf("second Watch error = %v", err)
	}
	if !w.IsWatching(file) {
		t.Error("should be watching file")
	}

	if err := w.Unwatch(file); err != nil {
		t.Fatalf("Unwatch error = %v", err)
	}
	if !w.IsWatching(file) {
		t.Error("one reference remains, should still be watching")
	}
	if err := w.Unwatch(file); err != nil {
		t.Fatalf("Unwatch error = %v", err)
	}
	if w.IsWatching(file) {
		t.Error("should not be watching after last Unwatch")
	}
	if err := w.Unwatch(file); err != ErrNotWatching {
		t.Errorf("Unwatch again error = %v, want ErrNotWatching", err)
	}
}

func TestFileWatcher_WatchErrors(t *testing.T) {
	w := newTestWatcher(t)
	dir := t.TempDir()

	if err := w.Watch(filepath.Join(dir, "missing")); err != ErrPathNotExist {
		t.Errorf("Watch missing error = %v, want ErrPathNotExist", err)
	}
	if err := w.Watch(dir); err != ErrIsDirectory {
		t.Errorf("Watch dir error = %v, want ErrIsDirectory", err)
	}
}

func TestFileWatcher_WatchedFiles(t *testing.T) {
	w := newTestWatcher(t)
	dir := t.TempDir()
	b := filepath.Join(dir, "b.txt")
	a := filepath.Join(dir, "a.txt")
	writeFile(t, a, "")
	writeFile(t, b, "")
	_ = w.Watch(b)
	_ = w.Watch(a)

	got := w.WatchedFiles()
	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Errorf("WatchedFiles = %v, want [%s %s]", got, a, b)
	}
}

func TestFileWatcher_Close(t *testing.T) {
	w, err := NewFileWatcher()
	if err != nil {
		t.Fatalf("NewFileWatcher error = %v", err)
	}
	file := filepath.Join(t.TempDir(), "a.txt")
	writeFile(t, file, "")

	if err := w.Close(); err != nil {
		t.Errorf("Close error = %v", err)
	}
	if err := w.Watch(file); err != ErrWatcherClosed {
		t.Errorf("Watch after close error = %v, want ErrWatcherClosed", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close again error = %v", err)
	}
	if _, ok := <-w.Events(); ok {
		t.Error("Events should be closed")
	}
}

func TestFileWatcher_ReportsWrites(t *testing.T) {
	w := newTestWatcher(t)
	dir := t.TempDir()
	file := filepath.Join(dir, "watched.txt")
	other := filepath.Join(dir, "other.txt")
	writeFile(t, file, "before")
	writeFile(t, other, "")

	if err := w.Watch(file); err != nil {
		t.Fatalf("Watch error = %v", err)
	}

	writeFile(t, other, "ignored")
	writeFile(t, file, "after")

	timeout := time.After(2 * time.Second)
	for {
		select {
		case event := <-w.Events():
			if event.Path == other {
				t.Fatalf("got event for unwatched file %s", other)
			}
			if event.Path == file && event.Op.Changed() {
				return
			}
		case <-timeout:
			t.Fatal("timeout waiting for write event")
		}
	}
}
