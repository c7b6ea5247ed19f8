package synccache

import (
	"os"
	"testing"
	"time"

	"pgregory.net/rapid"
)

func TestShouldCheckWithoutEntry(t *testing.T) {
	cache, err := OpenDir(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !cache.ShouldCheck("a", time.Now(), DefaultMinInterval) {
		t.Fatal("expected a never-checked changespec to be due")
	}
}

func TestShouldCheckHonorsMinInterval(t *testing.T) {
	cache, err := OpenDir(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := cache.RecordChecked("a", base); err != nil {
		t.Fatalf("record: %v", err)
	}

	if cache.ShouldCheck("a", base.Add(time.Minute), DefaultMinInterval) {
		t.Fatal("expected check one minute later to be throttled")
	}
	if cache.ShouldCheck("a", base.Add(DefaultMinInterval-time.Nanosecond), DefaultMinInterval) {
		t.Fatal("expected check just inside the window to be throttled")
	}
	if !cache.ShouldCheck("a", base.Add(DefaultMinInterval), DefaultMinInterval) {
		t.Fatal("expected check at exactly the window to be due")
	}
	if !cache.ShouldCheck("a", base.Add(time.Minute), 0) {
		t.Fatal("expected a zero window to always allow the check")
	}
	if !cache.ShouldCheck("b", base, DefaultMinInterval) {
		t.Fatal("entries for one name should not throttle another")
	}
}

func TestShouldCheckMatchesElapsedTime(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	rapid.Check(t, func(t *rapid.T) {
		cache, err := OpenDir(dir)
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		checked := base.Add(time.Duration(rapid.Int64Range(0, int64(time.Hour)).Draw(t, "checked")))
		elapsed := time.Duration(rapid.Int64Range(0, int64(time.Hour)).Draw(t, "elapsed"))
		window := time.Duration(rapid.Int64Range(1, int64(time.Hour)).Draw(t, "window"))

		if err := cache.RecordChecked("a", checked); err != nil {
			t.Fatalf("record: %v", err)
		}
		got := cache.ShouldCheck("a", checked.Add(elapsed), window)
		if got != (elapsed >= window) {
			t.Fatalf("elapsed %s window %s: ShouldCheck = %v", elapsed, window, got)
		}
	})
}

func TestRecordCheckedPersists(t *testing.T) {
	dir := t.TempDir()
	checked := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	cache, err := OpenDir(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := cache.RecordChecked("a", checked); err != nil {
		t.Fatalf("record: %v", err)
	}

	reopened, err := OpenDir(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	last, ok := reopened.LastChecked("a")
	if !ok || !last.Equal(checked) {
		t.Fatalf("expected %s after reopen, got %s (ok=%v)", checked, last, ok)
	}
	if reopened.ShouldCheck("a", checked.Add(time.Minute), DefaultMinInterval) {
		t.Fatal("expected the throttle window to survive a restart")
	}
}

func TestRecordCheckedMergesConcurrentWriters(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first, err := OpenDir(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	second, err := OpenDir(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if err := first.RecordChecked("a", now); err != nil {
		t.Fatalf("record a: %v", err)
	}
	if err := second.RecordChecked("b", now); err != nil {
		t.Fatalf("record b: %v", err)
	}

	entries, err := NewStore(dir).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected both entries on disk, got %v", entries)
	}
	if second.Len() != 2 {
		t.Fatalf("expected second cache to see both entries, got %d", second.Len())
	}
}

func TestReloadSeesOtherProcesses(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	watcher, err := OpenDir(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := watcher.RecordChecked("a", now); err != nil {
		t.Fatalf("record: %v", err)
	}

	other, err := OpenDir(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := other.Forget("a"); err != nil {
		t.Fatalf("forget: %v", err)
	}
	if err := other.RecordChecked("b", now); err != nil {
		t.Fatalf("record b: %v", err)
	}

	if watcher.ShouldCheck("a", now.Add(time.Minute), DefaultMinInterval) {
		t.Fatal("expected the stale view to still throttle a")
	}
	if err := watcher.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !watcher.ShouldCheck("a", now.Add(time.Minute), DefaultMinInterval) {
		t.Fatal("expected a reset elsewhere to be visible after reload")
	}
	if watcher.ShouldCheck("b", now.Add(time.Minute), DefaultMinInterval) {
		t.Fatal("expected a check recorded elsewhere to throttle after reload")
	}
}

func TestForget(t *testing.T) {
	cache, err := OpenDir(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	now := time.Now()
	if err := cache.RecordChecked("a", now); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := cache.Forget("a"); err != nil {
		t.Fatalf("forget: %v", err)
	}
	if !cache.ShouldCheck("a", now, DefaultMinInterval) {
		t.Fatal("expected forgotten changespec to be due")
	}
}

func TestRecordCheckedFailureKeepsPreviousState(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}

	dir := t.TempDir()
	first := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	cache, err := OpenDir(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := cache.RecordChecked("a", first); err != nil {
		t.Fatalf("record: %v", err)
	}

	if err := os.Chmod(dir, 0o555); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { os.Chmod(dir, 0o755) })

	if err := cache.RecordChecked("a", first.Add(time.Hour)); err == nil {
		t.Fatal("expected record into read-only directory to fail")
	}
	if last, _ := cache.LastChecked("a"); !last.Equal(first) {
		t.Fatalf("expected in-memory entry to stay at %s, got %s", first, last)
	}

	entries, err := NewStore(dir).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !entries["a"].Equal(first) {
		t.Fatalf("expected on-disk entry to stay at %s, got %s", first, entries["a"])
	}
}
