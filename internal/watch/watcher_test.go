// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewValidatesPatterns(t *testing.T) {
	_, err := New(Config{
		BaseDir:  t.TempDir(),
		Patterns: []string{"src/[)/*.rs"},
	})
	if err == nil {
		t.Fatal("expected an error for an invalid glob")
	}
}

func TestNewValidatesIgnorePatterns(t *testing.T) {
	_, err := New(Config{
		BaseDir: t.TempDir(),
		Ignore:  []string{"[)"},
	})
	if err == nil {
		t.Fatal("expected an error for an invalid ignore glob")
	}
}

func TestIsIgnoredDefaults(t *testing.T) {
	w := &Watcher{ignores: defaultIgnores}

	tests := []struct {
		rel  string
		want bool
	}{
		{filepath.Join(".git", "HEAD"), true},
		{filepath.Join("target", "debug", "build.rs"), true},
		{"main.rs.swp", true},
		{filepath.Join("src", "lib.rs"), false},
		{"Cargo.toml", false},
	}

	for _, tt := range tests {
		if got := w.isIgnored(tt.rel); got != tt.want {
			t.Errorf("isIgnored(%q) = %v, want %v", tt.rel, got, tt.want)
		}
	}
}

func TestOutputIgnores(t *testing.T) {
	got := OutputIgnores("pkg")
	want := []string{"pkg/**", "pkg.bak/**"}
	if !slices.Equal(got, want) {
		t.Errorf("OutputIgnores() = %v, want %v", got, want)
	}

	w := &Watcher{ignores: got}
	if !w.isIgnored(filepath.Join("pkg", "package.json")) {
		t.Error("expected output dir writes to be ignored")
	}
	if !w.isIgnored(filepath.Join("pkg.bak", "package.json")) {
		t.Error("expected slot dir writes to be ignored")
	}
	if w.isIgnored(filepath.Join("src", "lib.rs")) {
		t.Error("expected sources to stay watched")
	}
}

func TestMatchesPatterns(t *testing.T) {
	w := &Watcher{cfg: Config{Patterns: []string{"src/**/*.rs", "Cargo.toml"}}}

	if !w.matches(filepath.Join("src", "client", "lib.rs")) {
		t.Error("expected nested source to match")
	}
	if !w.matches("Cargo.toml") {
		t.Error("expected manifest to match")
	}
	if w.matches("README.md") {
		t.Error("expected unrelated file not to match")
	}

	// No patterns matches everything.
	all := &Watcher{}
	if !all.matches("anything.txt") {
		t.Error("expected empty pattern set to match all")
	}
}

func TestRunFiresDebouncedCallback(t *testing.T) {
	dir := t.TempDir()
	srcDir := filepath.Join(dir, "src")
	if err := os.MkdirAll(srcDir, 0o755); err != nil {
		t.Fatal(err)
	}

	var (
		mu      sync.Mutex
		changed []string
	)
	done := make(chan struct{})

	w, err := New(Config{
		BaseDir:  dir,
		Patterns: []string{"src/**/*.rs"},
		Debounce: 50 * time.Millisecond,
		Stderr:   &bytes.Buffer{},
		OnChange: func(_ context.Context, paths []string) error {
			mu.Lock()
			changed = append(changed, paths...)
			mu.Unlock()
			select {
			case <-done:
			default:
				close(done)
			}
			return nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runErr := make(chan error, 1)
	go func() { runErr <- w.Run(ctx) }()

	// Give the watcher a moment to settle, then touch a matching file.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(srcDir, "lib.rs"), []byte("fn main() {}"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the rebuild callback")
	}

	mu.Lock()
	got := slices.Clone(changed)
	mu.Unlock()
	if !slices.Contains(got, filepath.Join("src", "lib.rs")) {
		t.Errorf("expected changed set to contain src/lib.rs, got %v", got)
	}

	cancel()
	if err := <-runErr; err != nil {
		t.Errorf("Run() returned %v on cancellation", err)
	}
}

// TestRunSkipsCallbackWhileBusy exercises the skip-if-busy guard: when a
// rebuild outlives the debounce window, a second timer expiry must not run
// the callback concurrently with the one in flight.
func TestRunSkipsCallbackWhileBusy(t *testing.T) {
	dir := t.TempDir()
	srcDir := filepath.Join(dir, "src")
	if err := os.MkdirAll(srcDir, 0o755); err != nil {
		t.Fatal(err)
	}

	var (
		inFlight   atomic.Int32
		overlapped atomic.Bool
		calls      atomic.Int32
	)
	firstDone := make(chan struct{})

	// The callback blocks well past the debounce window, so a second
	// change during the first rebuild schedules a timer that expires
	// mid-callback.
	w, err := New(Config{
		BaseDir:  dir,
		Patterns: []string{"src/**/*.rs"},
		Debounce: 50 * time.Millisecond,
		Stderr:   &bytes.Buffer{},
		OnChange: func(context.Context, []string) error {
			if inFlight.Add(1) > 1 {
				overlapped.Store(true)
			}
			defer inFlight.Add(-1)

			if calls.Add(1) == 1 {
				time.Sleep(300 * time.Millisecond)
				close(firstDone)
			}
			return nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runErr := make(chan error, 1)
	go func() { runErr <- w.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(srcDir, "lib.rs"), []byte("fn a() {}"), 0o644); err != nil {
		t.Fatal(err)
	}

	// Let the first callback start, then change another file while it is
	// still running.
	time.Sleep(150 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(srcDir, "other.rs"), []byte("fn b() {}"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-firstDone:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the first callback")
	}

	// Give the rescheduled firing time to run the second rebuild.
	time.Sleep(300 * time.Millisecond)

	cancel()
	if err := <-runErr; err != nil {
		t.Errorf("Run() returned %v on cancellation", err)
	}

	if overlapped.Load() {
		t.Error("callback invocations overlapped")
	}
	// The skipped firing reschedules itself, so the second change still
	// produces a rebuild once the first completes.
	if got := calls.Load(); got < 2 {
		t.Errorf("expected the deferred change to rebuild after the busy run, got %d call(s)", got)
	}
}

func TestRunIgnoresNonMatchingFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "pkg"), 0o755); err != nil {
		t.Fatal(err)
	}

	fired := make(chan struct{}, 1)
	w, err := New(Config{
		BaseDir:  dir,
		Patterns: []string{"src/**/*.rs"},
		Ignore:   OutputIgnores("pkg"),
		Debounce: 50 * time.Millisecond,
		Stderr:   &bytes.Buffer{},
		OnChange: func(context.Context, []string) error {
			fired <- struct{}{}
			return nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx) //nolint:errcheck // exercised via the fired channel

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "pkg", "package.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-fired:
		t.Fatal("output directory writes must not trigger a rebuild")
	case <-time.After(300 * time.Millisecond):
	}
}
