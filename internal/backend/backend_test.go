// SPDX-License-Identifier: MPL-2.0

package backend

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"

	"wasmforge-cli/internal/config"
)

func TestArgs(t *testing.T) {
	tests := []struct {
		name string
		w    *WasmPack
		want []string
	}{
		{
			name: "defaults",
			w: &WasmPack{
				Target:   config.TargetWeb,
				Features: []string{"wasm"},
				OutDir:   "pkg",
			},
			want: []string{"build", "--target", "web", "--out-dir", "pkg", "--", "--features", "wasm"},
		},
		{
			name: "no features",
			w: &WasmPack{
				Target: config.TargetNodeJS,
				OutDir: "dist",
			},
			want: []string{"build", "--target", "nodejs", "--out-dir", "dist"},
		},
		{
			name: "multiple features joined",
			w: &WasmPack{
				Target:   config.TargetWeb,
				Features: []string{"wasm", "serde"},
				OutDir:   "pkg",
			},
			want: []string{"build", "--target", "web", "--out-dir", "pkg", "--", "--features", "wasm,serde"},
		},
		{
			name: "extra args before cargo separator",
			w: &WasmPack{
				Target:    config.TargetWeb,
				Features:  []string{"wasm"},
				ExtraArgs: []string{"--no-typescript"},
				OutDir:    "pkg",
			},
			want: []string{"build", "--target", "web", "--out-dir", "pkg", "--no-typescript", "--", "--features", "wasm"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.w.Args(); !slices.Equal(got, tt.want) {
				t.Errorf("Args() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.CrateDir = "/tmp/crate"

	w := New(cfg)
	if w.Command != "wasm-pack" {
		t.Errorf("unexpected command %s", w.Command)
	}
	if w.CrateDir != "/tmp/crate" {
		t.Errorf("unexpected crate dir %s", w.CrateDir)
	}
	if w.OutDir != "pkg" {
		t.Errorf("unexpected out dir %s", w.OutDir)
	}
}

// writeFakeBackend creates an executable script that stands in for
// wasm-pack in tests.
func writeFakeBackend(t *testing.T, dir, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake backend scripts require a POSIX shell")
	}
	path := filepath.Join(dir, "fake-wasm-pack")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestInvokeSuccess(t *testing.T) {
	dir := t.TempDir()
	bin := writeFakeBackend(t, dir, "echo built\nexit 0\n")

	var stdout bytes.Buffer
	w := &WasmPack{
		Command:  bin,
		Target:   config.TargetWeb,
		CrateDir: dir,
		OutDir:   "pkg",
		Stdout:   &stdout,
		Stderr:   &bytes.Buffer{},
	}

	res := w.Invoke(context.Background())
	if !res.Success() {
		t.Fatalf("expected success, got exit %d err %v", res.ExitCode, res.Error)
	}
	if !bytes.Contains(stdout.Bytes(), []byte("built")) {
		t.Errorf("expected backend stdout to be streamed, got %q", stdout.String())
	}
}

func TestInvokeExitCodePropagates(t *testing.T) {
	dir := t.TempDir()
	bin := writeFakeBackend(t, dir, "exit 3\n")

	w := &WasmPack{
		Command:  bin,
		Target:   config.TargetWeb,
		CrateDir: dir,
		OutDir:   "pkg",
		Stdout:   &bytes.Buffer{},
		Stderr:   &bytes.Buffer{},
	}

	res := w.Invoke(context.Background())
	if res.ExitCode != 3 {
		t.Errorf("expected exit code 3, got %d", res.ExitCode)
	}
	if res.Error != nil {
		t.Errorf("non-zero exit is not an invocation error, got %v", res.Error)
	}
}

func TestInvokeMissingBinary(t *testing.T) {
	w := &WasmPack{
		Command:  filepath.Join(t.TempDir(), "does-not-exist"),
		Target:   config.TargetWeb,
		CrateDir: t.TempDir(),
		OutDir:   "pkg",
		Stdout:   &bytes.Buffer{},
		Stderr:   &bytes.Buffer{},
	}

	res := w.Invoke(context.Background())
	if res.Error == nil {
		t.Fatal("expected an invocation error for a missing binary")
	}
	if res.ExitCode == 0 {
		t.Error("expected a non-zero exit code")
	}
}

func TestResultConstructors(t *testing.T) {
	if !NewSuccessResult().Success() {
		t.Error("NewSuccessResult should be a success")
	}
	if NewExitCodeResult(2).Success() {
		t.Error("NewExitCodeResult(2) should not be a success")
	}
	if NewExitCodeResult(2).Error != nil {
		t.Error("NewExitCodeResult should carry no error")
	}
}
