// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.OutputDir != "pkg" {
		t.Errorf("expected default output dir to be pkg, got %s", cfg.OutputDir)
	}

	if len(cfg.ManagedFiles) != 2 || cfg.ManagedFiles[0] != "package.json" || cfg.ManagedFiles[1] != "README.md" {
		t.Errorf("unexpected default managed files: %v", cfg.ManagedFiles)
	}

	if cfg.IgnoreFile != ".gitignore" {
		t.Errorf("expected default ignore file to be .gitignore, got %s", cfg.IgnoreFile)
	}

	if cfg.IgnoreGlob != "" {
		t.Errorf("expected default ignore glob to be empty (derived), got %q", cfg.IgnoreGlob)
	}

	if cfg.Backend.Command != "wasm-pack" {
		t.Errorf("expected default backend command to be wasm-pack, got %s", cfg.Backend.Command)
	}

	if cfg.Backend.Target != TargetWeb {
		t.Errorf("expected default target to be web, got %s", cfg.Backend.Target)
	}

	if len(cfg.Backend.Features) != 1 || cfg.Backend.Features[0] != "wasm" {
		t.Errorf("unexpected default features: %v", cfg.Backend.Features)
	}

	if cfg.Watch.DebounceMS != 500 {
		t.Errorf("expected default debounce to be 500ms, got %d", cfg.Watch.DebounceMS)
	}

	if cfg.UI.Verbose {
		t.Error("expected default verbose to be false")
	}
}

func TestLoadWithoutConfigFile(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(LoadOptions{CrateDir: dir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.CrateDir != dir {
		t.Errorf("expected crate dir %s, got %s", dir, cfg.CrateDir)
	}
	if cfg.OutputDir != "pkg" {
		t.Errorf("expected defaults to apply, got output dir %s", cfg.OutputDir)
	}
}

func TestLoadFromConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := `output_dir: dist
managed_files:
  - package.json
ignore_glob: "mycrate-*"
backend:
  command: wasm-pack
  target: nodejs
  features:
    - wasm
    - serde
hooks:
  pre:
    - echo before
`
	path := filepath.Join(dir, "wasmforge.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(LoadOptions{CrateDir: dir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.OutputDir != "dist" {
		t.Errorf("expected output dir dist, got %s", cfg.OutputDir)
	}
	if cfg.Backend.Target != TargetNodeJS {
		t.Errorf("expected target nodejs, got %s", cfg.Backend.Target)
	}
	if len(cfg.Backend.Features) != 2 {
		t.Errorf("expected 2 features, got %v", cfg.Backend.Features)
	}
	if cfg.IgnoreGlob != "mycrate-*" {
		t.Errorf("expected configured ignore glob, got %q", cfg.IgnoreGlob)
	}
	if len(cfg.Hooks.Pre) != 1 || cfg.Hooks.Pre[0] != "echo before" {
		t.Errorf("unexpected pre hooks: %v", cfg.Hooks.Pre)
	}
	// Keys absent from the file keep their defaults.
	if cfg.IgnoreFile != ".gitignore" {
		t.Errorf("expected default ignore file, got %s", cfg.IgnoreFile)
	}
}

func TestLoadExplicitConfigFileMissing(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(LoadOptions{
		CrateDir:       dir,
		ConfigFilePath: filepath.Join(dir, "nope.yaml"),
	})
	if err == nil {
		t.Fatal("expected an error for a missing explicit config file")
	}
}

func TestLoadRejectsInvalidTarget(t *testing.T) {
	dir := t.TempDir()
	content := "backend:\n  target: quantum\n"
	if err := os.WriteFile(filepath.Join(dir, "wasmforge.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(LoadOptions{CrateDir: dir})
	if err == nil {
		t.Fatal("expected an error for an invalid target")
	}
	if !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("expected ErrInvalidTarget, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "defaults are valid",
			mutate:  func(*Config) {},
			wantErr: nil,
		},
		{
			name:    "empty output dir",
			mutate:  func(c *Config) { c.OutputDir = "  " },
			wantErr: ErrInvalidOutputDir,
		},
		{
			name:    "absolute output dir",
			mutate:  func(c *Config) { c.OutputDir = string(filepath.Separator) + "tmp" },
			wantErr: ErrInvalidOutputDir,
		},
		{
			name:    "output dir escaping crate",
			mutate:  func(c *Config) { c.OutputDir = filepath.Join("..", "pkg") },
			wantErr: ErrInvalidOutputDir,
		},
		{
			name:    "output dir is crate itself",
			mutate:  func(c *Config) { c.OutputDir = "." },
			wantErr: ErrInvalidOutputDir,
		},
		{
			name:    "empty backend command",
			mutate:  func(c *Config) { c.Backend.Command = "" },
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "empty ignore file",
			mutate:  func(c *Config) { c.IgnoreFile = "" },
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "blank managed file pattern",
			mutate:  func(c *Config) { c.ManagedFiles = []string{""} },
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "negative debounce",
			mutate:  func(c *Config) { c.Watch.DebounceMS = -1 },
			wantErr: ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTargetIsValid(t *testing.T) {
	for _, target := range []Target{TargetWeb, TargetBundler, TargetNodeJS, TargetDeno, TargetNoModules} {
		if !target.IsValid() {
			t.Errorf("expected %s to be valid", target)
		}
	}
	if Target("wasm32").IsValid() {
		t.Error("expected wasm32 to be invalid")
	}
}
