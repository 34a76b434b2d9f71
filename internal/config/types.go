// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

const (
	// TargetWeb builds for direct browser consumption via ES modules.
	TargetWeb Target = "web"
	// TargetBundler builds for bundlers such as webpack.
	TargetBundler Target = "bundler"
	// TargetNodeJS builds for Node.js with CommonJS modules.
	TargetNodeJS Target = "nodejs"
	// TargetDeno builds for Deno.
	TargetDeno Target = "deno"
	// TargetNoModules builds a no-modules artifact for plain script tags.
	TargetNoModules Target = "no-modules"
)

var (
	// ErrInvalidTarget is returned when a Target value is not recognized.
	ErrInvalidTarget = errors.New("invalid build target")
	// ErrInvalidOutputDir is returned when the output directory is empty,
	// absolute, or escapes the crate directory.
	ErrInvalidOutputDir = errors.New("invalid output directory")
	// ErrInvalidConfig is the sentinel wrapped by general validation failures.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// Target specifies the wasm-pack build target.
	Target string

	// InvalidTargetError is returned when a Target value is not recognized.
	// It wraps ErrInvalidTarget for errors.Is() compatibility.
	InvalidTargetError struct {
		Value Target
	}

	// BackendConfig describes how the compiler backend is invoked.
	BackendConfig struct {
		// Command is the backend binary name or path.
		Command string `mapstructure:"command"`
		// Target is the build target passed via --target.
		Target Target `mapstructure:"target"`
		// Features are cargo feature names passed via --features.
		Features []string `mapstructure:"features"`
		// ExtraArgs are appended verbatim after the fixed arguments.
		ExtraArgs []string `mapstructure:"extra_args"`
	}

	// HooksConfig holds shell snippets run around a build. Each snippet is
	// executed by the embedded POSIX interpreter, so hooks behave the same
	// on every platform.
	HooksConfig struct {
		// Pre hooks run before any managed file is preserved.
		Pre []string `mapstructure:"pre"`
		// Post hooks run after the last managed file is restored.
		Post []string `mapstructure:"post"`
	}

	// WatchConfig controls the file-watching rebuild loop.
	WatchConfig struct {
		// Patterns are doublestar globs, relative to the crate directory,
		// that trigger a rebuild when matching files change.
		Patterns []string `mapstructure:"patterns"`
		// DebounceMS is the quiet period in milliseconds before a rebuild
		// fires after the last filesystem event.
		DebounceMS int `mapstructure:"debounce_ms"`
	}

	// UIConfig holds user interface preferences.
	UIConfig struct {
		// Verbose enables verbose output.
		Verbose bool `mapstructure:"verbose"`
	}

	// Config is the resolved project configuration.
	Config struct {
		// CrateDir is the directory containing Cargo.toml. Not read from the
		// config file; set from the --crate-dir flag or the config file's own
		// location.
		CrateDir string `mapstructure:"-"`

		// OutputDir is the backend output directory, relative to CrateDir.
		OutputDir string `mapstructure:"output_dir"`

		// ManagedFiles are doublestar patterns, relative to OutputDir,
		// naming the hand-authored files that must survive rebuilds.
		ManagedFiles []string `mapstructure:"managed_files"`

		// IgnoreFile is the generated-only file whose content is replaced
		// after every build.
		IgnoreFile string `mapstructure:"ignore_file"`

		// IgnoreGlob is the replacement content for IgnoreFile. Empty means
		// derive "<crate>-*" from the Cargo.toml package name.
		IgnoreGlob string `mapstructure:"ignore_glob"`

		// EnvFiles are dotenv files, relative to CrateDir, merged into the
		// backend and hook environment. A trailing '?' marks a file optional.
		EnvFiles []string `mapstructure:"env_files"`

		Backend BackendConfig `mapstructure:"backend"`
		Hooks   HooksConfig   `mapstructure:"hooks"`
		Watch   WatchConfig   `mapstructure:"watch"`
		UI      UIConfig      `mapstructure:"ui"`
	}
)

// Error implements the error interface.
func (e *InvalidTargetError) Error() string {
	return fmt.Sprintf("invalid build target %q (valid: web, bundler, nodejs, deno, no-modules)", e.Value)
}

// Unwrap returns the sentinel for errors.Is() checks.
func (e *InvalidTargetError) Unwrap() error {
	return ErrInvalidTarget
}

// IsValid reports whether the target is one of the known wasm-pack targets.
func (t Target) IsValid() bool {
	switch t {
	case TargetWeb, TargetBundler, TargetNodeJS, TargetDeno, TargetNoModules:
		return true
	}
	return false
}

// DefaultConfig returns the built-in defaults: a wasm-pack build targeting
// the web, writing into pkg/, with the npm manifest and README managed.
func DefaultConfig() *Config {
	return &Config{
		CrateDir:     ".",
		OutputDir:    "pkg",
		ManagedFiles: []string{"package.json", "README.md"},
		IgnoreFile:   ".gitignore",
		Backend: BackendConfig{
			Command:  "wasm-pack",
			Target:   TargetWeb,
			Features: []string{"wasm"},
		},
		Watch: WatchConfig{
			Patterns:   []string{"src/**/*.rs", "Cargo.toml"},
			DebounceMS: 500,
		},
	}
}

// OutputPath returns the absolute output directory path.
func (c *Config) OutputPath() string {
	return filepath.Join(c.CrateDir, c.OutputDir)
}

// Validate checks the configuration for structural problems.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("%w: output_dir must not be empty", ErrInvalidOutputDir)
	}
	if filepath.IsAbs(c.OutputDir) {
		return fmt.Errorf("%w: output_dir must be relative to the crate directory", ErrInvalidOutputDir)
	}
	clean := filepath.Clean(c.OutputDir)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: output_dir must name a directory inside the crate", ErrInvalidOutputDir)
	}
	if !c.Backend.Target.IsValid() {
		return &InvalidTargetError{Value: c.Backend.Target}
	}
	if strings.TrimSpace(c.Backend.Command) == "" {
		return fmt.Errorf("%w: backend.command must not be empty", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.IgnoreFile) == "" {
		return fmt.Errorf("%w: ignore_file must not be empty", ErrInvalidConfig)
	}
	for _, pattern := range c.ManagedFiles {
		if strings.TrimSpace(pattern) == "" {
			return fmt.Errorf("%w: managed_files entries must not be empty", ErrInvalidConfig)
		}
		if filepath.IsAbs(pattern) {
			return fmt.Errorf("%w: managed_files pattern %q must be relative to output_dir", ErrInvalidConfig, pattern)
		}
	}
	if c.Watch.DebounceMS < 0 {
		return fmt.Errorf("%w: watch.debounce_ms must not be negative", ErrInvalidConfig)
	}
	return nil
}
