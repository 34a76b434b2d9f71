// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"wasmforge-cli/internal/issue"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "wasmforge"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "wasmforge"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "yaml"
	// EnvPrefix is the prefix for environment variable overrides.
	EnvPrefix = "WASMFORGE"
)

// LoadOptions defines explicit configuration loading inputs.
type LoadOptions struct {
	// ConfigFilePath forces loading from a specific config file when set.
	ConfigFilePath string
	// CrateDir is the crate root. Empty means the current working directory.
	CrateDir string
}

// Load reads configuration from the crate directory (or an explicit file),
// layers WASMFORGE_* environment variables on top of the defaults, and
// validates the result. A missing config file is not an error; defaults
// apply.
func Load(opts LoadOptions) (*Config, error) {
	crateDir := opts.CrateDir
	if crateDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, issue.WrapWithOperation(err, "determine working directory")
		}
		crateDir = wd
	}
	absCrate, err := filepath.Abs(crateDir)
	if err != nil {
		return nil, issue.WrapWithContext(err, "resolve crate directory", crateDir)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFilePath != "" {
		if _, statErr := os.Stat(opts.ConfigFilePath); statErr != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Omit --config to use defaults").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		v.SetConfigFile(opts.ConfigFilePath)
		if err := v.ReadInConfig(); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Check that the file contains valid YAML").
				Wrap(err).
				BuildError()
		}
	} else {
		v.SetConfigName(ConfigFileName)
		v.SetConfigType(ConfigFileExt)
		v.AddConfigPath(absCrate)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, issue.NewErrorContext().
					WithOperation("load configuration").
					WithResource(filepath.Join(absCrate, ConfigFileName+"."+ConfigFileExt)).
					WithSuggestion("Check that the file contains valid YAML").
					Wrap(err).
					BuildError()
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, issue.WrapWithOperation(err, "parse configuration")
	}
	cfg.CrateDir = absCrate

	if err := cfg.Validate(); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(v.ConfigFileUsed()).
			WithSuggestion("See 'wasmforge build --help' for configuration keys").
			Wrap(err).
			BuildError()
	}

	return cfg, nil
}

// setDefaults registers the DefaultConfig values with viper so that env
// overrides and partial config files merge cleanly.
func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()
	v.SetDefault("output_dir", defaults.OutputDir)
	v.SetDefault("managed_files", defaults.ManagedFiles)
	v.SetDefault("ignore_file", defaults.IgnoreFile)
	v.SetDefault("ignore_glob", defaults.IgnoreGlob)
	v.SetDefault("env_files", defaults.EnvFiles)
	v.SetDefault("backend.command", defaults.Backend.Command)
	v.SetDefault("backend.target", string(defaults.Backend.Target))
	v.SetDefault("backend.features", defaults.Backend.Features)
	v.SetDefault("backend.extra_args", defaults.Backend.ExtraArgs)
	v.SetDefault("hooks.pre", defaults.Hooks.Pre)
	v.SetDefault("hooks.post", defaults.Hooks.Post)
	v.SetDefault("watch.patterns", defaults.Watch.Patterns)
	v.SetDefault("watch.debounce_ms", defaults.Watch.DebounceMS)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
}
