// SPDX-License-Identifier: MPL-2.0

// Package config handles project configuration using Viper.
//
// Configuration is project-level: a wasmforge.yaml next to the crate's
// Cargo.toml, with WASMFORGE_* environment variables layered on top.
// All paths in the config are resolved relative to the crate directory,
// never the ambient working directory.
package config
