// SPDX-License-Identifier: MPL-2.0

// Package crate reads the metadata wasmforge needs from a Rust crate's
// Cargo.toml: the package name and version. The name seeds the default
// ignore-file glob ("<name>-*", matching the tarballs `npm pack` drops
// into the output directory) and the post-build summary.
package crate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ManifestName is the crate manifest filename.
const ManifestName = "Cargo.toml"

// ErrNoPackageName is returned when Cargo.toml has no [package] name.
var ErrNoPackageName = errors.New("Cargo.toml has no package name")

type (
	// Metadata is the subset of crate manifest data wasmforge uses.
	Metadata struct {
		// Name is the crate package name.
		Name string
		// Version is the crate package version ("" when absent).
		Version string
	}

	manifest struct {
		Package manifestPackage `toml:"package"`
	}

	manifestPackage struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
	}
)

// Load reads Cargo.toml from the given crate directory.
func Load(crateDir string) (*Metadata, error) {
	path := filepath.Join(crateDir, ManifestName)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read crate manifest %s: %w", path, err)
	}

	var m manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse crate manifest %s: %w", path, err)
	}

	name := strings.TrimSpace(m.Package.Name)
	if name == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrNoPackageName)
	}

	return &Metadata{
		Name:    name,
		Version: strings.TrimSpace(m.Package.Version),
	}, nil
}

// IgnoreGlob returns the prefix glob that excludes this crate's packed
// tarballs (e.g. "mycrate-0.1.0.tgz") from version control while leaving
// the managed files trackable.
func (m *Metadata) IgnoreGlob() string {
	return m.Name + "-*"
}

// String returns "name vVERSION" or just the name when no version is set.
func (m *Metadata) String() string {
	if m.Version == "" {
		return m.Name
	}
	return m.Name + " v" + m.Version
}
