// SPDX-License-Identifier: MPL-2.0

// Package envfile merges dotenv files into an environment map for the
// backend invocation and build hooks.
package envfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Load reads a dotenv file and merges its contents into env. The path is
// resolved relative to baseDir unless absolute. A trailing '?' marks the
// file optional; a missing optional file is a no-op. Later calls override
// earlier values for the same keys.
func Load(env map[string]string, path, baseDir string) error {
	optional := strings.HasSuffix(path, "?")
	if optional {
		path = strings.TrimSuffix(path, "?")
	}

	fullPath := path
	if !filepath.IsAbs(fullPath) {
		fullPath = filepath.Join(baseDir, filepath.FromSlash(path))
	}

	values, err := godotenv.Read(fullPath)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", fullPath, err)
	}

	for k, v := range values {
		env[k] = v
	}
	return nil
}

// LoadAll merges a list of dotenv files into env, in order.
func LoadAll(env map[string]string, paths []string, baseDir string) error {
	for _, p := range paths {
		if err := Load(env, p, baseDir); err != nil {
			return err
		}
	}
	return nil
}

// ToSlice converts an env map to the KEY=VALUE form expected by os/exec
// and the embedded shell interpreter.
func ToSlice(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	return out
}
