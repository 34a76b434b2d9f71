// SPDX-License-Identifier: MPL-2.0

package reconcile

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"

	"wasmforge-cli/internal/issue"
)

// SlotDir returns the backup slot directory for an output directory: a
// sibling named "<dir>.bak". Slots live outside the output directory
// because the backend replaces its entire contents.
func SlotDir(outDir string) string {
	return filepath.Clean(outDir) + ".bak"
}

// HasSlots reports whether backup slots exist for the given output
// directory. An empty slot directory counts as no slots.
func HasSlots(outDir string) (bool, error) {
	slots, err := ListSlots(outDir)
	if err != nil {
		return false, err
	}
	return len(slots) > 0, nil
}

// ListSlots returns the files currently held in the backup slot directory,
// as paths relative to the output directory they belong to. Sorted.
func ListSlots(outDir string) ([]string, error) {
	slotDir := SlotDir(outDir)

	var slots []string
	err := filepath.WalkDir(slotDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(slotDir, path)
		if relErr != nil {
			return relErr
		}
		slots = append(slots, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, issue.WrapWithContext(err, "inspect backup slots", slotDir)
	}

	slices.Sort(slots)
	return slots, nil
}

// matchManaged resolves the managed-file patterns against the output
// directory. Patterns that match nothing are skipped; a missing output
// directory yields no matches (first build). Results are sorted, unique,
// slash-separated paths relative to outDir.
func matchManaged(outDir string, patterns []string) ([]string, error) {
	if _, err := os.Stat(outDir); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, issue.WrapWithContext(err, "inspect output directory", outDir)
	}

	fsys := os.DirFS(outDir)
	var matched []string
	for _, pattern := range patterns {
		hits, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, issue.WrapWithContext(err, "match managed files", pattern)
		}
		for _, hit := range hits {
			info, err := fs.Stat(fsys, hit)
			if err != nil {
				return nil, issue.WrapWithContext(err, "inspect managed file", hit)
			}
			if info.IsDir() {
				continue
			}
			matched = append(matched, hit)
		}
	}

	slices.Sort(matched)
	return slices.Compact(matched), nil
}

// preserveAll copies every matched managed file into the slot directory,
// mirroring its path relative to the output directory. The slot directory
// is only created when there is something to preserve.
func preserveAll(outDir string, files []string) error {
	if len(files) == 0 {
		return nil
	}

	slotDir := SlotDir(outDir)
	for _, rel := range files {
		src := filepath.Join(outDir, filepath.FromSlash(rel))
		dst := filepath.Join(slotDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return issue.WrapWithContext(err, "create backup slot", filepath.Dir(dst))
		}
		if err := copyFile(src, dst); err != nil {
			return issue.WrapWithContext(err, "preserve managed file", rel)
		}
	}
	return nil
}

// RestoreSlots moves every backup slot back into the output directory,
// overwriting whatever the backend generated there, and removes the slot
// directory. Returns the restored paths (relative to outDir). A missing
// slot directory is a no-op.
func RestoreSlots(outDir string) ([]string, error) {
	slots, err := ListSlots(outDir)
	if err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return nil, nil
	}

	slotDir := SlotDir(outDir)
	for _, rel := range slots {
		src := filepath.Join(slotDir, filepath.FromSlash(rel))
		dst := filepath.Join(outDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return nil, issue.WrapWithContext(err, "recreate output path", filepath.Dir(dst))
		}
		if err := moveFile(src, dst); err != nil {
			return nil, issue.WrapWithContext(err, "restore managed file", rel)
		}
	}

	if err := os.RemoveAll(slotDir); err != nil {
		return nil, issue.WrapWithContext(err, "remove backup slot directory", slotDir)
	}

	return slots, nil
}

// DiscardSlots deletes the backup slot directory and everything in it.
// Returns the discarded paths. A missing slot directory is a no-op.
func DiscardSlots(outDir string) ([]string, error) {
	slots, err := ListSlots(outDir)
	if err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return nil, nil
	}

	slotDir := SlotDir(outDir)
	if err := os.RemoveAll(slotDir); err != nil {
		return nil, issue.WrapWithContext(err, "remove backup slot directory", slotDir)
	}
	return slots, nil
}

// copyFile copies src to dst byte for byte, carrying over the file mode.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// moveFile renames src to dst, falling back to copy-and-delete when the
// rename crosses filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := copyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}
