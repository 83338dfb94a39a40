package fs

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// IsUnsafePath checks if the given path is unsafe to remove
func IsUnsafePath(path string) (bool, error) {
	// First check the original path before any normalization
	// This preserves the original input like "." or ".."
	originalBase := filepath.Base(path)
	if originalBase == "." || originalBase == ".." {
		return true, nil
	}

	// Clean the path to check for normalized root paths
	cleaned := filepath.Clean(path)

	// Check root path
	if cleaned == "/" {
		return true, nil
	}

	// Check double slashes and similar patterns
	if strings.HasPrefix(path, "//") {
		return true, nil
	}

	return false, nil
}

// Contains reports whether child is parent itself or lies below it.
// Both paths must be absolute and clean.
func Contains(parent, child string) bool {
	if parent == child {
		return true
	}
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// DirSize returns the total size of regular files under path. For a
// regular file it is the size of the file.
func DirSize(path string) (int64, error) {
	var size int64
	err := filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			size += info.Size()
		}
		return nil
	})
	return size, err
}

// ExpandHome expands a leading "~" and environment variables in input
func ExpandHome(input string) (string, error) {
	result := input
	switch {
	case result == "~" || strings.HasPrefix(result, "~/"):
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		result = home + strings.TrimPrefix(result, "~")
	}
	return os.ExpandEnv(result), nil
}
