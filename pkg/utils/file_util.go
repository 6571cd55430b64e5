// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// CheckWritableDir returns nil if dir exists, is a directory, and has the
// owner write bit set.
func CheckWritableDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: %w", dir, os.ErrInvalid)
	}
	if info.Mode().Perm()&0200 == 0 {
		return fmt.Errorf("%s: %w", dir, os.ErrPermission)
	}
	return nil
}

// ResolvePath expands a leading "~" and environment variables
func ResolvePath(path string) string {
	if strings.HasPrefix(path, "~") {
		if usr, err := user.Current(); err == nil {
			switch {
			case path == "~":
				path = usr.HomeDir
			case strings.HasPrefix(path, "~/"):
				path = filepath.Join(usr.HomeDir, path[2:])
			}
		}
	}
	path = os.ExpandEnv(path)
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// LocalPathForKey returns where key is written under dir. Key segments are
// kept as subdirectories; ".." segments are rejected.
func LocalPathForKey(dir, key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("key %q cannot be written under %s", key, dir)
	}
	return filepath.Join(dir, clean), nil
}
