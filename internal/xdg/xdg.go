// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MagicSessions Contributors

// Package xdg locates magicsessions files under the XDG Base Directory layout.
package xdg

import (
	"os"
	"path/filepath"
)

const (
	appName        = "magicsessions"
	configFileName = "config.yaml"
)

// ConfigDir returns the XDG config directory for magicsessions.
// Checks XDG_CONFIG_HOME first, falls back to ~/.config.
func ConfigDir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(base, appName)
}

// DefaultConfigFile returns the config file path used when --config is not given.
func DefaultConfigFile() string {
	return filepath.Join(ConfigDir(), configFileName)
}

// FindConfigFile returns DefaultConfigFile if it exists as a regular file.
func FindConfigFile() (string, bool) {
	path := DefaultConfigFile()
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return path, true
}
