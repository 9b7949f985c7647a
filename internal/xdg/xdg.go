// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

// Package xdg locates YuzuDice files under the XDG Base Directory layout.
package xdg

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/samber/oops"
)

const (
	appName        = "yuzudice"
	configFileName = "config.yaml"
)

// ConfigDir returns the XDG config directory for yuzudice.
// Checks XDG_CONFIG_HOME first, falls back to ~/.config.
func ConfigDir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(base, appName)
}

// ConfigFile is where the config file lives when --config is not given.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), configFileName)
}

// FindConfigFile returns ConfigFile when it exists. A missing file is not
// an error; any other stat failure is.
func FindConfigFile() (string, bool, error) {
	path := ConfigFile()
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "", false, nil
	case err != nil:
		return "", false, oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrap(err)
	case info.IsDir():
		return "", false, oops.Code("CONFIG_LOAD_FAILED").With("path", path).Errorf("config path is a directory")
	}
	return path, true, nil
}
