// Copyright © 2025 Prism contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/paths.go
// Summary: Path helpers for prism configuration and persisted state.

package config

import (
	"os"
	"path/filepath"
)

func configRoot() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "prism"), nil
}

func systemConfigPath() (string, error) {
	root, err := configRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, systemConfigName), nil
}

// StatePath resolves the workspace snapshot file, honoring the configured
// override when one is set.
func StatePath() (string, error) {
	if path := System().GetString("workspace", "state_path", ""); path != "" {
		return path, nil
	}
	root, err := configRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "workspace.json"), nil
}

// HistoryPath resolves the snapshot history database, honoring the
// configured override when one is set.
func HistoryPath() (string, error) {
	if path := System().GetString("history", "path", ""); path != "" {
		return path, nil
	}
	root, err := configRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "history.db"), nil
}
