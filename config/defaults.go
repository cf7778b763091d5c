// Copyright © 2025 Prism contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/defaults.go
// Summary: Default values for the system configuration file.

package config

func applySystemDefaults(cfg Config) {
	if cfg == nil {
		return
	}
	cfg.RegisterDefaults("", Section{
		"activeTheme":   "dark",
		"initialLayout": "",
	})
	cfg.RegisterDefaults("workspace", Section{
		"max_tabs":   16,
		"dev_checks": false,
	})
	cfg.RegisterDefaults("autosave", Section{
		"enabled":     true,
		"debounce_ms": 1500,
	})
	cfg.RegisterDefaults("history", Section{
		"enabled": true,
		"keep":    50,
	})
}
