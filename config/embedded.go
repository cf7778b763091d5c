// Copyright © 2025 Prism contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/embedded.go
// Summary: Loads and caches parsed defaults from the embedded JSON file.
// The embedded JSON in defaults/ is the single source of truth.

package config

import (
	"encoding/json"
	"sync"

	"prism/defaults"
)

var (
	embeddedSystemOnce sync.Once
	embeddedSystem     Config
	embeddedSystemErr  error
)

// embeddedSystemDefaults returns the parsed system defaults from embedded JSON.
// The result is cached after the first call.
func embeddedSystemDefaults() (Config, error) {
	embeddedSystemOnce.Do(func() {
		data, err := defaults.SystemConfig()
		if err != nil {
			embeddedSystemErr = err
			return
		}
		var cfg Config
		if err := json.Unmarshal(data, &cfg); err != nil {
			embeddedSystemErr = err
			return
		}
		embeddedSystem = cfg
	})
	return embeddedSystem, embeddedSystemErr
}

// defaultSystemConfig returns a clone of the embedded system defaults.
// Used by store.go when writing initial config to disk.
func defaultSystemConfig() Config {
	cfg, err := embeddedSystemDefaults()
	if err != nil || cfg == nil {
		return nil
	}
	return Clone(cfg)
}
