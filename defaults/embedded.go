// Copyright © 2025 Prism contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: defaults/embedded.go
// Summary: Embedded default configuration files.

package defaults

import "embed"

//go:embed prism.json
var fs embed.FS

// SystemConfig returns the embedded system config JSON.
func SystemConfig() ([]byte, error) {
	return fs.ReadFile("prism.json")
}
