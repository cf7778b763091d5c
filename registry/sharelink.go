// Copyright © 2025 Prism contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: registry/sharelink.go
// Summary: Deep-link encoding for sharing a tab's layout binding.

package registry

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// ShareLink is the portable encoding of one tab's layout binding. Opening a
// share link creates a tab bound to the same layout with the same params.
type ShareLink struct {
	LayoutID     string         `json:"layoutId"`
	Name         string         `json:"name,omitempty"`
	LayoutParams map[string]any `json:"layoutParams,omitempty"`
	LayoutOption string         `json:"layoutOption,omitempty"`
}

// Encode serializes the link as URL-safe base64 JSON.
func (s ShareLink) Encode() (string, error) {
	if s.LayoutID == "" {
		return "", fmt.Errorf("encode share link: layout id must not be empty")
	}
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode share link: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// DecodeShareLink parses an encoded share link, rejecting malformed input
// and links without a layout id.
func DecodeShareLink(encoded string) (ShareLink, error) {
	var link ShareLink
	data, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return link, fmt.Errorf("decode share link: %w", err)
	}
	if err := json.Unmarshal(data, &link); err != nil {
		return link, fmt.Errorf("decode share link: %w", err)
	}
	if link.LayoutID == "" {
		return ShareLink{}, fmt.Errorf("decode share link: layout id must not be empty")
	}
	return link, nil
}
