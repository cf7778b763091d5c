// Copyright © 2025 Prism contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: workspace/ids.go
// Summary: Injected collaborators for id generation and user notifications.
// Usage: Passed to NewReducer so the reducer stays pure and testable.

package workspace

import (
	"log"

	"github.com/google/uuid"
)

// IDGenerator produces unique ids for tabs and panels. Injected so tests can
// substitute a deterministic sequence.
type IDGenerator interface {
	NewID() string
}

type uuidGenerator struct{}

func (uuidGenerator) NewID() string { return uuid.NewString() }

// NewUUIDGenerator returns the production id generator.
func NewUUIDGenerator() IDGenerator { return uuidGenerator{} }

// NotifyLevel classifies a user-facing notification.
type NotifyLevel string

const (
	NotifyInfo    NotifyLevel = "info"
	NotifyWarning NotifyLevel = "warning"
)

// Notifier receives transient user-facing notifications raised by the
// reducer (e.g. the tab cap being hit). Delivery is a host concern.
type Notifier interface {
	Notify(level NotifyLevel, message string)
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) Notify(NotifyLevel, string) {}

// LogNotifier writes notifications to the process log.
type LogNotifier struct{}

func (LogNotifier) Notify(level NotifyLevel, message string) {
	log.Printf("Notify: [%s] %s", level, message)
}
