// Copyright © 2025 Prism contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: store/autosave.go
// Summary: Debounced write-behind persistence for workspace changes.
// Usage: Subscribed to the session; coalesces bursts of state changes
//        into one disk write. Persistence failures are logged, never
//        surfaced to the interaction that caused them.

package store

import (
	"log"
	"sync"
	"time"

	"prism/workspace"
)

// Autosaver coalesces state changes and flushes them after a quiet period.
type Autosaver struct {
	store    *SnapshotStore
	debounce time.Duration

	mu      sync.Mutex
	pending *workspace.Workspace
	timer   *time.Timer
	closed  bool
}

// NewAutosaver creates an autosaver flushing to store after debounce of
// inactivity. A non-positive debounce flushes on every change.
func NewAutosaver(store *SnapshotStore, debounce time.Duration) *Autosaver {
	return &Autosaver{store: store, debounce: debounce}
}

// StateChanged records the latest state and schedules a flush. Newer states
// replace older pending ones; only the last state in a burst hits disk.
func (a *Autosaver) StateChanged(ws *workspace.Workspace) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.pending = ws

	if a.debounce <= 0 {
		a.flushLocked()
		return
	}
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.debounce, func() {
		if err := a.Flush(); err != nil {
			log.Printf("Autosave: Flush failed: %v", err)
		}
	})
}

// Flush writes any pending state immediately.
func (a *Autosaver) Flush() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.flushLocked()
}

func (a *Autosaver) flushLocked() error {
	if a.pending == nil {
		return nil
	}
	ws := a.pending
	a.pending = nil
	if err := a.store.Save(ws); err != nil {
		log.Printf("Autosave: Failed to persist workspace: %v", err)
		return err
	}
	return nil
}

// Close stops the timer and flushes any pending state.
func (a *Autosaver) Close() error {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.closed = true
	err := a.flushLocked()
	a.mu.Unlock()
	return err
}
