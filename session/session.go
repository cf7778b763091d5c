// Copyright © 2025 Prism contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: session/session.go
// Summary: Serializes workspace actions for one host and fans out state changes.
// Usage: Hosts dispatch actions here instead of touching the reducer directly;
//        listeners (UI, autosave) observe each committed state.

package session

import (
	"encoding/json"
	"errors"
	"log"
	"sync"

	"prism/workspace"
)

var ErrSessionClosed = errors.New("session: closed")

// Listener observes each committed workspace state.
type Listener func(*workspace.Workspace)

// Session owns the current workspace state for one host. All dispatches are
// serialized; listeners see states in commit order.
type Session struct {
	mu        sync.Mutex
	reducer   *workspace.Reducer
	state     *workspace.Workspace
	listeners []Listener
	closed    bool

	// devChecks re-verifies the state invariants after every commit and
	// logs violations. Meant for development builds only.
	devChecks bool

	// strictSync runs incoming full-state syncs through the snapshot
	// validator and discards them on failure.
	strictSync bool
}

// Option configures a Session.
type Option func(*Session)

// WithDevChecks enables post-commit invariant checking.
func WithDevChecks(enabled bool) Option {
	return func(s *Session) { s.devChecks = enabled }
}

// WithStrictSync enables validation of synced states.
func WithStrictSync(enabled bool) Option {
	return func(s *Session) { s.strictSync = enabled }
}

// New creates a session around an initial state. A nil initial state starts
// a fresh workspace from the reducer's id generator.
func New(reducer *workspace.Reducer, initial *workspace.Workspace, opts ...Option) *Session {
	s := &Session{reducer: reducer, state: initial}
	for _, opt := range opts {
		opt(s)
	}
	if s.state == nil {
		s.state = reducer.Apply(nil, workspace.ResetWorkspace{})
	}
	return s
}

// State returns the current workspace. Callers must treat it as read-only;
// every mutation goes through Dispatch.
func (s *Session) State() *workspace.Workspace {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers a listener for committed states. The listener is
// immediately called with the current state.
func (s *Session) Subscribe(l Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	current := s.state
	s.mu.Unlock()
	l(current)
}

// Dispatch applies one action. Refused actions leave the state untouched
// and notify nobody. The committed state is returned either way.
func (s *Session) Dispatch(action workspace.Action) *workspace.Workspace {
	s.mu.Lock()
	if s.closed {
		state := s.state
		s.mu.Unlock()
		return state
	}

	next := s.reducer.Apply(s.state, action)
	if next == s.state {
		s.mu.Unlock()
		return next
	}

	if payload, ok := action.(workspace.SyncWorkspace); ok && s.strictSync {
		if !s.syncedStateValid(next) {
			log.Printf("Session: Discarding invalid synced state (%d tabs)", len(payload.Tabs))
			state := s.state
			s.mu.Unlock()
			return state
		}
	}

	if s.devChecks {
		for _, violation := range workspace.CheckInvariants(next) {
			log.Printf("Session: Invariant violation after %T: %s", action, violation)
		}
	}

	s.state = next
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	for _, l := range listeners {
		l(next)
	}
	return next
}

// Close stops the session; further dispatches are no-ops.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.listeners = nil
	s.mu.Unlock()
}

// syncedStateValid round-trips the candidate through the snapshot validator.
func (s *Session) syncedStateValid(ws *workspace.Workspace) bool {
	data, err := json.Marshal(ws)
	if err != nil {
		return false
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return false
	}
	_, errs := workspace.ValidateSnapshot(raw)
	return len(errs) == 0
}
