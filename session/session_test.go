// Copyright © 2025 Prism contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"strings"
	"testing"

	"prism/workspace"
)

type seqIDs struct {
	prefix string
	n      int
}

func (s *seqIDs) NewID() string {
	s.n++
	return fmt.Sprintf("%s%d", s.prefix, s.n)
}

func newTestSession(opts ...Option) *Session {
	ids := &seqIDs{prefix: "id"}
	reducer := workspace.NewReducer(ids, workspace.NopNotifier{}, 0)
	return New(reducer, workspace.New(ids), opts...)
}

func TestDispatchCommitsAndNotifies(t *testing.T) {
	s := newTestSession()

	var seen []*workspace.Workspace
	s.Subscribe(func(ws *workspace.Workspace) { seen = append(seen, ws) })
	if len(seen) != 1 {
		t.Fatalf("subscribe must deliver the current state, got %d calls", len(seen))
	}

	before := s.State()
	after := s.Dispatch(workspace.AddTab{PanelID: before.ActivePanelID, Name: "Second"})
	if after == before {
		t.Fatal("effective action should commit a new state")
	}
	if s.State() != after {
		t.Fatal("State() must return the committed state")
	}
	if len(seen) != 2 || seen[1] != after {
		t.Fatalf("listener not notified with the committed state: %d calls", len(seen))
	}
}

func TestRefusedActionNotifiesNobody(t *testing.T) {
	s := newTestSession()

	calls := 0
	s.Subscribe(func(*workspace.Workspace) { calls++ })

	before := s.State()
	after := s.Dispatch(workspace.AddTab{PanelID: "no-such-panel"})
	if after != before {
		t.Fatal("refused action must return the prior state by identity")
	}
	if calls != 1 {
		t.Fatalf("refused action must not notify, got %d calls", calls)
	}
}

func TestNilInitialStateStartsFresh(t *testing.T) {
	ids := &seqIDs{prefix: "f"}
	s := New(workspace.NewReducer(ids, nil, 0), nil)
	ws := s.State()
	if ws == nil || len(ws.Tabs) != 1 || ws.ActivePanelID == "" {
		t.Fatalf("expected a fresh workspace, got %+v", ws)
	}
}

func TestStrictSyncDiscardsInvalidState(t *testing.T) {
	s := newTestSession(WithStrictSync(true))
	before := s.State()

	// Replacing only the tab list leaves panelTabs pointing at a tab that
	// no longer exists, which the validator must catch.
	after := s.Dispatch(workspace.SyncWorkspace{
		Tabs: []workspace.Tab{{ID: "ghost", Name: "Ghost", PanelID: before.ActivePanelID}},
	})
	if after != before {
		t.Fatal("invalid synced state must be discarded")
	}
}

func TestStrictSyncAcceptsConsistentState(t *testing.T) {
	s := newTestSession(WithStrictSync(true))

	donor := workspace.New(&seqIDs{prefix: "d"})
	after := s.Dispatch(workspace.SyncWorkspace{
		Tabs:          donor.Tabs,
		Panel:         donor.Panel,
		PanelTabs:     donor.PanelTabs,
		ActiveTabIDs:  donor.ActiveTabIDs,
		ActivePanelID: donor.ActivePanelID,
	})
	if after.ActivePanelID != donor.ActivePanelID {
		t.Fatalf("consistent sync should commit, got %q", after.ActivePanelID)
	}
}

func TestDevChecksLogViolations(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	s := newTestSession(WithDevChecks(true))
	before := s.State()

	// Without strict sync the inconsistent state commits, and the dev
	// check must flag it.
	s.Dispatch(workspace.SyncWorkspace{
		Tabs: []workspace.Tab{{ID: "ghost", Name: "Ghost", PanelID: before.ActivePanelID}},
	})
	if !strings.Contains(buf.String(), "Invariant violation") {
		t.Fatalf("expected an invariant violation log, got %q", buf.String())
	}
}

func TestCloseStopsDispatch(t *testing.T) {
	s := newTestSession()
	before := s.State()
	s.Close()
	after := s.Dispatch(workspace.AddTab{PanelID: before.ActivePanelID})
	if after != before {
		t.Fatal("dispatch after close must be a no-op")
	}
}
