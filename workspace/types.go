// Copyright © 2025 Prism contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: workspace/types.go
// Summary: Core entity model for the tabbed split-pane workspace.
// Usage: Shared by the reducer, the snapshot validator, and every host collaborator.

package workspace

import "time"

// SplitDirection describes how a container panel divides its area.
type SplitDirection string

const (
	SplitHorizontal SplitDirection = "horizontal"
	SplitVertical   SplitDirection = "vertical"
)

// SplitPosition says on which side of an existing leaf a new sibling lands.
type SplitPosition string

const (
	PositionBefore SplitPosition = "before"
	PositionAfter  SplitPosition = "after"
)

// Tab is a unit of content. A tab always belongs to exactly one leaf panel;
// the ordered tab-bar position lives in Workspace.PanelTabs, not here.
type Tab struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	PanelID      string         `json:"panelId"`
	CreatedAt    time.Time      `json:"createdAt,omitempty"`
	LayoutID     string         `json:"layoutId,omitempty"`
	LayoutParams map[string]any `json:"layoutParams,omitempty"`
	LayoutOption string         `json:"layoutOption,omitempty"`
	Locked       bool           `json:"locked,omitempty"`
	MountKey     string         `json:"mountKey,omitempty"`
	Icon         string         `json:"icon,omitempty"`
	Style        string         `json:"style,omitempty"`

	// Loading is a transient render flag, never persisted.
	Loading bool `json:"-"`
}

// Panel is a node in the split tree. A node without children is a leaf and
// is the only kind of panel that may hold tabs. A container always has a
// split direction and (after normalization) exactly two children.
type Panel struct {
	ID        string         `json:"id"`
	Order     int            `json:"order"`
	Direction SplitDirection `json:"direction,omitempty"`
	Pinned    bool           `json:"pinned,omitempty"`
	Size      float64        `json:"size,omitempty"`
	Children  []*Panel       `json:"children,omitempty"`
}

// IsLeaf reports whether the panel holds tabs rather than children.
func (p *Panel) IsLeaf() bool {
	return p != nil && len(p.Children) == 0
}

// UndoEntry records one tab removal so PopUndo can restore it.
type UndoEntry struct {
	Tab     Tab
	Index   int
	PanelID string
}

// MaxUndoEntries caps the undo stack; the oldest entry is evicted first.
const MaxUndoEntries = 10

// Workspace is the aggregate root: the full tab list, the panel tree, and
// the derived indexes that must stay consistent with both.
//
// Undo and SearchBarModes are ephemeral, request-scoped state. They are
// excluded from snapshots and from the cross-key invariants: an undo entry
// may reference a panel that no longer exists, which PopUndo tolerates by
// falling back to the active panel.
type Workspace struct {
	Tabs             []Tab               `json:"tabs"`
	Panel            *Panel              `json:"panel"`
	PanelTabs        map[string][]string `json:"panelTabs"`
	ActiveTabIDs     map[string]string   `json:"activeTabIds"`
	ActivePanelID    string              `json:"activePanelId"`
	FavoriteLayouts  []string            `json:"favoriteLayouts,omitempty"`
	Theme            string              `json:"theme,omitempty"`
	SearchBarsHidden bool                `json:"searchBarsHidden,omitempty"`

	Undo           []UndoEntry       `json:"-"`
	SearchBarModes map[string]string `json:"-"`
}

// New builds the canonical initial state: a single leaf panel holding a
// single empty tab, both freshly identified.
func New(ids IDGenerator) *Workspace {
	panelID := ids.NewID()
	tabID := ids.NewID()
	return &Workspace{
		Tabs: []Tab{{
			ID:        tabID,
			Name:      "New Tab",
			PanelID:   panelID,
			CreatedAt: time.Now().UTC(),
		}},
		Panel:         &Panel{ID: panelID, Size: 100},
		PanelTabs:     map[string][]string{panelID: {tabID}},
		ActiveTabIDs:  map[string]string{panelID: tabID},
		ActivePanelID: panelID,
	}
}

// Clone returns a deep copy. The reducer mutates a clone and commits it as
// the next state, so the previous Workspace stays valid for readers.
func (w *Workspace) Clone() *Workspace {
	if w == nil {
		return nil
	}
	next := &Workspace{
		Tabs:             make([]Tab, len(w.Tabs)),
		Panel:            clonePanel(w.Panel),
		PanelTabs:        make(map[string][]string, len(w.PanelTabs)),
		ActiveTabIDs:     make(map[string]string, len(w.ActiveTabIDs)),
		ActivePanelID:    w.ActivePanelID,
		Theme:            w.Theme,
		SearchBarsHidden: w.SearchBarsHidden,
	}
	for i, t := range w.Tabs {
		next.Tabs[i] = cloneTab(t)
	}
	for id, list := range w.PanelTabs {
		next.PanelTabs[id] = append([]string(nil), list...)
	}
	for id, tab := range w.ActiveTabIDs {
		next.ActiveTabIDs[id] = tab
	}
	if w.FavoriteLayouts != nil {
		next.FavoriteLayouts = append([]string(nil), w.FavoriteLayouts...)
	}
	if w.Undo != nil {
		next.Undo = make([]UndoEntry, len(w.Undo))
		for i, e := range w.Undo {
			next.Undo[i] = UndoEntry{Tab: cloneTab(e.Tab), Index: e.Index, PanelID: e.PanelID}
		}
	}
	if w.SearchBarModes != nil {
		next.SearchBarModes = make(map[string]string, len(w.SearchBarModes))
		for id, mode := range w.SearchBarModes {
			next.SearchBarModes[id] = mode
		}
	}
	return next
}

func nowUTC() time.Time { return time.Now().UTC() }

func cloneTab(t Tab) Tab {
	out := t
	if t.LayoutParams != nil {
		out.LayoutParams = make(map[string]any, len(t.LayoutParams))
		for k, v := range t.LayoutParams {
			out.LayoutParams[k] = v
		}
	}
	return out
}

func clonePanel(p *Panel) *Panel {
	if p == nil {
		return nil
	}
	out := &Panel{
		ID:        p.ID,
		Order:     p.Order,
		Direction: p.Direction,
		Pinned:    p.Pinned,
		Size:      p.Size,
	}
	if len(p.Children) > 0 {
		out.Children = make([]*Panel, len(p.Children))
		for i, child := range p.Children {
			out.Children[i] = clonePanel(child)
		}
	}
	return out
}
