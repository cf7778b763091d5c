// Copyright © 2025 Prism contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: workspace/tabs.go
// Summary: Lookup helpers over the flat tab list.
// Usage: Linear scans only; the list is bounded by the workspace tab cap.

package workspace

// FindTab returns a pointer into the workspace's tab slice, or nil.
func (w *Workspace) FindTab(id string) *Tab {
	for i := range w.Tabs {
		if w.Tabs[i].ID == id {
			return &w.Tabs[i]
		}
	}
	return nil
}

// TabIndex returns the position of the tab in the flat list, or -1.
func (w *Workspace) TabIndex(id string) int {
	for i := range w.Tabs {
		if w.Tabs[i].ID == id {
			return i
		}
	}
	return -1
}

// TabsInPanel returns the tabs of a leaf panel in tab-bar order.
func (w *Workspace) TabsInPanel(panelID string) []Tab {
	order := w.PanelTabs[panelID]
	tabs := make([]Tab, 0, len(order))
	for _, id := range order {
		if t := w.FindTab(id); t != nil {
			tabs = append(tabs, *t)
		}
	}
	return tabs
}

// CountTabsInPanel returns how many tabs a leaf panel holds.
func (w *Workspace) CountTabsInPanel(panelID string) int {
	return len(w.PanelTabs[panelID])
}

// TabLocked reports whether the tab exists and is locked.
func (w *Workspace) TabLocked(id string) bool {
	t := w.FindTab(id)
	return t != nil && t.Locked
}

// ActiveTabOf returns the currently selected tab of a leaf panel, or nil
// when the panel has no selection.
func (w *Workspace) ActiveTabOf(panelID string) *Tab {
	id, ok := w.ActiveTabIDs[panelID]
	if !ok {
		return nil
	}
	return w.FindTab(id)
}
