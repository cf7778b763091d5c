// Copyright © 2025 Prism contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: workspace/check.go
// Summary: Development-time consistency check run after reducer transitions.
// Usage: The session bridge logs (never throws on) any reported violation.

package workspace

import "fmt"

// CheckInvariants re-derives the cross-key invariants over a Workspace and
// returns one message per violation. An empty result means the state is
// consistent. This is a debugging aid for surfacing latent reducer bugs; it
// is not the trust boundary for external input (see ValidateSnapshot).
func CheckInvariants(w *Workspace) []string {
	var violations []string
	if w == nil {
		return []string{"workspace is nil"}
	}
	if w.Panel == nil {
		return []string{"panel tree is nil"}
	}

	leaves := LeafIDs(w.Panel)
	leafSet := make(map[string]bool, len(leaves))
	for _, id := range leaves {
		if leafSet[id] {
			violations = append(violations, fmt.Sprintf("leaf panel id %q appears more than once in the tree", id))
		}
		leafSet[id] = true
	}

	// 1. Leaf ids and panelTabs keys must match exactly.
	for _, id := range leaves {
		if _, ok := w.PanelTabs[id]; !ok {
			violations = append(violations, fmt.Sprintf("leaf panel %q has no panelTabs entry", id))
		}
	}
	for id := range w.PanelTabs {
		if !leafSet[id] {
			violations = append(violations, fmt.Sprintf("panelTabs key %q is not a leaf panel", id))
		}
	}

	// 2 + 3. Every tab id in exactly one list; every listed id exists.
	seen := make(map[string]string) // tab id -> panel id
	for panelID, order := range w.PanelTabs {
		for _, tabID := range order {
			if prev, dup := seen[tabID]; dup {
				violations = append(violations, fmt.Sprintf("tab %q listed in both panel %q and panel %q", tabID, prev, panelID))
				continue
			}
			seen[tabID] = panelID
			tab := w.FindTab(tabID)
			if tab == nil {
				violations = append(violations, fmt.Sprintf("panel %q references unknown tab %q", panelID, tabID))
				continue
			}
			if tab.PanelID != panelID {
				violations = append(violations, fmt.Sprintf("tab %q has panelId %q but is listed in panel %q", tabID, tab.PanelID, panelID))
			}
		}
	}
	for i := range w.Tabs {
		if _, ok := seen[w.Tabs[i].ID]; !ok {
			violations = append(violations, fmt.Sprintf("tab %q is not listed in any panel", w.Tabs[i].ID))
		}
	}

	// 4. The globally active panel must be a current leaf.
	if !leafSet[w.ActivePanelID] {
		violations = append(violations, fmt.Sprintf("activePanelId %q is not a leaf panel", w.ActivePanelID))
	}

	// 5. Every active tab must belong to its panel's ordered list.
	for panelID, tabID := range w.ActiveTabIDs {
		order, ok := w.PanelTabs[panelID]
		if !ok {
			violations = append(violations, fmt.Sprintf("activeTabIds key %q is not a known panel", panelID))
			continue
		}
		if indexOf(order, tabID) < 0 {
			violations = append(violations, fmt.Sprintf("active tab %q is not in panel %q", tabID, panelID))
		}
	}

	return violations
}
