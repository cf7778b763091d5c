// Copyright © 2025 Prism contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: workspace/reducer.go
// Summary: The pure workspace state machine.
// Usage: Apply(state, action) returns the next state; refused actions return
//        the input state unchanged.

package workspace

import "fmt"

// DefaultMaxTabs is the workspace-wide tab cap applied when the host does
// not configure one. A cap of zero or below disables the limit.
const DefaultMaxTabs = 16

// Reducer advances a Workspace in response to actions. It is a pure state
// machine: all side effects (ids, notifications) flow through the injected
// collaborators, and every transition is synchronous and atomic — either the
// full set of derived updates commits as one new Workspace, or the input
// state is returned untouched.
type Reducer struct {
	ids     IDGenerator
	notify  Notifier
	maxTabs int
}

// NewReducer builds a reducer around the injected id generator and
// notification sink. maxTabs ≤ 0 means unlimited.
func NewReducer(ids IDGenerator, notify Notifier, maxTabs int) *Reducer {
	if ids == nil {
		ids = NewUUIDGenerator()
	}
	if notify == nil {
		notify = NopNotifier{}
	}
	return &Reducer{ids: ids, notify: notify, maxTabs: maxTabs}
}

// Apply advances state by one action. Unknown or refused actions return the
// input pointer, so callers can detect no-ops by identity.
func (r *Reducer) Apply(state *Workspace, action Action) *Workspace {
	switch a := action.(type) {
	case AddTab:
		return r.applyAddTab(state, a)
	case RemoveTab:
		return r.applyRemoveTab(state, a)
	case DuplicateTab:
		return r.applyDuplicateTab(state, a)
	case MoveTab:
		return r.applyMoveTab(state, a)
	case ReorderTab:
		return r.applyReorderTab(state, a)
	case RenameTab:
		if state.TabLocked(a.TabID) {
			return state
		}
		return r.mutateTab(state, a.TabID, func(t *Tab) { t.Name = a.Name })
	case LockTab:
		return r.mutateTab(state, a.TabID, func(t *Tab) { t.Locked = true })
	case UnlockTab:
		return r.mutateTab(state, a.TabID, func(t *Tab) { t.Locked = false })
	case ToggleTabLock:
		return r.mutateTab(state, a.TabID, func(t *Tab) { t.Locked = !t.Locked })
	case SetTabIcon:
		return r.mutateTab(state, a.TabID, func(t *Tab) { t.Icon = a.Icon })
	case SetTabStyle:
		return r.mutateTab(state, a.TabID, func(t *Tab) { t.Style = a.Style })
	case SetLoading:
		return r.mutateTab(state, a.TabID, func(t *Tab) { t.Loading = a.Loading })
	case UpdateTabLayout:
		return r.mutateTab(state, a.TabID, func(t *Tab) {
			t.LayoutID = a.LayoutID
			if a.Name != "" {
				t.Name = a.Name
			}
			t.LayoutParams = cloneParams(a.LayoutParams)
			t.LayoutOption = a.LayoutOption
			t.Loading = true
		})
	case SplitPanel:
		return r.applySplitPanel(state, a)
	case CollapsePanel:
		return r.applyCollapsePanel(state, a)
	case ResizePanel:
		return r.mutatePanel(state, a.PanelID, func(p *Panel) { p.Size = a.Size })
	case PinPanel:
		return r.mutatePanel(state, a.PanelID, func(p *Panel) { p.Pinned = true })
	case UnpinPanel:
		return r.mutatePanel(state, a.PanelID, func(p *Panel) { p.Pinned = false })
	case SetActivePanel:
		next := state.Clone()
		next.ActivePanelID = a.PanelID
		return next
	case ToggleSearchBars:
		next := state.Clone()
		next.SearchBarsHidden = !next.SearchBarsHidden
		return next
	case SetSearchBarMode:
		next := state.Clone()
		if next.SearchBarModes == nil {
			next.SearchBarModes = make(map[string]string)
		}
		next.SearchBarModes[a.PanelID] = a.Mode
		return next
	case ToggleFavoriteLayout:
		return r.applyToggleFavorite(state, a)
	case PopUndo:
		return r.applyPopUndo(state)
	case SyncWorkspace:
		return r.applySync(state, a)
	case ResetWorkspace:
		return New(r.ids)
	default:
		return state
	}
}

// mutateTab applies a single-field mutation by id; missing tab is a no-op.
func (r *Reducer) mutateTab(state *Workspace, tabID string, mutate func(*Tab)) *Workspace {
	if state.FindTab(tabID) == nil {
		return state
	}
	next := state.Clone()
	mutate(next.FindTab(tabID))
	return next
}

// mutatePanel applies a single-field mutation by panel id; missing panel is a no-op.
func (r *Reducer) mutatePanel(state *Workspace, panelID string, mutate func(*Panel)) *Workspace {
	if FindPanel(state.Panel, panelID) == nil {
		return state
	}
	next := state.Clone()
	UpdatePanel(next.Panel, panelID, mutate)
	return next
}

func (r *Reducer) applyAddTab(state *Workspace, a AddTab) *Workspace {
	target := FindPanel(state.Panel, a.PanelID)
	if target == nil || !target.IsLeaf() || target.Pinned {
		return state
	}
	if _, ok := state.PanelTabs[a.PanelID]; !ok {
		return state
	}
	if r.overCap(state) {
		return state
	}

	next := state.Clone()
	name := a.Name
	if name == "" {
		name = "New Tab"
	}
	tab := Tab{
		ID:           r.ids.NewID(),
		Name:         name,
		PanelID:      a.PanelID,
		CreatedAt:    nowUTC(),
		LayoutID:     a.LayoutID,
		LayoutParams: cloneParams(a.LayoutParams),
		LayoutOption: a.LayoutOption,
		Icon:         a.Icon,
	}
	next.Tabs = append(next.Tabs, tab)
	next.PanelTabs[a.PanelID] = append(next.PanelTabs[a.PanelID], tab.ID)
	next.ActiveTabIDs[a.PanelID] = tab.ID
	next.ActivePanelID = a.PanelID
	return next
}

func (r *Reducer) applyRemoveTab(state *Workspace, a RemoveTab) *Workspace {
	tab := state.FindTab(a.TabID)
	if tab == nil || tab.Locked {
		return state
	}
	if panel := FindPanel(state.Panel, tab.PanelID); panel != nil && panel.Pinned {
		return state
	}

	next := state.Clone()
	removed := *next.FindTab(a.TabID)
	panelID := removed.PanelID

	next.Undo = append(next.Undo, UndoEntry{
		Tab:     cloneTab(removed),
		Index:   indexOf(next.PanelTabs[panelID], a.TabID),
		PanelID: panelID,
	})
	if len(next.Undo) > MaxUndoEntries {
		next.Undo = next.Undo[len(next.Undo)-MaxUndoEntries:]
	}

	idx := next.TabIndex(a.TabID)
	next.Tabs = append(next.Tabs[:idx], next.Tabs[idx+1:]...)
	next.PanelTabs[panelID] = removeString(next.PanelTabs[panelID], a.TabID)
	r.selectLastTabInPanel(next, panelID)
	r.ensurePanelHasTab(next, panelID)
	return next
}

func (r *Reducer) applyDuplicateTab(state *Workspace, a DuplicateTab) *Workspace {
	tab := state.FindTab(a.TabID)
	if tab == nil {
		return state
	}
	if panel := FindPanel(state.Panel, tab.PanelID); panel == nil || panel.Pinned {
		return state
	}
	if r.overCap(state) {
		return state
	}

	next := state.Clone()
	src := next.FindTab(a.TabID)
	copyTab := cloneTab(*src)
	copyTab.ID = r.ids.NewID()
	copyTab.Name = src.Name + " (copy)"
	copyTab.Locked = false
	copyTab.CreatedAt = nowUTC()
	copyTab.MountKey = ""
	copyTab.Loading = false

	next.Tabs = append(next.Tabs, copyTab)
	next.PanelTabs[src.PanelID] = append(next.PanelTabs[src.PanelID], copyTab.ID)
	next.ActiveTabIDs[src.PanelID] = copyTab.ID
	next.ActivePanelID = src.PanelID
	return next
}

func (r *Reducer) applyMoveTab(state *Workspace, a MoveTab) *Workspace {
	tab := state.FindTab(a.TabID)
	if tab == nil || tab.Locked || tab.PanelID == a.TargetPanelID {
		return state
	}
	target := FindPanel(state.Panel, a.TargetPanelID)
	if target == nil || !target.IsLeaf() || target.Pinned {
		return state
	}
	if _, ok := state.PanelTabs[a.TargetPanelID]; !ok {
		return state
	}
	if source := FindPanel(state.Panel, tab.PanelID); source != nil && source.Pinned {
		return state
	}

	next := state.Clone()
	sourceID, moved := r.moveTabToPanel(next, a.TabID, a.TargetPanelID, a.Index)
	if !moved {
		return state
	}
	next.ActiveTabIDs[a.TargetPanelID] = a.TabID
	r.selectLastTabInPanel(next, sourceID)
	next.ActivePanelID = a.TargetPanelID
	r.ensurePanelHasTab(next, sourceID)
	return next
}

func (r *Reducer) applyReorderTab(state *Workspace, a ReorderTab) *Workspace {
	list, ok := state.PanelTabs[a.PanelID]
	if !ok || a.FromIndex < 0 || a.FromIndex >= len(list) {
		return state
	}
	to := clamp(a.ToIndex, 0, len(list)-1)
	if to == a.FromIndex {
		return state
	}

	next := state.Clone()
	order := next.PanelTabs[a.PanelID]
	id := order[a.FromIndex]
	order = append(order[:a.FromIndex], order[a.FromIndex+1:]...)
	order = append(order[:to], append([]string{id}, order[to:]...)...)
	next.PanelTabs[a.PanelID] = order
	return next
}

func (r *Reducer) applySplitPanel(state *Workspace, a SplitPanel) *Workspace {
	target := FindPanel(state.Panel, a.PanelID)
	tab := state.FindTab(a.TabID)
	if target == nil || !target.IsLeaf() || tab == nil || tab.Locked || target.Pinned {
		return state
	}
	// Splitting a panel by moving out its only tab would leave an empty
	// leaf that instantly collapses again; refuse instead.
	if tab.PanelID == a.PanelID && len(state.PanelTabs[a.PanelID]) <= 1 {
		return state
	}
	if source := FindPanel(state.Panel, tab.PanelID); source != nil && source.Pinned && tab.PanelID != a.PanelID {
		return state
	}

	next := state.Clone()
	res, err := SplitLeaf(next.Panel, a.PanelID, a.Direction, a.Position, r.ids)
	if err != nil {
		return state
	}
	next.PanelTabs[res.NewLeafID] = []string{}

	sourceID := next.FindTab(a.TabID).PanelID
	if _, moved := r.moveTabToPanel(next, a.TabID, res.NewLeafID, -1); !moved {
		return state
	}
	next.ActiveTabIDs[res.NewLeafID] = a.TabID
	r.selectLastTabInPanel(next, sourceID)
	next.ActivePanelID = res.NewLeafID
	if sourceID != a.PanelID {
		r.ensurePanelHasTab(next, sourceID)
	}
	return next
}

func (r *Reducer) applyCollapsePanel(state *Workspace, a CollapsePanel) *Workspace {
	target := FindPanel(state.Panel, a.PanelID)
	if target == nil || !target.IsLeaf() || target.Pinned {
		return state
	}
	leaves := LeafIDs(state.Panel)
	if len(leaves) < 2 {
		return state
	}

	next := state.Clone()
	absorber := ""
	for _, id := range LeafIDs(next.Panel) {
		if id != a.PanelID {
			absorber = id
			break
		}
	}

	moved := next.PanelTabs[a.PanelID]
	for _, tabID := range moved {
		if t := next.FindTab(tabID); t != nil {
			t.PanelID = absorber
		}
	}
	next.PanelTabs[absorber] = append(next.PanelTabs[absorber], moved...)
	delete(next.PanelTabs, a.PanelID)
	delete(next.ActiveTabIDs, a.PanelID)
	delete(next.SearchBarModes, a.PanelID)

	root, ok := RemovePanel(next.Panel, a.PanelID)
	if !ok {
		return state
	}
	next.Panel = root

	if _, hasActive := next.ActiveTabIDs[absorber]; !hasActive {
		r.selectLastTabInPanel(next, absorber)
	}
	next.ActivePanelID = absorber
	return next
}

func (r *Reducer) applyToggleFavorite(state *Workspace, a ToggleFavoriteLayout) *Workspace {
	next := state.Clone()
	if idx := indexOf(next.FavoriteLayouts, a.LayoutID); idx >= 0 {
		next.FavoriteLayouts = append(next.FavoriteLayouts[:idx], next.FavoriteLayouts[idx+1:]...)
	} else {
		next.FavoriteLayouts = append(next.FavoriteLayouts, a.LayoutID)
	}
	return next
}

func (r *Reducer) applyPopUndo(state *Workspace) *Workspace {
	if len(state.Undo) == 0 {
		return state
	}

	next := state.Clone()
	entry := next.Undo[len(next.Undo)-1]
	next.Undo = next.Undo[:len(next.Undo)-1]

	// The recorded panel may have been collapsed since the removal; fall
	// back to the active panel in that case.
	panelID := entry.PanelID
	if _, ok := next.PanelTabs[panelID]; !ok {
		panelID = next.ActivePanelID
	}

	tab := cloneTab(entry.Tab)
	tab.PanelID = panelID
	next.Tabs = append(next.Tabs, tab)

	order := next.PanelTabs[panelID]
	at := clamp(entry.Index, 0, len(order))
	order = append(order[:at], append([]string{tab.ID}, order[at:]...)...)
	next.PanelTabs[panelID] = order

	next.ActiveTabIDs[panelID] = tab.ID
	next.ActivePanelID = panelID
	return next
}

func (r *Reducer) applySync(state *Workspace, a SyncWorkspace) *Workspace {
	if a.Tabs == nil && a.Panel == nil && a.PanelTabs == nil && a.ActiveTabIDs == nil && a.ActivePanelID == "" {
		return state
	}
	next := state.Clone()
	if a.Tabs != nil {
		next.Tabs = make([]Tab, len(a.Tabs))
		for i, t := range a.Tabs {
			next.Tabs[i] = cloneTab(t)
		}
	}
	if a.Panel != nil {
		next.Panel = clonePanel(a.Panel)
	}
	if a.PanelTabs != nil {
		next.PanelTabs = make(map[string][]string, len(a.PanelTabs))
		for id, list := range a.PanelTabs {
			next.PanelTabs[id] = append([]string(nil), list...)
		}
	}
	if a.ActiveTabIDs != nil {
		next.ActiveTabIDs = make(map[string]string, len(a.ActiveTabIDs))
		for id, tab := range a.ActiveTabIDs {
			next.ActiveTabIDs[id] = tab
		}
	}
	if a.ActivePanelID != "" {
		next.ActivePanelID = a.ActivePanelID
	}
	return next
}

// moveTabToPanel atomically updates the tab's panel id and both panels'
// ordered lists. Returns the vacated source panel id; a same-panel move or
// a missing tab/target reports moved=false.
func (r *Reducer) moveTabToPanel(ws *Workspace, tabID, targetID string, index int) (string, bool) {
	tab := ws.FindTab(tabID)
	if tab == nil || tab.PanelID == targetID {
		return "", false
	}
	if _, ok := ws.PanelTabs[targetID]; !ok {
		return "", false
	}

	sourceID := tab.PanelID
	ws.PanelTabs[sourceID] = removeString(ws.PanelTabs[sourceID], tabID)

	order := ws.PanelTabs[targetID]
	at := len(order)
	if index >= 0 && index < len(order) {
		at = index
	}
	order = append(order[:at], append([]string{tabID}, order[at:]...)...)
	ws.PanelTabs[targetID] = order

	tab.PanelID = targetID
	return sourceID, true
}

// ensurePanelHasTab keeps the "no empty leaf" rule: an emptied panel is
// collapsed out of the tree, unless it is the last leaf, in which case a
// fresh blank tab is spawned into it.
func (r *Reducer) ensurePanelHasTab(ws *Workspace, panelID string) {
	if len(ws.PanelTabs[panelID]) > 0 {
		return
	}
	if len(LeafIDs(ws.Panel)) > 1 {
		if root, ok := RemovePanel(ws.Panel, panelID); ok {
			ws.Panel = root
			delete(ws.PanelTabs, panelID)
			delete(ws.ActiveTabIDs, panelID)
			delete(ws.SearchBarModes, panelID)
			if ws.ActivePanelID == panelID {
				if leaves := LeafIDs(ws.Panel); len(leaves) > 0 {
					ws.ActivePanelID = leaves[0]
				}
			}
			return
		}
	}
	tab := Tab{
		ID:        r.ids.NewID(),
		Name:      "New Tab",
		PanelID:   panelID,
		CreatedAt: nowUTC(),
	}
	ws.Tabs = append(ws.Tabs, tab)
	ws.PanelTabs[panelID] = []string{tab.ID}
	ws.ActiveTabIDs[panelID] = tab.ID
}

// selectLastTabInPanel recomputes a panel's active tab after a removal or
// move: an active tab that survived is kept, otherwise the last tab in the
// ordered list is selected, and an emptied panel loses its entry.
func (r *Reducer) selectLastTabInPanel(ws *Workspace, panelID string) {
	order := ws.PanelTabs[panelID]
	if len(order) == 0 {
		delete(ws.ActiveTabIDs, panelID)
		return
	}
	if current, ok := ws.ActiveTabIDs[panelID]; ok && indexOf(order, current) >= 0 {
		return
	}
	ws.ActiveTabIDs[panelID] = order[len(order)-1]
}

func (r *Reducer) overCap(state *Workspace) bool {
	if r.maxTabs <= 0 || len(state.Tabs) < r.maxTabs {
		return false
	}
	r.notify.Notify(NotifyWarning, fmt.Sprintf("Tab limit reached (%d); close a tab first", r.maxTabs))
	return true
}

func indexOf(list []string, id string) int {
	for i, v := range list {
		if v == id {
			return i
		}
	}
	return -1
}

func removeString(list []string, id string) []string {
	if idx := indexOf(list, id); idx >= 0 {
		return append(list[:idx], list[idx+1:]...)
	}
	return list
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func cloneParams(params map[string]any) map[string]any {
	if params == nil {
		return nil
	}
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}
