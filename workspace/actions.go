// Copyright © 2025 Prism contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: workspace/actions.go
// Summary: The closed, tagged action set consumed by the reducer.
// Usage: Host collaborators construct these and pass them to Reducer.Apply.

package workspace

// Action is the sealed union of every workspace mutation. The reducer is the
// single entry point through which any collaborator advances the state.
type Action interface {
	isAction()
}

// AddTab appends a new tab to a leaf panel and makes it active. Name,
// layout fields and icon are optional; an absent layout id means an empty tab.
type AddTab struct {
	PanelID      string
	Name         string
	LayoutID     string
	LayoutParams map[string]any
	LayoutOption string
	Icon         string
}

// RemoveTab closes an unlocked tab and records it on the undo stack.
type RemoveTab struct {
	TabID string
}

// DuplicateTab copies a tab into the same panel with a fresh id.
type DuplicateTab struct {
	TabID string
}

// MoveTab relocates a tab to another leaf panel. Index < 0 appends.
type MoveTab struct {
	TabID         string
	TargetPanelID string
	Index         int
}

// ReorderTab splices a tab id within one panel's ordered list. ToIndex is
// clamped into range; an invalid FromIndex is a no-op.
type ReorderTab struct {
	PanelID   string
	FromIndex int
	ToIndex   int
}

// RenameTab sets a tab's display name.
type RenameTab struct {
	TabID string
	Name  string
}

// LockTab marks a tab as locked; locked tabs cannot be closed, renamed or dragged.
type LockTab struct{ TabID string }

// UnlockTab clears a tab's locked flag.
type UnlockTab struct{ TabID string }

// ToggleTabLock flips a tab's locked flag.
type ToggleTabLock struct{ TabID string }

// SetTabIcon sets a tab's presentation icon.
type SetTabIcon struct {
	TabID string
	Icon  string
}

// SetTabStyle sets a tab's presentation style tag.
type SetTabStyle struct {
	TabID string
	Style string
}

// SetLoading sets a tab's transient content-loading flag.
type SetLoading struct {
	TabID   string
	Loading bool
}

// UpdateTabLayout assigns a layout to a tab and raises its loading flag
// until the content collaborator reports ready.
type UpdateTabLayout struct {
	TabID        string
	LayoutID     string
	Name         string
	LayoutParams map[string]any
	LayoutOption string
}

// SplitPanel splits a leaf and moves the named tab into the created sibling.
type SplitPanel struct {
	PanelID   string
	Direction SplitDirection
	TabID     string
	Position  SplitPosition
}

// CollapsePanel removes a leaf, moving its tabs to the next remaining leaf
// in enumeration order. Collapsing the last leaf is refused.
type CollapsePanel struct {
	PanelID string
}

// ResizePanel sets a panel's size field; geometry is the renderer's concern.
type ResizePanel struct {
	PanelID string
	Size    float64
}

// PinPanel freezes a leaf panel's tab set.
type PinPanel struct{ PanelID string }

// UnpinPanel clears a panel's pinned flag.
type UnpinPanel struct{ PanelID string }

// SetActivePanel sets the globally focused leaf. The caller is trusted; no
// existence check is performed.
type SetActivePanel struct{ PanelID string }

// ToggleSearchBars flips the workspace-wide search bar visibility flag.
type ToggleSearchBars struct{}

// SetSearchBarMode sets the ephemeral per-panel search bar interaction mode.
type SetSearchBarMode struct {
	PanelID string
	Mode    string
}

// ToggleFavoriteLayout adds or removes a layout id from the favorites set.
type ToggleFavoriteLayout struct{ LayoutID string }

// PopUndo restores the most recently removed tab.
type PopUndo struct{}

// SyncWorkspace wholesale-replaces the supplied subset of top-level keys.
// Nil fields (and an empty ActivePanelID) are left untouched. The caller is
// trusted to supply an internally consistent subset; this path is not
// re-validated (see the session bridge for the strict alternative).
type SyncWorkspace struct {
	Tabs          []Tab
	Panel         *Panel
	PanelTabs     map[string][]string
	ActiveTabIDs  map[string]string
	ActivePanelID string
}

// ResetWorkspace replaces the entire state with the canonical initial state.
type ResetWorkspace struct{}

func (AddTab) isAction()               {}
func (RemoveTab) isAction()            {}
func (DuplicateTab) isAction()         {}
func (MoveTab) isAction()              {}
func (ReorderTab) isAction()           {}
func (RenameTab) isAction()            {}
func (LockTab) isAction()              {}
func (UnlockTab) isAction()            {}
func (ToggleTabLock) isAction()        {}
func (SetTabIcon) isAction()           {}
func (SetTabStyle) isAction()          {}
func (SetLoading) isAction()           {}
func (UpdateTabLayout) isAction()      {}
func (SplitPanel) isAction()           {}
func (CollapsePanel) isAction()        {}
func (ResizePanel) isAction()          {}
func (PinPanel) isAction()             {}
func (UnpinPanel) isAction()           {}
func (SetActivePanel) isAction()       {}
func (ToggleSearchBars) isAction()     {}
func (SetSearchBarMode) isAction()     {}
func (ToggleFavoriteLayout) isAction() {}
func (PopUndo) isAction()              {}
func (SyncWorkspace) isAction()        {}
func (ResetWorkspace) isAction()       {}
