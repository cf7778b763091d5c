// Copyright © 2025 Prism contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: tui/ui.go
// Summary: Terminal front end for a prism workspace session.
// Usage: Renders the split tree with per-panel tab bars and translates key
//        presses into workspace actions.

package tui

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"prism/session"
	"prism/workspace"
)

const maxTabTitleWidth = 16

// NoticeBoard collects reducer notifications for the status line.
type NoticeBoard struct {
	mu   sync.Mutex
	text string
}

// Notify implements workspace.Notifier.
func (n *NoticeBoard) Notify(level workspace.NotifyLevel, message string) {
	n.mu.Lock()
	n.text = fmt.Sprintf("[%s] %s", level, message)
	n.mu.Unlock()
}

// Take returns and clears the latest notice.
func (n *NoticeBoard) Take() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	text := n.text
	n.text = ""
	return text
}

// UI drives a workspace session on a terminal screen.
type UI struct {
	driver  ScreenDriver
	session *session.Session
	notices *NoticeBoard
	notice  string
}

// New creates a UI. notices may be nil when the host routes reducer
// notifications elsewhere.
func New(driver ScreenDriver, sess *session.Session, notices *NoticeBoard) *UI {
	return &UI{driver: driver, session: sess, notices: notices}
}

// Run owns the screen until the quit key arrives.
func (u *UI) Run() error {
	if err := u.driver.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer u.driver.Fini()

	u.driver.SetStyle(tcell.StyleDefault)
	u.driver.HideCursor()
	u.Draw()

	for {
		ev := u.driver.PollEvent()
		if ev == nil {
			return nil
		}
		if u.HandleEvent(ev) {
			return nil
		}
		u.Draw()
	}
}

// HandleEvent processes one event; true means quit.
func (u *UI) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		return false
	case *tcell.EventKey:
		return u.handleKey(ev)
	}
	return false
}

func (u *UI) handleKey(ev *tcell.EventKey) bool {
	ws := u.session.State()
	active := ws.ActivePanelID
	activeTab := ws.ActiveTabOf(active)

	switch ev.Key() {
	case tcell.KeyCtrlQ:
		return true
	case tcell.KeyCtrlT:
		u.session.Dispatch(workspace.AddTab{PanelID: active})
	case tcell.KeyCtrlW:
		if activeTab != nil {
			u.session.Dispatch(workspace.RemoveTab{TabID: activeTab.ID})
		}
	case tcell.KeyCtrlD:
		if activeTab != nil {
			u.session.Dispatch(workspace.DuplicateTab{TabID: activeTab.ID})
		}
	case tcell.KeyCtrlS:
		if activeTab != nil {
			u.session.Dispatch(workspace.SplitPanel{
				PanelID:   active,
				Direction: workspace.SplitVertical,
				TabID:     activeTab.ID,
				Position:  workspace.PositionAfter,
			})
		}
	case tcell.KeyCtrlE:
		if activeTab != nil {
			u.session.Dispatch(workspace.SplitPanel{
				PanelID:   active,
				Direction: workspace.SplitHorizontal,
				TabID:     activeTab.ID,
				Position:  workspace.PositionAfter,
			})
		}
	case tcell.KeyCtrlX:
		u.session.Dispatch(workspace.CollapsePanel{PanelID: active})
	case tcell.KeyCtrlZ:
		u.session.Dispatch(workspace.PopUndo{})
	case tcell.KeyCtrlL:
		if activeTab != nil {
			u.session.Dispatch(workspace.ToggleTabLock{TabID: activeTab.ID})
		}
	case tcell.KeyCtrlP:
		u.togglePin(ws, active)
	case tcell.KeyCtrlB:
		u.session.Dispatch(workspace.ToggleSearchBars{})
	case tcell.KeyTab:
		u.cycleTab(ws, active, +1)
	case tcell.KeyBacktab:
		u.cycleTab(ws, active, -1)
	case tcell.KeyCtrlN:
		u.cyclePanel(ws, +1)
	}
	return false
}

func (u *UI) togglePin(ws *workspace.Workspace, panelID string) {
	panel := workspace.FindPanel(ws.Panel, panelID)
	if panel == nil {
		return
	}
	if panel.Pinned {
		u.session.Dispatch(workspace.UnpinPanel{PanelID: panelID})
	} else {
		u.session.Dispatch(workspace.PinPanel{PanelID: panelID})
	}
}

// cycleTab moves the active selection within a panel. Selection changes go
// through the sync path, which replaces the activeTabIds map wholesale.
func (u *UI) cycleTab(ws *workspace.Workspace, panelID string, step int) {
	order := ws.PanelTabs[panelID]
	if len(order) < 2 {
		return
	}
	current := ws.ActiveTabIDs[panelID]
	idx := 0
	for i, id := range order {
		if id == current {
			idx = i
			break
		}
	}
	idx = (idx + step + len(order)) % len(order)

	next := make(map[string]string, len(ws.ActiveTabIDs))
	for k, v := range ws.ActiveTabIDs {
		next[k] = v
	}
	next[panelID] = order[idx]
	u.session.Dispatch(workspace.SyncWorkspace{ActiveTabIDs: next})
}

func (u *UI) cyclePanel(ws *workspace.Workspace, step int) {
	leaves := workspace.LeafIDs(ws.Panel)
	if len(leaves) < 2 {
		return
	}
	idx := 0
	for i, id := range leaves {
		if id == ws.ActivePanelID {
			idx = i
			break
		}
	}
	idx = (idx + step + len(leaves)) % len(leaves)
	u.session.Dispatch(workspace.SetActivePanel{PanelID: leaves[idx]})
}

type rect struct {
	x, y, w, h int
}

// Draw renders the current state.
func (u *UI) Draw() {
	ws := u.session.State()
	width, height := u.driver.Size()
	if width <= 0 || height <= 1 {
		return
	}
	if u.notices != nil {
		if text := u.notices.Take(); text != "" {
			u.notice = text
		}
	}

	u.driver.Clear()
	u.drawPanel(ws, ws.Panel, rect{0, 0, width, height - 1})
	u.drawStatus(ws, rect{0, height - 1, width, 1})
	u.driver.Show()
}

func (u *UI) drawPanel(ws *workspace.Workspace, p *workspace.Panel, r rect) {
	if p == nil || r.w <= 0 || r.h <= 0 {
		return
	}
	if p.IsLeaf() {
		u.drawLeaf(ws, p, r)
		return
	}

	children := orderedChildren(p)
	shares := sizeShares(children)
	if p.Direction == workspace.SplitVertical {
		// Vertical split stacks children top to bottom.
		y := r.y
		for i, child := range children {
			h := int(float64(r.h) * shares[i])
			if i == len(children)-1 {
				h = r.y + r.h - y
			}
			u.drawPanel(ws, child, rect{r.x, y, r.w, h})
			y += h
		}
		return
	}
	x := r.x
	for i, child := range children {
		w := int(float64(r.w) * shares[i])
		if i == len(children)-1 {
			w = r.x + r.w - x
		}
		u.drawPanel(ws, child, rect{x, r.y, w, r.h})
		x += w
	}
}

func (u *UI) drawLeaf(ws *workspace.Workspace, p *workspace.Panel, r rect) {
	focused := ws.ActivePanelID == p.ID

	barStyle := tcell.StyleDefault.Reverse(true)
	if focused {
		barStyle = barStyle.Bold(true)
	}

	x := r.x
	for _, id := range ws.PanelTabs[p.ID] {
		tab := ws.FindTab(id)
		if tab == nil {
			continue
		}
		title := runewidth.Truncate(tab.Name, maxTabTitleWidth, "…")
		if tab.Locked {
			title = "*" + title
		}
		if tab.Loading {
			title = title + "~"
		}
		label := " " + title + " "

		style := barStyle
		if ws.ActiveTabIDs[p.ID] == id {
			style = style.Underline(true)
		}
		x = u.drawText(x, r.y, r.x+r.w, label, style)
		if x >= r.x+r.w {
			break
		}
	}
	if p.Pinned {
		u.drawText(r.x+r.w-4, r.y, r.x+r.w, "[P]", barStyle)
	}
	for ; x < r.x+r.w; x++ {
		u.driver.SetContent(x, r.y, ' ', nil, barStyle)
	}

	if r.h < 2 {
		return
	}
	body := fmt.Sprintf("panel %s", p.ID)
	if tab := ws.ActiveTabOf(p.ID); tab != nil && tab.LayoutID != "" {
		body = fmt.Sprintf("layout %s", tab.LayoutID)
	}
	u.drawText(r.x+1, r.y+1, r.x+r.w, body, tcell.StyleDefault)
}

func (u *UI) drawStatus(ws *workspace.Workspace, r rect) {
	style := tcell.StyleDefault.Reverse(true)
	text := u.notice
	if text == "" {
		text = fmt.Sprintf("%d tabs · %d panels · ^T new ^W close ^S/^E split ^X collapse ^Z undo ^Q quit",
			len(ws.Tabs), len(workspace.LeafIDs(ws.Panel)))
	}
	x := u.drawText(r.x, r.y, r.x+r.w, text, style)
	for ; x < r.x+r.w; x++ {
		u.driver.SetContent(x, r.y, ' ', nil, style)
	}
}

func (u *UI) drawText(x, y, limit int, text string, style tcell.Style) int {
	for _, ch := range text {
		w := runewidth.RuneWidth(ch)
		if x+w > limit {
			break
		}
		u.driver.SetContent(x, y, ch, nil, style)
		x += w
	}
	return x
}

func orderedChildren(p *workspace.Panel) []*workspace.Panel {
	out := append([]*workspace.Panel(nil), p.Children...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Order < out[j-1].Order; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func sizeShares(children []*workspace.Panel) []float64 {
	shares := make([]float64, len(children))
	total := 0.0
	for _, c := range children {
		total += c.Size
	}
	for i, c := range children {
		if total > 0 {
			shares[i] = c.Size / total
		} else {
			shares[i] = 1.0 / float64(len(children))
		}
	}
	return shares
}
