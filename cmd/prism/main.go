// Copyright © 2025 Prism contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/prism/main.go
// Summary: Implements main capabilities for the prism workspace CLI.
// Usage: Executed by users to open the terminal workspace manager.
// Notes: Focuses on wiring flags, config, persistence, and lifecycle.

package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/chroma/v2/quick"
	"golang.org/x/term"

	"prism/config"
	"prism/registry"
	"prism/session"
	"prism/store"
	"prism/tui"
	"prism/workspace"
)

func main() {
	statePath := flag.String("state", "", "Override the workspace snapshot path")
	fingerprint := flag.String("fingerprint", "", "Session fingerprint tying snapshots to one deployment")
	dump := flag.Bool("dump", false, "Print the stored workspace snapshot and exit")
	reset := flag.Bool("reset", false, "Discard any stored snapshot and start fresh")
	historyList := flag.Int("history", 0, "List the N most recent archived snapshots and exit")
	openLink := flag.String("open", "", "Open a share link as a new tab")
	flag.Parse()

	if err := config.Err(); err != nil {
		log.Printf("Main: Config degraded, using defaults: %v", err)
	}
	cfg := config.System()

	path := *statePath
	if path == "" {
		resolved, err := config.StatePath()
		if err != nil {
			log.Fatalf("Main: Cannot resolve state path: %v", err)
		}
		path = resolved
	}

	if *dump {
		dumpSnapshot(path)
		return
	}

	var history *store.History
	if cfg.GetBool("history", "enabled", true) {
		historyPath, err := config.HistoryPath()
		if err != nil {
			log.Printf("Main: Cannot resolve history path, archiving disabled: %v", err)
		} else if history, err = store.OpenHistory(historyPath); err != nil {
			log.Printf("Main: Cannot open history, archiving disabled: %v", err)
			history = nil
		} else {
			defer history.Close()
		}
	}

	if *historyList > 0 {
		listHistory(history, *historyList)
		return
	}

	ids := workspace.NewUUIDGenerator()
	snapshots := store.NewSnapshotStore(path, *fingerprint, ids)
	if history != nil {
		snapshots.AttachHistory(history)
	}

	reg := registry.New()
	registerBuiltinLayouts(reg)
	initialLayout := cfg.GetString("", "initialLayout", "")
	if err := reg.ValidateInitial(initialLayout); err != nil {
		log.Fatalf("Main: %v", err)
	}

	notices := &tui.NoticeBoard{}
	reducer := workspace.NewReducer(ids, notices, cfg.GetInt("workspace", "max_tabs", workspace.DefaultMaxTabs))

	var initial *workspace.Workspace
	if !*reset {
		loaded, err := snapshots.Load()
		if err != nil {
			log.Fatalf("Main: Cannot read snapshot %s: %v", path, err)
		}
		initial = loaded
	}
	restored := initial != nil

	sess := session.New(reducer, initial,
		session.WithDevChecks(cfg.GetBool("workspace", "dev_checks", false)))
	defer sess.Close()

	if !restored && initialLayout != "" {
		bindInitialLayout(sess, reg, initialLayout)
	}
	if *openLink != "" {
		if err := openShareLink(sess, reg, *openLink); err != nil {
			log.Fatalf("Main: Cannot open share link: %v", err)
		}
	}

	if cfg.GetBool("autosave", "enabled", true) {
		debounce := time.Duration(cfg.GetInt("autosave", "debounce_ms", 1500)) * time.Millisecond
		autosaver := store.NewAutosaver(snapshots, debounce)
		defer autosaver.Close()
		sess.Subscribe(autosaver.StateChanged)

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigs
			autosaver.Close()
			os.Exit(0)
		}()
	}

	if history != nil {
		if keep := cfg.GetInt("history", "keep", 50); keep > 0 {
			if _, err := history.Prune(keep); err != nil {
				log.Printf("Main: History prune failed: %v", err)
			}
		}
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		log.Fatal("Main: prism needs an interactive terminal (use -dump for scripted access)")
	}
	driver, err := tui.NewScreenDriver()
	if err != nil {
		log.Fatalf("Main: Cannot allocate screen: %v", err)
	}

	ui := tui.New(driver, sess, notices)
	if err := ui.Run(); err != nil {
		log.Fatalf("Main: UI failed: %v", err)
	}
}

func registerBuiltinLayouts(reg *registry.Registry) {
	layouts := []registry.Layout{
		{
			ID:          "welcome",
			Name:        "Welcome",
			Description: "Getting-started page",
			Category:    "core",
			Static:      true,
		},
		{
			ID:            "notes",
			Name:          "Notes",
			Description:   "Free-form scratch pad",
			Category:      "core",
			DefaultParams: map[string]any{"wrap": true},
		},
		{
			ID:          "clock",
			Name:        "Clock",
			Description: "Current time in a configurable zone",
			Category:    "widgets",
			ParamOptions: map[string]registry.ParamOption{
				"local": {Label: "Local time", Params: map[string]any{"zone": "Local"}},
				"utc":   {Label: "UTC", Params: map[string]any{"zone": "UTC"}},
			},
		},
	}
	for _, l := range layouts {
		if err := reg.Register(l); err != nil {
			log.Printf("Main: Skipping layout %s: %v", l.ID, err)
		}
	}
}

// bindInitialLayout assigns the configured layout to the first tab of a
// fresh workspace.
func bindInitialLayout(sess *session.Session, reg *registry.Registry, layoutID string) {
	ws := sess.State()
	if len(ws.Tabs) != 1 {
		return
	}
	params, err := reg.ResolveParams(layoutID, nil, "")
	if err != nil {
		log.Printf("Main: Initial layout not bound: %v", err)
		return
	}
	layout, _ := reg.Get(layoutID)
	sess.Dispatch(workspace.UpdateTabLayout{
		TabID:        ws.Tabs[0].ID,
		LayoutID:     layoutID,
		Name:         layout.Name,
		LayoutParams: params,
	})
}

func openShareLink(sess *session.Session, reg *registry.Registry, encoded string) error {
	link, err := registry.DecodeShareLink(encoded)
	if err != nil {
		return err
	}
	params, err := reg.ResolveParams(link.LayoutID, link.LayoutParams, link.LayoutOption)
	if err != nil {
		return err
	}
	name := link.Name
	if name == "" {
		if layout, ok := reg.Get(link.LayoutID); ok {
			name = layout.Name
		}
	}
	ws := sess.State()
	sess.Dispatch(workspace.AddTab{
		PanelID:      ws.ActivePanelID,
		Name:         name,
		LayoutID:     link.LayoutID,
		LayoutParams: params,
		LayoutOption: link.LayoutOption,
	})
	return nil
}

func dumpSnapshot(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Printf("no snapshot at %s\n", path)
			return
		}
		log.Fatalf("Main: Cannot read snapshot: %v", err)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err != nil {
		pretty.Write(data)
	}

	if term.IsTerminal(int(os.Stdout.Fd())) {
		if err := quick.Highlight(os.Stdout, pretty.String(), "json", "terminal256", "monokai"); err == nil {
			fmt.Println()
			return
		}
	}
	os.Stdout.Write(pretty.Bytes())
	fmt.Println()
}

func listHistory(history *store.History, limit int) {
	if history == nil {
		fmt.Println("history archiving is disabled")
		return
	}
	metas, err := history.List(limit)
	if err != nil {
		log.Fatalf("Main: Cannot list history: %v", err)
	}
	if len(metas) == 0 {
		fmt.Println("history is empty")
		return
	}
	for _, meta := range metas {
		fmt.Printf("%s  v%d  %s  %s\n",
			meta.Timestamp.Format(time.RFC3339), meta.Version, shortHash(meta.Hash), meta.SessionFingerprint)
	}
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
