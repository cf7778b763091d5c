// Copyright © 2025 Prism contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: registry/registry.go
// Summary: The layout registry: named content layouts a tab can be bound to.
// Usage: Hosts register layouts at startup; the workspace UI lists them in
//        the picker and resolves effective parameters when a tab loads.

package registry

import (
	"fmt"
	"log"
	"sort"
	"sync"
)

// ParamOption is one named, preset parameter set for a layout. Layouts that
// declare options accept parameters exclusively through them.
type ParamOption struct {
	Label  string
	Params map[string]any
}

// Layout describes a registered content layout.
type Layout struct {
	ID          string
	Name        string
	Description string
	Category    string

	// DefaultParams seed a tab's layoutParams when none are supplied.
	DefaultParams map[string]any

	// ParamOptions, when non-empty, enumerate the only accepted parameter
	// sets; free-form params are then rejected.
	ParamOptions map[string]ParamOption

	// Static marks a layout whose content is fixed; static layouts cannot
	// declare param options.
	Static bool
}

// Info is the picker-facing metadata for one layout.
type Info struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	OptionKeys  []string `json:"optionKeys,omitempty"`
}

// Registry manages the collection of available layouts.
type Registry struct {
	mu      sync.RWMutex
	layouts map[string]Layout
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{layouts: make(map[string]Layout)}
}

// Register adds a layout. Re-registering an existing id is refused.
func (r *Registry) Register(l Layout) error {
	if l.ID == "" {
		return fmt.Errorf("register layout: id must not be empty")
	}
	if l.Name == "" {
		return fmt.Errorf("register layout %q: name must not be empty", l.ID)
	}
	if l.Static && len(l.ParamOptions) > 0 {
		return fmt.Errorf("register layout %q: param options are only supported for non-static layouts", l.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.layouts[l.ID]; exists {
		return fmt.Errorf("register layout %q: already registered", l.ID)
	}
	r.layouts[l.ID] = l
	log.Printf("Registry: Registered layout '%s' (%s)", l.ID, l.Name)
	return nil
}

// Get retrieves a layout by id.
func (r *Registry) Get(id string) (Layout, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.layouts[id]
	return l, ok
}

// Count returns the total number of registered layouts.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.layouts)
}

// List returns picker metadata for every layout, sorted by display name.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.layouts))
	for _, l := range r.layouts {
		info := Info{
			ID:          l.ID,
			Name:        l.Name,
			Description: l.Description,
			Category:    l.Category,
		}
		for key := range l.ParamOptions {
			info.OptionKeys = append(info.OptionKeys, key)
		}
		sort.Strings(info.OptionKeys)
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// ListByCategory returns picker metadata grouped by category. Layouts
// without a category land under "other".
func (r *Registry) ListByCategory() map[string][]Info {
	categories := make(map[string][]Info)
	for _, info := range r.List() {
		category := info.Category
		if category == "" {
			category = "other"
		}
		categories[category] = append(categories[category], info)
	}
	return categories
}

// ValidateInitial checks a host-configured initial layout id against the
// registry, producing a clear startup error instead of a broken first tab.
func (r *Registry) ValidateInitial(id string) error {
	if id == "" {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.layouts[id]; !ok {
		available := make([]string, 0, len(r.layouts))
		for key := range r.layouts {
			available = append(available, key)
		}
		sort.Strings(available)
		return fmt.Errorf("initial layout %q not found in registered layouts (available: %v)", id, available)
	}
	return nil
}

// ResolveParams computes the effective parameters for loading a layout into
// a tab. Layouts with param options require exactly one option key and no
// free-form params; layouts without options reject an option key.
func (r *Registry) ResolveParams(layoutID string, params map[string]any, option string) (map[string]any, error) {
	l, ok := r.Get(layoutID)
	if !ok {
		return nil, fmt.Errorf("layout %q not found", layoutID)
	}

	if len(l.ParamOptions) > 0 {
		if option == "" {
			return nil, fmt.Errorf("layout %q requires a layout option when param options are defined", layoutID)
		}
		if len(params) > 0 {
			return nil, fmt.Errorf("layout %q only accepts parameters via param options", layoutID)
		}
		entry, ok := l.ParamOptions[option]
		if !ok {
			return nil, fmt.Errorf("layout option %q not found for layout %q", option, layoutID)
		}
		return copyParams(entry.Params), nil
	}

	if option != "" {
		return nil, fmt.Errorf("layout %q does not define param options but an option was supplied", layoutID)
	}
	if len(params) > 0 {
		return copyParams(params), nil
	}
	return copyParams(l.DefaultParams), nil
}

func copyParams(params map[string]any) map[string]any {
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}
