// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

func LoadRegistry(path string) (*TriggerRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg TriggerRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Validate checks names are unique and every entry has the binding its
// event type needs.
func (r *TriggerRegistry) Validate() error {
	seen := make(map[string]bool, len(r.Triggers))
	for i, t := range r.Triggers {
		if t.Name == "" {
			return fmt.Errorf("triggers[%d]: name is required", i)
		}
		if seen[t.Name] {
			return fmt.Errorf("triggers[%d]: duplicate name %q", i, t.Name)
		}
		seen[t.Name] = true

		switch t.Event {
		case EventCreated, EventUpdated:
			if t.Document == "" || strings.Count(t.Document, "/")%2 != 1 {
				return fmt.Errorf("trigger %s: document must be a collection/{id} path, got %q", t.Name, t.Document)
			}
		case EventScheduled:
			if t.Schedule == "" {
				return fmt.Errorf("trigger %s: schedule is required", t.Name)
			}
		default:
			return fmt.Errorf("trigger %s: unknown event %q", t.Name, t.Event)
		}
	}
	return nil
}

// Names returns the trigger names in sorted order.
func (r *TriggerRegistry) Names() []string {
	out := make([]string, len(r.Triggers))
	for i, t := range r.Triggers {
		out[i] = t.Name
	}
	sort.Strings(out)
	return out
}

// Diff compares the manifest with the names a router actually serves.
// missing are declared but not served, extra are served but not declared.
func (r *TriggerRegistry) Diff(served []string) (missing, extra []string) {
	declared := make(map[string]bool, len(r.Triggers))
	for _, t := range r.Triggers {
		declared[t.Name] = true
	}
	have := make(map[string]bool, len(served))
	for _, name := range served {
		have[name] = true
		if !declared[name] {
			extra = append(extra, name)
		}
	}
	for _, name := range r.Names() {
		if !have[name] {
			missing = append(missing, name)
		}
	}
	sort.Strings(extra)
	return missing, extra
}

// Save writes the manifest back as indented JSON, creating parent dirs.
func Save(reg *TriggerRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
