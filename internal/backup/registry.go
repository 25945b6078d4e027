package backup

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gobwas/glob"
	"github.com/shyim/db-auto-backup/internal/config"
)

var (
	typesMu sync.RWMutex
	types   = make(map[string]BackupType)
)

// RegisterType adds a backup type to the type registry.
// This is typically called from init() functions in backup type packages.
func RegisterType(bt BackupType) {
	typesMu.Lock()
	defer typesMu.Unlock()

	name := bt.Name()
	if _, exists := types[name]; exists {
		panic(fmt.Sprintf("backup type %q already registered", name))
	}

	types[name] = bt
}

// GetType returns a registered backup type by name
func GetType(name string) (BackupType, bool) {
	typesMu.RLock()
	defer typesMu.RUnlock()

	bt, ok := types[name]
	return bt, ok
}

// ListTypes returns all registered backup type names, sorted
func ListTypes() []string {
	typesMu.RLock()
	defer typesMu.RUnlock()

	names := make([]string, 0, len(types))
	for name := range types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type registryEntry struct {
	pattern    string
	matcher    glob.Glob
	backupType BackupType
}

// Registry maps image name patterns to backup types. Entries are tested in
// registration order and the first match wins.
type Registry struct {
	entries []registryEntry
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{}
}

// BuildRegistry creates a registry from match rules, resolving each rule's
// type against the registered backup types.
func BuildRegistry(rules []config.MatchRule) (*Registry, error) {
	r := NewRegistry()
	for _, rule := range rules {
		bt, ok := GetType(rule.Type)
		if !ok {
			return nil, fmt.Errorf("unknown backup type %q for pattern %q (available: %v)", rule.Type, rule.Pattern, ListTypes())
		}
		if err := r.Register(rule.Pattern, bt); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register appends a pattern to the registry. Patterns use shell-style
// wildcards matched against the whole name; "*" also matches "/", so
// "*postgres" matches "myrepo/postgres".
func (r *Registry) Register(pattern string, bt BackupType) error {
	if pattern == "" {
		return fmt.Errorf("invalid image pattern %q", pattern)
	}
	// No separators: wildcards span repository paths
	matcher, err := glob.Compile(pattern)
	if err != nil {
		return fmt.Errorf("invalid image pattern %q: %w", pattern, err)
	}
	r.entries = append(r.entries, registryEntry{pattern: pattern, matcher: matcher, backupType: bt})
	return nil
}

// Resolve returns the backup type for the first candidate name that matches
// any pattern. Candidates are the outer loop, patterns the inner one.
func (r *Registry) Resolve(candidates []string) (BackupType, bool) {
	for _, name := range candidates {
		for _, entry := range r.entries {
			if entry.matcher.Match(name) {
				return entry.backupType, true
			}
		}
	}
	return nil, false
}

// Patterns returns the registered patterns in order
func (r *Registry) Patterns() []string {
	patterns := make([]string, 0, len(r.entries))
	for _, entry := range r.entries {
		patterns = append(patterns, entry.pattern)
	}
	return patterns
}
