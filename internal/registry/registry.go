// ============================================================================
// kontrakt - Contract Development Console
// ============================================================================
//
// Package:     registry
// Description: Command registry consulted by the console classifier
// Created:     2026-10-14
// License:     MIT
// ============================================================================

// Package registry exposes the CLI command tree as a lookup table. The
// console asks it whether the first word of an input line names a command
// that should run in a child process.
package registry

import (
	"sort"
	"strings"
	"sync"

	"github.com/spf13/cobra"
)

// Excluded lists commands that are never matched from inside the console
var Excluded = []string{"console", "console-child", "help", "completion"}

// Entry describes a command that can be run from the console
type Entry struct {
	Name        string
	Aliases     []string
	Description string
}

// Registry is a read-only view over a cobra command tree
type Registry struct {
	root     *cobra.Command
	excluded map[string]bool

	once    sync.Once
	entries []Entry
}

// New creates a registry over the subcommands of root
func New(root *cobra.Command) *Registry {
	excluded := make(map[string]bool, len(Excluded))
	for _, name := range Excluded {
		excluded[name] = true
	}
	return &Registry{root: root, excluded: excluded}
}

func (r *Registry) visible(cmd *cobra.Command) bool {
	return !cmd.Hidden && !r.excluded[cmd.Name()]
}

// Lookup returns the entry named by the first token of text, or nil.
// Aliases are only matched when noAliases is false.
func (r *Registry) Lookup(text string, noAliases bool) *Entry {
	fields := strings.Fields(text)
	if len(fields) == 0 || r.root == nil {
		return nil
	}
	name := fields[0]

	for _, cmd := range r.root.Commands() {
		if !r.visible(cmd) {
			continue
		}
		if cmd.Name() == name || (!noAliases && cmd.HasAlias(name)) {
			entry := toEntry(cmd)
			return &entry
		}
	}
	return nil
}

// Entries returns every console-visible command sorted by name
func (r *Registry) Entries() []Entry {
	r.once.Do(func() {
		if r.root == nil {
			return
		}
		for _, cmd := range r.root.Commands() {
			if r.visible(cmd) {
				r.entries = append(r.entries, toEntry(cmd))
			}
		}
		sort.Slice(r.entries, func(i, j int) bool {
			return r.entries[i].Name < r.entries[j].Name
		})
	})
	return r.entries
}

func toEntry(cmd *cobra.Command) Entry {
	return Entry{
		Name:        cmd.Name(),
		Aliases:     append([]string(nil), cmd.Aliases...),
		Description: cmd.Short,
	}
}
