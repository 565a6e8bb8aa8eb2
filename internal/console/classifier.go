package console

import (
	"strings"

	"github.com/msto63/kontrakt/internal/registry"
)

// CommandRegistry answers whether text names a console command
type CommandRegistry interface {
	Lookup(text string, noAliases bool) *registry.Entry
	Entries() []registry.Entry
}

// Classifier decides whether an input line is a tool command
type Classifier struct {
	program   string
	registry  CommandRegistry
	noAliases bool
}

// NewClassifier creates a classifier for the given program name
func NewClassifier(program string, reg CommandRegistry, noAliases bool) *Classifier {
	return &Classifier{program: program, registry: reg, noAliases: noAliases}
}

// Classify returns the command text when raw names a registered command.
// A leading program name is dropped, so "kontrakt networks" and
// "networks" classify the same way.
func (c *Classifier) Classify(raw string) (string, bool) {
	text := strings.TrimSpace(raw)
	if fields := strings.Fields(text); len(fields) > 0 && fields[0] == c.program {
		text = strings.TrimSpace(text[len(c.program):])
	}
	if text == "" || c.registry == nil {
		return "", false
	}
	if c.registry.Lookup(text, c.noAliases) == nil {
		return "", false
	}
	return text, true
}
