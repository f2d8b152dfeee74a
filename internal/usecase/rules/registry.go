// Package rules holds the in-memory admin rules registry. Rules are plain
// text lines numbered contiguously from 1; the registry is process-wide and
// carries no persistence guarantees.
package rules

import (
	"errors"
	"sync"
)

// ErrRuleNotFound indicates the requested rule number is out of range.
var ErrRuleNotFound = errors.New("rule not found")

// Rule pairs a rule's current number with its text. Numbers are positional:
// deleting a rule renumbers every later rule down by one.
type Rule struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// Registry is a mutex-guarded ordered list of rules.
type Registry struct {
	mu    sync.Mutex
	texts []string
}

// NewRegistry returns a registry seeded with the default rules.
func NewRegistry() *Registry {
	return &Registry{
		texts: []string{
			"Every user must have a unique email address.",
			"Passwords must be at least 8 characters long.",
			"The admin panel is restricted to administrators.",
		},
	}
}

// List returns the current rules in order.
func (r *Registry) List() []Rule {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot()
}

// Add appends a rule at the end and returns the updated list.
func (r *Registry) Add(text string) []Rule {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, text)
	return r.snapshot()
}

// Delete removes the rule with the given number. The remaining rules are
// renumbered so numbering stays contiguous from 1.
func (r *Registry) Delete(number int) ([]Rule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if number < 1 || number > len(r.texts) {
		return nil, ErrRuleNotFound
	}
	r.texts = append(r.texts[:number-1], r.texts[number:]...)
	return r.snapshot(), nil
}

func (r *Registry) snapshot() []Rule {
	out := make([]Rule, len(r.texts))
	for i, text := range r.texts {
		out[i] = Rule{Number: i + 1, Text: text}
	}
	return out
}
