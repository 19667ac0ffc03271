// Package filter implements the list search predicate: a case-insensitive
// text match over selected fields ANDed with equality on discrete fields.
package filter

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Mode selects how the search term is matched against text fields.
type Mode int

const (
	// Substring matches when any text field contains the term.
	Substring Mode = iota
	// Fuzzy matches when the term's characters appear in order in a field.
	Fuzzy
)

// State is the user's current filter input. An empty Search, and a missing
// or empty Discrete value, match everything on that dimension.
type State struct {
	Search   string            `json:"search"`
	Discrete map[string]string `json:"filters,omitempty"`
}

// Clone returns a copy that does not share the Discrete map.
func (s State) Clone() State {
	out := State{Search: s.Search}
	if len(s.Discrete) > 0 {
		out.Discrete = make(map[string]string, len(s.Discrete))
		for k, v := range s.Discrete {
			out.Discrete[k] = v
		}
	}
	return out
}

// IsZero reports whether the state filters nothing.
func (s State) IsZero() bool {
	if strings.TrimSpace(s.Search) != "" {
		return false
	}
	for _, v := range s.Discrete {
		if v != "" {
			return false
		}
	}
	return true
}

// Spec describes which fields of T take part in filtering.
type Spec[T any] struct {
	Text     func(T) []string
	Discrete map[string]func(T) string
	Mode     Mode
}

// Dimensions lists the discrete filter names the spec supports.
func (s Spec[T]) Dimensions() []string {
	out := make([]string, 0, len(s.Discrete))
	for name := range s.Discrete {
		out = append(out, name)
	}
	return out
}

// Match reports whether item passes every dimension of state.
func (s Spec[T]) Match(item T, state State) bool {
	for name, want := range state.Discrete {
		if want == "" {
			continue
		}
		get, ok := s.Discrete[name]
		if !ok {
			continue
		}
		if !strings.EqualFold(get(item), want) {
			return false
		}
	}

	term := strings.TrimSpace(state.Search)
	if term == "" || s.Text == nil {
		return true
	}
	for _, field := range s.Text(item) {
		if s.matchText(field, term) {
			return true
		}
	}
	return false
}

func (s Spec[T]) matchText(field, term string) bool {
	if s.Mode == Fuzzy {
		return fuzzy.MatchNormalizedFold(term, field)
	}
	return strings.Contains(strings.ToLower(field), strings.ToLower(term))
}

// Apply returns the items that match state, in their original order. The
// input slice is never modified.
func Apply[T any](items []T, spec Spec[T], state State) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if spec.Match(item, state) {
			out = append(out, item)
		}
	}
	return out
}
