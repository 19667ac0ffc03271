package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type row struct {
	ID     string
	Name   string
	Phone  string
	Status string
	Role   string
}

var rowSpec = Spec[row]{
	Text: func(r row) []string { return []string{r.Name, r.Phone} },
	Discrete: map[string]func(row) string{
		"status": func(r row) string { return r.Status },
		"role":   func(r row) string { return r.Role },
	},
}

var rows = []row{
	{ID: "1", Name: "Ahmed", Phone: "0501", Status: "Active", Role: "Cashier"},
	{ID: "2", Name: "Sara", Phone: "0502", Status: "Inactive", Role: "Manager"},
	{ID: "3", Name: "Mahmoud", Phone: "0777", Status: "Active", Role: "Manager"},
}

func ids(in []row) []string {
	out := make([]string, 0, len(in))
	for _, r := range in {
		out = append(out, r.ID)
	}
	return out
}

func TestApplyIdentityOnEmptyState(t *testing.T) {
	assert.Equal(t, rows, Apply(rows, rowSpec, State{}))
	assert.Equal(t, rows, Apply(rows, rowSpec, State{Search: "  ", Discrete: map[string]string{"status": ""}}))
}

func TestApply(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  []string
	}{
		{name: "case insensitive substring", state: State{Search: "AHMED"}, want: []string{"1"}},
		{name: "substring inside a word", state: State{Search: "ahm"}, want: []string{"1", "3"}},
		{name: "matches any text field", state: State{Search: "077"}, want: []string{"3"}},
		{name: "discrete only", state: State{Discrete: map[string]string{"status": "active"}}, want: []string{"1", "3"}},
		{name: "and across dimensions", state: State{Search: "m", Discrete: map[string]string{"role": "Manager", "status": "Active"}}, want: []string{"3"}},
		{name: "unknown dimension ignored", state: State{Discrete: map[string]string{"category": "x"}}, want: []string{"1", "2", "3"}},
		{name: "no match", state: State{Search: "zzz"}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Apply(rows, rowSpec, tt.state)))
		})
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	in := append([]row(nil), rows...)
	_ = Apply(in, rowSpec, State{Search: "sara"})
	assert.Equal(t, rows, in)
}

func TestFuzzyMode(t *testing.T) {
	spec := rowSpec
	spec.Mode = Fuzzy

	assert.Equal(t, []string{"3"}, ids(Apply(rows, spec, State{Search: "mhmd"})))
	assert.Empty(t, Apply(rows, rowSpec, State{Search: "mhmd"}))
}

func TestStateIsZeroAndClone(t *testing.T) {
	s := State{Discrete: map[string]string{"status": ""}}
	assert.True(t, s.IsZero())

	s.Discrete["status"] = "Active"
	assert.False(t, s.IsZero())

	c := s.Clone()
	c.Discrete["status"] = "Inactive"
	assert.Equal(t, "Active", s.Discrete["status"])
}
