package expr

import (
	"maps"
	"strings"

	"github.com/time-loop/typedorm/dynamodb/expr/alias"
)

// Update accumulates the SET assignments of an update expression.
//
// Aliases are positional: the i-th assignment uses #attr{i} (or #attr{i}_inner{j}
// for the segments of a nested path) and :val{i}.
type Update struct {
	separator   string
	listIndexes bool
	assignments []string
	names       map[string]string
	values      map[string]any
}

// NewUpdate returns an empty update. Keys containing separator are treated as
// nested document paths; an empty separator disables nesting.
// Segments are opaque names unless WithListIndexes is set.
func NewUpdate(separator string) *Update {
	return &Update{
		separator: separator,
		names:     map[string]string{},
		values:    map[string]any{},
	}
}

// WithListIndexes reads a trailing "[n]" on a segment as a list element of that attribute,
// so "items[2]" assigns element 2 of items instead of an attribute named "items[2]".
func (u *Update) WithListIndexes() *Update {
	u.listIndexes = true
	return u
}

// Set appends "path = value". A nil value is written as NULL.
func (u *Update) Set(path string, value any) error {
	if u.names == nil {
		u.names = map[string]string{}
		u.values = map[string]any{}
	}
	i := len(u.assignments)
	segs, err := splitPath(path, u.separator, u.listIndexes)
	if err != nil {
		return err
	}

	var lhs string
	if len(segs) == 1 {
		a := alias.Name(i)
		u.names[a] = segs[0].name
		lhs = a + segs[0].index
	} else {
		rendered := make([]string, len(segs))
		for j, s := range segs {
			a := alias.NestedName(i, j)
			u.names[a] = s.name
			rendered[j] = a + s.index
		}
		lhs = strings.Join(rendered, ".")
	}

	v := alias.Value(i)
	u.values[v] = value
	u.assignments = append(u.assignments, lhs+" = "+v)
	return nil
}

// Expression renders "SET a = :v, b = :w". It is empty when nothing was set.
func (u *Update) Expression() string {
	if len(u.assignments) == 0 {
		return ""
	}
	return "SET " + strings.Join(u.assignments, ", ")
}

func (u *Update) Names() map[string]string {
	return maps.Clone(u.names)
}

func (u *Update) Values() map[string]any {
	return maps.Clone(u.values)
}

func (u *Update) IsEmpty() bool {
	return len(u.assignments) == 0
}
