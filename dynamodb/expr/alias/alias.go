// Package alias mints the placeholder tokens substituted for attribute names
// and values in DynamoDB expressions.
//
// Name aliases have the form #attr<N> and value aliases :val<N>. Every
// accumulator built during one parse shares a single Allocator, so expressions
// merged together never mint the same alias twice.
package alias

import "fmt"

const (
	NamePrefix  = "#attr"
	ValuePrefix = ":val"
)

// Allocator hands out unique name and value aliases.
// It is not safe for concurrent use; independent parses use independent allocators.
type Allocator struct {
	names  int
	values int
}

func New() *Allocator {
	return &Allocator{}
}

// Starting returns an allocator whose first aliases are #attr<names> and :val<values>.
// It lets conditions share a request with positional update aliases.
func Starting(names, values int) *Allocator {
	return &Allocator{names: names, values: values}
}

// NextName returns a fresh name alias.
func (a *Allocator) NextName() string {
	n := a.names
	a.names++
	return Name(n)
}

// NextValue returns a fresh value alias.
func (a *Allocator) NextValue() string {
	n := a.values
	a.values++
	return Value(n)
}

// Name formats the name alias for position i.
func Name(i int) string {
	return fmt.Sprintf("%s%d", NamePrefix, i)
}

// NestedName formats the alias of segment j of the nested path at position i.
func NestedName(i, j int) string {
	return fmt.Sprintf("%s%d_inner%d", NamePrefix, i, j)
}

// Value formats the value alias for position i.
func Value(i int) string {
	return fmt.Sprintf("%s%d", ValuePrefix, i)
}
