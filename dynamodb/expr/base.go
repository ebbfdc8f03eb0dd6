// Package expr holds the accumulators that build DynamoDB key condition,
// filter, condition and update expressions clause by clause.
//
// Every attribute path and literal consumed by a clause is replaced by a
// freshly minted alias, so the expression string never contains user input
// and the same attribute used twice gets two different aliases.
package expr

import (
	"fmt"
	"maps"
	"regexp"
	"strings"

	"github.com/time-loop/typedorm/dynamodb/expr/alias"
)

// Connective joins sub-expressions.
type Connective string

const (
	And Connective = "AND"
	Or  Connective = "OR"
)

func (c Connective) valid() bool {
	return c == And || c == Or
}

// PathSeparator separates the segments of a nested attribute path in an update.
const PathSeparator = "."

// comparison remembers the last binary comparison appended so that Size can rewrite it.
type comparison struct {
	path  string
	lhs   string
	op    string
	rhs   string
	start int
}

// Base is the accumulator shared by KeyCondition, Filter and Condition.
type Base struct {
	alloc      *alias.Allocator
	expression string
	names      map[string]string
	values     map[string]any
	next       Connective
	last       *comparison
}

func newBase(alloc *alias.Allocator) Base {
	if alloc == nil {
		alloc = alias.New()
	}
	return Base{
		alloc:  alloc,
		names:  map[string]string{},
		values: map[string]any{},
		next:   And,
	}
}

// Core exposes the shared accumulator of a typed expression.
func (b *Base) Core() *Base {
	return b
}

// Expression returns the expression built so far.
func (b *Base) Expression() string {
	return b.expression
}

// Names returns a copy of the attribute name aliases.
func (b *Base) Names() map[string]string {
	return maps.Clone(b.names)
}

// Values returns a copy of the attribute value aliases.
func (b *Base) Values() map[string]any {
	return maps.Clone(b.values)
}

func (b *Base) IsEmpty() bool {
	return strings.TrimSpace(b.expression) == ""
}

// Allocator returns the allocator this accumulator mints aliases from.
func (b *Base) Allocator() *alias.Allocator {
	b.lazyInit()
	return b.alloc
}

// JoinWith sets the connective used before the next appended clause. Defaults to AND.
func (b *Base) JoinWith(c Connective) error {
	if !c.valid() {
		return UnsupportedOperatorError(string(c), "unsupported logical operator")
	}
	b.next = c
	return nil
}

// lazyInit makes the zero value usable.
func (b *Base) lazyInit() {
	if b.alloc == nil {
		b.alloc = alias.New()
	}
	if b.names == nil {
		b.names = map[string]string{}
	}
	if b.values == nil {
		b.values = map[string]any{}
	}
}

// nameAlias mints one alias for the whole path; a dot in it is part of the attribute name.
func (b *Base) nameAlias(path string) (string, error) {
	b.lazyInit()
	if path == "" {
		return "", ShapeError(path, "attribute path must not be empty")
	}
	a := b.alloc.NextName()
	b.names[a] = path
	return a, nil
}

func (b *Base) valueAlias(v any) string {
	b.lazyInit()
	a := b.alloc.NextValue()
	b.values[a] = v
	return a
}

func (b *Base) append(clause string, cmp *comparison) {
	if b.expression != "" {
		next := b.next
		if next == "" {
			next = And
		}
		b.expression += " " + string(next) + " "
	}
	b.next = And
	if cmp != nil {
		cmp.start = len(b.expression)
	}
	b.expression += clause
	b.last = cmp
}

func (b *Base) compare(path, op string, v any) error {
	lhs, err := b.nameAlias(path)
	if err != nil {
		return err
	}
	rhs := b.valueAlias(v)
	b.append(fmt.Sprintf("%s %s %s", lhs, op, rhs), &comparison{path: path, lhs: lhs, op: op, rhs: rhs})
	return nil
}

func (b *Base) function(name, path string, v any) error {
	lhs, err := b.nameAlias(path)
	if err != nil {
		return err
	}
	b.append(fmt.Sprintf("%s(%s, %s)", name, lhs, b.valueAlias(v)), nil)
	return nil
}

func (b *Base) Equals(path string, v any) error {
	return b.compare(path, "=", v)
}

func (b *Base) NotEquals(path string, v any) error {
	return b.compare(path, "<>", v)
}

func (b *Base) LessThan(path string, v any) error {
	return b.compare(path, "<", v)
}

func (b *Base) LessThanOrEqual(path string, v any) error {
	return b.compare(path, "<=", v)
}

func (b *Base) GreaterThan(path string, v any) error {
	return b.compare(path, ">", v)
}

func (b *Base) GreaterThanOrEqual(path string, v any) error {
	return b.compare(path, ">=", v)
}

func (b *Base) BeginsWith(path string, prefix any) error {
	return b.function("begins_with", path, prefix)
}

func (b *Base) Contains(path string, v any) error {
	return b.function("contains", path, v)
}

// AttributeType checks the stored type of path against a DynamoDB type descriptor such as "S" or "NS".
func (b *Base) AttributeType(path string, typ any) error {
	if s, ok := typ.(string); !ok || s == "" {
		return ShapeError(path, "attribute type must be a non-empty string, got %T", typ)
	}
	return b.function("attribute_type", path, typ)
}

func (b *Base) Between(path string, low, high any) error {
	lhs, err := b.nameAlias(path)
	if err != nil {
		return err
	}
	lo := b.valueAlias(low)
	hi := b.valueAlias(high)
	b.append(fmt.Sprintf("%s BETWEEN %s AND %s", lhs, lo, hi), nil)
	return nil
}

func (b *Base) In(path string, values ...any) error {
	if len(values) == 0 {
		return ArityError(path, "IN requires at least one value")
	}
	lhs, err := b.nameAlias(path)
	if err != nil {
		return err
	}
	aliases := make([]string, len(values))
	for i, v := range values {
		aliases[i] = b.valueAlias(v)
	}
	b.append(fmt.Sprintf("%s IN (%s)", lhs, strings.Join(aliases, ", ")), nil)
	return nil
}

func (b *Base) AttributeExists(path string) error {
	lhs, err := b.nameAlias(path)
	if err != nil {
		return err
	}
	b.append(fmt.Sprintf("attribute_exists(%s)", lhs), nil)
	return nil
}

func (b *Base) AttributeNotExists(path string) error {
	lhs, err := b.nameAlias(path)
	if err != nil {
		return err
	}
	b.append(fmt.Sprintf("attribute_not_exists(%s)", lhs), nil)
	return nil
}

// Size turns the comparison just appended on path into a comparison on size(path).
func (b *Base) Size(path string) error {
	if b.last == nil || b.last.path != path {
		return ShapeError(path, "size must wrap a comparison just appended on the same attribute")
	}
	c := b.last
	b.expression = b.expression[:c.start] + fmt.Sprintf("size(%s) %s %s", c.lhs, c.op, c.rhs)
	b.last = nil
	return nil
}

func (b *Base) mergeMany(others []*Base, c Connective) error {
	if !c.valid() {
		return UnsupportedOperatorError(string(c), "unsupported logical operator")
	}
	if len(others) == 0 {
		return ArityError(string(c), "must contain more than 1 attributes")
	}
	if b.IsEmpty() {
		return ArityError(string(c), "cannot merge into an empty expression")
	}
	b.lazyInit()
	names := maps.Clone(b.names)
	values := maps.Clone(b.values)
	parts := []string{b.expression}
	for _, o := range others {
		if o.IsEmpty() {
			return ArityError(string(c), "cannot merge an empty expression")
		}
		oExpr, oNames, oValues := o.expression, o.names, o.values
		if o.alloc != b.alloc {
			oExpr, oNames, oValues = o.realias(b.alloc, names, values)
		}
		for k, v := range oNames {
			if _, ok := names[k]; ok {
				return AliasCollisionError(k)
			}
			names[k] = v
		}
		for k, v := range oValues {
			if _, ok := values[k]; ok {
				return AliasCollisionError(k)
			}
			values[k] = v
		}
		parts = append(parts, oExpr)
	}
	b.expression = "(" + strings.Join(parts, " "+string(c)+" ") + ")"
	b.names = names
	b.values = values
	b.last = nil
	return nil
}

var aliasToken = regexp.MustCompile(`#attr[0-9]+(?:_inner[0-9]+)?|:val[0-9]+`)

// realias renames every alias of b, in order of appearance, with fresh ones from alloc
// that are bound in neither names nor values. b itself is left untouched.
func (b *Base) realias(alloc *alias.Allocator, names map[string]string, values map[string]any) (string, map[string]string, map[string]any) {
	renamed := map[string]string{}
	outNames := make(map[string]string, len(b.names))
	outValues := make(map[string]any, len(b.values))
	for _, tok := range aliasToken.FindAllString(b.expression, -1) {
		if _, done := renamed[tok]; done {
			continue
		}
		if v, ok := b.names[tok]; ok {
			fresh := alloc.NextName()
			for names[fresh] != "" {
				fresh = alloc.NextName()
			}
			renamed[tok] = fresh
			outNames[fresh] = v
		} else if v, ok := b.values[tok]; ok {
			fresh := alloc.NextValue()
			for isBound(values, fresh) {
				fresh = alloc.NextValue()
			}
			renamed[tok] = fresh
			outValues[fresh] = v
		}
	}
	expression := aliasToken.ReplaceAllStringFunc(b.expression, func(tok string) string {
		if fresh, ok := renamed[tok]; ok {
			return fresh
		}
		return tok
	})
	return expression, outNames, outValues
}

func isBound(values map[string]any, a string) bool {
	_, ok := values[a]
	return ok
}

func (b *Base) not() error {
	if b.IsEmpty() {
		return ArityError("NOT", "requires exactly one operand")
	}
	b.expression = "NOT (" + b.expression + ")"
	b.last = nil
	return nil
}
