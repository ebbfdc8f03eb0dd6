package assembler

import (
	"sort"

	"github.com/time-loop/typedorm/dynamodb/expr"
)

// Field is one attribute assignment of an update.
type Field struct {
	Path  string
	Value any
}

// Item is an ordered set of assignments. Order decides the positional aliases.
type Item []Field

// ItemFromMap orders the keys of m lexically.
func ItemFromMap(m map[string]any) Item {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	item := make(Item, len(keys))
	for i, k := range keys {
		item[i] = Field{Path: k, Value: m[k]}
	}
	return item
}

type updateOptions struct {
	separator   string
	listIndexes bool
}

type UpdateOption func(*updateOptions)

// WithNestedKeySeparator sets the separator marking nested attribute paths. Defaults to ".".
// An empty separator treats every key as a top-level attribute.
func WithNestedKeySeparator(sep string) UpdateOption {
	return func(o *updateOptions) {
		o.separator = sep
	}
}

// WithListIndexes reads "name[n]" segments as list elements instead of attribute names.
func WithListIndexes() UpdateOption {
	return func(o *updateOptions) {
		o.listIndexes = true
	}
}

// BuildUpdateExpression renders a SET expression assigning every field of item.
func BuildUpdateExpression(item Item, opts ...UpdateOption) (Expression, error) {
	o := updateOptions{separator: expr.PathSeparator}
	for _, opt := range opts {
		opt(&o)
	}
	if len(item) == 0 {
		return Expression{}, expr.ArityError("update", "item must contain at least one attribute")
	}
	seen := make(map[string]bool, len(item))
	u := expr.NewUpdate(o.separator)
	if o.listIndexes {
		u.WithListIndexes()
	}
	for _, f := range item {
		if seen[f.Path] {
			return Expression{}, expr.ShapeError(f.Path, "attribute is assigned more than once")
		}
		seen[f.Path] = true
		if err := u.Set(f.Path, f.Value); err != nil {
			return Expression{}, err
		}
	}
	return render(KindUpdate, u), nil
}

// BuildUpdateExpressionFromMap is BuildUpdateExpression over a map, with keys in lexical order.
func BuildUpdateExpressionFromMap(m map[string]any, opts ...UpdateOption) (Expression, error) {
	if m == nil {
		return Expression{}, expr.ShapeError("update", "item must be a mapping")
	}
	return BuildUpdateExpression(ItemFromMap(m), opts...)
}
