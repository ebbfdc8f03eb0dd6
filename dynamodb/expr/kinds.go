package expr

import "github.com/time-loop/typedorm/dynamodb/expr/alias"

// KeyCondition selects items of one partition in a Query.
// DynamoDB only allows AND between key conditions, so there is no Not and no OR merge.
type KeyCondition struct {
	Base
}

func NewKeyCondition(alloc *alias.Allocator) *KeyCondition {
	return &KeyCondition{Base: newBase(alloc)}
}

// Merge ANDs other into k, e.g. a partition key equality with a sort key range.
func (k *KeyCondition) Merge(other *KeyCondition, c Connective) error {
	if c != And {
		return UnsupportedOperatorError(string(c), "key conditions can only be joined with AND")
	}
	return k.mergeMany([]*Base{&other.Base}, c)
}

// Filter is applied to items after they are read by a Query or Scan.
type Filter struct {
	Base
}

func NewFilter(alloc *alias.Allocator) *Filter {
	return &Filter{Base: newBase(alloc)}
}

func (f *Filter) Merge(other *Filter, c Connective) error {
	return f.MergeMany([]*Filter{other}, c)
}

// MergeMany combines f with its siblings into (f c o1 c o2 ...).
func (f *Filter) MergeMany(others []*Filter, c Connective) error {
	bases := make([]*Base, len(others))
	for i, o := range others {
		bases[i] = &o.Base
	}
	return f.mergeMany(bases, c)
}

func (f *Filter) Not() error {
	return f.not()
}

// Condition guards a write: PutItem, UpdateItem, DeleteItem or a transaction ConditionCheck.
type Condition struct {
	Base
}

func NewCondition(alloc *alias.Allocator) *Condition {
	return &Condition{Base: newBase(alloc)}
}

func (c *Condition) Merge(other *Condition, conn Connective) error {
	return c.MergeMany([]*Condition{other}, conn)
}

// MergeMany combines c with its siblings into (c conn o1 conn o2 ...).
func (c *Condition) MergeMany(others []*Condition, conn Connective) error {
	bases := make([]*Base, len(others))
	for i, o := range others {
		bases[i] = &o.Base
	}
	return c.mergeMany(bases, conn)
}

func (c *Condition) Not() error {
	return c.not()
}
