package assembler

import (
	"github.com/time-loop/typedorm/dynamodb/expr"
	"github.com/time-loop/typedorm/dynamodb/expr/alias"
	"github.com/time-loop/typedorm/dynamodb/table"
)

// KeyedTable is the part of a table descriptor the unique record guard needs.
type KeyedTable interface {
	PartitionKeyName() string
	SortKeyName() string
	UsesCompositeKey() bool
}

var _ KeyedTable = table.TableDefinition{}

// UniqueRecordCondition builds a condition that fails when an item with the same primary key exists.
func UniqueRecordCondition(alloc *alias.Allocator, t KeyedTable) (*expr.Condition, error) {
	c := expr.NewCondition(alloc)
	if err := c.AttributeNotExists(t.PartitionKeyName()); err != nil {
		return nil, err
	}
	if !t.UsesCompositeKey() {
		return c, nil
	}
	sk := expr.NewCondition(c.Allocator())
	if err := sk.AttributeNotExists(t.SortKeyName()); err != nil {
		return nil, err
	}
	if err := c.Merge(sk, expr.And); err != nil {
		return nil, err
	}
	return c, nil
}

// BuildUniqueRecordConditionExpression renders UniqueRecordCondition for a fresh request.
func BuildUniqueRecordConditionExpression(t KeyedTable) (Expression, error) {
	c, err := UniqueRecordCondition(alias.New(), t)
	if err != nil {
		return Expression{}, err
	}
	return BuildConditionExpression(c), nil
}
