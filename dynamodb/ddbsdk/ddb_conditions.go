package ddbsdk

import (
	"fmt"

	"github.com/time-loop/typedorm/dynamodb/expr"
	"github.com/time-loop/typedorm/dynamodb/expr/alias"
	"github.com/time-loop/typedorm/dynamodb/expr/assembler"
	"github.com/time-loop/typedorm/dynamodb/expr/dsl"
	"github.com/time-loop/typedorm/dynamodb/expr/parser"
)

// buildCondition ANDs guard (if any) with every spec, minting all aliases from alloc.
func buildCondition(alloc *alias.Allocator, guard *expr.Condition, specs []dsl.Spec) (assembler.Expression, error) {
	cond := guard
	for _, spec := range specs {
		c, err := parser.ParseToConditionWith(alloc, spec)
		if err != nil {
			return assembler.Expression{}, fmt.Errorf("condition: %w", err)
		}
		if cond == nil {
			cond = c
			continue
		}
		if err := cond.Merge(c, expr.And); err != nil {
			return assembler.Expression{}, err
		}
	}
	if cond == nil {
		return assembler.Expression{}, nil
	}
	return assembler.BuildConditionExpression(cond), nil
}
