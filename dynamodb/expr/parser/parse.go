// Package parser turns condition specifications into expression accumulators.
//
// ParseToFilter and ParseToCondition walk a dsl.Spec recursively: each level
// yields one accumulator per key, combinators merge the accumulators of their
// body, and the top level must reduce to exactly one expression.
package parser

import (
	"strings"

	"github.com/time-loop/typedorm/dynamodb/expr"
	"github.com/time-loop/typedorm/dynamodb/expr/alias"
	"github.com/time-loop/typedorm/dynamodb/expr/dsl"
)

// ParseToKeyCondition builds a key condition on a single key attribute.
// Only EQ, LT, LE, GT, GE, BEGINS_WITH and BETWEEN are valid in a key condition.
func ParseToKeyCondition(path string, op dsl.Operand) (*expr.KeyCondition, error) {
	return ParseToKeyConditionWith(alias.New(), path, op)
}

// ParseToKeyConditionWith is ParseToKeyCondition minting aliases from alloc,
// so the result can be merged with other key conditions built from alloc.
func ParseToKeyConditionWith(alloc *alias.Allocator, path string, op dsl.Operand) (*expr.KeyCondition, error) {
	if alloc == nil {
		alloc = alias.New()
	}
	kc := expr.NewKeyCondition(alloc)
	switch o := op.(type) {
	case dsl.Comparison:
		switch o.Op {
		case dsl.OpEQ, dsl.OpLT, dsl.OpLE, dsl.OpGT, dsl.OpGE, dsl.OpBeginsWith:
			if err := applyScalar(&kc.Base, path, o.Op, o.Value); err != nil {
				return nil, err
			}
			return kc, nil
		}
		return nil, expr.UnsupportedOperatorError(string(o.Op), "not allowed in a key condition on %q", path)
	case dsl.Range:
		if err := applyOperand(&kc.Base, path, o); err != nil {
			return nil, err
		}
		return kc, nil
	case nil:
		return nil, expr.ShapeError(path, "missing key condition operand")
	default:
		return nil, expr.UnsupportedOperatorError(path, "%T is not allowed in a key condition", op)
	}
}

// ParseToFilter builds a filter expression from spec.
func ParseToFilter(spec dsl.Spec) (*expr.Filter, error) {
	return parse(alias.New(), spec, expr.NewFilter)
}

// ParseToFilterWith is ParseToFilter minting aliases from alloc, so the filter
// can travel in the same request as a key condition built from alloc.
func ParseToFilterWith(alloc *alias.Allocator, spec dsl.Spec) (*expr.Filter, error) {
	return parse(alloc, spec, expr.NewFilter)
}

// ParseToCondition builds a condition expression from spec.
func ParseToCondition(spec dsl.Spec) (*expr.Condition, error) {
	return parse(alias.New(), spec, expr.NewCondition)
}

func ParseToConditionWith(alloc *alias.Allocator, spec dsl.Spec) (*expr.Condition, error) {
	return parse(alloc, spec, expr.NewCondition)
}

// accumulator is implemented by *expr.Filter and *expr.Condition.
type accumulator[T any] interface {
	*T
	Core() *expr.Base
	MergeMany([]*T, expr.Connective) error
	Not() error
}

func parse[T any, P accumulator[T]](alloc *alias.Allocator, spec dsl.Spec, newAcc func(*alias.Allocator) P) (P, error) {
	if len(spec) != 1 {
		return nil, expr.ArityError(strings.Join(spec.Keys(), ", "),
			"a specification must have exactly one top-level entry, got %d; combine attributes with AND or OR", len(spec))
	}
	if alloc == nil {
		alloc = alias.New()
	}
	p := &levelParser[T, P]{alloc: alloc, newAcc: newAcc}
	results, err := p.level(spec)
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

type levelParser[T any, P accumulator[T]] struct {
	alloc  *alias.Allocator
	newAcc func(*alias.Allocator) P
}

// level parses one nesting level into one accumulator per key, in order.
func (p *levelParser[T, P]) level(spec dsl.Spec) ([]P, error) {
	results := make([]P, 0, len(spec))
	for _, e := range spec {
		acc, err := p.entry(e)
		if err != nil {
			return nil, err
		}
		results = append(results, acc)
	}
	return results, nil
}

func (p *levelParser[T, P]) entry(e dsl.Entry) (P, error) {
	switch n := e.Node.(type) {
	case dsl.Group:
		return p.group(n)
	case dsl.Operand:
		if dsl.IsCombinator(e.Key) {
			return nil, expr.ShapeError(e.Key, "combinator value must be a specification")
		}
		acc := p.newAcc(p.alloc)
		if err := applyOperand(acc.Core(), e.Key, n); err != nil {
			return nil, err
		}
		return acc, nil
	default:
		return nil, expr.ShapeError(e.Key, "unexpected specification node %T", e.Node)
	}
}

func (p *levelParser[T, P]) group(g dsl.Group) (P, error) {
	var conn expr.Connective
	switch g.Op {
	case dsl.LogicalAnd:
		conn = expr.And
	case dsl.LogicalOr:
		conn = expr.Or
	case dsl.LogicalNot:
	default:
		return nil, expr.UnsupportedOperatorError(string(g.Op), "unsupported logical operator")
	}

	children, err := p.level(g.Body)
	if err != nil {
		return nil, err
	}
	if len(children) == 0 {
		return nil, expr.ArityError(string(g.Op), "requires at least one attribute")
	}
	base, rest := children[0], children[1:]

	if g.Op == dsl.LogicalNot {
		if len(rest) != 0 {
			return nil, expr.ArityError(string(g.Op), "accepts exactly one operand, got %d", len(children))
		}
		if err := base.Not(); err != nil {
			return nil, err
		}
		return base, nil
	}

	siblings := make([]*T, len(rest))
	for i, r := range rest {
		siblings[i] = r
	}
	if err := base.MergeMany(siblings, conn); err != nil {
		return nil, err
	}
	return base, nil
}

func applyOperand(b *expr.Base, path string, op dsl.Operand) error {
	switch o := op.(type) {
	case dsl.Existence:
		if o.Exists {
			return b.AttributeExists(path)
		}
		return b.AttributeNotExists(path)
	case dsl.Comparison:
		return applyScalar(b, path, o.Op, o.Value)
	case dsl.Range:
		if o.Op != dsl.OpBetween {
			return expr.UnsupportedOperatorError(string(o.Op), "unsupported range operator on %q", path)
		}
		return b.Between(path, o.Low, o.High)
	case dsl.Membership:
		if o.Op != dsl.OpIn {
			return expr.UnsupportedOperatorError(string(o.Op), "unsupported membership operator on %q", path)
		}
		if len(o.Values) == 0 {
			return expr.ArityError(path, "IN requires a non-empty list of values")
		}
		return b.In(path, o.Values...)
	case dsl.SizeOf:
		if err := applyScalar(b, path, o.Op, o.Value); err != nil {
			return err
		}
		return b.Size(path)
	default:
		return expr.ShapeError(path, "unexpected operand %T", op)
	}
}

func applyScalar(b *expr.Base, path string, op dsl.Operator, v any) error {
	switch op {
	case dsl.OpEQ:
		return b.Equals(path, v)
	case dsl.OpNE:
		return b.NotEquals(path, v)
	case dsl.OpLT:
		return b.LessThan(path, v)
	case dsl.OpLE:
		return b.LessThanOrEqual(path, v)
	case dsl.OpGT:
		return b.GreaterThan(path, v)
	case dsl.OpGE:
		return b.GreaterThanOrEqual(path, v)
	case dsl.OpBeginsWith:
		return b.BeginsWith(path, v)
	case dsl.OpContains:
		return b.Contains(path, v)
	case dsl.OpAttributeType:
		return b.AttributeType(path, v)
	default:
		return expr.UnsupportedOperatorError(string(op), "unsupported operator on %q", path)
	}
}
