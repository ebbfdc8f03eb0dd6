// Package dsl describes condition specifications: trees of attribute
// operands combined with AND, OR and NOT.
//
// A Spec is built either with the typed constructors in this package,
//
//	spec := dsl.New(
//		dsl.And(
//			dsl.Where("status", dsl.Eq("active")),
//			dsl.Where("tags", dsl.Size(dsl.Gt(2))),
//		),
//	)
//
// or decoded from a loosely typed tree with FromMap or FromYAML, which is the
// only place the shape of a dynamic value is inspected.
package dsl

import (
	"golang.org/x/exp/constraints"
)

// Operator names a comparison applied to a single attribute.
type Operator string

const (
	OpEQ            Operator = "EQ"
	OpNE            Operator = "NE"
	OpLT            Operator = "LT"
	OpLE            Operator = "LE"
	OpGT            Operator = "GT"
	OpGE            Operator = "GE"
	OpBeginsWith    Operator = "BEGINS_WITH"
	OpContains      Operator = "CONTAINS"
	OpAttributeType Operator = "ATTRIBUTE_TYPE"
	OpBetween       Operator = "BETWEEN"
	OpIn            Operator = "IN"
	OpSize          Operator = "SIZE"
)

// Sentinel values that test whether an attribute is present.
const (
	AttributeExists    = "ATTRIBUTE_EXISTS"
	AttributeNotExists = "ATTRIBUTE_NOT_EXISTS"
)

// Combinator is a logical connective between specifications.
type Combinator string

const (
	LogicalAnd Combinator = "AND"
	LogicalOr  Combinator = "OR"
	LogicalNot Combinator = "NOT"
)

// IsCombinator reports whether key names a logical connective.
func IsCombinator(key string) bool {
	switch Combinator(key) {
	case LogicalAnd, LogicalOr, LogicalNot:
		return true
	}
	return false
}

// IsScalarOperator reports whether op compares an attribute against a single value.
func IsScalarOperator(op Operator) bool {
	switch op {
	case OpEQ, OpNE, OpLT, OpLE, OpGT, OpGE, OpBeginsWith, OpContains, OpAttributeType:
		return true
	}
	return false
}

// Node is either a Group or an Operand.
type Node interface {
	node()
}

// Operand is what an attribute is tested against.
// The closed set of implementations is Existence, Comparison, Range, Membership and SizeOf.
type Operand interface {
	Node
	operand()
}

// Group applies a combinator to a nested specification.
type Group struct {
	Op   Combinator
	Body Spec
}

// Existence tests attribute_exists or attribute_not_exists.
type Existence struct {
	Exists bool
}

// Comparison tests the attribute against one scalar.
type Comparison struct {
	Op    Operator
	Value any
}

// Range is BETWEEN Low AND High.
type Range struct {
	Op   Operator
	Low  any
	High any
}

// Membership is IN (Values...).
type Membership struct {
	Op     Operator
	Values []any
}

// SizeOf compares size(attribute) against a scalar.
type SizeOf struct {
	Op    Operator
	Value any
}

func (Group) node()      {}
func (Existence) node()  {}
func (Comparison) node() {}
func (Range) node()      {}
func (Membership) node() {}
func (SizeOf) node()     {}

func (Existence) operand()  {}
func (Comparison) operand() {}
func (Range) operand()      {}
func (Membership) operand() {}
func (SizeOf) operand()     {}

// Entry is one key of a specification: an attribute path or a combinator name.
type Entry struct {
	Key  string
	Node Node
}

// Spec is an ordered specification level.
type Spec []Entry

func New(entries ...Entry) Spec {
	return Spec(entries)
}

// Keys returns the keys of this level in order.
func (s Spec) Keys() []string {
	keys := make([]string, len(s))
	for i, e := range s {
		keys[i] = e.Key
	}
	return keys
}

// Where tests the attribute at path.
func Where(path string, op Operand) Entry {
	return Entry{Key: path, Node: op}
}

func And(entries ...Entry) Entry {
	return Entry{Key: string(LogicalAnd), Node: Group{Op: LogicalAnd, Body: entries}}
}

func Or(entries ...Entry) Entry {
	return Entry{Key: string(LogicalOr), Node: Group{Op: LogicalOr, Body: entries}}
}

func Not(entry Entry) Entry {
	return Entry{Key: string(LogicalNot), Node: Group{Op: LogicalNot, Body: Spec{entry}}}
}

// Scalar is the set of Go types that map onto a DynamoDB string, number, boolean or binary.
type Scalar interface {
	constraints.Integer | constraints.Float | ~string | ~bool | ~[]byte
}

func Exists() Existence {
	return Existence{Exists: true}
}

func NotExists() Existence {
	return Existence{Exists: false}
}

func Eq[T Scalar](v T) Comparison {
	return Comparison{Op: OpEQ, Value: v}
}

func Ne[T Scalar](v T) Comparison {
	return Comparison{Op: OpNE, Value: v}
}

func Lt[T Scalar](v T) Comparison {
	return Comparison{Op: OpLT, Value: v}
}

func Le[T Scalar](v T) Comparison {
	return Comparison{Op: OpLE, Value: v}
}

func Gt[T Scalar](v T) Comparison {
	return Comparison{Op: OpGT, Value: v}
}

func Ge[T Scalar](v T) Comparison {
	return Comparison{Op: OpGE, Value: v}
}

func BeginsWith[T ~string | ~[]byte](prefix T) Comparison {
	return Comparison{Op: OpBeginsWith, Value: prefix}
}

func Contains[T Scalar](v T) Comparison {
	return Comparison{Op: OpContains, Value: v}
}

// AttributeType tests the stored type against a descriptor such as "S", "N", "SS" or "M".
func AttributeType(typ string) Comparison {
	return Comparison{Op: OpAttributeType, Value: typ}
}

func Between[T Scalar](low, high T) Range {
	return Range{Op: OpBetween, Low: low, High: high}
}

func In[T Scalar](values ...T) Membership {
	vs := make([]any, len(values))
	for i, v := range values {
		vs[i] = v
	}
	return Membership{Op: OpIn, Values: vs}
}

// Size compares the size of the attribute instead of its value.
func Size(c Comparison) SizeOf {
	return SizeOf{Op: c.Op, Value: c.Value}
}
