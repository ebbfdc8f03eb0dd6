package ddbsdk

import "github.com/time-loop/typedorm/dynamodb/expr/dsl"

// SortKeyStrategy narrows a query to part of a partition by its sort key.
// Only the operators DynamoDB accepts in a key condition can be expressed.
type SortKeyStrategy = dsl.Operand

// Equals returns items where the sort key equals the provided value.
func Equals[T dsl.Scalar](v T) SortKeyStrategy {
	return dsl.Eq(v)
}

// BeginsWith returns items where the sort key starts with the provided prefix.
func BeginsWith(prefix string) SortKeyStrategy {
	return dsl.BeginsWith(prefix)
}

// Between returns items where the sort key is between start and end (inclusive).
func Between[T dsl.Scalar](start, end T) SortKeyStrategy {
	return dsl.Between(start, end)
}

// GreaterThan returns items where the sort key is greater than the provided value.
func GreaterThan[T dsl.Scalar](v T) SortKeyStrategy {
	return dsl.Gt(v)
}

// GreaterThanOrEqual returns items where the sort key is greater than or equal to the provided value.
func GreaterThanOrEqual[T dsl.Scalar](v T) SortKeyStrategy {
	return dsl.Ge(v)
}

// LessThan returns items where the sort key is less than the provided value.
func LessThan[T dsl.Scalar](v T) SortKeyStrategy {
	return dsl.Lt(v)
}

// LessThanOrEqual returns items where the sort key is less than or equal to the provided value.
func LessThanOrEqual[T dsl.Scalar](v T) SortKeyStrategy {
	return dsl.Le(v)
}
