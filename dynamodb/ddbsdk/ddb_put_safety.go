package ddbsdk

import (
	"github.com/time-loop/typedorm/dynamodb/expr/dsl"
	"github.com/time-loop/typedorm/dynamodb/table"
)

type VersionedDynamoEntity interface {
	DynamoEntity
	// Version should return the dynamodb field name and current value of the version field
	Version() (string, any)
}

// Put with optimistic locking.
// Fails if the stored item already has the same or a newer version.
func NewSafePut(t table.TableDefinition, e VersionedDynamoEntity) *Put {
	versionField, version := e.Version()
	return NewUnsafePut(t, e).WithCondition(dsl.New(
		dsl.Or(
			dsl.Where(versionField, dsl.Comparison{Op: dsl.OpLT, Value: version}),
			dsl.Where(versionField, dsl.NotExists()),
		),
	))
}
