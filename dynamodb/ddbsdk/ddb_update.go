package ddbsdk

import (
	"fmt"

	dynamodbv2 "github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/time-loop/typedorm/dynamodb/expr"
	"github.com/time-loop/typedorm/dynamodb/expr/alias"
	"github.com/time-loop/typedorm/dynamodb/expr/assembler"
	"github.com/time-loop/typedorm/dynamodb/expr/dsl"
	"github.com/time-loop/typedorm/dynamodb/table"
)

// Update sets attributes of an existing item, creating it if it does not exist
// unless a condition says otherwise.
type Update struct {
	Table  table.TableDefinition
	Key    table.PrimaryKey
	Fields assembler.Item

	separator   string
	listIndexes bool
	conditions  []dsl.Spec
}

func NewUpdate(t table.TableDefinition, key table.PrimaryKey) *Update {
	return &Update{
		Table:     t,
		Key:       key,
		separator: expr.PathSeparator,
	}
}

func (u *Update) TableName() *string {
	return &u.Table.Name
}

// Set assigns value to path. Nested paths use the separator, "." by default.
func (u *Update) Set(path string, value any) *Update {
	u.Fields = append(u.Fields, assembler.Field{Path: path, Value: value})
	return u
}

func (u *Update) WithNestedKeySeparator(sep string) *Update {
	u.separator = sep
	return u
}

// WithListIndexes reads "name[n]" path segments as list elements.
func (u *Update) WithListIndexes() *Update {
	u.listIndexes = true
	return u
}

// WithCondition adds a condition the stored item must satisfy. Conditions are ANDed.
func (u *Update) WithCondition(spec dsl.Spec) *Update {
	u.conditions = append(u.conditions, spec)
	return u
}

// OnlyIfExists makes the update fail instead of creating a new item.
func (u *Update) OnlyIfExists() *Update {
	return u.WithCondition(dsl.New(dsl.Where(u.Table.PartitionKeyName(), dsl.Exists())))
}

func (u *Update) Build() (assembler.Request, error) {
	for _, f := range u.Fields {
		top, err := expr.TopLevelAttribute(f.Path, u.separator, u.listIndexes)
		if err != nil {
			return assembler.Request{}, fmt.Errorf("update: %w", err)
		}
		if top == u.Table.PartitionKeyName() || (u.Table.UsesCompositeKey() && top == u.Table.SortKeyName()) {
			return assembler.Request{}, fmt.Errorf("cannot update key attribute %q", f.Path)
		}
	}
	opts := []assembler.UpdateOption{assembler.WithNestedKeySeparator(u.separator)}
	if u.listIndexes {
		opts = append(opts, assembler.WithListIndexes())
	}
	upd, err := assembler.BuildUpdateExpression(u.Fields, opts...)
	if err != nil {
		return assembler.Request{}, fmt.Errorf("update: %w", err)
	}
	// positional update aliases occupy the first len(Fields) indexes
	alloc := alias.Starting(len(u.Fields), len(u.Fields))
	cond, err := buildCondition(alloc, nil, u.conditions)
	if err != nil {
		return assembler.Request{}, err
	}
	return assembler.Combine(upd, cond)
}

func (u *Update) ToUpdateItem() (*dynamodbv2.UpdateItemInput, error) {
	req, err := u.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build update: %w", err)
	}
	key, err := u.Key.DDB()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal key: %w", err)
	}
	values, err := req.AttributeValues()
	if err != nil {
		return nil, err
	}
	return &dynamodbv2.UpdateItemInput{
		TableName:                 u.TableName(),
		Key:                       key,
		UpdateExpression:          req.Get(assembler.KindUpdate),
		ConditionExpression:       req.Get(assembler.KindCondition),
		ExpressionAttributeNames:  req.Names,
		ExpressionAttributeValues: values,
	}, nil
}
