package ddbsdk

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dynamodbv2 "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/time-loop/typedorm/dynamodb/expr"
	"github.com/time-loop/typedorm/dynamodb/expr/alias"
	"github.com/time-loop/typedorm/dynamodb/expr/assembler"
	"github.com/time-loop/typedorm/dynamodb/expr/dsl"
	"github.com/time-loop/typedorm/dynamodb/table"
)

type Put struct {
	Table  table.TableDefinition
	Entity DynamoEntity

	unique     bool
	conditions []dsl.Spec
}

// NewUniquePut writes e only if no item with the same primary key exists.
func NewUniquePut(t table.TableDefinition, e DynamoEntity) *Put {
	return &Put{Table: t, Entity: e, unique: true}
}

// Put without any guard; an existing item with the same key is replaced.
// It is recommended to use NewUniquePut or NewSafePut instead.
func NewUnsafePut(t table.TableDefinition, e DynamoEntity) *Put {
	return &Put{Table: t, Entity: e}
}

func (p *Put) TableName() *string {
	return &p.Table.Name
}

// WithCondition adds a condition the stored item must satisfy. Conditions are ANDed.
func (p *Put) WithCondition(spec dsl.Spec) *Put {
	p.conditions = append(p.conditions, spec)
	return p
}

func (p *Put) Build() (assembler.Expression, map[string]types.AttributeValue, error) {
	if err := p.Entity.IsValid(); err != nil {
		return assembler.Expression{}, nil, fmt.Errorf("invalid entity: %w", err)
	}
	entity, err := attributevalue.MarshalMap(p.Entity)
	if err != nil {
		return assembler.Expression{}, nil, fmt.Errorf("failed to marshal entity to dynamodb map: %w", err)
	}

	alloc := alias.New()
	var guard *expr.Condition
	if p.unique {
		guard, err = assembler.UniqueRecordCondition(alloc, p.Table)
		if err != nil {
			return assembler.Expression{}, nil, fmt.Errorf("unique record condition: %w", err)
		}
	}
	cond, err := buildCondition(alloc, guard, p.conditions)
	if err != nil {
		return assembler.Expression{}, nil, err
	}
	return cond, entity, nil
}

func (p *Put) ToPutItem() (*dynamodbv2.PutItemInput, error) {
	cond, entity, err := p.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build put: %w", err)
	}
	values, err := cond.AttributeValues()
	if err != nil {
		return nil, err
	}
	return &dynamodbv2.PutItemInput{
		TableName:                 p.TableName(),
		Item:                      entity,
		ConditionExpression:       cond.ExpressionPtr(),
		ExpressionAttributeNames:  cond.Names,
		ExpressionAttributeValues: values,
	}, nil
}
