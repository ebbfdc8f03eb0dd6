package ddbsdk

import (
	"fmt"

	dynamodbv2 "github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/time-loop/typedorm/dynamodb/expr/alias"
	"github.com/time-loop/typedorm/dynamodb/expr/dsl"
	"github.com/time-loop/typedorm/dynamodb/table"
)

type Delete struct {
	Table table.TableDefinition
	Key   table.PrimaryKey

	conditions []dsl.Spec
}

func NewDelete(t table.TableDefinition, pk table.PrimaryKey) *Delete {
	return &Delete{
		Table: t,
		Key:   pk,
	}
}

func (d *Delete) TableName() *string {
	return &d.Table.Name
}

// WithCondition adds a condition the stored item must satisfy. Conditions are ANDed.
func (d *Delete) WithCondition(spec dsl.Spec) *Delete {
	d.conditions = append(d.conditions, spec)
	return d
}

func (d *Delete) ToDeleteItem() (*dynamodbv2.DeleteItemInput, error) {
	cond, err := buildCondition(alias.New(), nil, d.conditions)
	if err != nil {
		return nil, fmt.Errorf("failed to build delete: %w", err)
	}
	key, err := d.Key.DDB()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal key: %w", err)
	}
	values, err := cond.AttributeValues()
	if err != nil {
		return nil, err
	}
	return &dynamodbv2.DeleteItemInput{
		TableName:                 d.TableName(),
		Key:                       key,
		ConditionExpression:       cond.ExpressionPtr(),
		ExpressionAttributeNames:  cond.Names,
		ExpressionAttributeValues: values,
	}, nil
}
