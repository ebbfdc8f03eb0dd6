// Package assembler renders finished expression accumulators into the
// expression string and alias maps sent with a DynamoDB request.
package assembler

import (
	"fmt"
	"maps"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/time-loop/typedorm/dynamodb/expr"
)

// Kind names the request field an expression is sent in.
type Kind string

const (
	KindKeyCondition Kind = "KeyCondition"
	KindFilter       Kind = "Filter"
	KindCondition    Kind = "Condition"
	KindUpdate       Kind = "Update"
)

const (
	fieldNames  = "ExpressionAttributeNames"
	fieldValues = "ExpressionAttributeValues"
)

// Expression is a rendered expression. The zero value means there is nothing to attach.
// Names and Values are nil rather than empty.
type Expression struct {
	Kind       Kind
	Expression string
	Names      map[string]string
	Values     map[string]any
}

func (e Expression) IsEmpty() bool {
	return e.Expression == ""
}

// FieldName is the request field carrying the expression, e.g. "FilterExpression".
func (e Expression) FieldName() string {
	return string(e.Kind) + "Expression"
}

// ExpressionPtr returns the expression as the SDK expects it, nil when empty.
func (e Expression) ExpressionPtr() *string {
	if e.IsEmpty() {
		return nil
	}
	s := e.Expression
	return &s
}

// Fields returns the wire shape: the expression field plus each non-empty alias map.
// An empty expression yields an empty map.
func (e Expression) Fields() map[string]any {
	fields := map[string]any{}
	if e.IsEmpty() {
		return fields
	}
	fields[e.FieldName()] = e.Expression
	if len(e.Names) > 0 {
		fields[fieldNames] = maps.Clone(e.Names)
	}
	if len(e.Values) > 0 {
		fields[fieldValues] = maps.Clone(e.Values)
	}
	return fields
}

// AttributeValues marshals the value aliases for the SDK. It returns nil when there are none.
func (e Expression) AttributeValues() (map[string]types.AttributeValue, error) {
	return marshalValues(e.Values)
}

func marshalValues(values map[string]any) (map[string]types.AttributeValue, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make(map[string]types.AttributeValue, len(values))
	for k, v := range values {
		av, err := attributevalue.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal value %s of type %T: %w", k, v, err)
		}
		out[k] = av
	}
	return out, nil
}

// accumulated is implemented by the key condition, filter and condition accumulators.
type accumulated interface {
	Expression() string
	Names() map[string]string
	Values() map[string]any
}

func render(kind Kind, acc accumulated) Expression {
	s := strings.TrimSpace(acc.Expression())
	if s == "" {
		return Expression{}
	}
	e := Expression{Kind: kind, Expression: s}
	if names := acc.Names(); len(names) > 0 {
		e.Names = names
	}
	if values := acc.Values(); len(values) > 0 {
		e.Values = values
	}
	return e
}

func BuildKeyConditionExpression(kc *expr.KeyCondition) Expression {
	return render(KindKeyCondition, kc)
}

func BuildFilterExpression(f *expr.Filter) Expression {
	return render(KindFilter, f)
}

func BuildConditionExpression(c *expr.Condition) Expression {
	return render(KindCondition, c)
}

// Request holds the expressions of a single DynamoDB call together with their merged alias maps.
type Request struct {
	Expressions []Expression
	Names       map[string]string
	Values      map[string]any
}

// Combine merges the alias maps of expressions sent in one request.
// Empty expressions are skipped; an alias bound twice is an error.
func Combine(exprs ...Expression) (Request, error) {
	var req Request
	for _, e := range exprs {
		if e.IsEmpty() {
			continue
		}
		for k, v := range e.Names {
			if _, ok := req.Names[k]; ok {
				return Request{}, expr.AliasCollisionError(k)
			}
			if req.Names == nil {
				req.Names = map[string]string{}
			}
			req.Names[k] = v
		}
		for k, v := range e.Values {
			if _, ok := req.Values[k]; ok {
				return Request{}, expr.AliasCollisionError(k)
			}
			if req.Values == nil {
				req.Values = map[string]any{}
			}
			req.Values[k] = v
		}
		req.Expressions = append(req.Expressions, e)
	}
	return req, nil
}

// Get returns the expression of the given kind, nil when the request has none.
func (r Request) Get(kind Kind) *string {
	for _, e := range r.Expressions {
		if e.Kind == kind {
			return e.ExpressionPtr()
		}
	}
	return nil
}

func (r Request) AttributeValues() (map[string]types.AttributeValue, error) {
	return marshalValues(r.Values)
}

// AddNames binds extra name aliases, such as those of a projection built elsewhere.
func (r *Request) AddNames(names map[string]string) error {
	for k, v := range names {
		if _, ok := r.Names[k]; ok {
			return expr.AliasCollisionError(k)
		}
		if r.Names == nil {
			r.Names = map[string]string{}
		}
		r.Names[k] = v
	}
	return nil
}
