package ddbsdk

import (
	"context"
	"fmt"
	"log/slog"

	expression2 "github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	dynamodbv2 "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/time-loop/typedorm/dynamodb/expr"
	"github.com/time-loop/typedorm/dynamodb/expr/alias"
	"github.com/time-loop/typedorm/dynamodb/expr/assembler"
	"github.com/time-loop/typedorm/dynamodb/expr/dsl"
	"github.com/time-loop/typedorm/dynamodb/expr/parser"
	"github.com/time-loop/typedorm/dynamodb/table"
	"github.com/time-loop/typedorm/internal/logging"
)

type Querier struct {
	awsddb AWSDynamoClientV2
	logger *slog.Logger

	table     table.TableDefinition
	partition any
	sortKey   SortKeyStrategy

	//internal, not exposed to user
	lastCursor map[string]types.AttributeValue

	opts queryOptions
}

type queryOptions struct {
	// default to consistent reads
	// because if you don't know what you're doing you may introduce race conditions.
	eventuallyConsistent bool
	pageSize             int32
	descending           bool
	indexName            string
	filter               dsl.Spec
	projectionAttributes []string
}

const defaultPageSize = 10

func NewQuerier(ddb AWSDynamoClientV2, t table.TableDefinition, partition any) *Querier {
	return &Querier{
		awsddb:    ddb,
		logger:    logging.Discard(),
		table:     t,
		partition: partition,
		opts: queryOptions{
			pageSize: defaultPageSize,
		},
	}
}

type QueryResult struct {
	Items  []Item
	IsDone bool
}

// Build compiles the query into a QueryInput without sending it.
func (q *Querier) Build() (*dynamodbv2.QueryInput, error) {
	keys, err := q.table.KeysFor(q.opts.indexName)
	if err != nil {
		return nil, err
	}

	alloc := alias.New()
	kc, err := parser.ParseToKeyConditionWith(alloc, keys.PartitionKey.Name, dsl.Comparison{Op: dsl.OpEQ, Value: q.partition})
	if err != nil {
		return nil, fmt.Errorf("partition key condition: %w", err)
	}
	if q.sortKey != nil {
		if !keys.UsesCompositeKey() {
			return nil, fmt.Errorf("sort key condition given but %q has no sort key", q.table.Name)
		}
		sk, err := parser.ParseToKeyConditionWith(alloc, keys.SortKey.Name, q.sortKey)
		if err != nil {
			return nil, fmt.Errorf("sort key condition: %w", err)
		}
		if err := kc.Merge(sk, expr.And); err != nil {
			return nil, err
		}
	}

	var filter assembler.Expression
	if len(q.opts.filter) > 0 {
		f, err := parser.ParseToFilterWith(alloc, q.opts.filter)
		if err != nil {
			return nil, fmt.Errorf("filter: %w", err)
		}
		filter = assembler.BuildFilterExpression(f)
	}

	req, err := assembler.Combine(assembler.BuildKeyConditionExpression(kc), filter)
	if err != nil {
		return nil, err
	}

	var projection *string
	if len(q.opts.projectionAttributes) > 0 {
		var proj expression2.ProjectionBuilder
		for i, attr := range q.opts.projectionAttributes {
			if i == 0 {
				proj = expression2.NamesList(expression2.Name(attr))
			} else {
				proj = proj.AddNames(expression2.Name(attr))
			}
		}
		pe, err := expression2.NewBuilder().WithProjection(proj).Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build projection expression: %w", err)
		}
		projection = pe.Projection()
		if err := req.AddNames(pe.Names()); err != nil {
			return nil, err
		}
	}

	values, err := req.AttributeValues()
	if err != nil {
		return nil, err
	}

	var indexName *string
	if q.opts.indexName != "" {
		indexName = ptr(q.opts.indexName)
	}
	return &dynamodbv2.QueryInput{
		TableName:                 ptr(q.table.Name),
		IndexName:                 indexName,
		KeyConditionExpression:    req.Get(assembler.KindKeyCondition),
		FilterExpression:          req.Get(assembler.KindFilter),
		ProjectionExpression:      projection,
		ExpressionAttributeNames:  req.Names,
		ExpressionAttributeValues: values,
		// GSIs do not support consistent reads.
		ConsistentRead:    ptr(!q.opts.eventuallyConsistent && indexName == nil),
		Limit:             ptr(q.opts.pageSize),
		ScanIndexForward:  ptr(!q.opts.descending),
		ExclusiveStartKey: q.lastCursor,
	}, nil
}

func (q *Querier) Next(ctx context.Context) (*QueryResult, error) {
	in, err := q.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query expression: %w", err)
	}
	q.logger.DebugContext(ctx, "query",
		"table", q.table.Name,
		"keyCondition", deref(in.KeyConditionExpression),
		"filter", deref(in.FilterExpression))

	res, err := q.awsddb.Query(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	q.lastCursor = res.LastEvaluatedKey
	return &QueryResult{
		Items:  res.Items,
		IsDone: res.LastEvaluatedKey == nil,
	}, nil
}

func (q *Querier) QueryAll(ctx context.Context) (*QueryResult, error) {
	var allItems []Item
	for {
		res, err := q.Next(ctx)
		if err != nil {
			return nil, err
		}
		allItems = append(allItems, res.Items...)
		if res.IsDone {
			break
		}
	}
	return &QueryResult{
		Items:  allItems,
		IsDone: true,
	}, nil
}

// WithSortKey narrows the query with a sort key condition.
func (q *Querier) WithSortKey(s SortKeyStrategy) *Querier {
	q.sortKey = s
	return q
}

// WithFilter drops items not matching spec after they are read.
// Filtered items still count towards the page size.
func (q *Querier) WithFilter(spec dsl.Spec) *Querier {
	q.opts.filter = spec
	return q
}

func (q *Querier) WithEventuallyConsistentReads() *Querier {
	q.opts.eventuallyConsistent = true
	return q
}

func (q *Querier) WithDescending() *Querier {
	q.opts.descending = true
	return q
}

func (q *Querier) WithPageSize(limit int) *Querier {
	q.opts.pageSize = int32(limit)
	return q
}

// WithGSI queries the named global secondary index using its key schema.
func (q *Querier) WithGSI(indexName string) *Querier {
	q.opts.indexName = indexName
	return q
}

// WithProjection limits the attributes returned in the response.
// Only the specified attributes will be retrieved from DynamoDB.
func (q *Querier) WithProjection(attrs ...string) *Querier {
	q.opts.projectionAttributes = attrs
	return q
}

func (q *Querier) WithLogger(logger *slog.Logger) *Querier {
	q.logger = logging.Default(logger)
	return q
}

func ptr[T any](v T) *T {
	return &v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
