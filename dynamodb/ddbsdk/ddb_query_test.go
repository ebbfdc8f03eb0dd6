package ddbsdk

import (
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	dynamodbv2 "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/time-loop/typedorm/dynamodb/expr"
	"github.com/time-loop/typedorm/dynamodb/expr/dsl"
)

func TestQuerier_Build(t *testing.T) {
	tests := []struct {
		name       string
		query      func(*Querier) *Querier
		wantKey    string
		wantFilter *string
		wantNames  map[string]string
		wantValues map[string]types.AttributeValue
	}{
		{
			name:      "partition only",
			query:     func(q *Querier) *Querier { return q },
			wantKey:   "#attr0 = :val0",
			wantNames: map[string]string{"#attr0": "pk"},
			wantValues: map[string]types.AttributeValue{
				":val0": strAV("USER#1"),
			},
		},
		{
			name:      "begins with sort key",
			query:     func(q *Querier) *Querier { return q.WithSortKey(BeginsWith("ORDER#")) },
			wantKey:   "(#attr0 = :val0 AND begins_with(#attr1, :val1))",
			wantNames: map[string]string{"#attr0": "pk", "#attr1": "sk"},
			wantValues: map[string]types.AttributeValue{
				":val0": strAV("USER#1"),
				":val1": strAV("ORDER#"),
			},
		},
		{
			name:      "between sort key",
			query:     func(q *Querier) *Querier { return q.WithSortKey(Between("a", "m")) },
			wantKey:   "(#attr0 = :val0 AND #attr1 BETWEEN :val1 AND :val2)",
			wantNames: map[string]string{"#attr0": "pk", "#attr1": "sk"},
			wantValues: map[string]types.AttributeValue{
				":val0": strAV("USER#1"),
				":val1": strAV("a"),
				":val2": strAV("m"),
			},
		},
		{
			name: "filter shares the alias sequence",
			query: func(q *Querier) *Querier {
				return q.WithSortKey(Equals("PROFILE")).WithFilter(dsl.New(dsl.Where("status", dsl.Ne("deleted"))))
			},
			wantKey:    "(#attr0 = :val0 AND #attr1 = :val1)",
			wantFilter: aws.String("#attr2 <> :val2"),
			wantNames:  map[string]string{"#attr0": "pk", "#attr1": "sk", "#attr2": "status"},
			wantValues: map[string]types.AttributeValue{
				":val0": strAV("USER#1"),
				":val1": strAV("PROFILE"),
				":val2": strAV("deleted"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := tt.query(NewQuerier(&recordingClient{}, testTable, "USER#1")).Build()
			require.NoError(t, err)
			assert.Equal(t, "test-table", *in.TableName)
			assert.Equal(t, tt.wantKey, *in.KeyConditionExpression)
			assert.Equal(t, tt.wantFilter, in.FilterExpression)
			assert.Equal(t, tt.wantNames, in.ExpressionAttributeNames)
			assert.Equal(t, tt.wantValues, in.ExpressionAttributeValues)
			assert.True(t, *in.ConsistentRead)
			assert.True(t, *in.ScanIndexForward)
			assert.Equal(t, int32(defaultPageSize), *in.Limit)
		})
	}
}

func TestQuerier_BuildOptions(t *testing.T) {
	in, err := NewQuerier(&recordingClient{}, testTable, "TENANT#1").
		WithGSI("gsi1").
		WithSortKey(GreaterThan("2024")).
		WithDescending().
		WithPageSize(25).
		WithProjection("name", "email").
		Build()
	require.NoError(t, err)

	assert.Equal(t, "gsi1", *in.IndexName)
	assert.Equal(t, "(#attr0 = :val0 AND #attr1 > :val1)", *in.KeyConditionExpression)
	assert.Equal(t, "gsi1pk", in.ExpressionAttributeNames["#attr0"])
	assert.Equal(t, "gsi1sk", in.ExpressionAttributeNames["#attr1"])
	assert.False(t, *in.ConsistentRead, "GSIs do not support consistent reads")
	assert.False(t, *in.ScanIndexForward)
	assert.Equal(t, int32(25), *in.Limit)

	require.NotNil(t, in.ProjectionExpression)
	assert.Equal(t, "#0, #1", *in.ProjectionExpression)
	assert.Equal(t, "name", in.ExpressionAttributeNames["#0"])
	assert.Equal(t, "email", in.ExpressionAttributeNames["#1"])
}

func TestQuerier_BuildErrors(t *testing.T) {
	_, err := NewQuerier(&recordingClient{}, simpleTable, "1").WithSortKey(Equals("x")).Build()
	assert.ErrorContains(t, err, "has no sort key")

	_, err = NewQuerier(&recordingClient{}, testTable, "1").WithGSI("missing").Build()
	assert.Error(t, err)

	_, err = NewQuerier(&recordingClient{}, testTable, "1").WithSortKey(dsl.Ne("x")).Build()
	assert.ErrorIs(t, err, expr.ErrUnsupportedOperator)

	_, err = NewQuerier(&recordingClient{}, testTable, "1").
		WithFilter(dsl.New(dsl.Where("a", dsl.Eq(1)), dsl.Where("b", dsl.Eq(2)))).
		Build()
	assert.ErrorIs(t, err, expr.ErrArity)
}

func TestQuerier_QueryAll(t *testing.T) {
	cursor := map[string]types.AttributeValue{"pk": strAV("USER#1"), "sk": strAV("B")}
	ddb := &recordingClient{pages: []*dynamodbv2.QueryOutput{
		{Items: []Item{{"sk": strAV("A")}, {"sk": strAV("B")}}, LastEvaluatedKey: cursor},
		{Items: []Item{{"sk": strAV("C")}}},
	}}

	res, err := New(ddb).NewQuery(testTable, "USER#1", nil).QueryAll(t.Context())
	require.NoError(t, err)
	assert.True(t, res.IsDone)
	assert.Len(t, res.Items, 3)

	require.Len(t, ddb.queries, 2)
	assert.Nil(t, ddb.queries[0].ExclusiveStartKey)
	assert.Equal(t, cursor, ddb.queries[1].ExclusiveStartKey)
}

func TestQuerier_Next(t *testing.T) {
	ddb := &recordingClient{pages: []*dynamodbv2.QueryOutput{
		{Items: []Item{{"sk": strAV("A")}}, LastEvaluatedKey: Item{"pk": strAV("1"), "sk": strAV("A")}},
	}}
	q := New(ddb).NewQuery(testTable, "1", dsl.New(dsl.Where("a", dsl.Exists())))

	res, err := q.Next(t.Context())
	require.NoError(t, err)
	assert.False(t, res.IsDone)
	assert.Equal(t, "attribute_exists(#attr1)", *ddb.queries[0].FilterExpression)

	res, err = q.Next(t.Context())
	require.NoError(t, err)
	assert.True(t, res.IsDone)
	assert.Empty(t, res.Items)
}

func TestQuerier_QueryError(t *testing.T) {
	ddb := &recordingClient{err: errors.New("throttled")}
	_, err := New(ddb).NewQuery(testTable, "1", nil).QueryAll(t.Context())
	assert.ErrorContains(t, err, "throttled")
}

func TestQuerier_DottedKeyNames(t *testing.T) {
	dotted := testTable
	dotted.KeyDefinitions.PartitionKey.Name = "tenant.id"
	in, err := NewQuerier(&recordingClient{}, dotted, "T1").WithSortKey(BeginsWith("A")).Build()
	require.NoError(t, err)
	assert.Equal(t, "(#attr0 = :val0 AND begins_with(#attr1, :val1))", *in.KeyConditionExpression)
	assert.Equal(t, map[string]string{"#attr0": "tenant.id", "#attr1": "sk"}, in.ExpressionAttributeNames)
}
