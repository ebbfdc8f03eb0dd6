package ddbsdk

import (
	"context"

	dynamodbv2 "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/time-loop/typedorm/dynamodb/table"
)

var testTable = table.TableDefinition{
	Name: "test-table",
	KeyDefinitions: table.PrimaryKeyDefinition{
		PartitionKey: table.KeyDef{Name: "pk", Kind: table.KeyKindS},
		SortKey:      table.KeyDef{Name: "sk", Kind: table.KeyKindS},
	},
	GSIs: []table.GSIDefinition{
		{
			Name: "gsi1",
			KeyDefinitions: table.PrimaryKeyDefinition{
				PartitionKey: table.KeyDef{Name: "gsi1pk", Kind: table.KeyKindS},
				SortKey:      table.KeyDef{Name: "gsi1sk", Kind: table.KeyKindS},
			},
		},
	},
}

var simpleTable = table.TableDefinition{
	Name: "simple-table",
	KeyDefinitions: table.PrimaryKeyDefinition{
		PartitionKey: table.KeyDef{Name: "id", Kind: table.KeyKindS},
	},
}

func testKey(pk, sk string) table.PrimaryKey {
	return table.PrimaryKey{
		Definition: testTable.KeyDefinitions,
		Values:     table.PrimaryKeyValues{PartitionKey: pk, SortKey: sk},
	}
}

type testEntity struct {
	PK   string `dynamodbav:"pk"`
	SK   string `dynamodbav:"sk"`
	Name string `dynamodbav:"name"`
	Rev  int    `dynamodbav:"version"`

	invalid error
}

func (e *testEntity) IsValid() error {
	return e.invalid
}

func (e *testEntity) Version() (string, any) {
	return "version", e.Rev
}

// recordingClient records every request and replays queued query pages.
type recordingClient struct {
	queries []*dynamodbv2.QueryInput
	puts    []*dynamodbv2.PutItemInput
	updates []*dynamodbv2.UpdateItemInput
	deletes []*dynamodbv2.DeleteItemInput

	pages []*dynamodbv2.QueryOutput
	err   error
}

var _ AWSDynamoClientV2 = &recordingClient{}

func (r *recordingClient) Query(_ context.Context, in *dynamodbv2.QueryInput, _ ...func(*dynamodbv2.Options)) (*dynamodbv2.QueryOutput, error) {
	r.queries = append(r.queries, in)
	if r.err != nil {
		return nil, r.err
	}
	if len(r.pages) == 0 {
		return &dynamodbv2.QueryOutput{}, nil
	}
	page := r.pages[0]
	r.pages = r.pages[1:]
	return page, nil
}

func (r *recordingClient) PutItem(_ context.Context, in *dynamodbv2.PutItemInput, _ ...func(*dynamodbv2.Options)) (*dynamodbv2.PutItemOutput, error) {
	r.puts = append(r.puts, in)
	return &dynamodbv2.PutItemOutput{}, r.err
}

func (r *recordingClient) UpdateItem(_ context.Context, in *dynamodbv2.UpdateItemInput, _ ...func(*dynamodbv2.Options)) (*dynamodbv2.UpdateItemOutput, error) {
	r.updates = append(r.updates, in)
	return &dynamodbv2.UpdateItemOutput{}, r.err
}

func (r *recordingClient) DeleteItem(_ context.Context, in *dynamodbv2.DeleteItemInput, _ ...func(*dynamodbv2.Options)) (*dynamodbv2.DeleteItemOutput, error) {
	r.deletes = append(r.deletes, in)
	return &dynamodbv2.DeleteItemOutput{}, r.err
}

func strAV(s string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: s}
}
