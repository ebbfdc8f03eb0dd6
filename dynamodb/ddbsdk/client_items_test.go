package ddbsdk

import (
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/time-loop/typedorm/dynamodb/expr"
	"github.com/time-loop/typedorm/dynamodb/expr/dsl"
)

func TestClient_PutItem_Unique(t *testing.T) {
	ddb := &recordingClient{}
	entity := &testEntity{PK: "USER#1", SK: "PROFILE", Name: "Alice"}

	err := New(ddb).PutItem(t.Context(), NewUniquePut(testTable, entity))
	require.NoError(t, err)
	require.Len(t, ddb.puts, 1)

	in := ddb.puts[0]
	assert.Equal(t, "test-table", *in.TableName)
	assert.Equal(t, "(attribute_not_exists(#attr0) AND attribute_not_exists(#attr1))", *in.ConditionExpression)
	assert.Equal(t, map[string]string{"#attr0": "pk", "#attr1": "sk"}, in.ExpressionAttributeNames)
	assert.Nil(t, in.ExpressionAttributeValues)
	assert.Equal(t, strAV("Alice"), in.Item["name"])
}

func TestPut_UniqueWithCondition(t *testing.T) {
	entity := &testEntity{PK: "USER#1", SK: "PROFILE"}
	in, err := NewUniquePut(testTable, entity).
		WithCondition(dsl.New(dsl.Where("status", dsl.Ne("banned")))).
		ToPutItem()
	require.NoError(t, err)
	assert.Equal(t,
		"((attribute_not_exists(#attr0) AND attribute_not_exists(#attr1)) AND #attr2 <> :val0)",
		*in.ConditionExpression)
	assert.Equal(t, "status", in.ExpressionAttributeNames["#attr2"])
	assert.Equal(t, strAV("banned"), in.ExpressionAttributeValues[":val0"])
}

func TestPut_Unsafe(t *testing.T) {
	in, err := NewUnsafePut(simpleTable, &testEntity{PK: "1"}).ToPutItem()
	require.NoError(t, err)
	assert.Nil(t, in.ConditionExpression)
	assert.Nil(t, in.ExpressionAttributeNames)
	assert.Nil(t, in.ExpressionAttributeValues)
}

func TestPut_Invalid(t *testing.T) {
	ddb := &recordingClient{}
	entity := &testEntity{PK: "1", invalid: errors.New("name is required")}
	err := New(ddb).PutItem(t.Context(), NewUnsafePut(testTable, entity))
	assert.ErrorContains(t, err, "name is required")
	assert.Empty(t, ddb.puts)
}

func TestNewSafePut(t *testing.T) {
	entity := &testEntity{PK: "USER#1", SK: "PROFILE", Rev: 3}
	in, err := NewSafePut(testTable, entity).ToPutItem()
	require.NoError(t, err)
	assert.Equal(t, "(#attr0 < :val0 OR attribute_not_exists(#attr1))", *in.ConditionExpression)
	assert.Equal(t, map[string]string{"#attr0": "version", "#attr1": "version"}, in.ExpressionAttributeNames)
	assert.Equal(t, &types.AttributeValueMemberN{Value: "3"}, in.ExpressionAttributeValues[":val0"])
}

func TestClient_UpdateItem(t *testing.T) {
	ddb := &recordingClient{}
	upd := NewUpdate(testTable, testKey("USER#1", "PROFILE")).
		Set("name", "Bob").
		Set("address.city", "Oslo").
		WithCondition(dsl.New(dsl.Where("version", dsl.Eq(2))))

	require.NoError(t, New(ddb).UpdateItem(t.Context(), upd))
	require.Len(t, ddb.updates, 1)

	in := ddb.updates[0]
	assert.Equal(t, "SET #attr0 = :val0, #attr1_inner0.#attr1_inner1 = :val1", *in.UpdateExpression)
	assert.Equal(t, "#attr2 = :val2", *in.ConditionExpression)
	assert.Equal(t, map[string]string{
		"#attr0":        "name",
		"#attr1_inner0": "address",
		"#attr1_inner1": "city",
		"#attr2":        "version",
	}, in.ExpressionAttributeNames)
	assert.Equal(t, map[string]types.AttributeValue{
		":val0": strAV("Bob"),
		":val1": strAV("Oslo"),
		":val2": &types.AttributeValueMemberN{Value: "2"},
	}, in.ExpressionAttributeValues)
	assert.Equal(t, Item{"pk": strAV("USER#1"), "sk": strAV("PROFILE")}, in.Key)
}

func TestUpdate_OnlyIfExists(t *testing.T) {
	in, err := NewUpdate(testTable, testKey("USER#1", "PROFILE")).
		Set("name", "Bob").
		OnlyIfExists().
		ToUpdateItem()
	require.NoError(t, err)
	assert.Equal(t, "attribute_exists(#attr1)", *in.ConditionExpression)
	assert.Equal(t, "pk", in.ExpressionAttributeNames["#attr1"])
}

func TestUpdate_Errors(t *testing.T) {
	_, err := NewUpdate(testTable, testKey("1", "a")).ToUpdateItem()
	assert.ErrorIs(t, err, expr.ErrArity)

	_, err = NewUpdate(testTable, testKey("1", "a")).Set("sk", "b").ToUpdateItem()
	assert.ErrorContains(t, err, "cannot update key attribute")

	_, err = NewUpdate(testTable, testKey("1", "a")).Set("pk.nested", "b").ToUpdateItem()
	assert.ErrorContains(t, err, "cannot update key attribute")
}

func TestUpdate_KeyAttributeGuard(t *testing.T) {
	tests := []struct {
		name    string
		update  func(*Update) *Update
		wantErr bool
	}{
		{name: "list element of the partition key", update: func(u *Update) *Update { return u.WithListIndexes().Set("pk[0]", 1) }, wantErr: true},
		{name: "list element without a separator", update: func(u *Update) *Update {
			return u.WithNestedKeySeparator("").WithListIndexes().Set("sk[2]", 1)
		}, wantErr: true},
		{name: "nested under the sort key", update: func(u *Update) *Update { return u.Set("sk.a", 1) }, wantErr: true},
		{name: "bracketed name is another attribute", update: func(u *Update) *Update { return u.Set("pk[0]", 1) }},
		{name: "dotted name is another attribute without a separator", update: func(u *Update) *Update {
			return u.WithNestedKeySeparator("").Set("pk.a", 1)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.update(NewUpdate(testTable, testKey("1", "a"))).ToUpdateItem()
			if tt.wantErr {
				assert.ErrorContains(t, err, "cannot update key attribute")
				return
			}
			assert.NoError(t, err)
		})
	}

	_, err := NewUpdate(testTable, testKey("1", "a")).WithListIndexes().Set("x[y]", 1).ToUpdateItem()
	assert.ErrorIs(t, err, expr.ErrShape)
}

func TestUpdate_FlatSeparator(t *testing.T) {
	in, err := NewUpdate(testTable, testKey("1", "a")).
		WithNestedKeySeparator("").
		Set("a.b", 1).
		ToUpdateItem()
	require.NoError(t, err)
	assert.Equal(t, "SET #attr0 = :val0", *in.UpdateExpression)
	assert.Equal(t, map[string]string{"#attr0": "a.b"}, in.ExpressionAttributeNames)
	assert.Nil(t, in.ConditionExpression)
}

func TestClient_DeleteItem(t *testing.T) {
	ddb := &recordingClient{}
	del := NewDelete(testTable, testKey("USER#1", "PROFILE")).
		WithCondition(dsl.New(dsl.Where("active", dsl.Eq(true))))

	require.NoError(t, New(ddb).DeleteItem(t.Context(), del))
	require.Len(t, ddb.deletes, 1)

	in := ddb.deletes[0]
	assert.Equal(t, "#attr0 = :val0", *in.ConditionExpression)
	assert.Equal(t, map[string]string{"#attr0": "active"}, in.ExpressionAttributeNames)
	assert.Equal(t, &types.AttributeValueMemberBOOL{Value: true}, in.ExpressionAttributeValues[":val0"])
}

func TestDelete_WithoutCondition(t *testing.T) {
	in, err := NewDelete(testTable, testKey("1", "a")).ToDeleteItem()
	require.NoError(t, err)
	assert.Nil(t, in.ConditionExpression)
	assert.Nil(t, in.ExpressionAttributeNames)
}

func TestClient_WriteErrors(t *testing.T) {
	ddb := &recordingClient{err: errors.New("conditional check failed")}
	c := New(ddb)

	err := c.PutItem(t.Context(), NewUnsafePut(testTable, &testEntity{PK: "1", SK: "a"}))
	assert.ErrorContains(t, err, "conditional check failed")

	err = c.UpdateItem(t.Context(), NewUpdate(testTable, testKey("1", "a")).Set("x", 1))
	assert.ErrorContains(t, err, "conditional check failed")

	err = c.DeleteItem(t.Context(), NewDelete(testTable, testKey("1", "a")))
	assert.ErrorContains(t, err, "conditional check failed")
}
