package ddbsdk

import (
	"context"
	"fmt"

	dynamodbv2 "github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// PutItemAction is implemented by Put.
type PutItemAction interface {
	ToPutItem() (*dynamodbv2.PutItemInput, error)
}

// UpdateItemAction is implemented by Update.
type UpdateItemAction interface {
	ToUpdateItem() (*dynamodbv2.UpdateItemInput, error)
}

// DeleteItemAction is implemented by Delete.
type DeleteItemAction interface {
	ToDeleteItem() (*dynamodbv2.DeleteItemInput, error)
}

var (
	_ PutItemAction    = &Put{}
	_ UpdateItemAction = &Update{}
	_ DeleteItemAction = &Delete{}
)

func (c *Client) PutItem(ctx context.Context, p PutItemAction) error {
	put, err := p.ToPutItem()
	if err != nil {
		return fmt.Errorf("failed to convert put to put item: %w", err)
	}
	c.logger.DebugContext(ctx, "put item", "table", deref(put.TableName), "condition", deref(put.ConditionExpression))
	_, err = c.awsddb.PutItem(ctx, put)
	if err != nil {
		return fmt.Errorf("failed to put item: %w", err)
	}
	return nil
}

func (c *Client) UpdateItem(ctx context.Context, u UpdateItemAction) error {
	update, err := u.ToUpdateItem()
	if err != nil {
		return fmt.Errorf("failed to convert update to update item: %w", err)
	}
	c.logger.DebugContext(ctx, "update item",
		"table", deref(update.TableName),
		"update", deref(update.UpdateExpression),
		"condition", deref(update.ConditionExpression))
	_, err = c.awsddb.UpdateItem(ctx, update)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	return nil
}

func (c *Client) DeleteItem(ctx context.Context, d DeleteItemAction) error {
	del, err := d.ToDeleteItem()
	if err != nil {
		return fmt.Errorf("failed to convert delete to delete item: %w", err)
	}
	c.logger.DebugContext(ctx, "delete item", "table", deref(del.TableName), "condition", deref(del.ConditionExpression))
	_, err = c.awsddb.DeleteItem(ctx, del)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}
