package db

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var (
	// ErrNotFound is returned when a get misses.
	ErrNotFound = errors.New("item not found")
	// ErrConditionFailed is returned when a conditional put hits an
	// existing key.
	ErrConditionFailed = errors.New("condition failed")
)

// Key builds a DynamoDB key from attribute name/value string pairs.
func Key(pairs ...string) map[string]types.AttributeValue {
	key := map[string]types.AttributeValue{}
	for i := 0; i+1 < len(pairs); i += 2 {
		key[pairs[i]] = &types.AttributeValueMemberS{Value: pairs[i+1]}
	}
	return key
}

// Get loads a single item and unmarshals it into T. A missing item is
// ErrNotFound, matching the throw-on-absent contract callers rely on.
func Get[T any](ctx context.Context, client DynamoAPI, table string, key map[string]types.AttributeValue) (T, error) {
	var item T
	out, err := client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(table),
		Key:       key,
	})
	if err != nil {
		return item, err
	}
	if len(out.Item) == 0 {
		return item, ErrNotFound
	}
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return item, err
	}
	return item, nil
}

// QueryByKey returns every item under one partition key value.
// consistent requests a strongly consistent read.
func QueryByKey[T any](ctx context.Context, client DynamoAPI, table, keyName, keyValue string, consistent bool) ([]T, error) {
	out, err := client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(table),
		KeyConditionExpression: aws.String("#k = :v"),
		ExpressionAttributeNames: map[string]string{
			"#k": keyName,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberS{Value: keyValue},
		},
		ConsistentRead: aws.Bool(consistent),
	})
	if err != nil {
		return nil, err
	}
	var items []T
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ScanAll reads the whole table, following pagination.
func ScanAll[T any](ctx context.Context, client DynamoAPI, table string) ([]T, error) {
	var items []T
	var start map[string]types.AttributeValue
	for {
		out, err := client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(table),
			ExclusiveStartKey: start,
		})
		if err != nil {
			return nil, err
		}
		var page []T
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		items = append(items, page...)
		if len(out.LastEvaluatedKey) == 0 {
			return items, nil
		}
		start = out.LastEvaluatedKey
	}
}

// Put writes an item. With noOverwrite it refuses to replace an existing
// key and reports ErrConditionFailed instead.
func Put(ctx context.Context, client DynamoAPI, table string, item any, noOverwriteKeys ...string) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return err
	}
	input := &dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      av,
	}
	if len(noOverwriteKeys) > 0 {
		cond := ""
		names := map[string]string{}
		for i, k := range noOverwriteKeys {
			if cond != "" {
				cond += " AND "
			}
			name := "#nk" + string(rune('0'+i))
			cond += "attribute_not_exists(" + name + ")"
			names[name] = k
		}
		input.ConditionExpression = aws.String(cond)
		input.ExpressionAttributeNames = names
	}
	if _, err := client.PutItem(ctx, input); err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrConditionFailed
		}
		return err
	}
	return nil
}

// UpdateSet applies a single SET <attr> = <value> expression.
func UpdateSet(ctx context.Context, client DynamoAPI, table string, key map[string]types.AttributeValue, attr string, value any) error {
	av, err := attributevalue.Marshal(value)
	if err != nil {
		return err
	}
	_, err = client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(table),
		Key:              key,
		UpdateExpression: aws.String("SET #a = :v"),
		ExpressionAttributeNames: map[string]string{
			"#a": attr,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": av,
		},
	})
	return err
}

// Delete removes an item; deleting an absent key is not an error.
func Delete(ctx context.Context, client DynamoAPI, table string, key map[string]types.AttributeValue) error {
	_, err := client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(table),
		Key:       key,
	})
	return err
}
