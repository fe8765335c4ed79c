// Package dynamotest provides an in-memory DynamoDB fake covering the
// operations the handlers use, so request flows can be tested without
// the real service.
package dynamotest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"backend/internal/db"
)

type table struct {
	keyAttrs []string
	items    map[string]map[string]types.AttributeValue
}

// Fake implements db.DynamoAPI over in-memory tables.
type Fake struct {
	mu     sync.Mutex
	tables map[string]*table

	// When set, the corresponding operation fails with this error.
	ErrGetItem    error
	ErrQuery      error
	ErrScan       error
	ErrPutItem    error
	ErrUpdateItem error
	ErrDeleteItem error
}

var _ db.DynamoAPI = (*Fake)(nil)

func New() *Fake {
	return &Fake{tables: map[string]*table{}}
}

// AddTable registers a table with its key attributes in key order.
func (f *Fake) AddTable(name string, keyAttrs ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tables[name] = &table{keyAttrs: keyAttrs, items: map[string]map[string]types.AttributeValue{}}
}

// Len reports the number of items stored in a table.
func (f *Fake) Len(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.tables[name]; ok {
		return len(t.items)
	}
	return 0
}

func (f *Fake) table(name *string) (*table, error) {
	t, ok := f.tables[aws.ToString(name)]
	if !ok {
		return nil, fmt.Errorf("unknown table %q", aws.ToString(name))
	}
	return t, nil
}

func attrString(av types.AttributeValue) string {
	if s, ok := av.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func (t *table) keyOf(item map[string]types.AttributeValue) string {
	parts := make([]string, 0, len(t.keyAttrs))
	for _, k := range t.keyAttrs {
		parts = append(parts, attrString(item[k]))
	}
	return strings.Join(parts, "|")
}

func (f *Fake) GetItem(_ context.Context, params *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ErrGetItem != nil {
		return nil, f.ErrGetItem
	}
	t, err := f.table(params.TableName)
	if err != nil {
		return nil, err
	}
	item := t.items[t.keyOf(params.Key)]
	return &dynamodb.GetItemOutput{Item: item}, nil
}

func (f *Fake) Query(_ context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ErrQuery != nil {
		return nil, f.ErrQuery
	}
	t, err := f.table(params.TableName)
	if err != nil {
		return nil, err
	}
	keyName := params.ExpressionAttributeNames["#k"]
	keyValue := attrString(params.ExpressionAttributeValues[":v"])
	var items []map[string]types.AttributeValue
	for _, item := range t.items {
		if attrString(item[keyName]) == keyValue {
			items = append(items, item)
		}
	}
	return &dynamodb.QueryOutput{Items: items}, nil
}

func (f *Fake) Scan(_ context.Context, params *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ErrScan != nil {
		return nil, f.ErrScan
	}
	t, err := f.table(params.TableName)
	if err != nil {
		return nil, err
	}
	var items []map[string]types.AttributeValue
	for _, item := range t.items {
		items = append(items, item)
	}
	return &dynamodb.ScanOutput{Items: items}, nil
}

func (f *Fake) PutItem(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ErrPutItem != nil {
		return nil, f.ErrPutItem
	}
	t, err := f.table(params.TableName)
	if err != nil {
		return nil, err
	}
	key := t.keyOf(params.Item)
	if params.ConditionExpression != nil {
		if _, exists := t.items[key]; exists {
			return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
		}
	}
	t.items[key] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *Fake) UpdateItem(_ context.Context, params *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ErrUpdateItem != nil {
		return nil, f.ErrUpdateItem
	}
	t, err := f.table(params.TableName)
	if err != nil {
		return nil, err
	}
	key := t.keyOf(params.Key)
	item, exists := t.items[key]
	if !exists {
		item = map[string]types.AttributeValue{}
		for k, v := range params.Key {
			item[k] = v
		}
		t.items[key] = item
	}
	// Supports the single "SET #a = :v" expression the store issues.
	attr := params.ExpressionAttributeNames["#a"]
	item[attr] = params.ExpressionAttributeValues[":v"]
	return &dynamodb.UpdateItemOutput{}, nil
}

func (f *Fake) DeleteItem(_ context.Context, params *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ErrDeleteItem != nil {
		return nil, f.ErrDeleteItem
	}
	t, err := f.table(params.TableName)
	if err != nil {
		return nil, err
	}
	delete(t.items, t.keyOf(params.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}
