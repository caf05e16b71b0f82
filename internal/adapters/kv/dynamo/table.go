package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/vncsmyrnk/tablepoll/internal/adapters/repository/singletable"
)

// Client is the subset of the DynamoDB API the table uses.
type Client interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

type Table struct {
	client Client
	name   string
}

func NewTable(client Client, name string) *Table {
	return &Table{client: client, name: name}
}

func (t *Table) GetItem(ctx context.Context, key singletable.Key) (singletable.Item, error) {
	resp, err := t.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(t.name),
		Key:            keyAttributes(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("error getting item from dynamo: %w", err)
	}
	if len(resp.Item) == 0 {
		return nil, nil
	}
	return resp.Item, nil
}

func (t *Table) PutItem(ctx context.Context, item singletable.Item) error {
	_, err := t.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(t.name),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("error putting item to dynamo: %w", err)
	}
	return nil
}

// UpdateCounter uses the native ADD action so concurrent increments never
// overwrite each other.
func (t *Table) UpdateCounter(ctx context.Context, key singletable.Key, update singletable.CounterUpdate) (int64, error) {
	names := map[string]string{
		"#counter": update.Attribute,
		"#pk":      singletable.AttrPK,
	}
	values := map[string]types.AttributeValue{
		":delta": &types.AttributeValueMemberN{Value: strconv.FormatInt(update.Delta, 10)},
	}
	condition := "attribute_exists(#pk)"
	if update.ConditionAttribute != "" {
		names["#cond"] = update.ConditionAttribute
		values[":cond"] = &types.AttributeValueMemberS{Value: update.ConditionValue}
		condition += " AND #cond = :cond"
	}

	resp, err := t.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(t.name),
		Key:                       keyAttributes(key),
		UpdateExpression:          aws.String("ADD #counter :delta"),
		ConditionExpression:       aws.String(condition),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueUpdatedNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return 0, singletable.ErrConditionFailed
		}
		return 0, fmt.Errorf("error updating counter in dynamo: %w", err)
	}

	v, ok := resp.Attributes[update.Attribute]
	if !ok {
		return 0, fmt.Errorf("counter %q missing from update response", update.Attribute)
	}
	return singletable.ParseCounter(v)
}

func (t *Table) Query(ctx context.Context, index singletable.Index, partition, sort string) ([]singletable.Item, error) {
	pkAttr, skAttr := index.KeyAttributes()

	paginator := dynamodb.NewQueryPaginator(t.client, &dynamodb.QueryInput{
		TableName:              aws.String(t.name),
		IndexName:              aws.String(string(index)),
		KeyConditionExpression: aws.String("#pk = :pk AND #sk = :sk"),
		ExpressionAttributeNames: map[string]string{
			"#pk": pkAttr,
			"#sk": skAttr,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: partition},
			":sk": &types.AttributeValueMemberS{Value: sort},
		},
	})

	var items []singletable.Item
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("error querying %s in dynamo: %w", index, err)
		}
		items = append(items, page.Items...)
	}
	return items, nil
}

func (t *Table) TransactPut(ctx context.Context, items []singletable.Item) error {
	writes := make([]types.TransactWriteItem, len(items))
	for i, item := range items {
		writes[i] = types.TransactWriteItem{
			Put: &types.Put{
				TableName:                aws.String(t.name),
				Item:                     item,
				ConditionExpression:      aws.String("attribute_not_exists(#pk)"),
				ExpressionAttributeNames: map[string]string{"#pk": singletable.AttrPK},
			},
		}
	}

	_, err := t.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: writes,
	})
	if err != nil {
		return fmt.Errorf("error writing transaction to dynamo: %w", err)
	}
	return nil
}

func keyAttributes(key singletable.Key) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		singletable.AttrPK: &types.AttributeValueMemberS{Value: key.PK},
		singletable.AttrSK: &types.AttributeValueMemberS{Value: key.SK},
	}
}
