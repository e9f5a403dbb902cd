package balance

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/storacha/go-ucanto/did"
)

var _ Table = (*DynamoBalanceTable)(nil)

type DynamoBalanceTable struct {
	client    *dynamodb.Client
	tableName string
}

func NewDynamoBalanceTable(client *dynamodb.Client, tableName string) *DynamoBalanceTable {
	return &DynamoBalanceTable{client, tableName}
}

type balanceRecord struct {
	// Partition key: account DID
	Account string `dynamodbav:"Account"`

	Balance uint64 `dynamodbav:"Balance"`
}

func (d *DynamoBalanceTable) Balance(ctx context.Context, account did.DID) (uint64, error) {
	result, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			"Account": &types.AttributeValueMemberS{Value: account.String()},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return 0, fmt.Errorf("getting balance record: %w", err)
	}

	if result.Item == nil {
		return 0, nil
	}

	var record balanceRecord
	if err := attributevalue.UnmarshalMap(result.Item, &record); err != nil {
		return 0, fmt.Errorf("unmarshaling balance record: %w", err)
	}

	return record.Balance, nil
}

func (d *DynamoBalanceTable) Credit(ctx context.Context, account did.DID, value uint64) error {
	_, err := d.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			"Account": &types.AttributeValueMemberS{Value: account.String()},
		},
		UpdateExpression: aws.String("ADD #b :v"),
		ExpressionAttributeNames: map[string]string{
			"#b": "Balance",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberN{Value: strconv.FormatUint(value, 10)},
		},
	})
	if err != nil {
		return fmt.Errorf("crediting account: %w", err)
	}

	return nil
}

func (d *DynamoBalanceTable) Debit(ctx context.Context, account did.DID, value uint64) error {
	_, err := d.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			"Account": &types.AttributeValueMemberS{Value: account.String()},
		},
		// The condition keeps the update atomic: the debit only lands when
		// the balance still covers it.
		ConditionExpression: aws.String("#b >= :v"),
		UpdateExpression:    aws.String("SET #b = #b - :v"),
		ExpressionAttributeNames: map[string]string{
			"#b": "Balance",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberN{Value: strconv.FormatUint(value, 10)},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrInsufficientFunds
		}
		return fmt.Errorf("debiting account: %w", err)
	}

	return nil
}
