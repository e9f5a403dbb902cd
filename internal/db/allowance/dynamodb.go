package allowance

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/storacha/go-ucanto/did"
)

var _ Table = (*DynamoAllowanceTable)(nil)

type DynamoAllowanceTable struct {
	client    *dynamodb.Client
	tableName string
}

func NewDynamoAllowanceTable(client *dynamodb.Client, tableName string) *DynamoAllowanceTable {
	return &DynamoAllowanceTable{client, tableName}
}

type allowanceRecord struct {
	// Partition key: owner DID
	Owner string `dynamodbav:"Owner"`

	// Sort key: spender DID
	Spender string `dynamodbav:"Spender"`

	Ceiling      uint64 `dynamodbav:"Ceiling"`
	NextChargeAt string `dynamodbav:"NextChargeAt"`
	PeriodIndex  int    `dynamodbav:"PeriodIndex"`
}

func (d *DynamoAllowanceTable) Get(ctx context.Context, owner did.DID, spender did.DID) (Record, error) {
	result, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			"Owner":   &types.AttributeValueMemberS{Value: owner.String()},
			"Spender": &types.AttributeValueMemberS{Value: spender.String()},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return Record{}, fmt.Errorf("getting allowance record: %w", err)
	}

	// Absent key means no approval.
	if result.Item == nil {
		return Record{}, nil
	}

	var record allowanceRecord
	if err := attributevalue.UnmarshalMap(result.Item, &record); err != nil {
		return Record{}, fmt.Errorf("unmarshaling allowance record: %w", err)
	}

	nextChargeAt, err := time.Parse(time.RFC3339, record.NextChargeAt)
	if err != nil {
		return Record{}, fmt.Errorf("parsing next charge time: %w", err)
	}

	return Record{
		Ceiling:      record.Ceiling,
		NextChargeAt: nextChargeAt,
		PeriodIndex:  record.PeriodIndex,
	}, nil
}

func (d *DynamoAllowanceTable) Put(ctx context.Context, owner did.DID, spender did.DID, record Record) error {
	item, err := attributevalue.MarshalMap(allowanceRecord{
		Owner:        owner.String(),
		Spender:      spender.String(),
		Ceiling:      record.Ceiling,
		NextChargeAt: record.NextChargeAt.UTC().Format(time.RFC3339),
		PeriodIndex:  record.PeriodIndex,
	})
	if err != nil {
		return fmt.Errorf("serializing allowance record: %w", err)
	}

	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("storing allowance record: %w", err)
	}

	return nil
}
