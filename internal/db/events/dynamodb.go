package events

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/ipfs/go-cid"
	cidlink "github.com/ipld/go-ipld-prime/linking/cid"
	"github.com/storacha/go-ucanto/did"
	"github.com/storacha/go-ucanto/ucan"
)

var _ EventTable = (*DynamoEventTable)(nil)

type DynamoEventTable struct {
	client    *dynamodb.Client
	tableName string
}

func NewDynamoEventTable(client *dynamodb.Client, tableName string) *DynamoEventTable {
	return &DynamoEventTable{client, tableName}
}

type eventRecord struct {
	// Partition key: owner DID
	Owner string `dynamodbav:"Owner"`

	// Sort key: cause invocation CID
	Cause string `dynamodbav:"Cause"`

	Kind         string `dynamodbav:"Kind"`
	Counterparty string `dynamodbav:"Counterparty"`
	Value        uint64 `dynamodbav:"Value"`
	Ceiling      uint64 `dynamodbav:"Ceiling"`
	NextChargeAt string `dynamodbav:"NextChargeAt"`
	EmittedAt    string `dynamodbav:"EmittedAt"`
}

func (d *DynamoEventTable) Add(ctx context.Context, record EventRecord) error {
	item, err := attributevalue.MarshalMap(eventRecord{
		Owner:        record.Owner.String(),
		Cause:        record.Cause.String(),
		Kind:         string(record.Kind),
		Counterparty: record.Counterparty.String(),
		Value:        record.Value,
		Ceiling:      record.Ceiling,
		NextChargeAt: record.NextChargeAt.UTC().Format(time.RFC3339),
		EmittedAt:    record.EmittedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("serializing event record: %w", err)
	}

	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("storing event record: %w", err)
	}

	return nil
}

func (d *DynamoEventTable) Get(ctx context.Context, owner did.DID, cause ucan.Link) (*EventRecord, error) {
	result, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			"Owner": &types.AttributeValueMemberS{Value: owner.String()},
			"Cause": &types.AttributeValueMemberS{Value: cause.String()},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("getting event record: %w", err)
	}

	if result.Item == nil {
		return nil, ErrNotFound
	}

	return d.unmarshalRecord(result.Item)
}

func (d *DynamoEventTable) ListByOwner(ctx context.Context, owner did.DID, limit int) ([]EventRecord, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(d.tableName),
		KeyConditionExpression: aws.String("#o = :owner"),
		ExpressionAttributeNames: map[string]string{
			"#o": "Owner",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":owner": &types.AttributeValueMemberS{Value: owner.String()},
		},
	}
	if limit > 0 {
		input.Limit = aws.Int32(int32(limit))
	}

	result, err := d.client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("querying event records by owner: %w", err)
	}

	records := make([]EventRecord, 0, len(result.Items))
	for _, item := range result.Items {
		record, err := d.unmarshalRecord(item)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}

	return records, nil
}

func (d *DynamoEventTable) unmarshalRecord(item map[string]types.AttributeValue) (*EventRecord, error) {
	var record eventRecord
	if err := attributevalue.UnmarshalMap(item, &record); err != nil {
		return nil, fmt.Errorf("unmarshaling event record: %w", err)
	}

	owner, err := did.Parse(record.Owner)
	if err != nil {
		return nil, fmt.Errorf("parsing owner DID: %w", err)
	}

	counterparty, err := did.Parse(record.Counterparty)
	if err != nil {
		return nil, fmt.Errorf("parsing counterparty DID: %w", err)
	}

	c, err := cid.Decode(record.Cause)
	if err != nil {
		return nil, fmt.Errorf("parsing cause CID: %w", err)
	}

	nextChargeAt, err := time.Parse(time.RFC3339, record.NextChargeAt)
	if err != nil {
		return nil, fmt.Errorf("parsing next charge time: %w", err)
	}

	emittedAt, err := time.Parse(time.RFC3339, record.EmittedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing emitted time: %w", err)
	}

	return &EventRecord{
		Owner:        owner,
		Cause:        cidlink.Link{Cid: c},
		Kind:         Kind(record.Kind),
		Counterparty: counterparty,
		Value:        record.Value,
		Ceiling:      record.Ceiling,
		NextChargeAt: nextChargeAt,
		EmittedAt:    emittedAt,
	}, nil
}
