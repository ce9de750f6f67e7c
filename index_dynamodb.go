package hashlinks

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"golang.org/x/xerrors"
)

// LocalDynamoDBEndpoint is where DynamoDB Local listens by default.
const LocalDynamoDBEndpoint = "http://localhost:8000"

// dynamoPutCondition makes puts idempotent: write if the ID is free or already ours.
const dynamoPutCondition = "attribute_not_exists(id) OR target = :url"

// DynamoDBAPI is the part of the DynamoDB client used by DynamoDBIndex.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DynamoDBIndex is an Index backed by a DynamoDB table with string key "id"
// and string attribute "target".
type DynamoDBIndex struct {
	client DynamoDBAPI
	table  string
}

var _ Index = &DynamoDBIndex{}

// NewDynamoDBIndex returns an Index using client to access table.
func NewDynamoDBIndex(client DynamoDBAPI, table string) *DynamoDBIndex {
	return &DynamoDBIndex{
		client: client,
		table:  table,
	}
}

// NewDynamoDBClient builds a DynamoDB client from the default AWS configuration.
// A non-empty endpoint overrides the service endpoint. With local set, the
// client talks to DynamoDB Local using dummy credentials.
func NewDynamoDBClient(ctx context.Context, endpoint string, local bool) (*dynamodb.Client, error) {
	var opts []func(*config.LoadOptions) error
	if local {
		if endpoint == "" {
			endpoint = LocalDynamoDBEndpoint
		}
		opts = append(opts,
			config.WithRegion("ddblocal"),
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("local", "local", "")),
		)
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, xerrors.Errorf("could not load AWS configuration: %w", err)
	}

	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

// Lookup returns the URL mapped to the provided ID using a strongly consistent read.
func (i *DynamoDBIndex) Lookup(ctx context.Context, id string) (string, error) {
	out, err := i.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(i.table),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return "", xerrors.Errorf("error fetching ID %s from DynamoDB: %w", id, err)
	}

	target, ok := out.Item["target"].(*types.AttributeValueMemberS)
	if !ok {
		return "", ErrNotFound
	}
	return target.Value, nil
}

// Put writes the link with a condition that rejects IDs owned by other URLs.
func (i *DynamoDBIndex) Put(ctx context.Context, id, longURL string) error {
	_, err := i.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(i.table),
		Item: map[string]types.AttributeValue{
			"id":     &types.AttributeValueMemberS{Value: id},
			"target": &types.AttributeValueMemberS{Value: longURL},
		},
		ConditionExpression: aws.String(dynamoPutCondition),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":url": &types.AttributeValueMemberS{Value: longURL},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if xerrors.As(err, &ccf) {
			return ErrCollision
		}
		return xerrors.Errorf("error putting link %s into DynamoDB: %w", id, err)
	}

	return nil
}
