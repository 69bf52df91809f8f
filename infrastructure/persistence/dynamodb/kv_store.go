package dynamodb

import (
	"context"
	"fmt"
	"time"

	"voidstate/application/ports"
	"voidstate/domain/services"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// API is the subset of the DynamoDB client the store uses.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// kvItem is the structure of a record in the table. TTL holds the expiry in
// epoch seconds and must be configured as the table's TTL attribute.
type kvItem struct {
	PK        string `dynamodbav:"PK"`
	Value     []byte `dynamodbav:"Value"`
	TTL       int64  `dynamodbav:"TTL,omitempty"`
	UpdatedAt string `dynamodbav:"UpdatedAt,omitempty"`
}

// KVStore implements ports.KVStore on a DynamoDB table keyed by PK.
//
// DynamoDB deletes expired items lazily (often hours late), so the TTL
// attribute is also checked on every read.
type KVStore struct {
	client         API
	tableName      string
	consistentRead bool
	projection     expression.Expression
	clock          services.Clock
	logger         *zap.Logger
}

// NewKVStore creates a DynamoDB-backed store
func NewKVStore(client API, tableName string, consistentRead bool, clock services.Clock, logger *zap.Logger) (*KVStore, error) {
	if clock == nil {
		clock = services.SystemClock()
	}

	proj := expression.NamesList(expression.Name("Value"), expression.Name("TTL"))
	expr, err := expression.NewBuilder().WithProjection(proj).Build()
	if err != nil {
		return nil, fmt.Errorf("build projection: %w", err)
	}

	return &KVStore{
		client:         client,
		tableName:      tableName,
		consistentRead: consistentRead,
		projection:     expr,
		clock:          clock,
		logger:         logger,
	}, nil
}

// Get implements ports.KVStore
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: key},
		},
		ConsistentRead:           aws.Bool(s.consistentRead),
		ProjectionExpression:     s.projection.Projection(),
		ExpressionAttributeNames: s.projection.Names(),
	})
	if err != nil {
		return nil, false, fmt.Errorf("get item %s: %w", key, err)
	}

	if result.Item == nil {
		return nil, false, nil
	}

	var item kvItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, false, fmt.Errorf("unmarshal item %s: %w", key, err)
	}

	if item.TTL != 0 && s.clock.Now().Unix() >= item.TTL {
		return nil, false, nil
	}

	return item.Value, true, nil
}

// Put implements ports.KVStore
func (s *KVStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	now := s.clock.Now()

	item := kvItem{
		PK:        key,
		Value:     value,
		UpdatedAt: now.UTC().Format(time.RFC3339),
	}
	if ttl > 0 {
		item.TTL = expiryEpoch(now, ttl)
	}

	itemMap, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshal item %s: %w", key, err)
	}

	// unconditional overwrite: the store offers no compare-and-swap
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      itemMap,
	}); err != nil {
		s.logger.Error("DynamoDB put failed",
			zap.String("table", s.tableName),
			zap.String("key", key),
			zap.Error(err),
		)
		return fmt.Errorf("put item %s: %w", key, err)
	}

	return nil
}

// expiryEpoch rounds up so a record never expires earlier than requested.
func expiryEpoch(now time.Time, ttl time.Duration) int64 {
	exp := now.Add(ttl)
	secs := exp.Unix()
	if exp.Nanosecond() > 0 {
		secs++
	}
	return secs
}

var _ ports.KVStore = (*KVStore)(nil)
