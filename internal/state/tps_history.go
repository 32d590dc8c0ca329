package state

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/christophergentle/tpsgraph/internal/graph"
)

// Retention is how long samples live before DynamoDB expires them.
const Retention = 7 * 24 * time.Hour

// TPSSample is one transactions-per-minute measurement of an application.
// The table is keyed on app (partition) and timestamp (sort).
type TPSSample struct {
	App          string    `json:"app" dynamodbav:"app"`
	Timestamp    time.Time `json:"timestamp" dynamodbav:"timestamp"`
	Transactions float64   `json:"transactions" dynamodbav:"transactions"`
	CreatedAt    time.Time `json:"createdAt" dynamodbav:"createdAt"`
	TTL          int64     `json:"ttl" dynamodbav:"ttl"`
}

// DynamoDBAPI is the part of the DynamoDB client the manager uses.
type DynamoDBAPI interface {
	dynamodb.QueryAPIClient
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// TPSHistoryManager handles TPS history operations
type TPSHistoryManager struct {
	client    DynamoDBAPI
	tableName string
	now       func() time.Time
}

// NewTPSHistoryManager creates a new TPS history manager
func NewTPSHistoryManager(ctx context.Context, tableName string) (*TPSHistoryManager, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewTPSHistoryManagerWithClient(dynamodb.NewFromConfig(cfg), tableName), nil
}

// NewTPSHistoryManagerWithClient creates a manager on an existing client.
func NewTPSHistoryManagerWithClient(client DynamoDBAPI, tableName string) *TPSHistoryManager {
	return &TPSHistoryManager{client: client, tableName: tableName, now: time.Now}
}

// StoreSample stores one measurement. Timestamps are kept in UTC at
// second precision so their string form sorts in time order.
func (m *TPSHistoryManager) StoreSample(ctx context.Context, app string, at time.Time, transactions float64) error {
	now := m.now()
	sample := TPSSample{
		App:          app,
		Timestamp:    at.UTC().Truncate(time.Second),
		Transactions: transactions,
		CreatedAt:    now.UTC(),
		TTL:          now.Add(Retention).Unix(),
	}

	item, err := attributevalue.MarshalMap(sample)
	if err != nil {
		return fmt.Errorf("failed to marshal TPS sample: %w", err)
	}

	_, err = m.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(m.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to store TPS sample: %w", err)
	}
	return nil
}

// GetTPSHistory retrieves the samples of app from the last duration,
// oldest first, following every result page.
func (m *TPSHistoryManager) GetTPSHistory(ctx context.Context, app string, duration time.Duration) ([]TPSSample, error) {
	return m.historySince(ctx, app, m.now().Add(-duration))
}

// historySince queries every sample of app at or after startTime.
func (m *TPSHistoryManager) historySince(ctx context.Context, app string, startTime time.Time) ([]TPSSample, error) {
	startTime = startTime.UTC().Truncate(time.Second)

	paginator := dynamodb.NewQueryPaginator(m.client, &dynamodb.QueryInput{
		TableName:              aws.String(m.tableName),
		KeyConditionExpression: aws.String("app = :app AND #timestamp >= :startTime"),
		ExpressionAttributeNames: map[string]string{
			"#timestamp": "timestamp",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":app":       &types.AttributeValueMemberS{Value: app},
			":startTime": &types.AttributeValueMemberS{Value: startTime.Format(time.RFC3339)},
		},
		ScanIndexForward: aws.Bool(true), // Sort by timestamp ascending
	})

	var samples []TPSSample
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query TPS history: %w", err)
		}
		for _, item := range page.Items {
			var sample TPSSample
			if err := attributevalue.UnmarshalMap(item, &sample); err != nil {
				log.Printf("Skipping invalid TPS sample: %v", err)
				continue
			}
			samples = append(samples, sample)
		}
	}
	return samples, nil
}

// Series returns the history of app as chart points.
func (m *TPSHistoryManager) Series(ctx context.Context, app string, from, to time.Time) ([]graph.DataPoint, error) {
	samples, err := m.historySince(ctx, app, from)
	if err != nil {
		return nil, err
	}
	var kept []TPSSample
	for _, s := range samples {
		if s.Timestamp.Before(to) {
			kept = append(kept, s)
		}
	}
	return ToSeries(kept), nil
}

// ToSeries averages time-ordered samples into one point per minute.
func ToSeries(samples []TPSSample) []graph.DataPoint {
	var points []graph.DataPoint
	var minute time.Time
	var sum float64
	var n int

	flush := func() {
		if n > 0 {
			points = append(points, graph.DataPoint{T: graph.ToJulian(minute), C: sum / float64(n)})
		}
	}
	for _, s := range samples {
		m := s.Timestamp.Truncate(time.Minute)
		if n == 0 || !m.Equal(minute) {
			flush()
			minute, sum, n = m, 0, 0
		}
		sum += s.Transactions
		n++
	}
	flush()
	return points
}
