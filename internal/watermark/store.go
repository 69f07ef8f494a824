package watermark

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"marketplace-leads/internal/storetime"
)

const (
	// rowKey is constant: a job owns exactly one watermark item.
	rowKey = "1"

	lookbackMonths = 1
)

type dynamodbInterface interface {
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

type watermarkItemRow struct {
	PartitionKey          string `dynamodbav:"PartitionKey"`
	RowKey                string `dynamodbav:"RowKey"`
	LastExecutionDatetime string `dynamodbav:"LastExecutionDatetime"`
}

type Store struct {
	db        dynamodbInterface
	tableName string
	now       func() time.Time
	logger    *slog.Logger
}

func NewStore(db *dynamodb.Client, tableName string) *Store {
	return &Store{
		db:        db,
		tableName: tableName,
		now:       time.Now,
		logger:    slog.With("pipe", "watermark"),
	}
}

// Read returns the last successful run time of job. A missing or unparsable
// record yields now minus one month; only a failing store is an error.
func (s *Store) Read(ctx context.Context, job string) (time.Time, error) {
	fallback := s.now().UTC().AddDate(0, -lookbackMonths, 0)

	res, err := s.db.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            s.key(job),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read watermark of %s: %w", job, err)
	}

	if len(res.Item) == 0 {
		s.logger.Info(fmt.Sprintf("no watermark found for %s, looking back to %s", job, storetime.Format(fallback)))
		return fallback, nil
	}

	var row watermarkItemRow
	if err = attributevalue.UnmarshalMap(res.Item, &row); err != nil {
		s.logger.Warn(fmt.Sprintf("unreadable watermark for %s, looking back to %s: %v", job, storetime.Format(fallback), err))
		return fallback, nil
	}

	lastRan, err := storetime.Parse(row.LastExecutionDatetime)
	if err != nil {
		s.logger.Warn(fmt.Sprintf("malformed watermark %q for %s, looking back to %s", row.LastExecutionDatetime, job, storetime.Format(fallback)))
		return fallback, nil
	}

	s.logger.Info(fmt.Sprintf("%s was last executed on %s", job, row.LastExecutionDatetime))
	return lastRan, nil
}

// Write upserts the current time as the watermark of job and returns the stored value.
func (s *Store) Write(ctx context.Context, job string) (time.Time, error) {
	now := s.now().UTC().Truncate(time.Millisecond)

	item, err := attributevalue.MarshalMap(watermarkItemRow{
		PartitionKey:          job,
		RowKey:                rowKey,
		LastExecutionDatetime: storetime.Format(now),
	})
	if err != nil {
		return time.Time{}, err
	}

	_, err = s.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to write watermark of %s: %w", job, err)
	}

	return now, nil
}

func (s *Store) key(job string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PartitionKey": &types.AttributeValueMemberS{Value: job},
		"RowKey":       &types.AttributeValueMemberS{Value: rowKey},
	}
}
