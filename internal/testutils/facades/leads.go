package facades

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"marketplace-leads/internal/leads"
)

const watermarkRowKey = "1"

func NewAwsConfigFromEnv() aws.Config {
	return aws.Config{
		Region: os.Getenv("AWS_REGION"),
		Credentials: credentials.NewStaticCredentialsProvider(
			os.Getenv("AWS_ACCESS_KEY_ID"),
			os.Getenv("AWS_SECRET_ACCESS_KEY"),
			"",
		),
		BaseEndpoint: aws.String(os.Getenv("AWS_BASE_ENDPOINT")),
	}
}

// LeadsFacade seeds and inspects the leads and watermark tables of a local
// DynamoDB for integration tests.
type LeadsFacade struct {
	db             *dynamodb.Client
	leadsTable     string
	watermarkTable string
}

func NewLeadsFacade(leadsTable string, watermarkTable string) *LeadsFacade {
	cfg := NewAwsConfigFromEnv()
	return &LeadsFacade{
		db:             dynamodb.NewFromConfig(cfg),
		leadsTable:     leadsTable,
		watermarkTable: watermarkTable,
	}
}

func (lf *LeadsFacade) seeder(offer string, timestamp time.Time) (leads.Lead, error) {
	info, err := json.Marshal(leads.CustomerInfo{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Title:     "CTO",
		Company:   "Analytical Engines",
		Email:     "ada@example.com",
		Phone:     "+44 20 0000 0000",
		Country:   "GB",
	})
	if err != nil {
		return leads.Lead{}, err
	}

	return leads.Lead{
		RowKey:           uuid.NewString(),
		PartitionKey:     "integration-test",
		Timestamp:        timestamp,
		CreatedTime:      timestamp.UTC().Format(time.RFC3339),
		CustomerInfo:     string(info),
		Description:      "Lead created by the integration test",
		LeadSource:       "AzureMarketplace",
		OfferDisplayName: offer,
		ActionCode:       "INS",
	}, nil
}

// AddLead stores a lead for offer created at timestamp and returns its row key.
func (lf *LeadsFacade) AddLead(ctx context.Context, offer string, timestamp time.Time) (string, error) {
	lead, err := lf.seeder(offer, timestamp)
	if err != nil {
		return "", err
	}

	item, err := leads.MarshalItem(lead)
	if err != nil {
		return "", err
	}

	_, err = lf.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(lf.leadsTable),
		Item:      item,
	})
	return lead.RowKey, err
}

func (lf *LeadsFacade) DeleteLead(ctx context.Context, rowKey string) error {
	_, err := lf.db.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(lf.leadsTable),
		Key: map[string]types.AttributeValue{
			"PartitionKey": &types.AttributeValueMemberS{Value: "integration-test"},
			"RowKey":       &types.AttributeValueMemberS{Value: rowKey},
		},
	})
	return err
}

func (lf *LeadsFacade) watermarkKey(job string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PartitionKey": &types.AttributeValueMemberS{Value: job},
		"RowKey":       &types.AttributeValueMemberS{Value: watermarkRowKey},
	}
}

func (lf *LeadsFacade) PutWatermark(ctx context.Context, job string, value string) error {
	item := lf.watermarkKey(job)
	item["LastExecutionDatetime"] = &types.AttributeValueMemberS{Value: value}

	_, err := lf.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(lf.watermarkTable),
		Item:      item,
	})
	return err
}

// GetWatermark returns the stored LastExecutionDatetime of job, or "" when
// the job never ran.
func (lf *LeadsFacade) GetWatermark(ctx context.Context, job string) (string, error) {
	res, err := lf.db.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(lf.watermarkTable),
		Key:            lf.watermarkKey(job),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil || res.Item == nil {
		return "", err
	}

	var row struct {
		LastExecutionDatetime string `dynamodbav:"LastExecutionDatetime"`
	}
	if err = attributevalue.UnmarshalMap(res.Item, &row); err != nil {
		return "", err
	}

	return row.LastExecutionDatetime, nil
}

func (lf *LeadsFacade) DeleteWatermark(ctx context.Context, job string) error {
	_, err := lf.db.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(lf.watermarkTable),
		Key:       lf.watermarkKey(job),
	})
	return err
}
