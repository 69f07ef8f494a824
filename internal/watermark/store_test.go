//go:build unit

package watermark

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/suite"

	"marketplace-leads/internal/testutils/mocks"
)

// dynamodbMock keeps items in memory, keyed like the watermark table.
type dynamodbMock struct {
	items    map[string]map[string]types.AttributeValue
	getError error
	putError error
	puts     int
}

func newDynamodbMock() *dynamodbMock {
	return &dynamodbMock{items: map[string]map[string]types.AttributeValue{}}
}

func itemKey(attrs map[string]types.AttributeValue) string {
	return attrs["PartitionKey"].(*types.AttributeValueMemberS).Value + "|" + attrs["RowKey"].(*types.AttributeValueMemberS).Value
}

func (m *dynamodbMock) GetItem(_ context.Context, input *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	return &dynamodb.GetItemOutput{Item: m.items[itemKey(input.Key)]}, nil
}

func (m *dynamodbMock) PutItem(_ context.Context, input *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if m.putError != nil {
		return nil, m.putError
	}
	m.puts++
	m.items[itemKey(input.Item)] = input.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (m *dynamodbMock) seed(job string, value types.AttributeValue) {
	m.items[job+"|1"] = map[string]types.AttributeValue{
		"PartitionKey":          &types.AttributeValueMemberS{Value: job},
		"RowKey":                &types.AttributeValueMemberS{Value: "1"},
		"LastExecutionDatetime": value,
	}
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, &StoreTestSuite{})
}

type StoreTestSuite struct {
	suite.Suite
	db  *dynamodbMock
	now time.Time
	sut *Store
}

func (suite *StoreTestSuite) SetupTest() {
	suite.db = newDynamodbMock()
	suite.now = time.Date(2024, 3, 31, 10, 20, 30, 456789000, time.UTC)
	_, logger := mocks.NewLoggerMock()
	suite.sut = &Store{
		db:        suite.db,
		tableName: "LastRunDatetime",
		now:       func() time.Time { return suite.now },
		logger:    logger,
	}
}

func (suite *StoreTestSuite) expectedFallback() time.Time {
	return suite.now.AddDate(0, -1, 0)
}

func (suite *StoreTestSuite) TestRead_WhenRecordIsMissing_ShouldLookBackOneMonth() {
	actual, err := suite.sut.Read(context.TODO(), "CheckTableForLeads")
	suite.Require().NoError(err)
	suite.Assert().Equal(suite.expectedFallback(), actual)
	suite.Assert().Zero(suite.db.puts)
}

func (suite *StoreTestSuite) TestRead_WhenRecordIsMalformed_ShouldLookBackOneMonth() {
	values := []string{"", "yesterday", "2024-03-01", "2024-03-01T10:00:00Z", "2024-03-01T10:00:00.000+01:00", "2024-13-01T10:00:00.000Z"}
	for _, value := range values {
		suite.db.seed("CheckTableForLeads", &types.AttributeValueMemberS{Value: value})

		actual, err := suite.sut.Read(context.TODO(), "CheckTableForLeads")
		suite.Require().NoError(err, value)
		suite.Assert().Equal(suite.expectedFallback(), actual, value)
	}
}

func (suite *StoreTestSuite) TestRead_WhenAttributeHasWrongType_ShouldLookBackOneMonth() {
	suite.db.seed("CheckTableForLeads", &types.AttributeValueMemberN{Value: "1711880430"})

	actual, err := suite.sut.Read(context.TODO(), "CheckTableForLeads")
	suite.Require().NoError(err)
	suite.Assert().Equal(suite.expectedFallback(), actual)
}

func (suite *StoreTestSuite) TestRead_WhenRecordIsValid_ShouldReturnParsedValue() {
	suite.db.seed("CheckTableForLeads", &types.AttributeValueMemberS{Value: "2024-03-30T22:05:01.007Z"})

	actual, err := suite.sut.Read(context.TODO(), "CheckTableForLeads")
	suite.Require().NoError(err)
	suite.Assert().Equal(time.Date(2024, 3, 30, 22, 5, 1, 7000000, time.UTC), actual)
}

func (suite *StoreTestSuite) TestRead_ShouldBeKeyedByJobName() {
	suite.db.seed("OtherJob", &types.AttributeValueMemberS{Value: "2024-03-30T22:05:01.007Z"})

	actual, err := suite.sut.Read(context.TODO(), "CheckTableForLeads")
	suite.Require().NoError(err)
	suite.Assert().Equal(suite.expectedFallback(), actual)
}

func (suite *StoreTestSuite) TestRead_WhenStoreFails_ShouldReturnError() {
	expected := errors.New("AccessDeniedException")
	suite.db.getError = expected

	_, err := suite.sut.Read(context.TODO(), "CheckTableForLeads")
	suite.Assert().ErrorIs(err, expected)
	suite.Assert().ErrorContains(err, "failed to read watermark of CheckTableForLeads")
}

func (suite *StoreTestSuite) TestWrite_ShouldUpsertCurrentTimeInFixedFormat() {
	suite.db.seed("CheckTableForLeads", &types.AttributeValueMemberS{Value: "2024-03-01T00:00:00.000Z"})

	written, err := suite.sut.Write(context.TODO(), "CheckTableForLeads")
	suite.Require().NoError(err)
	suite.Assert().Equal(suite.now.Truncate(time.Millisecond), written)

	stored := suite.db.items["CheckTableForLeads|1"]["LastExecutionDatetime"].(*types.AttributeValueMemberS).Value
	suite.Assert().Equal("2024-03-31T10:20:30.456Z", stored)
	suite.Assert().Len(suite.db.items, 1)
}

func (suite *StoreTestSuite) TestWriteThenRead_ShouldReturnWrittenValue() {
	written, err := suite.sut.Write(context.TODO(), "CheckTableForLeads")
	suite.Require().NoError(err)

	suite.now = suite.now.Add(5 * time.Minute)
	read, err := suite.sut.Read(context.TODO(), "CheckTableForLeads")
	suite.Require().NoError(err)

	suite.Assert().Equal(written, read)
	suite.Assert().Equal(suite.now.Add(-5*time.Minute).Truncate(time.Millisecond), read)
}

func (suite *StoreTestSuite) TestWrite_ShouldNeverMoveBackwards() {
	first, err := suite.sut.Write(context.TODO(), "CheckTableForLeads")
	suite.Require().NoError(err)

	suite.now = suite.now.Add(time.Microsecond)
	second, err := suite.sut.Write(context.TODO(), "CheckTableForLeads")
	suite.Require().NoError(err)

	suite.Assert().False(second.Before(first))
}

func (suite *StoreTestSuite) TestWrite_WhenStoreFails_ShouldReturnError() {
	suite.db.putError = errors.New("ResourceNotFoundException")

	_, err := suite.sut.Write(context.TODO(), "CheckTableForLeads")
	suite.Assert().ErrorContains(err, "failed to write watermark of CheckTableForLeads: ResourceNotFoundException")
}

func (suite *StoreTestSuite) TestRead_ShouldLogLastExecution() {
	buf, logger := mocks.NewLoggerMock()
	suite.sut.logger = logger
	suite.db.seed("CheckTableForLeads", &types.AttributeValueMemberS{Value: "2024-03-30T22:05:01.007Z"})

	_, err := suite.sut.Read(context.TODO(), "CheckTableForLeads")
	suite.Require().NoError(err)
	suite.Assert().Equal(
		"level=INFO msg=\"CheckTableForLeads was last executed on 2024-03-30T22:05:01.007Z\"",
		strings.TrimSpace(buf.String()),
	)
}

func (suite *StoreTestSuite) TestRead_ShouldRequestConsistentReadOfSingleItem() {
	db := &capturingDb{dynamodbMock: newDynamodbMock()}
	suite.sut.db = db

	_, err := suite.sut.Read(context.TODO(), "CheckTableForLeads")
	suite.Require().NoError(err)
	suite.Assert().Equal("LastRunDatetime", aws.ToString(db.get.TableName))
	suite.Assert().True(aws.ToBool(db.get.ConsistentRead))
	suite.Assert().Equal("CheckTableForLeads|1", itemKey(db.get.Key))
}

type capturingDb struct {
	*dynamodbMock
	get *dynamodb.GetItemInput
}

func (c *capturingDb) GetItem(ctx context.Context, input *dynamodb.GetItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	c.get = input
	return c.dynamodbMock.GetItem(ctx, input, opts...)
}
