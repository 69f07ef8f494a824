package awsutils

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type unmarshaller[T any] interface {
	UnmarshalListOfMaps([]map[string]types.AttributeValue) ([]T, error)
}

// DynamoDbScanner runs a filtered scan and follows LastEvaluatedKey until the
// table is exhausted.
type DynamoDbScanner[T any] struct {
	client      dynamodb.ScanAPIClient
	marshaller  unmarshaller[T]
	tableName   string
	consistency bool
}

func NewDynamoDbScanner[T any](client dynamodb.ScanAPIClient, marshaller unmarshaller[T], tableName string) *DynamoDbScanner[T] {
	return &DynamoDbScanner[T]{
		client:     client,
		marshaller: marshaller,
		tableName:  tableName,
	}
}

// WithConsistentRead makes every page a strongly consistent read.
func (facade *DynamoDbScanner[T]) WithConsistentRead() *DynamoDbScanner[T] {
	facade.consistency = true
	return facade
}

func (facade *DynamoDbScanner[T]) Scan(ctx context.Context, filterBuilder expression.ConditionBuilder) ([]T, error) {
	expr, err := expression.NewBuilder().
		WithFilter(filterBuilder).
		Build()

	if err != nil {
		return nil, err
	}

	scanPaginator := dynamodb.NewScanPaginator(facade.client, &dynamodb.ScanInput{
		TableName:                 aws.String(facade.tableName),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		FilterExpression:          expr.Filter(),
		ConsistentRead:            aws.Bool(facade.consistency),
	})

	var items []T

	for scanPaginator.HasMorePages() {
		response, err := scanPaginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}

		pageItems, err := facade.marshaller.UnmarshalListOfMaps(response.Items)
		if err != nil {
			return nil, err
		}

		items = append(items, pageItems...)
	}

	return items, nil
}
