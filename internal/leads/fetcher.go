package leads

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"marketplace-leads/internal/awsutils"
	"marketplace-leads/internal/storetime"
)

type Fetcher struct {
	db        dynamodb.ScanAPIClient
	tableName string
	logger    *slog.Logger
}

func NewFetcher(db dynamodb.ScanAPIClient, tableName string) *Fetcher {
	return &Fetcher{
		db:        db,
		tableName: tableName,
		logger:    slog.With("pipe", "leads"),
	}
}

// FetchSince returns every lead created strictly after cutoff, across all pages.
// Rows whose Timestamp cannot be parsed are logged, left out and counted in skipped.
// Reads are consistent: a lead missed here would fall behind the next watermark.
func (f *Fetcher) FetchSince(ctx context.Context, cutoff time.Time) (found []Lead, skipped int, err error) {
	marshaller := &leadMarshaller{}
	scanner := awsutils.NewDynamoDbScanner[Lead](f.db, marshaller, f.tableName).WithConsistentRead()

	found, err = scanner.Scan(ctx, SinceFilter(cutoff))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query leads newer than %s: %w", storetime.Format(cutoff), err)
	}

	for _, row := range marshaller.rejected {
		f.logger.Error(fmt.Sprintf("skipping lead: %v", row.err), "lead", row.rowKey)
	}

	return found, len(marshaller.rejected), nil
}

func SinceFilter(cutoff time.Time) expression.ConditionBuilder {
	return expression.Name(TimestampAttribute).GreaterThan(expression.Value(storetime.Format(cutoff)))
}
