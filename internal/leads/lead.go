package leads

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"marketplace-leads/internal/storetime"
)

var ErrMalformedCustomerInfo = errors.New("failed to decode customer info")

// TimestampAttribute is the storage-assigned creation time every lead is filtered on.
const TimestampAttribute = "Timestamp"

type Lead struct {
	RowKey           string
	PartitionKey     string
	Timestamp        time.Time
	CreatedTime      string
	CustomerInfo     string
	Description      string
	LeadSource       string
	OfferDisplayName string
	ActionCode       string
}

type CustomerInfo struct {
	FirstName string
	LastName  string
	Title     string
	Company   string
	Email     string
	Phone     string
	Country   string
}

// DecodeCustomerInfo parses the JSON payload the marketplace embeds in each lead.
func (l Lead) DecodeCustomerInfo() (CustomerInfo, error) {
	var info CustomerInfo
	if err := json.Unmarshal([]byte(l.CustomerInfo), &info); err != nil {
		return CustomerInfo{}, fmt.Errorf("%w of lead %s: %w", ErrMalformedCustomerInfo, l.RowKey, err)
	}
	return info, nil
}

type leadItemRow struct {
	RowKey           string `dynamodbav:"RowKey"`
	PartitionKey     string `dynamodbav:"PartitionKey"`
	Timestamp        string `dynamodbav:"Timestamp"`
	CreatedTime      string `dynamodbav:"CreatedTime"`
	CustomerInfo     string `dynamodbav:"CustomerInfo"`
	Description      string `dynamodbav:"Description"`
	LeadSource       string `dynamodbav:"LeadSource"`
	OfferDisplayName string `dynamodbav:"OfferDisplayName"`
	ActionCode       string `dynamodbav:"ActionCode"`
}

// rejectedRow is a scanned item that could not be turned into a Lead.
type rejectedRow struct {
	rowKey string
	err    error
}

type leadMarshaller struct {
	rejected []rejectedRow
}

func (m *leadMarshaller) Marshal(lead Lead) (map[string]types.AttributeValue, error) {
	return attributevalue.MarshalMap(leadItemRow{
		RowKey:           lead.RowKey,
		PartitionKey:     lead.PartitionKey,
		Timestamp:        storetime.Format(lead.Timestamp),
		CreatedTime:      lead.CreatedTime,
		CustomerInfo:     lead.CustomerInfo,
		Description:      lead.Description,
		LeadSource:       lead.LeadSource,
		OfferDisplayName: lead.OfferDisplayName,
		ActionCode:       lead.ActionCode,
	})
}

func (m *leadMarshaller) UnmarshalListOfMaps(attrsList []map[string]types.AttributeValue) ([]Lead, error) {
	var items []leadItemRow
	if err := attributevalue.UnmarshalListOfMaps(attrsList, &items); err != nil {
		return nil, err
	}

	leads := make([]Lead, 0, len(items))
	for _, item := range items {
		ts, err := storetime.Parse(item.Timestamp)
		if err != nil {
			m.rejected = append(m.rejected, rejectedRow{
				rowKey: item.RowKey,
				err:    fmt.Errorf("lead %s has an invalid %s: %w", item.RowKey, TimestampAttribute, err),
			})
			continue
		}

		leads = append(leads, Lead{
			RowKey:           item.RowKey,
			PartitionKey:     item.PartitionKey,
			Timestamp:        ts,
			CreatedTime:      item.CreatedTime,
			CustomerInfo:     item.CustomerInfo,
			Description:      item.Description,
			LeadSource:       item.LeadSource,
			OfferDisplayName: item.OfferDisplayName,
			ActionCode:       item.ActionCode,
		})
	}

	return leads, nil
}

// MarshalItem renders a lead as the item the upstream producer writes.
func MarshalItem(lead Lead) (map[string]types.AttributeValue, error) {
	return new(leadMarshaller).Marshal(lead)
}
