package records

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/velora-health/docenrich/internal/model"
)

// Scanner reads tag records back out of the table for reporting.
type Scanner struct {
	client dynamodb.ScanAPIClient
	table  string
}

func NewScanner(client dynamodb.ScanAPIClient, table string) *Scanner {
	return &Scanner{client: client, table: table}
}

// Filter narrows a scan; zero values mean "no constraint".
type Filter struct {
	DocumentID string
	From       *time.Time
	To         *time.Time
}

// Scan returns all matching tag records. The checkpoint item is excluded by
// requiring the Operation attribute, which only tag records carry.
func (s *Scanner) Scan(ctx context.Context, filter Filter) ([]model.TagRecord, error) {
	exprs := []string{"attribute_exists(#op)"}
	names := map[string]string{"#op": "Operation"}
	values := map[string]ddbtypes.AttributeValue{}

	if filter.DocumentID != "" {
		exprs = append(exprs, "DocumentId = :doc")
		values[":doc"] = &ddbtypes.AttributeValueMemberS{Value: filter.DocumentID}
	}
	if filter.From != nil {
		exprs = append(exprs, "#ts >= :from")
		names["#ts"] = "TimeStamp"
		values[":from"] = &ddbtypes.AttributeValueMemberN{
			Value: strconv.FormatInt(filter.From.UnixMilli(), 10),
		}
	}
	if filter.To != nil {
		exprs = append(exprs, "#ts <= :to")
		names["#ts"] = "TimeStamp"
		values[":to"] = &ddbtypes.AttributeValueMemberN{
			Value: strconv.FormatInt(filter.To.UnixMilli(), 10),
		}
	}

	input := &dynamodb.ScanInput{
		TableName:                aws.String(s.table),
		FilterExpression:         aws.String(strings.Join(exprs, " AND ")),
		ExpressionAttributeNames: names,
	}
	if len(values) > 0 {
		input.ExpressionAttributeValues = values
	}

	var results []model.TagRecord
	paginator := dynamodb.NewScanPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan records: %w", err)
		}
		var batch []model.TagRecord
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("unmarshal records: %w", err)
		}
		results = append(results, batch...)
	}
	return results, nil
}
