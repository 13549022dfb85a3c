// Package records persists normalized tag records and the poller watermark in
// the record table.
package records

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/velora-health/docenrich/internal/model"
)

// batchSize is the service limit on items per batch write.
const batchSize = 25

// unprocessedRetries bounds re-submission of throttled batch writes.
const unprocessedRetries = 3

// BatchWriteAPI is the slice of the table client the sink needs.
type BatchWriteAPI interface {
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// Sink batch-persists TagRecords. Writes are atomic per item: a failing batch
// leaves already-written items committed, which is all the pipeline requires
// since records are insert-only with unique ids.
type Sink struct {
	client BatchWriteAPI
	table  string
	logger *slog.Logger
}

func NewSink(client BatchWriteAPI, table string, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{client: client, table: table, logger: logger}
}

// PutBatch writes all records for one work item in table-limit-sized chunks.
func (s *Sink) PutBatch(ctx context.Context, tagRecords []model.TagRecord) error {
	for start := 0; start < len(tagRecords); start += batchSize {
		end := start + batchSize
		if end > len(tagRecords) {
			end = len(tagRecords)
		}
		if err := s.writeChunk(ctx, tagRecords[start:end]); err != nil {
			return err
		}
	}
	if len(tagRecords) > 0 {
		s.logger.Info("tag records persisted", "table", s.table, "count", len(tagRecords))
	}
	return nil
}

func (s *Sink) writeChunk(ctx context.Context, chunk []model.TagRecord) error {
	requests := make([]ddbtypes.WriteRequest, 0, len(chunk))
	for _, rec := range chunk {
		item, err := attributevalue.MarshalMap(rec)
		if err != nil {
			return fmt.Errorf("marshal record %s: %w", rec.RecordID, err)
		}
		requests = append(requests, ddbtypes.WriteRequest{
			PutRequest: &ddbtypes.PutRequest{Item: item},
		})
	}

	pending := map[string][]ddbtypes.WriteRequest{s.table: requests}
	for attempt := 0; len(pending[s.table]) > 0; attempt++ {
		out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: pending,
		})
		if err != nil {
			return fmt.Errorf("batch write: %w", err)
		}
		if len(out.UnprocessedItems[s.table]) == 0 {
			return nil
		}
		if attempt >= unprocessedRetries {
			return fmt.Errorf("batch write: %d items unprocessed after %d retries",
				len(out.UnprocessedItems[s.table]), unprocessedRetries)
		}
		s.logger.Warn("retrying unprocessed items",
			"count", len(out.UnprocessedItems[s.table]), "attempt", attempt+1)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 100 * time.Millisecond):
		}
		pending = out.UnprocessedItems
	}
	return nil
}
