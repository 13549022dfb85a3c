package records

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// checkpointID keys the poller watermark item inside the record table. It can
// never collide with a tag record because record ids are UUIDs.
const checkpointID = "checkpoint#vault-poller"

// watermarkEpoch is the first-run lower bound: query everything.
var watermarkEpoch = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// ItemAPI is the slice of the table client the checkpoint store needs.
type ItemAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// Checkpoint stores the incremental-query watermark durably so it survives
// across invocations instead of living in a process global.
type Checkpoint struct {
	client ItemAPI
	table  string
}

func NewCheckpoint(client ItemAPI, table string) *Checkpoint {
	return &Checkpoint{client: client, table: table}
}

// LastRun returns the stored watermark, or the epoch on first run.
func (c *Checkpoint) LastRun(ctx context.Context) (time.Time, error) {
	out, err := c.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.table),
		Key: map[string]ddbtypes.AttributeValue{
			"ROWID": &ddbtypes.AttributeValueMemberS{Value: checkpointID},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("get checkpoint: %w", err)
	}
	attr, ok := out.Item["TimeStamp"]
	if !ok {
		return watermarkEpoch, nil
	}
	num, ok := attr.(*ddbtypes.AttributeValueMemberN)
	if !ok {
		return watermarkEpoch, nil
	}
	millis, err := strconv.ParseInt(num.Value, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse checkpoint timestamp %q: %w", num.Value, err)
	}
	return time.UnixMilli(millis).UTC(), nil
}

// SetLastRun advances the watermark.
func (c *Checkpoint) SetLastRun(ctx context.Context, t time.Time) error {
	_, err := c.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.table),
		Item: map[string]ddbtypes.AttributeValue{
			"ROWID":     &ddbtypes.AttributeValueMemberS{Value: checkpointID},
			"TimeStamp": &ddbtypes.AttributeValueMemberN{Value: strconv.FormatInt(t.UnixMilli(), 10)},
		},
	})
	if err != nil {
		return fmt.Errorf("put checkpoint: %w", err)
	}
	return nil
}
