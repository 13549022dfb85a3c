package awsx

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/google/uuid"

	"github.com/velora-health/docenrich/internal/model"
)

// messageGroupID serializes all documents onto one FIFO group; deduplication
// happens per message via a fresh dedup id.
const messageGroupID = "documents"

// Queue adapts the SQS client to the work-queue operations the drivers need.
// The queue URL is resolved once at construction.
type Queue struct {
	client *sqs.Client
	url    string
}

func NewQueue(ctx context.Context, client *sqs.Client, name string) (*Queue, error) {
	out, err := client.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{
		QueueName: aws.String(name),
	})
	if err != nil {
		return nil, fmt.Errorf("resolve queue url for %q: %w", name, err)
	}
	return &Queue{client: client, url: aws.ToString(out.QueueUrl)}, nil
}

// Receive fetches up to max messages, waiting up to wait for the first one.
func (q *Queue) Receive(ctx context.Context, max int32, visibility, wait time.Duration) ([]model.InboundMessage, error) {
	out, err := q.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:              aws.String(q.url),
		MaxNumberOfMessages:   max,
		VisibilityTimeout:     int32(visibility.Seconds()),
		WaitTimeSeconds:       int32(wait.Seconds()),
		MessageAttributeNames: []string{string(types.QueueAttributeNameAll)},
	})
	if err != nil {
		return nil, fmt.Errorf("receive messages: %w", err)
	}
	messages := make([]model.InboundMessage, 0, len(out.Messages))
	for _, m := range out.Messages {
		messages = append(messages, model.InboundMessage{
			Body:          aws.ToString(m.Body),
			ReceiptHandle: aws.ToString(m.ReceiptHandle),
		})
	}
	return messages, nil
}

// Ack removes one message from the queue.
func (q *Queue) Ack(ctx context.Context, receiptHandle string) error {
	_, err := q.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(q.url),
		ReceiptHandle: aws.String(receiptHandle),
	})
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}

// Send enqueues one work-item message with a fresh deduplication id.
func (q *Queue) Send(ctx context.Context, msg model.QueueMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal queue message: %w", err)
	}
	_, err = q.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:               aws.String(q.url),
		MessageBody:            aws.String(string(body)),
		MessageGroupId:         aws.String(messageGroupID),
		MessageDeduplicationId: aws.String(uuid.NewString()),
	})
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}
