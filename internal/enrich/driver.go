package enrich

import (
	"context"
	"log/slog"

	"github.com/velora-health/docenrich/internal/common"
	"github.com/velora-health/docenrich/internal/model"
)

// Driver accepts inbound work notifications one at a time, isolates per-item
// failures, and acknowledges messages per the configured policy.
//
// With AckAlways (the default, matching the original deployment) delivery is
// at-most-once: a failed item is logged and its message removed, so transient
// failures lose the item rather than redeliver it. AckOnSuccess hands retry
// to the queue's redelivery policy instead.
type Driver struct {
	enricher *Enricher
	parser   *MessageParser
	ack      common.AckPolicy
	logger   *slog.Logger
}

func NewDriver(enricher *Enricher, parser *MessageParser, ack common.AckPolicy, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	if ack == "" {
		ack = common.AckAlways
	}
	return &Driver{enricher: enricher, parser: parser, ack: ack, logger: logger}
}

// ProcessItem runs one already-parsed work item, swallowing processing errors
// after logging them so sibling items in the same invocation are unaffected.
// The returned error is the processing outcome for ack decisions, classified
// as ENRICH_FAILED with the strategy's failure as the cause.
func (d *Driver) ProcessItem(ctx context.Context, item model.WorkItem) error {
	if err := d.enricher.Process(ctx, item); err != nil {
		d.logger.Error("failed to process work item",
			"location", item.Location(), "document_id", item.DocumentID, "error", err)
		return common.NewAppError("ENRICH_FAILED", "failed to process "+item.Location(), err)
	}
	return nil
}

// ProcessBody parses and runs one raw message body.
func (d *Driver) ProcessBody(ctx context.Context, body string) error {
	item, err := d.parser.Parse(body)
	if err != nil {
		d.logger.Error("invalid work message", "error", err)
		return err
	}
	return d.ProcessItem(ctx, item)
}

// Drain receives one batch from the queue and processes it strictly
// sequentially. Each message is acknowledged per the ack policy; ack failures
// are logged, never propagated.
func (d *Driver) Drain(ctx context.Context, queue WorkQueue, cfg common.QueueConfig) error {
	messages, err := queue.Receive(ctx, cfg.MaxMessages, cfg.VisibilityTimeout, cfg.WaitTime)
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		d.logger.Info("no messages found in queue")
		return nil
	}
	d.logger.Info("processing messages", "count", len(messages))

	for _, msg := range messages {
		procErr := d.ProcessBody(ctx, msg.Body)
		if procErr != nil && d.ack == common.AckOnSuccess {
			continue
		}
		if err := queue.Ack(ctx, msg.ReceiptHandle); err != nil {
			d.logger.Error("failed to acknowledge message", "error", err)
		}
	}
	return nil
}
