package vault

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/velora-health/docenrich/internal/model"
)

// flowStatusSuccessful is the run status emitted when a managed flow
// transfer finishes cleanly.
const flowStatusSuccessful = "Execution Successful"

// FlowDetail is the event-bus payload describing one completed flow run.
type FlowDetail struct {
	Status            string `json:"status"`
	FlowName          string `json:"flow-name"`
	DestinationObject string `json:"destination-object"`
	EndTime           string `json:"end-time"`
}

// ObjectBrowser reads the flow run's output objects.
type ObjectBrowser interface {
	GetText(ctx context.Context, bucket, key string) (string, error)
	ListPrefix(ctx context.Context, bucket, prefix string) ([]string, error)
}

// FlowListener enqueues documents that a managed flow run has already landed
// in the bucket. The run writes a metadata object first, then one object per
// document version.
type FlowListener struct {
	objects ObjectBrowser
	queue   MessageSender
	logger  *slog.Logger
}

func NewFlowListener(objects ObjectBrowser, queue MessageSender, logger *slog.Logger) *FlowListener {
	if logger == nil {
		logger = slog.Default()
	}
	return &FlowListener{objects: objects, queue: queue, logger: logger}
}

// flowMeta is the shape of the run's metadata object.
type flowMeta struct {
	Data []DocumentRow `json:"data"`
}

// Handle processes one flow-run event. Unsuccessful runs are skipped, not
// failed: the flow service owns retrying the transfer.
func (l *FlowListener) Handle(ctx context.Context, detail FlowDetail) error {
	if detail.Status != flowStatusSuccessful {
		l.logger.Warn("flow run not successful, skipping", "flow", detail.FlowName, "status", detail.Status)
		return nil
	}

	bucket, prefix, err := flowRunPrefix(detail)
	if err != nil {
		return err
	}

	keys, err := l.objects.ListPrefix(ctx, bucket, prefix)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return fmt.Errorf("no objects under flow run prefix %s/%s", bucket, prefix)
	}

	// The metadata object lists first under the run prefix.
	metaKey := keys[0]
	docKeys := keys[1:]

	body, err := l.objects.GetText(ctx, bucket, metaKey)
	if err != nil {
		return err
	}
	var meta flowMeta
	if err := json.Unmarshal([]byte(body), &meta); err != nil {
		return fmt.Errorf("decode flow metadata %s: %w", metaKey, err)
	}

	for _, doc := range meta.Data {
		if _, ok := transferableFormats[doc.Format]; !ok {
			continue
		}
		key, ok := matchDocumentKey(docKeys, doc)
		if !ok {
			l.logger.Warn("no object found for document",
				"document_id", string(doc.ID), "filename", doc.Filename)
			continue
		}
		l.logger.Info("enqueueing document", "document_id", string(doc.ID), "filename", doc.Filename)
		msg := model.NewQueueMessage(string(doc.ID), fileTypeForFormat(doc.Format), bucket, key)
		if err := l.queue.Send(ctx, msg); err != nil {
			l.logger.Error("failed to enqueue document",
				"document_id", string(doc.ID), "error", err)
		}
	}
	return nil
}

// flowRunPrefix derives the run's object prefix from the destination URI and
// end time: <dest-prefix>/<flow-name>/YYYY/MM/DD/HH.
func flowRunPrefix(detail FlowDetail) (bucket, prefix string, err error) {
	rest, ok := strings.CutPrefix(detail.DestinationObject, "s3://")
	if !ok {
		return "", "", fmt.Errorf("unexpected destination object %q", detail.DestinationObject)
	}
	bucket, destPrefix, ok := strings.Cut(rest, "/")
	if !ok {
		return "", "", fmt.Errorf("destination object %q has no prefix", detail.DestinationObject)
	}

	// End times carry fractional seconds; the prefix only needs the hour.
	endRaw, _, _ := strings.Cut(detail.EndTime, ".")
	end, err := time.Parse("2006-01-02T15:04:05", endRaw)
	if err != nil {
		return "", "", fmt.Errorf("parse flow end time %q: %w", detail.EndTime, err)
	}

	prefix = fmt.Sprintf("%s/%s/%s", destPrefix, detail.FlowName, end.Format("2006/01/02/15"))
	return bucket, prefix, nil
}

// matchDocumentKey finds the object whose key embeds the document's
// id/version/filename path segment.
func matchDocumentKey(keys []string, doc DocumentRow) (string, bool) {
	fragment := fmt.Sprintf("%s/%d_%d/%s", string(doc.ID), doc.MajorVersion, doc.MinorVersion, doc.Filename)
	for _, key := range keys {
		if strings.Contains(key, fragment) {
			return key, true
		}
	}
	return "", false
}
