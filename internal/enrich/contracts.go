// Package enrich is the document enrichment pipeline: it routes a work item
// to an extraction strategy by file type, normalizes the service output into
// tag records, and batch-persists them.
package enrich

import (
	"context"
	"time"

	"github.com/velora-health/docenrich/internal/model"
)

// ObjectStore is the slice of the document store the strategies need.
type ObjectStore interface {
	GetText(ctx context.Context, bucket, key string) (string, error)
	Delete(ctx context.Context, bucket, key string) error
}

// ImageAnalyzer detects labels, faces, and text on a stored image.
type ImageAnalyzer interface {
	DetectLabels(ctx context.Context, ref model.ObjectRef) ([]model.Label, error)
	DetectFaces(ctx context.Context, ref model.ObjectRef) ([]model.Face, error)
	DetectTextLines(ctx context.Context, ref model.ObjectRef) ([]model.TextLine, error)
}

// DocumentReader runs async text detection over a stored document.
type DocumentReader interface {
	StartTextDetection(ctx context.Context, ref model.ObjectRef) (string, error)
	CheckTextDetection(ctx context.Context, jobID string) (model.OCRCheck, error)
}

// Transcriber runs async transcription over a stored audio file.
type Transcriber interface {
	Start(ctx context.Context, req model.TranscriptionRequest) error
	Check(ctx context.Context, jobName string) (model.TranscriptionCheck, error)
}

// EntityDetector extracts medical entities from raw text.
type EntityDetector interface {
	DetectEntities(ctx context.Context, text string) ([]model.Entity, error)
}

// RecordSink batch-persists the records produced for one work item.
type RecordSink interface {
	PutBatch(ctx context.Context, tagRecords []model.TagRecord) error
}

// WorkQueue is the inbound queue surface the driver drains.
type WorkQueue interface {
	Receive(ctx context.Context, max int32, visibility, wait time.Duration) ([]model.InboundMessage, error)
	Ack(ctx context.Context, receiptHandle string) error
}
