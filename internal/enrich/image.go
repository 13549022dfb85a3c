package enrich

import (
	"context"
	"fmt"

	"github.com/velora-health/docenrich/internal/model"
)

// processImage runs label detection, conditionally face detection, and always
// text detection, then persists everything as one batch. Any service failure
// aborts the whole strategy for this item; nothing partial is written.
func (e *Enricher) processImage(ctx context.Context, item model.WorkItem) error {
	labels, err := e.deps.Images.DetectLabels(ctx, item.Ref())
	if err != nil {
		return fmt.Errorf("label detection: %w", err)
	}
	tagRecords := e.norm.Labels(item, labels)

	if HasPerson(labels) {
		faces, err := e.deps.Images.DetectFaces(ctx, item.Ref())
		if err != nil {
			return fmt.Errorf("face detection: %w", err)
		}
		e.logger.Info("person detected, faces analyzed", "location", item.Location(), "faces", len(faces))
		tagRecords = append(tagRecords, e.norm.Faces(item, faces)...)
	}

	lines, err := e.deps.Images.DetectTextLines(ctx, item.Ref())
	if err != nil {
		return fmt.Errorf("text detection: %w", err)
	}
	tagRecords = append(tagRecords, e.norm.TextLines(item, lines)...)

	return e.deps.Sink.PutBatch(ctx, tagRecords)
}
