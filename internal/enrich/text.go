package enrich

import (
	"context"
	"fmt"

	"github.com/velora-health/docenrich/constants"
	"github.com/velora-health/docenrich/internal/model"
)

// entityTextLimit is the entity detection service's input size limit in
// characters. Longer text is truncated, not chunked; the tail is dropped.
const entityTextLimit = 20000

// processTextFile fetches a stored text object and runs entity processing on
// its contents.
func (e *Enricher) processTextFile(ctx context.Context, item model.WorkItem) error {
	text, err := e.deps.Objects.GetText(ctx, item.Bucket, item.Key)
	if err != nil {
		return fmt.Errorf("fetch text object: %w", err)
	}
	return e.processText(ctx, item, text, constants.AssetTypeText)
}

// processText runs medical entity detection over the text and persists one
// batch of DETECT_ENTITIES records. Empty input produces zero records and no
// error.
func (e *Enricher) processText(ctx context.Context, item model.WorkItem, text string, asset constants.AssetType) error {
	if text == "" {
		e.logger.Info("no text to process", "location", item.Location())
		return nil
	}
	if asset == "" {
		asset = constants.AssetTypeText
	}
	text = truncateRunes(text, entityTextLimit)

	entities, err := e.deps.Entities.DetectEntities(ctx, text)
	if err != nil {
		return fmt.Errorf("entity detection: %w", err)
	}
	return e.deps.Sink.PutBatch(ctx, e.norm.Entities(item, asset, entities))
}

// truncateRunes trims to at most limit characters (not bytes).
func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
