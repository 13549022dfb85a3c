package enrich

import (
	"context"
	"errors"
	"fmt"

	"github.com/velora-health/docenrich/constants"
	"github.com/velora-health/docenrich/internal/common"
	"github.com/velora-health/docenrich/internal/model"
)

// Strategy is one per-file-type extraction algorithm.
type Strategy func(ctx context.Context, item model.WorkItem) error

// Route matches the item's key against the supported extension tables and
// returns exactly one strategy, or ErrUnsupportedFormat for extensions with no
// strategy. Unsupported keys are skipped without error further up; that is
// deliberate policy, not an oversight.
func (e *Enricher) Route(key string) (Strategy, constants.AssetType, error) {
	asset, ok := constants.AssetTypeForKey(key)
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", common.ErrUnsupportedFormat, key)
	}
	switch asset {
	case constants.AssetTypeImage:
		return e.processImage, asset, nil
	case constants.AssetTypeText:
		return e.processTextFile, asset, nil
	case constants.AssetTypePDF:
		return e.processPDF, asset, nil
	default:
		return e.processAudio, asset, nil
	}
}

// Process runs the matching strategy for one work item. Items with an
// unsupported extension produce zero records and no error.
func (e *Enricher) Process(ctx context.Context, item model.WorkItem) error {
	strategy, asset, err := e.Route(item.Key)
	if errors.Is(err, common.ErrUnsupportedFormat) {
		e.logger.Info("skipping unsupported file type", "location", item.Location())
		return nil
	}
	if err != nil {
		return err
	}
	e.logger.Info("processing document", "location", item.Location(), "asset_type", asset)
	return strategy(ctx, item)
}
