package enrich

import (
	"context"
	"fmt"
	"strings"

	"github.com/velora-health/docenrich/constants"
	"github.com/velora-health/docenrich/internal/model"
	"github.com/velora-health/docenrich/internal/poll"
)

// processPDF starts an async text-detection job, waits for it, and hands the
// newline-joined line text to entity processing. A failed or timed-out job
// produces zero records.
func (e *Enricher) processPDF(ctx context.Context, item model.WorkItem) error {
	jobID, err := e.deps.OCR.StartTextDetection(ctx, item.Ref())
	if err != nil {
		return fmt.Errorf("start ocr job: %w", err)
	}
	e.logger.Info("ocr job started", "location", item.Location(), "job_id", jobID)

	check, state, err := poll.Wait(ctx, e.poll, e.logger, func(ctx context.Context) (model.OCRCheck, poll.Verdict, error) {
		c, err := e.deps.OCR.CheckTextDetection(ctx, jobID)
		if err != nil {
			return model.OCRCheck{}, poll.VerdictFailed, err
		}
		switch c.Phase {
		case model.JobSucceeded:
			return c, poll.VerdictSucceeded, nil
		case model.JobFailed:
			return c, poll.VerdictFailed, nil
		default:
			return c, poll.VerdictPending, nil
		}
	})
	if err != nil {
		return fmt.Errorf("ocr job %s ended in state %s: %w", jobID, state, err)
	}

	text := strings.Join(check.Lines, "\n")
	e.logger.Info("text extracted from document", "location", item.Location(), "lines", len(check.Lines))
	return e.processText(ctx, item, text, constants.AssetTypePDF)
}
