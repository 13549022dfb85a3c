package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/velora-health/docenrich/constants"
	"github.com/velora-health/docenrich/internal/model"
	"github.com/velora-health/docenrich/internal/poll"
)

const transcriptionLanguage = "en-US"

// processAudio starts an async transcription job named with a fresh unique
// token, waits for it, reads the transcript from the output object, deletes
// that object, and hands non-empty transcript text to entity processing.
func (e *Enricher) processAudio(ctx context.Context, item model.WorkItem) error {
	jobName := e.newJobName()
	req := model.TranscriptionRequest{
		JobName:      jobName,
		LanguageCode: transcriptionLanguage,
		MediaFormat:  constants.KeyExt(item.Key),
		Media:        item.Ref(),
		OutputBucket: item.Bucket,
	}
	if err := e.deps.Transcribe.Start(ctx, req); err != nil {
		return fmt.Errorf("start transcription job: %w", err)
	}
	e.logger.Info("transcription job started", "location", item.Location(), "job_name", jobName)

	check, state, err := poll.Wait(ctx, e.poll, e.logger, func(ctx context.Context) (model.TranscriptionCheck, poll.Verdict, error) {
		c, err := e.deps.Transcribe.Check(ctx, jobName)
		if err != nil {
			return model.TranscriptionCheck{}, poll.VerdictFailed, err
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
		return fmt.Errorf("transcription job %s ended in state %s: %w", jobName, state, err)
	}

	raw, err := e.deps.Objects.GetText(ctx, item.Bucket, check.OutputKey)
	if err != nil {
		return fmt.Errorf("fetch transcript: %w", err)
	}
	// Transcription output is transient; remove it regardless of what the
	// transcript contains.
	if err := e.deps.Objects.Delete(ctx, item.Bucket, check.OutputKey); err != nil {
		e.logger.Warn("failed to delete transcript object", "key", check.OutputKey, "error", err)
	}

	transcript, err := parseTranscript([]byte(raw))
	if err != nil {
		return fmt.Errorf("parse transcript: %w", err)
	}
	if strings.TrimSpace(transcript) == "" {
		e.logger.Warn("transcript is empty, skipping file", "location", item.Location())
		return nil
	}
	e.logger.Info("text extracted from audio", "location", item.Location())
	return e.processText(ctx, item, transcript, constants.AssetTypeAudio)
}

// parseTranscript pulls the transcript strings out of the transcription
// service's output JSON and joins them with spaces.
func parseTranscript(data []byte) (string, error) {
	var output struct {
		Results struct {
			Transcripts []struct {
				Transcript string `json:"transcript"`
			} `json:"transcripts"`
		} `json:"results"`
	}
	if err := json.Unmarshal(data, &output); err != nil {
		return "", err
	}
	parts := make([]string, 0, len(output.Results.Transcripts))
	for _, t := range output.Results.Transcripts {
		if t.Transcript != "" {
			parts = append(parts, t.Transcript)
		}
	}
	return strings.Join(parts, " "), nil
}
