package awsx

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/transcribe"
	transtypes "github.com/aws/aws-sdk-go-v2/service/transcribe/types"

	"github.com/velora-health/docenrich/internal/model"
)

// Transcriber adapts the async transcription service.
type Transcriber struct {
	client *transcribe.Client
}

func NewTranscriber(client *transcribe.Client) *Transcriber {
	return &Transcriber{client: client}
}

// Start submits one async transcription job. The job name must be unique per
// invocation; callers generate it.
func (t *Transcriber) Start(ctx context.Context, req model.TranscriptionRequest) error {
	_, err := t.client.StartTranscriptionJob(ctx, &transcribe.StartTranscriptionJobInput{
		TranscriptionJobName: aws.String(req.JobName),
		LanguageCode:         transtypes.LanguageCode(req.LanguageCode),
		MediaFormat:          transtypes.MediaFormat(req.MediaFormat),
		Media: &transtypes.Media{
			MediaFileUri: aws.String(fmt.Sprintf("s3://%s/%s", req.Media.Bucket, req.Media.Key)),
		},
		OutputBucketName: aws.String(req.OutputBucket),
	})
	if err != nil {
		return fmt.Errorf("start transcription %s: %w", req.JobName, err)
	}
	return nil
}

// Check observes the job once. QUEUED and IN_PROGRESS are both pending; on
// completion the transcript object key is derived from the output URI.
func (t *Transcriber) Check(ctx context.Context, jobName string) (model.TranscriptionCheck, error) {
	out, err := t.client.GetTranscriptionJob(ctx, &transcribe.GetTranscriptionJobInput{
		TranscriptionJobName: aws.String(jobName),
	})
	if err != nil {
		return model.TranscriptionCheck{}, fmt.Errorf("get transcription %s: %w", jobName, err)
	}
	job := out.TranscriptionJob
	if job == nil {
		return model.TranscriptionCheck{Phase: model.JobFailed}, nil
	}

	switch job.TranscriptionJobStatus {
	case transtypes.TranscriptionJobStatusInProgress, transtypes.TranscriptionJobStatusQueued:
		return model.TranscriptionCheck{Phase: model.JobPending}, nil
	case transtypes.TranscriptionJobStatusCompleted:
		check := model.TranscriptionCheck{Phase: model.JobSucceeded}
		if job.Transcript != nil {
			key, err := transcriptKey(aws.ToString(job.Transcript.TranscriptFileUri))
			if err != nil {
				return model.TranscriptionCheck{}, err
			}
			check.OutputKey = key
		}
		return check, nil
	default:
		return model.TranscriptionCheck{Phase: model.JobFailed}, nil
	}
}

// transcriptKey extracts the object key from a transcript file URI of the
// form https://<host>/<bucket>/<key>.
func transcriptKey(uri string) (string, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("parse transcript uri %q: %w", uri, err)
	}
	path := strings.TrimPrefix(parsed.Path, "/")
	_, key, found := strings.Cut(path, "/")
	if !found || key == "" {
		return "", fmt.Errorf("transcript uri %q has no object key", uri)
	}
	return key, nil
}
