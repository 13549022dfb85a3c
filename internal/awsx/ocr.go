package awsx

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	texttypes "github.com/aws/aws-sdk-go-v2/service/textract/types"

	"github.com/velora-health/docenrich/internal/model"
)

const ocrPageSize = 1000

// DocumentOCR adapts the async document-text-detection service.
type DocumentOCR struct {
	client *textract.Client
}

func NewDocumentOCR(client *textract.Client) *DocumentOCR {
	return &DocumentOCR{client: client}
}

// StartTextDetection submits one async OCR job and returns its id.
func (o *DocumentOCR) StartTextDetection(ctx context.Context, ref model.ObjectRef) (string, error) {
	out, err := o.client.StartDocumentTextDetection(ctx, &textract.StartDocumentTextDetectionInput{
		DocumentLocation: &texttypes.DocumentLocation{
			S3Object: &texttypes.S3Object{
				Bucket: aws.String(ref.Bucket),
				Name:   aws.String(ref.Key),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("start text detection %s: %w", ref.Location(), err)
	}
	return aws.ToString(out.JobId), nil
}

// CheckTextDetection observes the job once. On success it pages through the
// full result set and returns every LINE block's text in response order.
func (o *DocumentOCR) CheckTextDetection(ctx context.Context, jobID string) (model.OCRCheck, error) {
	out, err := o.client.GetDocumentTextDetection(ctx, &textract.GetDocumentTextDetectionInput{
		JobId:      aws.String(jobID),
		MaxResults: aws.Int32(ocrPageSize),
	})
	if err != nil {
		return model.OCRCheck{}, fmt.Errorf("get text detection %s: %w", jobID, err)
	}

	switch out.JobStatus {
	case texttypes.JobStatusInProgress:
		return model.OCRCheck{Phase: model.JobPending}, nil
	case texttypes.JobStatusSucceeded:
		lines := collectLines(out.Blocks)
		next := out.NextToken
		for next != nil {
			page, err := o.client.GetDocumentTextDetection(ctx, &textract.GetDocumentTextDetectionInput{
				JobId:      aws.String(jobID),
				MaxResults: aws.Int32(ocrPageSize),
				NextToken:  next,
			})
			if err != nil {
				return model.OCRCheck{}, fmt.Errorf("page text detection %s: %w", jobID, err)
			}
			lines = append(lines, collectLines(page.Blocks)...)
			next = page.NextToken
		}
		return model.OCRCheck{Phase: model.JobSucceeded, Lines: lines}, nil
	default:
		return model.OCRCheck{Phase: model.JobFailed}, nil
	}
}

func collectLines(blocks []texttypes.Block) []string {
	var lines []string
	for _, b := range blocks {
		if b.BlockType == texttypes.BlockTypeLine {
			lines = append(lines, aws.ToString(b.Text))
		}
	}
	return lines
}
