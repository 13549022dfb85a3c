// Package awsx wraps the AWS service clients behind narrow adapters that
// return domain types. SDK response shapes never leave this package; each
// consumer declares the interface it needs and awsx satisfies it.
package awsx

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/comprehendmedical"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/transcribe"
)

// Clients bundles the service clients for one invocation. It is constructed
// once at handler init and passed down explicitly; there is no package-level
// client state.
type Clients struct {
	Config      aws.Config
	S3          *s3.Client
	SQS         *sqs.Client
	DynamoDB    *dynamodb.Client
	Rekognition *rekognition.Client
	Textract    *textract.Client
	Transcribe  *transcribe.Client
	Medical     *comprehendmedical.Client
}

// NewClients builds all service clients from the default credential chain.
func NewClients(ctx context.Context) (*Clients, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &Clients{
		Config:      cfg,
		S3:          s3.NewFromConfig(cfg),
		SQS:         sqs.NewFromConfig(cfg),
		DynamoDB:    dynamodb.NewFromConfig(cfg),
		Rekognition: rekognition.NewFromConfig(cfg),
		Textract:    textract.NewFromConfig(cfg),
		Transcribe:  transcribe.NewFromConfig(cfg),
		Medical:     comprehendmedical.NewFromConfig(cfg),
	}, nil
}
