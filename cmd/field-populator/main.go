// Command field-populator pushes high-confidence tags from record-table
// changes back onto the source CMS documents as a custom field.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/velora-health/docenrich/internal/common"
	"github.com/velora-health/docenrich/internal/stream"
	"github.com/velora-health/docenrich/internal/vault"
)

func main() {
	cfg := common.LoadConfig()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel(),
	}))
	slog.SetDefault(logger)

	populator := vault.NewPopulator(
		vault.NewClient(cfg.Vault.DomainName),
		cfg.Vault.Username,
		cfg.Vault.Password,
		cfg.Vault.CustomFieldName,
		cfg.Vault.MinConfidence,
		logger,
	)
	lambda.Start(func(ctx context.Context, event events.DynamoDBEvent) error {
		return populator.Apply(ctx, stream.FromEvent(event))
	})
}
