// Command vault-poller periodically pulls newly created CMS documents into
// the staging bucket and enqueues them for enrichment.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/velora-health/docenrich/internal/awsx"
	"github.com/velora-health/docenrich/internal/common"
	"github.com/velora-health/docenrich/internal/records"
	"github.com/velora-health/docenrich/internal/vault"
)

func main() {
	cfg := common.LoadConfig()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel(),
	}))
	slog.SetDefault(logger)

	ctx := context.Background()
	clients, err := awsx.NewClients(ctx)
	if err != nil {
		logger.Error("failed to initialize aws clients", "error", err)
		os.Exit(1)
	}

	queue, err := awsx.NewQueue(ctx, clients.SQS, cfg.Queue.Name)
	if err != nil {
		logger.Error("failed to resolve work queue", "queue", cfg.Queue.Name, "error", err)
		os.Exit(1)
	}

	syncer := vault.NewSyncer(
		vault.NewClient(cfg.Vault.DomainName),
		cfg.Vault.Username,
		cfg.Vault.Password,
		cfg.Store.Bucket,
		records.NewCheckpoint(clients.DynamoDB, cfg.Store.Table),
		awsx.NewObjectStore(clients.S3),
		queue,
		logger,
	)
	lambda.Start(func(ctx context.Context) error {
		return syncer.Run(ctx)
	})
}
