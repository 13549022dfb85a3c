// Command index-sync mirrors record-table changes into the search index.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/velora-health/docenrich/internal/awsx"
	"github.com/velora-health/docenrich/internal/common"
	"github.com/velora-health/docenrich/internal/search"
	"github.com/velora-health/docenrich/internal/stream"
)

type handler struct {
	indexer *search.Indexer
	logger  *slog.Logger
}

func (h *handler) handle(ctx context.Context, event events.DynamoDBEvent) error {
	if err := h.indexer.EnsureIndex(ctx); err != nil {
		return err
	}

	count := 0
	for _, rec := range stream.FromEvent(event) {
		var err error
		if rec.Remove {
			err = h.indexer.DeleteRecord(ctx, rec.ID)
		} else {
			err = h.indexer.IndexRecord(ctx, rec)
		}
		if err != nil {
			h.logger.Error("failed to sync record", "record_id", rec.ID, "error", err)
			continue
		}
		count++
	}
	h.logger.Info("index sync complete", "records", count)
	return nil
}

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

	indexer, err := search.NewIndexer(clients.Config, cfg.Search.Endpoint, cfg.Search.Index)
	if err != nil {
		logger.Error("failed to initialize search indexer", "error", err)
		os.Exit(1)
	}

	h := &handler{indexer: indexer, logger: logger}
	lambda.Start(h.handle)
}
