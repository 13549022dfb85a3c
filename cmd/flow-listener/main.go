// Command flow-listener reacts to completed managed-flow runs, enqueueing
// the transferred documents for enrichment.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/velora-health/docenrich/internal/awsx"
	"github.com/velora-health/docenrich/internal/common"
	"github.com/velora-health/docenrich/internal/vault"
)

type handler struct {
	listener *vault.FlowListener
}

func (h *handler) handle(ctx context.Context, event events.CloudWatchEvent) error {
	var detail vault.FlowDetail
	if err := json.Unmarshal(event.Detail, &detail); err != nil {
		return fmt.Errorf("decode flow event detail: %w", err)
	}
	return h.listener.Handle(ctx, detail)
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

	queue, err := awsx.NewQueue(ctx, clients.SQS, cfg.Queue.Name)
	if err != nil {
		logger.Error("failed to resolve work queue", "queue", cfg.Queue.Name, "error", err)
		os.Exit(1)
	}

	h := &handler{
		listener: vault.NewFlowListener(awsx.NewObjectStore(clients.S3), queue, logger),
	}
	lambda.Start(h.handle)
}
