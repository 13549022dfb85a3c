// Command queue-worker drains the work queue on a schedule, running each
// staged document through its extraction strategy and persisting the
// resulting tag records.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"

	"github.com/velora-health/docenrich/internal/awsx"
	"github.com/velora-health/docenrich/internal/common"
	"github.com/velora-health/docenrich/internal/enrich"
	"github.com/velora-health/docenrich/internal/poll"
	"github.com/velora-health/docenrich/internal/records"
)

type handler struct {
	driver *enrich.Driver
	queue  *awsx.Queue
	cfg    *common.Config
	logger *slog.Logger
}

func (h *handler) handle(ctx context.Context) error {
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		h.logger.Info("queue worker invoked", "request_id", lc.AwsRequestID)
	}
	return h.driver.Drain(ctx, h.queue, h.cfg.Queue)
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

	parser, err := enrich.NewMessageParser()
	if err != nil {
		logger.Error("failed to compile message schema", "error", err)
		os.Exit(1)
	}

	objects := awsx.NewObjectStore(clients.S3)
	enricher := enrich.NewEnricher(enrich.Deps{
		Objects:    objects,
		Images:     awsx.NewVision(clients.Rekognition),
		OCR:        awsx.NewDocumentOCR(clients.Textract),
		Transcribe: awsx.NewTranscriber(clients.Transcribe),
		Entities:   awsx.NewMedicalDetector(clients.Medical),
		Sink:       records.NewSink(clients.DynamoDB, cfg.Store.Table, logger),
	}, poll.Config{Interval: cfg.Poll.Interval, MaxWait: cfg.Poll.MaxWait}, logger)

	h := &handler{
		driver: enrich.NewDriver(enricher, parser, cfg.Queue.Ack, logger),
		queue:  queue,
		cfg:    cfg,
		logger: logger,
	}
	lambda.Start(h.handle)
}
