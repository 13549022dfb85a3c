// Command bucket-listener reacts to direct object uploads, running each new
// object through its extraction strategy immediately. Objects arriving this
// way have no CMS document id, so records carry the object location instead.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/velora-health/docenrich/internal/awsx"
	"github.com/velora-health/docenrich/internal/common"
	"github.com/velora-health/docenrich/internal/enrich"
	"github.com/velora-health/docenrich/internal/model"
	"github.com/velora-health/docenrich/internal/poll"
	"github.com/velora-health/docenrich/internal/records"
)

type handler struct {
	driver *enrich.Driver
	logger *slog.Logger
}

func (h *handler) handle(ctx context.Context, event events.S3Event) error {
	for _, rec := range event.Records {
		item := itemFromObject(rec.S3.Bucket.Name, rec.S3.Object.Key)
		h.logger.Info("processing object", "location", item.Location())

		// Per-object isolation: one bad object must not starve the rest of
		// the event.
		_ = h.driver.ProcessItem(ctx, item)
	}
	return nil
}

// itemFromObject builds a work item from one storage notification. Keys arrive
// URL-encoded, and objects uploaded directly have no CMS document id, so the
// object location stands in for it.
func itemFromObject(bucket, rawKey string) model.WorkItem {
	item := model.WorkItem{
		Bucket: bucket,
		Key:    model.DecodeKey(rawKey),
	}
	item.DocumentID = item.Location()
	return item
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

	parser, err := enrich.NewMessageParser()
	if err != nil {
		logger.Error("failed to compile message schema", "error", err)
		os.Exit(1)
	}

	enricher := enrich.NewEnricher(enrich.Deps{
		Objects:    awsx.NewObjectStore(clients.S3),
		Images:     awsx.NewVision(clients.Rekognition),
		OCR:        awsx.NewDocumentOCR(clients.Textract),
		Transcribe: awsx.NewTranscriber(clients.Transcribe),
		Entities:   awsx.NewMedicalDetector(clients.Medical),
		Sink:       records.NewSink(clients.DynamoDB, cfg.Store.Table, logger),
	}, poll.Config{Interval: cfg.Poll.Interval, MaxWait: cfg.Poll.MaxWait}, logger)

	h := &handler{
		driver: enrich.NewDriver(enricher, parser, cfg.Queue.Ack, logger),
		logger: logger,
	}
	lambda.Start(h.handle)
}
