package vault

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/velora-health/docenrich/internal/model"
)

// stagingPrefix is where downloaded documents land in the staging bucket.
const stagingPrefix = "input/"

// transferableFormats are the document formats worth enriching; everything
// else stays in the CMS untouched.
var transferableFormats = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"application/pdf": {},
	"audio/mp3":       {},
}

// CheckpointStore persists the incremental-query watermark across
// invocations.
type CheckpointStore interface {
	LastRun(ctx context.Context) (time.Time, error)
	SetLastRun(ctx context.Context, t time.Time) error
}

// ObjectUploader stages document content into the bucket.
type ObjectUploader interface {
	Put(ctx context.Context, bucket, key string, body []byte, contentType string) error
}

// MessageSender enqueues one work-item message per staged document.
type MessageSender interface {
	Send(ctx context.Context, msg model.QueueMessage) error
}

// Syncer moves new CMS documents into the staging bucket and enqueues them
// for enrichment. One Run is one poller invocation.
type Syncer struct {
	client     *Client
	username   string
	password   string
	bucket     string
	checkpoint CheckpointStore
	objects    ObjectUploader
	queue      MessageSender
	logger     *slog.Logger

	now func() time.Time
}

func NewSyncer(client *Client, username, password, bucket string, checkpoint CheckpointStore, objects ObjectUploader, queue MessageSender, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		client:     client,
		username:   username,
		password:   password,
		bucket:     bucket,
		checkpoint: checkpoint,
		objects:    objects,
		queue:      queue,
		logger:     logger,
		now:        time.Now,
	}
}

// Run authenticates, queries for documents created since the stored
// watermark, stages each transferable document, and enqueues a work item for
// it. Authentication failure aborts the invocation with no side effects.
// Per-document failures are logged and skipped.
func (s *Syncer) Run(ctx context.Context) error {
	session, err := s.client.Authenticate(ctx, s.username, s.password)
	if err != nil {
		return fmt.Errorf("vault authentication: %w", err)
	}
	s.logger.Info("vault authentication successful")

	since, err := s.checkpoint.LastRun(ctx)
	if err != nil {
		return err
	}
	s.logger.Info("querying vault for changes", "since", since)

	runStart := s.now().UTC()
	rows, err := session.Query(ctx, incrementalQuery(since))
	if err != nil {
		return err
	}
	// Advance the watermark as soon as the query succeeds so the next run
	// only sees the delta, mirroring the per-run cursor semantics.
	if err := s.checkpoint.SetLastRun(ctx, runStart); err != nil {
		return err
	}

	staged := 0
	for _, row := range rows {
		if _, ok := transferableFormats[row.Format]; !ok {
			continue
		}
		if err := s.stageDocument(ctx, session, row); err != nil {
			s.logger.Error("failed to stage document",
				"document_id", string(row.ID), "filename", row.Filename, "error", err)
			continue
		}
		staged++
	}
	s.logger.Info("vault sync complete", "documents", len(rows), "staged", staged)
	return nil
}

func (s *Syncer) stageDocument(ctx context.Context, session *Session, row DocumentRow) error {
	s.logger.Info("downloading document", "document_id", string(row.ID), "filename", row.Filename)

	content, contentType, err := session.DownloadDocument(ctx, string(row.ID), row.MajorVersion, row.MinorVersion)
	if err != nil {
		return err
	}
	// File payloads come back as an octet stream; anything else is an error
	// envelope for this document version.
	if !strings.HasPrefix(contentType, "application/octet-stream") {
		return fmt.Errorf("unexpected content type %q", contentType)
	}

	// Store under the document's own media type, not the octet-stream the
	// download endpoint serves.
	key := stagingPrefix + row.Filename
	if err := s.objects.Put(ctx, s.bucket, key, content, row.Format); err != nil {
		return err
	}
	return s.queue.Send(ctx, model.NewQueueMessage(string(row.ID), fileTypeForFormat(row.Format), s.bucket, key))
}

// incrementalQuery selects document versions created at or after the
// watermark.
func incrementalQuery(since time.Time) string {
	const fields = "SELECT id, format__v, filename__v, major_version_number__v, minor_version_number__v, " +
		"version_modified_date__v, version_creation_date__v from documents"
	return fmt.Sprintf("%s where version_creation_date__v >= '%s'",
		fields, since.UTC().Format("2006-01-02T15:04:05.000Z"))
}

func fileTypeForFormat(format string) string {
	switch format {
	case "image/jpeg":
		return "jpg"
	case "image/png":
		return "png"
	case "application/pdf":
		return "pdf"
	case "audio/mp3":
		return "mp3"
	default:
		return ""
	}
}
