package vault

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/velora-health/docenrich/internal/stream"
)

// Populator writes enrichment tags back onto CMS documents as a custom
// field. The target field is located by its label, so deployments can name
// the underlying field whatever they like.
type Populator struct {
	client        *Client
	username      string
	password      string
	fieldLabel    string
	minConfidence float64
	logger        *slog.Logger
}

func NewPopulator(client *Client, username, password, fieldLabel string, minConfidence float64, logger *slog.Logger) *Populator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Populator{
		client:        client,
		username:      username,
		password:      password,
		fieldLabel:    fieldLabel,
		minConfidence: minConfidence,
		logger:        logger,
	}
}

// Apply pushes the tags carried by a batch of change records onto their
// documents. Records from deletions and records below the confidence floor
// are ignored. If the configured field label does not exist in the CMS the
// batch is skipped rather than failed, since retrying cannot help.
func (p *Populator) Apply(ctx context.Context, records []stream.Record) error {
	tags := p.collectTags(records)
	if len(tags) == 0 {
		return nil
	}

	session, err := p.client.Authenticate(ctx, p.username, p.password)
	if err != nil {
		return fmt.Errorf("vault authentication: %w", err)
	}

	fieldName, err := p.resolveField(ctx, session)
	if err != nil {
		return err
	}
	if fieldName == "" {
		p.logger.Warn("custom field label not found, skipping batch", "label", p.fieldLabel)
		return nil
	}

	for docID, docTags := range tags {
		if err := p.updateDocument(ctx, session, fieldName, docID, docTags); err != nil {
			p.logger.Error("failed to update document field",
				"document_id", docID, "field", fieldName, "error", err)
			continue
		}
	}
	return nil
}

// collectTags groups tag values by document, dropping deletions and
// low-confidence detections.
func (p *Populator) collectTags(records []stream.Record) map[string]map[string]struct{} {
	tags := make(map[string]map[string]struct{})
	for _, rec := range records {
		if rec.Remove || rec.DocumentID == "" || rec.Tag == "" {
			continue
		}
		if rec.Confidence <= p.minConfidence {
			continue
		}
		value := rec.Tag
		if rec.Value != nil && *rec.Value != "" {
			value = rec.Tag + ":" + *rec.Value
		}
		if tags[rec.DocumentID] == nil {
			tags[rec.DocumentID] = make(map[string]struct{})
		}
		tags[rec.DocumentID][value] = struct{}{}
	}
	return tags
}

// resolveField maps the configured field label to its API name. Returns an
// empty name when no property carries the label.
func (p *Populator) resolveField(ctx context.Context, session *Session) (string, error) {
	props, err := session.DocumentProperties(ctx)
	if err != nil {
		return "", err
	}
	for _, prop := range props {
		if prop.Label == p.fieldLabel {
			return prop.Name, nil
		}
	}
	return "", nil
}

func (p *Populator) updateDocument(ctx context.Context, session *Session, fieldName, docID string, newTags map[string]struct{}) error {
	doc, err := session.Document(ctx, docID)
	if err != nil {
		return err
	}

	merged := make(map[string]struct{}, len(newTags))
	for tag := range newTags {
		merged[tag] = struct{}{}
	}
	if existing, ok := doc[fieldName].(string); ok && existing != "" {
		for _, tag := range strings.Split(existing, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				merged[tag] = struct{}{}
			}
		}
	}

	values := make([]string, 0, len(merged))
	for tag := range merged {
		values = append(values, tag)
	}
	sort.Strings(values)

	p.logger.Info("updating document tags", "document_id", docID, "tags", len(values))
	return session.UpdateDocument(ctx, docID, fieldName, strings.Join(values, ","))
}
