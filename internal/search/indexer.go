// Package search mirrors tag records into an OpenSearch index so they can be
// queried by tag, asset type, or document.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
	requestsigner "github.com/opensearch-project/opensearch-go/v2/signer/awsv2"

	"github.com/velora-health/docenrich/internal/stream"
)

// indexMapping mirrors the tag record's table attributes.
const indexMapping = `{
  "mappings": {
    "properties": {
      "ROWID":      {"type": "keyword"},
      "Location":   {"type": "keyword"},
      "AssetType":  {"type": "keyword"},
      "Operation":  {"type": "keyword"},
      "Tag":        {"type": "keyword"},
      "DocumentId": {"type": "keyword"},
      "Confidence": {"type": "float"},
      "Face_Id":    {"type": "integer"},
      "Value":      {"type": "keyword"},
      "TimeStamp":  {"type": "date"}
    }
  }
}`

// Indexer maintains the tag-record search index.
type Indexer struct {
	client *opensearch.Client
	index  string
}

// NewIndexer builds an Indexer against an AWS-hosted OpenSearch domain,
// signing requests with the ambient credentials.
func NewIndexer(awsCfg aws.Config, endpoint, index string) (*Indexer, error) {
	signer, err := requestsigner.NewSignerWithService(awsCfg, "es")
	if err != nil {
		return nil, fmt.Errorf("create request signer: %w", err)
	}
	client, err := opensearch.NewClient(opensearch.Config{
		Addresses: []string{endpoint},
		Signer:    signer,
	})
	if err != nil {
		return nil, fmt.Errorf("create opensearch client: %w", err)
	}
	return &Indexer{client: client, index: index}, nil
}

// EnsureIndex creates the index with the tag-record mapping if it does not
// already exist.
func (ix *Indexer) EnsureIndex(ctx context.Context) error {
	exists := opensearchapi.IndicesExistsRequest{Index: []string{ix.index}}
	res, err := exists.Do(ctx, ix.client)
	if err != nil {
		return fmt.Errorf("check index %s: %w", ix.index, err)
	}
	defer res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	create := opensearchapi.IndicesCreateRequest{
		Index: ix.index,
		Body:  strings.NewReader(indexMapping),
	}
	cres, err := create.Do(ctx, ix.client)
	if err != nil {
		return fmt.Errorf("create index %s: %w", ix.index, err)
	}
	defer cres.Body.Close()
	if cres.IsError() {
		return fmt.Errorf("create index %s: %s", ix.index, cres.String())
	}
	return nil
}

// IndexRecord upserts a record's search document keyed by its record id.
func (ix *Indexer) IndexRecord(ctx context.Context, rec stream.Record) error {
	body, err := json.Marshal(rec.IndexDocument())
	if err != nil {
		return fmt.Errorf("marshal index document: %w", err)
	}
	req := opensearchapi.IndexRequest{
		Index:      ix.index,
		DocumentID: rec.ID,
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, ix.client)
	if err != nil {
		return fmt.Errorf("index record %s: %w", rec.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index record %s: %s", rec.ID, res.String())
	}
	return nil
}

// DeleteRecord removes a record's search document. A missing document is not
// an error, since deletes may be replayed.
func (ix *Indexer) DeleteRecord(ctx context.Context, id string) error {
	req := opensearchapi.DeleteRequest{
		Index:      ix.index,
		DocumentID: id,
	}
	res, err := req.Do(ctx, ix.client)
	if err != nil {
		return fmt.Errorf("delete record %s: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete record %s: %s", id, res.String())
	}
	return nil
}
