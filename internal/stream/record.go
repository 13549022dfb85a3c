// Package stream decodes DynamoDB stream events into tag records usable by
// the downstream index and field-populator handlers.
package stream

import (
	"github.com/aws/aws-lambda-go/events"
)

// Record is the flattened view of a single stream change to a tag record.
// Remove marks deletions, where only ID is populated.
type Record struct {
	ID         string
	Remove     bool
	AssetType  string
	Operation  string
	Tag        string
	Location   string
	DocumentID string
	Value      *string
	FaceID     *int
	Confidence float64
	Timestamp  int64
}

// FromEvent converts a stream event into records, skipping entries without a
// ROWID key (such as malformed or foreign items).
func FromEvent(event events.DynamoDBEvent) []Record {
	records := make([]Record, 0, len(event.Records))
	for _, rec := range event.Records {
		r, ok := fromEventRecord(rec)
		if !ok {
			continue
		}
		records = append(records, r)
	}
	return records
}

func fromEventRecord(rec events.DynamoDBEventRecord) (Record, bool) {
	key, ok := rec.Change.Keys["ROWID"]
	if !ok {
		return Record{}, false
	}
	r := Record{ID: key.String()}
	if rec.EventName == "REMOVE" {
		r.Remove = true
		return r, true
	}

	img := rec.Change.NewImage
	r.AssetType = stringAttr(img, "AssetType")
	r.Operation = stringAttr(img, "Operation")
	r.Tag = stringAttr(img, "Tag")
	r.Location = stringAttr(img, "Location")
	r.DocumentID = stringAttr(img, "DocumentId")

	if v, ok := img["Value"]; ok && v.DataType() == events.DataTypeString {
		s := v.String()
		r.Value = &s
	}
	if v, ok := img["Face_Id"]; ok && v.DataType() == events.DataTypeNumber {
		if n, err := v.Integer(); err == nil {
			id := int(n)
			r.FaceID = &id
		}
	}
	if v, ok := img["Confidence"]; ok && v.DataType() == events.DataTypeNumber {
		if f, err := v.Float(); err == nil {
			r.Confidence = f
		}
	}
	if v, ok := img["TimeStamp"]; ok && v.DataType() == events.DataTypeNumber {
		if n, err := v.Integer(); err == nil {
			r.Timestamp = n
		}
	}
	return r, true
}

func stringAttr(img map[string]events.DynamoDBAttributeValue, name string) string {
	v, ok := img[name]
	if !ok || v.DataType() != events.DataTypeString {
		return ""
	}
	return v.String()
}

// IndexDocument renders the record as the search-index document body. Field
// names match the table's attribute names so the index mirrors the table.
func (r Record) IndexDocument() map[string]any {
	doc := map[string]any{
		"ROWID":      r.ID,
		"AssetType":  r.AssetType,
		"Operation":  r.Operation,
		"Tag":        r.Tag,
		"Location":   r.Location,
		"DocumentId": r.DocumentID,
		"Confidence": r.Confidence,
		"TimeStamp":  r.Timestamp,
	}
	if r.Value != nil {
		doc["Value"] = *r.Value
	}
	if r.FaceID != nil {
		doc["Face_Id"] = *r.FaceID
	}
	return doc
}
