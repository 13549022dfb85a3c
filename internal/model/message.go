package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
)

// FlexID is a document identifier that upstream producers send either as a
// JSON string or as a bare number (the CMS reports numeric ids, the storage
// listener synthesizes string ids).
type FlexID string

func (f *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("documentId must be a string or number: %w", err)
	}
	*f = FlexID(n.String())
	return nil
}

func (f FlexID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(f))
}

// InboundMessage is one message as received from the work queue, before the
// body is validated and parsed.
type InboundMessage struct {
	Body          string
	ReceiptHandle string
}

// QueueMessage is the wire body of one work-queue message.
type QueueMessage struct {
	DocumentID FlexID `json:"documentId"`
	FileType   string `json:"fileType"`
	BucketName string `json:"bucketName"`
	KeyName    string `json:"keyName"`
}

// WorkItem converts the wire message into the pipeline's input. Object keys
// arrive URL-encoded from storage notifications, so the key is decoded here.
func (m QueueMessage) WorkItem() WorkItem {
	return WorkItem{
		Bucket:     m.BucketName,
		Key:        DecodeKey(m.KeyName),
		DocumentID: string(m.DocumentID),
		FileType:   m.FileType,
	}
}

// NewQueueMessage builds the wire body for one document reference.
func NewQueueMessage(documentID, fileType, bucket, key string) QueueMessage {
	return QueueMessage{
		DocumentID: FlexID(documentID),
		FileType:   fileType,
		BucketName: bucket,
		KeyName:    key,
	}
}

// DecodeKey undoes the URL encoding storage events apply to object keys,
// including '+' for spaces. Keys that fail to decode are used as-is.
func DecodeKey(key string) string {
	decoded, err := url.QueryUnescape(key)
	if err != nil {
		return key
	}
	return decoded
}
