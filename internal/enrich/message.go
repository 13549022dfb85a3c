package enrich

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/velora-health/docenrich/internal/common"
	"github.com/velora-health/docenrich/internal/model"
)

// queueMessageSchema constrains inbound message bodies before parsing.
// documentId may be a string or a number; extra attributes are tolerated so
// producers can evolve independently.
func queueMessageSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": true,
		"properties": map[string]any{
			"documentId": map[string]any{"type": []string{"string", "number"}},
			"fileType":   map[string]any{"type": "string"},
			"bucketName": map[string]any{"type": "string", "minLength": 1},
			"keyName":    map[string]any{"type": "string", "minLength": 1},
		},
		"required": []string{"bucketName", "keyName"},
	}
}

// MessageParser validates and parses work-queue message bodies. The schema is
// compiled once at construction.
type MessageParser struct {
	schema *jsonschema.Schema
}

func NewMessageParser() (*MessageParser, error) {
	raw, err := json.Marshal(queueMessageSchema())
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("queue-message.json", bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("queue-message.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &MessageParser{schema: schema}, nil
}

// Parse validates the body against the schema and converts it to a WorkItem.
// Rejections wrap ErrInvalidInput so callers can tell a malformed message from
// a processing failure.
func (p *MessageParser) Parse(body string) (model.WorkItem, error) {
	var generic any
	if err := json.Unmarshal([]byte(body), &generic); err != nil {
		return model.WorkItem{}, fmt.Errorf("%w: message body is not JSON: %v", common.ErrInvalidInput, err)
	}
	if err := p.schema.Validate(generic); err != nil {
		return model.WorkItem{}, fmt.Errorf("%w: message body does not match schema: %v", common.ErrInvalidInput, err)
	}
	var msg model.QueueMessage
	if err := json.Unmarshal([]byte(body), &msg); err != nil {
		return model.WorkItem{}, fmt.Errorf("unmarshal message body: %w", err)
	}
	return msg.WorkItem(), nil
}
