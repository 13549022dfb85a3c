package stream

import (
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insertRecord(id string, image map[string]events.DynamoDBAttributeValue) events.DynamoDBEventRecord {
	return events.DynamoDBEventRecord{
		EventName: "INSERT",
		Change: events.DynamoDBStreamRecord{
			Keys: map[string]events.DynamoDBAttributeValue{
				"ROWID": events.NewStringAttribute(id),
			},
			NewImage: image,
		},
	}
}

func TestFromEvent(t *testing.T) {
	t.Run("insert with all attributes", func(t *testing.T) {
		event := events.DynamoDBEvent{Records: []events.DynamoDBEventRecord{
			insertRecord("rec-1", map[string]events.DynamoDBAttributeValue{
				"AssetType":  events.NewStringAttribute("Image"),
				"Operation":  events.NewStringAttribute("DETECT_FACE"),
				"Tag":        events.NewStringAttribute("Smile"),
				"Location":   events.NewStringAttribute("b/input/a.jpg"),
				"DocumentId": events.NewStringAttribute("101"),
				"Value":      events.NewStringAttribute("True"),
				"Face_Id":    events.NewNumberAttribute("2"),
				"Confidence": events.NewNumberAttribute("97.5"),
				"TimeStamp":  events.NewNumberAttribute("1700000000000"),
			}),
		}}

		recs := FromEvent(event)
		require.Len(t, recs, 1)
		r := recs[0]
		assert.Equal(t, "rec-1", r.ID)
		assert.False(t, r.Remove)
		assert.Equal(t, "Image", r.AssetType)
		assert.Equal(t, "DETECT_FACE", r.Operation)
		assert.Equal(t, "Smile", r.Tag)
		assert.Equal(t, "b/input/a.jpg", r.Location)
		assert.Equal(t, "101", r.DocumentID)
		require.NotNil(t, r.Value)
		assert.Equal(t, "True", *r.Value)
		require.NotNil(t, r.FaceID)
		assert.Equal(t, 2, *r.FaceID)
		assert.Equal(t, 97.5, r.Confidence)
		assert.Equal(t, int64(1700000000000), r.Timestamp)
	})

	t.Run("optional attributes stay nil", func(t *testing.T) {
		event := events.DynamoDBEvent{Records: []events.DynamoDBEventRecord{
			insertRecord("rec-2", map[string]events.DynamoDBAttributeValue{
				"AssetType":  events.NewStringAttribute("Text-file"),
				"Operation":  events.NewStringAttribute("DETECT_ENTITIES"),
				"Tag":        events.NewStringAttribute("aspirin"),
				"Confidence": events.NewNumberAttribute("88"),
				"TimeStamp":  events.NewNumberAttribute("1700000000000"),
			}),
		}}

		recs := FromEvent(event)
		require.Len(t, recs, 1)
		assert.Nil(t, recs[0].Value)
		assert.Nil(t, recs[0].FaceID)
	})

	t.Run("remove carries only the id", func(t *testing.T) {
		event := events.DynamoDBEvent{Records: []events.DynamoDBEventRecord{
			{
				EventName: "REMOVE",
				Change: events.DynamoDBStreamRecord{
					Keys: map[string]events.DynamoDBAttributeValue{
						"ROWID": events.NewStringAttribute("rec-3"),
					},
				},
			},
		}}

		recs := FromEvent(event)
		require.Len(t, recs, 1)
		assert.True(t, recs[0].Remove)
		assert.Equal(t, "rec-3", recs[0].ID)
		assert.Empty(t, recs[0].Tag)
	})

	t.Run("records without the key are skipped", func(t *testing.T) {
		event := events.DynamoDBEvent{Records: []events.DynamoDBEventRecord{
			{EventName: "INSERT", Change: events.DynamoDBStreamRecord{}},
		}}
		assert.Empty(t, FromEvent(event))
	})
}

func TestIndexDocument(t *testing.T) {
	value := "True"
	faceID := 1
	doc := Record{
		ID:         "rec-1",
		AssetType:  "Image",
		Operation:  "DETECT_FACE",
		Tag:        "Smile",
		Location:   "b/a.jpg",
		DocumentID: "101",
		Value:      &value,
		FaceID:     &faceID,
		Confidence: 97.5,
		Timestamp:  1700000000000,
	}.IndexDocument()

	assert.Equal(t, "rec-1", doc["ROWID"])
	assert.Equal(t, "Smile", doc["Tag"])
	assert.Equal(t, "True", doc["Value"])
	assert.Equal(t, 1, doc["Face_Id"])

	bare := Record{ID: "rec-2"}.IndexDocument()
	_, hasValue := bare["Value"]
	_, hasFace := bare["Face_Id"]
	assert.False(t, hasValue)
	assert.False(t, hasFace)
}
