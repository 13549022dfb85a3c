package enrich

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velora-health/docenrich/constants"
	"github.com/velora-health/docenrich/internal/model"
)

func testNormalizer() *Normalizer {
	seq := 0
	return &Normalizer{
		NewID: func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		},
		Now: func() time.Time { return time.UnixMilli(1700000000000) },
	}
}

func testItem() model.WorkItem {
	return model.WorkItem{Bucket: "assets", Key: "input/scan.jpg", DocumentID: "55"}
}

func TestNormalizeLabels(t *testing.T) {
	n := testNormalizer()
	recs := n.Labels(testItem(), []model.Label{
		{Name: "Hospital", Confidence: 98.5},
		{Name: "Person", Confidence: 150}, // out of range, must clamp
	})
	require.Len(t, recs, 2)

	assert.Equal(t, "id-1", recs[0].RecordID)
	assert.Equal(t, "assets/input/scan.jpg", recs[0].Location)
	assert.Equal(t, constants.AssetTypeImage, recs[0].AssetType)
	assert.Equal(t, constants.OpDetectLabel, recs[0].Operation)
	assert.Equal(t, "Hospital", recs[0].Tag)
	assert.Equal(t, 98.5, recs[0].Confidence)
	assert.Equal(t, int64(1700000000000), recs[0].Timestamp)
	assert.Equal(t, "55", recs[0].DocumentID)

	assert.Equal(t, "id-2", recs[1].RecordID)
	assert.Equal(t, 100.0, recs[1].Confidence)
}

func TestHasPerson(t *testing.T) {
	tests := []struct {
		name   string
		labels []model.Label
		want   bool
	}{
		{name: "person above threshold", labels: []model.Label{{Name: "Person", Confidence: 80.1}}, want: true},
		{name: "human above threshold", labels: []model.Label{{Name: "Human", Confidence: 95}}, want: true},
		{name: "person at threshold", labels: []model.Label{{Name: "Person", Confidence: 80}}, want: false},
		{name: "person below threshold", labels: []model.Label{{Name: "Person", Confidence: 60}}, want: false},
		{name: "other high-confidence label", labels: []model.Label{{Name: "Dog", Confidence: 99}}, want: false},
		{name: "no labels", labels: nil, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasPerson(tt.labels))
		})
	}
}

func TestNormalizeFaces(t *testing.T) {
	n := testNormalizer()
	faces := []model.Face{
		{
			Confidence:  99.0,
			HasAgeRange: true,
			AgeLow:      25,
			AgeHigh:     35,
			Emotions:    []model.Emotion{{Type: "CALM", Confidence: 88}},
			Attributes:  []model.FaceAttribute{{Name: "Smile", Value: "True", Confidence: 72}},
		},
		{
			Confidence: 90.0,
			Emotions:   []model.Emotion{{Type: "HAPPY", Confidence: 60}},
		},
	}
	recs := n.Faces(testItem(), faces)
	require.Len(t, recs, 5)

	// First face: emotion, then both age bounds, then the attribute.
	assert.Equal(t, "CALM", recs[0].Tag)
	require.NotNil(t, recs[0].FaceID)
	assert.Equal(t, 1, *recs[0].FaceID)
	assert.Nil(t, recs[0].Value)

	assert.Equal(t, "AgeRange_Low", recs[1].Tag)
	require.NotNil(t, recs[1].Value)
	assert.Equal(t, "25", *recs[1].Value)
	assert.Equal(t, 99.0, recs[1].Confidence, "age bounds carry the face's own confidence")

	assert.Equal(t, "AgeRange_High", recs[2].Tag)
	require.NotNil(t, recs[2].Value)
	assert.Equal(t, "35", *recs[2].Value)
	assert.Equal(t, 99.0, recs[2].Confidence)

	assert.Equal(t, "Smile", recs[3].Tag)
	require.NotNil(t, recs[3].Value)
	assert.Equal(t, "True", *recs[3].Value)
	assert.Equal(t, 72.0, recs[3].Confidence, "attributes carry their own confidence")

	// Second face is numbered 2 and has no age range records.
	assert.Equal(t, "HAPPY", recs[4].Tag)
	require.NotNil(t, recs[4].FaceID)
	assert.Equal(t, 2, *recs[4].FaceID)
}

func TestNormalizeTextLines(t *testing.T) {
	n := testNormalizer()
	recs := n.TextLines(testItem(), []model.TextLine{{Text: "Patient Intake", Confidence: 93.4}})
	require.Len(t, recs, 1)
	assert.Equal(t, constants.OpDetectText, recs[0].Operation)
	assert.Equal(t, "Patient Intake", recs[0].Tag)
	assert.Equal(t, 93.4, recs[0].Confidence)
}

func TestNormalizeEntities(t *testing.T) {
	n := testNormalizer()

	t.Run("scores convert to the 0-100 scale", func(t *testing.T) {
		recs := n.Entities(testItem(), constants.AssetTypeText, []model.Entity{
			{Text: "aspirin", Score: 0.9934, Category: constants.CategoryMedication, Type: "GENERIC_NAME"},
		})
		require.Len(t, recs, 1)
		assert.Equal(t, constants.OpDetectEntities, recs[0].Operation)
		assert.Equal(t, constants.AssetTypeText, recs[0].AssetType)
		assert.Equal(t, "aspirin", recs[0].Tag)
		assert.InDelta(t, 99.34, recs[0].Confidence, 1e-9)
		assert.Equal(t, "GENERIC_NAME", recs[0].EntityType)
		assert.Equal(t, constants.CategoryMedication, recs[0].EntityCategory)
	})

	t.Run("identifying information is withheld", func(t *testing.T) {
		recs := n.Entities(testItem(), constants.AssetTypeText, []model.Entity{
			{Text: "Jane Doe", Score: 0.99, Category: constants.CategoryPHI},
			{Text: "ibuprofen", Score: 0.8, Category: constants.CategoryMedication},
		})
		require.Len(t, recs, 1)
		assert.Equal(t, "ibuprofen", recs[0].Tag)
	})

	t.Run("trait lists are per entity", func(t *testing.T) {
		entities := []model.Entity{
			{Text: "headache", Score: 0.9, Category: constants.CategoryCondition, Traits: []string{"SYMPTOM"}},
			{Text: "knee", Score: 0.9, Category: constants.CategoryAnatomy},
		}
		recs := n.Entities(testItem(), constants.AssetTypeText, entities)
		require.Len(t, recs, 2)
		assert.Equal(t, []string{"SYMPTOM"}, recs[0].TraitList)
		assert.Empty(t, recs[1].TraitList, "second entity must not inherit the first entity's traits")

		// Mutating the source slice must not reach the persisted record.
		entities[0].Traits[0] = "CHANGED"
		assert.Equal(t, []string{"SYMPTOM"}, recs[0].TraitList)
	})
}

func TestClampConfidence(t *testing.T) {
	assert.Equal(t, 0.0, clampConfidence(-3))
	assert.Equal(t, 55.5, clampConfidence(55.5))
	assert.Equal(t, 100.0, clampConfidence(101))
}
