package enrich

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/velora-health/docenrich/constants"
	"github.com/velora-health/docenrich/internal/model"
)

// faceTriggerConfidence gates face detection: only a Human/Person label above
// this confidence makes the extra call worthwhile.
const faceTriggerConfidence = 80.0

// Normalizer converts raw detection variants into tag records. ID and clock
// sources are injectable for tests; the defaults are a fresh UUID per record
// and wall-clock milliseconds at write time.
type Normalizer struct {
	NewID func() string
	Now   func() time.Time
}

func NewNormalizer() *Normalizer {
	return &Normalizer{NewID: uuid.NewString, Now: time.Now}
}

// base stamps the common envelope. Every record gets a fresh id: the same tag
// detected twice yields two records, there is no natural key.
func (n *Normalizer) base(item model.WorkItem, asset constants.AssetType, op constants.Operation) model.TagRecord {
	return model.TagRecord{
		RecordID:   n.NewID(),
		Location:   item.Location(),
		AssetType:  asset,
		Operation:  op,
		Timestamp:  n.Now().UnixMilli(),
		DocumentID: item.DocumentID,
	}
}

// clampConfidence forces confidence into [0,100]. The services already
// guarantee the range; normalization must not be the place that breaks it.
func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Labels emits one DETECT_LABEL record per label, confidence copied verbatim.
func (n *Normalizer) Labels(item model.WorkItem, labels []model.Label) []model.TagRecord {
	out := make([]model.TagRecord, 0, len(labels))
	for _, label := range labels {
		rec := n.base(item, constants.AssetTypeImage, constants.OpDetectLabel)
		rec.Tag = label.Name
		rec.Confidence = clampConfidence(label.Confidence)
		out = append(out, rec)
	}
	return out
}

// HasPerson reports whether any label should trigger face detection.
func HasPerson(labels []model.Label) bool {
	for _, label := range labels {
		if (label.Name == "Human" || label.Name == "Person") && label.Confidence > faceTriggerConfidence {
			return true
		}
	}
	return false
}

// Faces flattens each face's attribute bag into DETECT_FACE records. Faces
// are numbered from one in detection order; the age range always becomes
// exactly two records carrying the face's own confidence.
func (n *Normalizer) Faces(item model.WorkItem, faces []model.Face) []model.TagRecord {
	var out []model.TagRecord
	for i, face := range faces {
		faceID := i + 1

		faceRecord := func(tag string, confidence float64, value *string) {
			rec := n.base(item, constants.AssetTypeImage, constants.OpDetectFace)
			id := faceID
			rec.FaceID = &id
			rec.Tag = tag
			rec.Confidence = clampConfidence(confidence)
			rec.Value = value
			out = append(out, rec)
		}

		for _, emotion := range face.Emotions {
			faceRecord(emotion.Type, emotion.Confidence, nil)
		}
		if face.HasAgeRange {
			low := strconv.Itoa(int(face.AgeLow))
			high := strconv.Itoa(int(face.AgeHigh))
			faceRecord("AgeRange_Low", face.Confidence, &low)
			faceRecord("AgeRange_High", face.Confidence, &high)
		}
		for _, attr := range face.Attributes {
			value := attr.Value
			faceRecord(attr.Name, attr.Confidence, &value)
		}
	}
	return out
}

// TextLines emits one DETECT_TEXT record per line-level detection.
func (n *Normalizer) TextLines(item model.WorkItem, lines []model.TextLine) []model.TagRecord {
	out := make([]model.TagRecord, 0, len(lines))
	for _, line := range lines {
		rec := n.base(item, constants.AssetTypeImage, constants.OpDetectText)
		rec.Tag = line.Text
		rec.Confidence = clampConfidence(line.Confidence)
		out = append(out, rec)
	}
	return out
}

// Entities emits one DETECT_ENTITIES record per non-PHI entity. The service
// scores on 0-1; records store 0-100. Trait and attribute lists are taken
// from the entity itself, never carried over from a previous one.
func (n *Normalizer) Entities(item model.WorkItem, asset constants.AssetType, entities []model.Entity) []model.TagRecord {
	var out []model.TagRecord
	for _, entity := range entities {
		if entity.Category.IsPHI() {
			continue
		}
		rec := n.base(item, asset, constants.OpDetectEntities)
		rec.Tag = entity.Text
		rec.Confidence = clampConfidence(entity.Score * 100)
		rec.EntityType = entity.Type
		rec.EntityCategory = entity.Category
		rec.TraitList = append([]string{}, entity.Traits...)
		rec.AttributeList = append([]string{}, entity.Attributes...)
		out = append(out, rec)
	}
	return out
}
