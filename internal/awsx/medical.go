package awsx

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/comprehendmedical"

	"github.com/velora-health/docenrich/constants"
	"github.com/velora-health/docenrich/internal/model"
)

// MedicalDetector adapts the medical entity detection service.
type MedicalDetector struct {
	client *comprehendmedical.Client
}

func NewMedicalDetector(client *comprehendmedical.Client) *MedicalDetector {
	return &MedicalDetector{client: client}
}

// DetectEntities extracts medical entities from the text. Trait and attribute
// slices are allocated fresh per entity; an entity without traits reports an
// empty list, never a neighbor's.
func (m *MedicalDetector) DetectEntities(ctx context.Context, text string) ([]model.Entity, error) {
	out, err := m.client.DetectEntitiesV2(ctx, &comprehendmedical.DetectEntitiesV2Input{
		Text: aws.String(text),
	})
	if err != nil {
		return nil, fmt.Errorf("detect entities: %w", err)
	}

	entities := make([]model.Entity, 0, len(out.Entities))
	for _, e := range out.Entities {
		entity := model.Entity{
			Text:       aws.ToString(e.Text),
			Score:      float64(aws.ToFloat32(e.Score)),
			Category:   constants.ParseEntityCategory(string(e.Category)),
			Type:       string(e.Type),
			Traits:     []string{},
			Attributes: []string{},
		}
		for _, t := range e.Traits {
			entity.Traits = append(entity.Traits, string(t.Name))
		}
		for _, a := range e.Attributes {
			entity.Attributes = append(entity.Attributes, string(a.Type)+":"+aws.ToString(a.Text))
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
