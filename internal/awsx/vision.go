package awsx

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	rektypes "github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/velora-health/docenrich/internal/model"
)

// Vision adapts the image analysis client (labels, faces, text).
type Vision struct {
	client *rekognition.Client
}

func NewVision(client *rekognition.Client) *Vision {
	return &Vision{client: client}
}

func imageRef(ref model.ObjectRef) *rektypes.Image {
	return &rektypes.Image{
		S3Object: &rektypes.S3Object{
			Bucket: aws.String(ref.Bucket),
			Name:   aws.String(ref.Key),
		},
	}
}

// DetectLabels returns all label detections for the image.
func (v *Vision) DetectLabels(ctx context.Context, ref model.ObjectRef) ([]model.Label, error) {
	out, err := v.client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image: imageRef(ref),
	})
	if err != nil {
		return nil, fmt.Errorf("detect labels %s: %w", ref.Location(), err)
	}
	labels := make([]model.Label, 0, len(out.Labels))
	for _, l := range out.Labels {
		labels = append(labels, model.Label{
			Name:       aws.ToString(l.Name),
			Confidence: float64(aws.ToFloat32(l.Confidence)),
		})
	}
	return labels, nil
}

// DetectFaces returns all detected faces with the full attribute set, in
// detection order.
func (v *Vision) DetectFaces(ctx context.Context, ref model.ObjectRef) ([]model.Face, error) {
	out, err := v.client.DetectFaces(ctx, &rekognition.DetectFacesInput{
		Image:      imageRef(ref),
		Attributes: []rektypes.Attribute{rektypes.AttributeAll},
	})
	if err != nil {
		return nil, fmt.Errorf("detect faces %s: %w", ref.Location(), err)
	}
	faces := make([]model.Face, 0, len(out.FaceDetails))
	for _, d := range out.FaceDetails {
		faces = append(faces, faceFromDetail(d))
	}
	return faces, nil
}

// DetectTextLines returns line-level text detections; word-level detections
// are dropped here so no consumer ever sees them.
func (v *Vision) DetectTextLines(ctx context.Context, ref model.ObjectRef) ([]model.TextLine, error) {
	out, err := v.client.DetectText(ctx, &rekognition.DetectTextInput{
		Image: imageRef(ref),
	})
	if err != nil {
		return nil, fmt.Errorf("detect text %s: %w", ref.Location(), err)
	}
	var lines []model.TextLine
	for _, t := range out.TextDetections {
		if t.Type != rektypes.TextTypesLine {
			continue
		}
		lines = append(lines, model.TextLine{
			Text:       aws.ToString(t.DetectedText),
			Confidence: float64(aws.ToFloat32(t.Confidence)),
		})
	}
	return lines, nil
}

// faceFromDetail flattens a face detail into the domain attribute bag.
// Geometry (bounding box, landmarks, pose, quality) is deliberately not
// carried over; only taggable attributes survive.
func faceFromDetail(d rektypes.FaceDetail) model.Face {
	face := model.Face{Confidence: float64(aws.ToFloat32(d.Confidence))}

	if d.AgeRange != nil {
		face.HasAgeRange = true
		face.AgeLow = aws.ToInt32(d.AgeRange.Low)
		face.AgeHigh = aws.ToInt32(d.AgeRange.High)
	}
	for _, e := range d.Emotions {
		face.Emotions = append(face.Emotions, model.Emotion{
			Type:       string(e.Type),
			Confidence: float64(aws.ToFloat32(e.Confidence)),
		})
	}

	add := func(name, value string, confidence *float32) {
		face.Attributes = append(face.Attributes, model.FaceAttribute{
			Name:       name,
			Value:      value,
			Confidence: float64(aws.ToFloat32(confidence)),
		})
	}
	if d.Beard != nil {
		add("Beard", formatBool(d.Beard.Value), d.Beard.Confidence)
	}
	if d.Eyeglasses != nil {
		add("Eyeglasses", formatBool(d.Eyeglasses.Value), d.Eyeglasses.Confidence)
	}
	if d.EyesOpen != nil {
		add("EyesOpen", formatBool(d.EyesOpen.Value), d.EyesOpen.Confidence)
	}
	if d.Gender != nil {
		add("Gender", string(d.Gender.Value), d.Gender.Confidence)
	}
	if d.MouthOpen != nil {
		add("MouthOpen", formatBool(d.MouthOpen.Value), d.MouthOpen.Confidence)
	}
	if d.Mustache != nil {
		add("Mustache", formatBool(d.Mustache.Value), d.Mustache.Confidence)
	}
	if d.Smile != nil {
		add("Smile", formatBool(d.Smile.Value), d.Smile.Confidence)
	}
	if d.Sunglasses != nil {
		add("Sunglasses", formatBool(d.Sunglasses.Value), d.Sunglasses.Confidence)
	}
	return face
}

// formatBool matches the stored value format of the existing record corpus
// ("True"/"False", not "true"/"false").
func formatBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}
