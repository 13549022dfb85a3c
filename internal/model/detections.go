package model

import "github.com/velora-health/docenrich/constants"

// Raw detection shapes returned by the AI service adapters. Each variant has
// exactly one normalizer converting it into TagRecords; nothing downstream of
// the adapters touches SDK response types.

// Label is one image label detection, confidence on the 0-100 scale.
type Label struct {
	Name       string
	Confidence float64
}

// Emotion is one per-face emotion sub-detection.
type Emotion struct {
	Type       string
	Confidence float64
}

// FaceAttribute is a single valued face attribute (eyeglasses, smile, gender,
// ...) with its own confidence, distinct from the face's overall confidence.
type FaceAttribute struct {
	Name       string
	Value      string
	Confidence float64
}

// Face is one detected face instance with its attribute bag.
type Face struct {
	Confidence  float64
	HasAgeRange bool
	AgeLow      int32
	AgeHigh     int32
	Emotions    []Emotion
	Attributes  []FaceAttribute
}

// TextLine is one line-level text detection on an image. Word-level detections
// are dropped at the adapter boundary.
type TextLine struct {
	Text       string
	Confidence float64
}

// Entity is one detected medical entity. Score is on the service's 0-1 scale;
// normalization converts it to 0-100. Traits and Attributes belong to this
// entity only.
type Entity struct {
	Text       string
	Score      float64
	Category   constants.EntityCategory
	Type       string
	Traits     []string
	Attributes []string // "Type:Text" pairs
}
