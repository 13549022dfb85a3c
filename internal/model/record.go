package model

import "github.com/velora-health/docenrich/constants"

// TagRecord is one normalized detection fact persisted to the record table.
// Attribute names match the table schema; the search index mapping mirrors them.
type TagRecord struct {
	RecordID   string              `dynamodbav:"ROWID" json:"ROWID"`
	Location   string              `dynamodbav:"Location" json:"Location"`
	AssetType  constants.AssetType `dynamodbav:"AssetType" json:"AssetType"`
	Operation  constants.Operation `dynamodbav:"Operation" json:"Operation"`
	Tag        string              `dynamodbav:"Tag" json:"Tag"`
	Confidence float64             `dynamodbav:"Confidence" json:"Confidence"`
	Timestamp  int64               `dynamodbav:"TimeStamp" json:"TimeStamp"`
	DocumentID string              `dynamodbav:"DocumentId" json:"DocumentId"`

	// Face_Id groups DETECT_FACE records by detected face instance, 1-based.
	FaceID *int `dynamodbav:"Face_Id,omitempty" json:"Face_Id,omitempty"`
	// Value carries attribute-valued tags (age bounds, boolean attributes).
	Value *string `dynamodbav:"Value,omitempty" json:"Value,omitempty"`

	// Entity detail, present only on DETECT_ENTITIES records.
	EntityType     string                   `dynamodbav:"Detect_Entities_Type,omitempty" json:"Detect_Entities_Type,omitempty"`
	EntityCategory constants.EntityCategory `dynamodbav:"Detect_Entities_Category,omitempty" json:"Detect_Entities_Category,omitempty"`
	TraitList      []string                 `dynamodbav:"Detect_Entities_Trait_List,omitempty" json:"Detect_Entities_Trait_List,omitempty"`
	AttributeList  []string                 `dynamodbav:"Detect_Entities_Attribute_List,omitempty" json:"Detect_Entities_Attribute_List,omitempty"`
}
