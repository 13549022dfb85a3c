package constants

// AssetType classifies the source document behind a tag record.
type AssetType string

// Stable values (store these exact strings in the record table).
const (
	AssetTypeImage AssetType = "Image"
	AssetTypePDF   AssetType = "PDF-file"
	AssetTypeAudio AssetType = "Audio-file"
	AssetTypeText  AssetType = "Text-file"
)

// Operation names the detection that produced a tag record.
type Operation string

const (
	OpDetectLabel    Operation = "DETECT_LABEL"
	OpDetectFace     Operation = "DETECT_FACE"
	OpDetectText     Operation = "DETECT_TEXT"
	OpDetectEntities Operation = "DETECT_ENTITIES"
)
