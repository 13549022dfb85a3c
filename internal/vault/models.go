package vault

import "github.com/velora-health/docenrich/internal/model"

const statusSuccess = "SUCCESS"

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// apiResponse is the envelope every Vault response carries.
type apiResponse struct {
	ResponseStatus string     `json:"responseStatus"`
	Errors         []apiError `json:"errors"`
}

func (r apiResponse) OK() bool {
	return r.ResponseStatus == statusSuccess
}

func (r apiResponse) ErrorMessage() string {
	if len(r.Errors) == 0 {
		return "status " + r.ResponseStatus
	}
	return r.Errors[0].Message
}

type authResponse struct {
	apiResponse
	SessionID string `json:"sessionId"`
}

// DocumentRow is one row of the incremental document query.
type DocumentRow struct {
	ID           model.FlexID `json:"id"`
	Format       string       `json:"format__v"`
	Filename     string       `json:"filename__v"`
	MajorVersion int          `json:"major_version_number__v"`
	MinorVersion int          `json:"minor_version_number__v"`
	ModifiedDate string       `json:"version_modified_date__v"`
	CreatedDate  string       `json:"version_creation_date__v"`
}

type queryResponse struct {
	apiResponse
	Data []DocumentRow `json:"data"`
}

// Property is one document field metadata entry.
type Property struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

type propertiesResponse struct {
	apiResponse
	Properties []Property `json:"properties"`
}

type documentResponse struct {
	apiResponse
	Document map[string]any `json:"document"`
}
