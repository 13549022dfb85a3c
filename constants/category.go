package constants

import "strings"

// EntityCategory is the canonical category for detected medical entities.
// PHI is matched as an enum value, never by raw string comparison in callers.
type EntityCategory string

const (
	CategoryPHI           EntityCategory = "PERSONAL_IDENTIFIABLE_INFORMATION"
	CategoryMedication    EntityCategory = "MEDICATION"
	CategoryCondition     EntityCategory = "MEDICAL_CONDITION"
	CategoryAnatomy       EntityCategory = "ANATOMY"
	CategoryTestProcedure EntityCategory = "TEST_TREATMENT_PROCEDURE"
	CategoryTime          EntityCategory = "TIME_EXPRESSION"
	CategoryBehavioral    EntityCategory = "BEHAVIORAL_ENVIRONMENTAL_SOCIAL"
	CategoryUnknown       EntityCategory = "UNKNOWN"
)

// ParseEntityCategory maps a service category string onto the canonical enum.
// Both the v1 PII category and the v2 protected-health-information category
// collapse onto CategoryPHI so filtering cannot drift between API versions.
func ParseEntityCategory(input string) EntityCategory {
	switch strings.ToUpper(strings.TrimSpace(input)) {
	case "PERSONAL_IDENTIFIABLE_INFORMATION", "PROTECTED_HEALTH_INFORMATION":
		return CategoryPHI
	case "MEDICATION":
		return CategoryMedication
	case "MEDICAL_CONDITION":
		return CategoryCondition
	case "ANATOMY":
		return CategoryAnatomy
	case "TEST_TREATMENT_PROCEDURE":
		return CategoryTestProcedure
	case "TIME_EXPRESSION":
		return CategoryTime
	case "BEHAVIORAL_ENVIRONMENTAL_SOCIAL":
		return CategoryBehavioral
	default:
		return CategoryUnknown
	}
}

// IsPHI reports whether records for this category must be withheld from storage.
func (c EntityCategory) IsPHI() bool {
	return c == CategoryPHI
}
