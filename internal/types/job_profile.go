// Package types defines the shared data contracts passed between pipeline stages.
package types

// UnknownField is the sentinel value for job profile fields that cannot be
// grounded in the listing text.
const UnknownField = "Unknown"

// JobProfile is the structured extraction of a scraped job listing.
// Field values are copied verbatim from the listing where possible; fields
// that cannot be grounded carry the UnknownField sentinel.
type JobProfile struct {
	JobTitle                        string `json:"job_title" validate:"required"`
	JobLocation                     string `json:"job_location" validate:"required"`
	JobDescription                  string `json:"job_description" validate:"required"`
	WorkSchedule                    string `json:"work_schedule" validate:"required"`
	CompanyName                     string `json:"company_name" validate:"required"`
	ExpectationsAndResponsibilities string `json:"expectations_and_responsibilities" validate:"required"`
	Requirements                    string `json:"requirements" validate:"required"`
}

// IsKnown reports whether a profile field carries real content rather than
// the Unknown sentinel.
func IsKnown(field string) bool {
	return field != "" && field != UnknownField
}
