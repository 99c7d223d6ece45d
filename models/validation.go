package models

// ValidationIssue is a single validation error or warning with a stable code.
type ValidationIssue struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Field    string `json:"field,omitempty"`
	EntityID int    `json:"entity_id,omitempty"`
}

// ValidationResult collects errors (blocking) and warnings (advisory).
type ValidationResult struct {
	Errors   []ValidationIssue `json:"errors"`
	Warnings []ValidationIssue `json:"warnings"`
}

func (r *ValidationResult) IsValid() bool { return len(r.Errors) == 0 }

func (r *ValidationResult) AddError(code, message string, field string, entityID int) {
	r.Errors = append(r.Errors, ValidationIssue{Code: code, Message: message, Field: field, EntityID: entityID})
}

func (r *ValidationResult) AddWarning(code, message string, field string, entityID int) {
	r.Warnings = append(r.Warnings, ValidationIssue{Code: code, Message: message, Field: field, EntityID: entityID})
}

// Merge appends another result's issues into this one.
func (r *ValidationResult) Merge(other ValidationResult) {
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}
