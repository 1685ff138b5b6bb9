package domain

// StatusRecord is the structured outcome parsed from the CEAC result popup.
//
// The date fields are deliberately opaque strings: embassy posts render them
// inconsistently ("01-JAN-2024" vs "08-Jul-2025") and nothing downstream needs
// calendar arithmetic on them.
type StatusRecord struct {
	Status          string `json:"status"`
	CaseNumber      string `json:"case_number,omitempty"`
	CaseCreated     string `json:"case_created,omitempty"`
	CaseLastUpdated string `json:"case_last_updated,omitempty"`
	Description     string `json:"description,omitempty"`
}
