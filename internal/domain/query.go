package domain

import (
	"fmt"
	"strings"
)

// Query holds the immutable lookup parameters for one status check.
type Query struct {
	Location       string `json:"location"`
	ApplicationID  string `json:"application_id"`
	PassportNumber string `json:"passport_number"`
	Surname        string `json:"surname"`
}

// Validate checks that all required fields are present.
func (q Query) Validate() error {
	var missing []string
	if strings.TrimSpace(q.Location) == "" {
		missing = append(missing, "location")
	}
	if strings.TrimSpace(q.ApplicationID) == "" {
		missing = append(missing, "application_id")
	}
	if strings.TrimSpace(q.PassportNumber) == "" {
		missing = append(missing, "passport_number")
	}
	if strings.TrimSpace(q.Surname) == "" {
		missing = append(missing, "surname")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", ErrInvalidInput, strings.Join(missing, ", "))
	}
	return nil
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (q Query) Trimmed() Query {
	return Query{
		Location:       strings.TrimSpace(q.Location),
		ApplicationID:  strings.TrimSpace(q.ApplicationID),
		PassportNumber: strings.TrimSpace(q.PassportNumber),
		Surname:        strings.TrimSpace(q.Surname),
	}
}
