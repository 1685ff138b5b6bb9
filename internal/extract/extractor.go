// Package extract parses the raw text of the CEAC result popup into a
// structured status record.
package extract

import (
	"fmt"
	"strings"

	"github.com/ceacwatch/ceacwatch/internal/domain"
)

// Field labels as rendered inside the CEAC result popup. The popup is a small
// modal: a status heading, labelled case fields, then a free-form description
// paragraph.
const (
	labelCaseNumber  = "Application ID or Case Number:"
	labelCreated     = "Case Created:"
	labelLastUpdated = "Case Last Updated:"
)

// StatusRecord extracts a domain.StatusRecord from the popup text.
//
// Date values are copied verbatim; embassy posts are inconsistent about date
// formatting and no normalization is attempted here.
func StatusRecord(text string) (*domain.StatusRecord, error) {
	rec := &domain.StatusRecord{}

	var leftover []string
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		switch {
		case containsLabel(line, labelCaseNumber):
			rec.CaseNumber = valueAfter(line, labelCaseNumber)
		case containsLabel(line, labelLastUpdated):
			// Checked before "Case Created:" on purpose: both end in a date
			// but only one contains "Last".
			rec.CaseLastUpdated = valueAfter(line, labelLastUpdated)
		case containsLabel(line, labelCreated):
			rec.CaseCreated = valueAfter(line, labelCreated)
		default:
			leftover = append(leftover, line)
		}
	}

	// The status heading is the first unlabelled line ("Application Received",
	// "Administrative Processing", ...). Whatever follows is the description.
	if len(leftover) > 0 {
		rec.Status = leftover[0]
	}
	if len(leftover) > 1 {
		rec.Description = strings.Join(leftover[1:], " ")
	}

	if rec.Status == "" || rec.CaseNumber == "" {
		return nil, fmt.Errorf("%w: status=%q case_number=%q", domain.ErrParseFailure, rec.Status, rec.CaseNumber)
	}
	return rec, nil
}

func containsLabel(line, label string) bool {
	return strings.Contains(strings.ToLower(line), strings.ToLower(label))
}

// valueAfter returns the trimmed remainder of line after label, matching
// case-insensitively.
func valueAfter(line, label string) string {
	idx := strings.Index(strings.ToLower(line), strings.ToLower(label))
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(line[idx+len(label):])
}
