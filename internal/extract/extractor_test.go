package extract

import (
	"errors"
	"strings"
	"testing"

	"github.com/ceacwatch/ceacwatch/internal/domain"
)

const samplePopup = `
Application Received

Application ID or Case Number: AA00EILA2X
Case Created: 08-Jul-2025
Case Last Updated: 21-Jul-2025

Your case is open and ready for your interview whenever you are ready to schedule it.
`

func TestStatusRecord(t *testing.T) {
	rec, err := StatusRecord(samplePopup)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Status != "Application Received" {
		t.Errorf("status = %q, want %q", rec.Status, "Application Received")
	}
	if rec.CaseNumber != "AA00EILA2X" {
		t.Errorf("case_number = %q, want %q", rec.CaseNumber, "AA00EILA2X")
	}
	if rec.CaseCreated != "08-Jul-2025" {
		t.Errorf("case_created = %q, want %q", rec.CaseCreated, "08-Jul-2025")
	}
	if rec.CaseLastUpdated != "21-Jul-2025" {
		t.Errorf("case_last_updated = %q, want %q", rec.CaseLastUpdated, "21-Jul-2025")
	}
	if !strings.Contains(rec.Description, "open and ready") {
		t.Errorf("description = %q, want it to contain the popup message", rec.Description)
	}
}

func TestStatusRecordLocaleDates(t *testing.T) {
	// Some posts render dates upper-cased with different month formatting.
	// The extractor must pass them through untouched.
	popup := "Issued\nApplication ID or Case Number: XY12ABCD3Z\nCase Created: 01-JAN-2024\nCase Last Updated: 15-FEB-2024\nYour visa is in final processing."

	rec, err := StatusRecord(popup)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.CaseCreated != "01-JAN-2024" {
		t.Errorf("case_created = %q, want raw date string", rec.CaseCreated)
	}
	if rec.CaseLastUpdated != "15-FEB-2024" {
		t.Errorf("case_last_updated = %q, want raw date string", rec.CaseLastUpdated)
	}
}

func TestStatusRecordMissingMarkers(t *testing.T) {
	for name, text := range map[string]string{
		"empty":          "",
		"no case number": "Application Received\nsome unrelated text",
		"labels only":    "Application ID or Case Number: AA00EILA2X\nCase Created: 08-Jul-2025",
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := StatusRecord(text); !errors.Is(err, domain.ErrParseFailure) {
				t.Errorf("err = %v, want ErrParseFailure", err)
			}
		})
	}
}
