package payloadschema

import (
	"encoding/json"
	"testing"
)

func TestValidateFeedbackItemPayload_Valid(t *testing.T) {
	payload := json.RawMessage(`{
		"payload_version":"v1",
		"department":"Facilities",
		"category":"Safety",
		"subject":"Broken elevator",
		"body":"The elevator on the 3rd floor has been out of service for a week."
	}`)

	item, err := ValidateFeedbackItemPayload(payload)
	if err != nil {
		t.Fatalf("expected payload to be valid, got error: %v", err)
	}
	if item.Department != "Facilities" {
		t.Fatalf("expected department=Facilities, got %q", item.Department)
	}
	if item.PayloadVersion != "v1" {
		t.Fatalf("expected payload_version=v1, got %q", item.PayloadVersion)
	}
}

func TestValidateFeedbackItemPayload_MissingRequired(t *testing.T) {
	payload := json.RawMessage(`{
		"payload_version":"v1",
		"department":"Facilities",
		"category":"Safety",
		"subject":"No body field"
	}`)

	if _, err := ValidateFeedbackItemPayload(payload); err == nil {
		t.Fatalf("expected validation to fail for missing body")
	}
}

func TestValidateFeedbackItemPayload_BlankSubject(t *testing.T) {
	payload := json.RawMessage(`{
		"payload_version":"v1",
		"department":"IT",
		"category":"Hardware",
		"subject":"   ",
		"body":"Monitors flicker in the east wing."
	}`)

	if _, err := ValidateFeedbackItemPayload(payload); err == nil {
		t.Fatalf("expected validation to fail for whitespace-only subject")
	}
}

func TestValidateFeedbackItemPayload_UnknownField(t *testing.T) {
	payload := json.RawMessage(`{
		"payload_version":"v1",
		"department":"IT",
		"category":"Hardware",
		"subject":"Monitors",
		"body":"Monitors flicker in the east wing.",
		"priority":"high"
	}`)

	if _, err := ValidateFeedbackItemPayload(payload); err == nil {
		t.Fatalf("expected validation to fail for unknown field")
	}
}

func TestValidateFeedbackItemPayload_NotJSON(t *testing.T) {
	if _, err := ValidateFeedbackItemPayload(json.RawMessage("not json")); err == nil {
		t.Fatalf("expected decode error")
	}
}
