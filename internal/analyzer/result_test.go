package analyzer

import (
	"errors"
	"testing"
)

// TestDecodeResult_UnknownKeysIgnored checks extra keys do not fail decoding.
func TestDecodeResult_UnknownKeysIgnored(t *testing.T) {
	payload := `{"condition": "Flu", "icd_code": "J11", "model_notes": ["extra"]}`

	result, err := decodeResult(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Condition != "Flu" {
		t.Errorf("condition: got %q, want %q", result.Condition, "Flu")
	}
}

// TestDecodeResult_PresentButEmpty verifies that defaulting applies only to
// absent keys, not present-but-empty values.
func TestDecodeResult_PresentButEmpty(t *testing.T) {
	payload := `{"condition": "", "disclaimer": ""}`

	result, err := decodeResult(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Condition != "" {
		t.Errorf("empty condition should be preserved, got %q", result.Condition)
	}
	if result.Disclaimer != "" {
		t.Errorf("empty disclaimer should be preserved, got %q", result.Disclaimer)
	}
}

// TestDecodeResult_AllAbsent verifies the full defaulting table on an empty
// object.
func TestDecodeResult_AllAbsent(t *testing.T) {
	result, err := decodeResult(`{}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Condition != "Unknown" {
		t.Errorf("condition: got %q, want %q", result.Condition, "Unknown")
	}
	if result.Severity != "moderate" {
		t.Errorf("severity: got %q, want %q", result.Severity, "moderate")
	}
	if result.Confidence != "medium" {
		t.Errorf("confidence: got %q, want %q", result.Confidence, "medium")
	}
	if result.Analysis != "" {
		t.Errorf("analysis: got %q, want empty", result.Analysis)
	}
	if result.Disclaimer != DefaultDisclaimer {
		t.Errorf("disclaimer: got %q, want default", result.Disclaimer)
	}
	for name, s := range map[string][]string{
		"remedies":           result.Remedies,
		"when_to_see_doctor": result.WhenToSeeDoctor,
		"precautions":        result.Precautions,
	} {
		if s == nil || len(s) != 0 {
			t.Errorf("%s: got %v, want empty non-nil slice", name, s)
		}
	}
}

// TestDecodeResult_AdvisoryEnums verifies unrecognized severity/confidence
// values pass through unvalidated.
func TestDecodeResult_AdvisoryEnums(t *testing.T) {
	payload := `{"severity": "catastrophic", "confidence": "absolute"}`

	result, err := decodeResult(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Severity != "catastrophic" {
		t.Errorf("severity: got %q, want passthrough", result.Severity)
	}
	if result.Confidence != "absolute" {
		t.Errorf("confidence: got %q, want passthrough", result.Confidence)
	}
}

// TestDecodeResult_NotAnObject rejects valid JSON that is not an object.
func TestDecodeResult_NotAnObject(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"string", `"just text"`},
		{"number", `42`},
		{"array", `[{"condition": "Flu"}]`},
		{"null", `null`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := decodeResult(tc.payload)
			if !errors.Is(err, ErrMalformedResponse) {
				t.Errorf("expected ErrMalformedResponse, got %v", err)
			}
		})
	}
}
