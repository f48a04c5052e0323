package analyzer

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultDisclaimer is the canonical disclaimer backfilled when the model
// omits one.
const DefaultDisclaimer = "This is not a medical diagnosis. Consult a healthcare professional."

// Defaults applied when the model omits a field entirely. Severity and
// confidence are advisory vocabularies (mild/moderate/severe/emergency and
// low/medium/high); unrecognized values are passed through, not rejected.
const (
	defaultCondition  = "Unknown"
	defaultSeverity   = "moderate"
	defaultConfidence = "medium"
)

// Result is the structured outcome of one symptom analysis. Every field is
// always present: missing keys in the model output are backfilled with
// defaults during decoding, and the slices are never nil. A Result is a
// value: it is never mutated after construction.
type Result struct {
	Condition       string   `json:"condition"`
	Severity        string   `json:"severity"`
	Confidence      string   `json:"confidence"`
	Analysis        string   `json:"analysis"`
	Remedies        []string `json:"remedies"`
	WhenToSeeDoctor []string `json:"when_to_see_doctor"`
	Precautions     []string `json:"precautions"`
	Disclaimer      string   `json:"disclaimer"`
}

// decodeResult parses the model's text payload as a single JSON object and
// maps it onto a Result, backfilling defaults for absent keys. Unknown keys
// are ignored. Returns ErrMalformedResponse when the payload is not a valid
// JSON object.
func decodeResult(payload string) (*Result, error) {
	// Pointer fields distinguish an absent key from a present-but-empty
	// value: only absent keys are defaulted.
	var raw struct {
		Condition       *string  `json:"condition"`
		Severity        *string  `json:"severity"`
		Confidence      *string  `json:"confidence"`
		Analysis        *string  `json:"analysis"`
		Remedies        []string `json:"remedies"`
		WhenToSeeDoctor []string `json:"when_to_see_doctor"`
		Precautions     []string `json:"precautions"`
		Disclaimer      *string  `json:"disclaimer"`
	}

	// A bare "null" unmarshals into the struct without error; reject
	// anything that is not an object up front.
	if !strings.HasPrefix(strings.TrimSpace(payload), "{") {
		return nil, fmt.Errorf("%w: payload is not a JSON object", ErrMalformedResponse)
	}

	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return &Result{
		Condition:       stringOr(raw.Condition, defaultCondition),
		Severity:        stringOr(raw.Severity, defaultSeverity),
		Confidence:      stringOr(raw.Confidence, defaultConfidence),
		Analysis:        stringOr(raw.Analysis, ""),
		Remedies:        sliceOrEmpty(raw.Remedies),
		WhenToSeeDoctor: sliceOrEmpty(raw.WhenToSeeDoctor),
		Precautions:     sliceOrEmpty(raw.Precautions),
		Disclaimer:      stringOr(raw.Disclaimer, DefaultDisclaimer),
	}, nil
}

func stringOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

func sliceOrEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
