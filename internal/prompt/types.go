package prompt

import (
	"errors"
	"strconv"
)

// ErrInvalidInput is returned by [Build] when the symptom text fails the
// input precondition (empty, whitespace-only, or too short to analyze).
var ErrInvalidInput = errors.New("prompt: invalid symptom input")

// AdditionalInfo carries optional patient metadata merged into the user
// prompt. The zero value of each field means "not provided" and the field
// is omitted from the prompt. Field order is fixed so that identical input
// always produces an identical prompt.
type AdditionalInfo struct {
	// Age in years. Zero means not provided.
	Age int

	// Gender as free text (e.g. "female").
	Gender string

	// Duration describes how long the symptoms have lasted (e.g. "2 days").
	Duration string

	// SeverityLevel is the patient's own perception of severity.
	SeverityLevel string

	// MedicalHistory is relevant prior medical context.
	MedicalHistory string
}

// entry is one rendered metadata line: a display key plus its value.
type entry struct {
	key   string
	value string
}

// entries returns the present fields in declaration order, with display
// keys already in Title Case ("severity_level" renders as "Severity Level").
func (a *AdditionalInfo) entries() []entry {
	if a == nil {
		return nil
	}

	var out []entry
	if a.Age > 0 {
		out = append(out, entry{"Age", strconv.Itoa(a.Age)})
	}
	if a.Gender != "" {
		out = append(out, entry{"Gender", titleCase(a.Gender)})
	}
	if a.Duration != "" {
		out = append(out, entry{"Duration", titleCase(a.Duration)})
	}
	if a.SeverityLevel != "" {
		out = append(out, entry{"Severity Level", titleCase(a.SeverityLevel)})
	}
	if a.MedicalHistory != "" {
		out = append(out, entry{"Medical History", titleCase(a.MedicalHistory)})
	}
	return out
}
