package output

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/M-Ayaan-21/DG-Open-SEVA/internal/analyzer"
)

func testResult() *analyzer.Result {
	return &analyzer.Result{
		Condition:       "Migraine",
		Severity:        "moderate",
		Confidence:      "high",
		Analysis:        "May indicate a migraine.",
		Remedies:        []string{"Rest in a dark room", "Stay hydrated"},
		WhenToSeeDoctor: []string{"Sudden severe headache"},
		Precautions:     []string{"Avoid bright screens"},
		Disclaimer:      "Not a diagnosis.",
	}
}

func TestWriteReport_Text(t *testing.T) {
	var buf bytes.Buffer
	wr := New(&buf, FormatText)

	if err := wr.WriteReport(testResult()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := buf.String()
	for _, want := range []string{
		"Condition:  Migraine",
		"Severity:   MODERATE",
		"Confidence: HIGH",
		"May indicate a migraine.",
		"Recommended Remedies:",
		"1. Rest in a dark room",
		"2. Stay hydrated",
		"When To See A Doctor:",
		"Precautions:",
		"Not a diagnosis.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("text report missing %q\nreport:\n%s", want, got)
		}
	}
}

func TestWriteReport_TextOmitsEmptySections(t *testing.T) {
	var buf bytes.Buffer
	wr := New(&buf, FormatText)

	result := testResult()
	result.Remedies = []string{}
	result.Analysis = ""

	if err := wr.WriteReport(result); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := buf.String()
	if strings.Contains(got, "Recommended Remedies:") {
		t.Error("empty remedies list should be omitted")
	}
	if strings.Contains(got, "Analysis:") {
		t.Error("empty analysis should be omitted")
	}
}

func TestWriteReport_JSON(t *testing.T) {
	var buf bytes.Buffer
	wr := New(&buf, FormatJSON)

	want := testResult()
	if err := wr.WriteReport(want); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got analyzer.Result
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if !reflect.DeepEqual(&got, want) {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", got, want)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"text", FormatText},
		{"", FormatText},
		{"yaml", FormatText},
	}

	for _, tc := range tests {
		if got := ParseFormat(tc.in); got != tc.want {
			t.Errorf("ParseFormat(%q): got %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestColorizeSeverity(t *testing.T) {
	tests := []struct {
		severity string
		wantCode string
	}{
		{"mild", colorGreen},
		{"moderate", colorYellow},
		{"severe", colorRed},
		{"emergency", colorBold},
	}

	for _, tc := range tests {
		got := colorizeSeverity(tc.severity, strings.ToUpper(tc.severity))
		if !strings.HasPrefix(got, tc.wantCode) {
			t.Errorf("colorizeSeverity(%q): got %q, want prefix %q", tc.severity, got, tc.wantCode)
		}
	}

	// Unrecognized severities pass through uncolored.
	if got := colorizeSeverity("weird", "WEIRD"); got != "WEIRD" {
		t.Errorf("unknown severity should be uncolored, got %q", got)
	}
}

func TestShouldColorize(t *testing.T) {
	var buf bytes.Buffer

	if shouldColorize(ColorAuto, &buf) {
		t.Error("non-file writer should not colorize in auto mode")
	}
	if !shouldColorize(ColorAlways, &buf) {
		t.Error("always mode should colorize")
	}
	if shouldColorize(ColorNever, &buf) {
		t.Error("never mode should not colorize")
	}
}
