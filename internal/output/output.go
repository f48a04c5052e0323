// Package output renders analysis results for the CLI. It supports a
// sectioned text report and JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/M-Ayaan-21/DG-Open-SEVA/internal/analyzer"
)

// Format represents an output format type.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat converts a string to a Format, defaulting to text.
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON
	default:
		return FormatText
	}
}

// Writer handles writing formatted output.
type Writer struct {
	w      io.Writer
	format Format
	color  ColorMode
}

// New creates a new output Writer.
func New(w io.Writer, format Format) *Writer {
	return &Writer{w: w, format: format, color: ColorAuto}
}

// WriteReport outputs an analysis result in the configured format.
func (wr *Writer) WriteReport(result *analyzer.Result) error {
	if wr.format == FormatJSON {
		return wr.WriteJSON(result)
	}
	return wr.writeText(result)
}

// WriteJSON outputs any value as indented JSON.
func (wr *Writer) WriteJSON(v interface{}) error {
	enc := json.NewEncoder(wr.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (wr *Writer) writeText(result *analyzer.Result) error {
	colorize := shouldColorize(wr.color, wr.w)

	severity := strings.ToUpper(result.Severity)
	if colorize {
		severity = colorizeSeverity(result.Severity, severity)
	}

	fmt.Fprintf(wr.w, "Condition:  %s\n", result.Condition)
	fmt.Fprintf(wr.w, "Severity:   %s\n", severity)
	fmt.Fprintf(wr.w, "Confidence: %s\n", strings.ToUpper(result.Confidence))

	if result.Analysis != "" {
		fmt.Fprintf(wr.w, "\nAnalysis:\n%s\n", result.Analysis)
	}

	writeList(wr.w, "Recommended Remedies", result.Remedies)
	writeList(wr.w, "When To See A Doctor", result.WhenToSeeDoctor)
	writeList(wr.w, "Precautions", result.Precautions)

	fmt.Fprintf(wr.w, "\n%s\n", result.Disclaimer)
	return nil
}

func writeList(w io.Writer, header string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", header)
	for i, item := range items {
		fmt.Fprintf(w, "%d. %s\n", i+1, item)
	}
}
