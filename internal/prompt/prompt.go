// Package prompt builds the system/user message pair for symptom analysis.
//
// Build is a pure function: given the same symptom text and metadata it
// always produces the same messages, and it performs the input validation
// that must happen before any network call is made.
package prompt

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/M-Ayaan-21/DG-Open-SEVA/internal/llm"
)

// minSymptomChars is the minimum meaningful symptom description length,
// counted in characters (not bytes) after trimming surrounding whitespace.
const minSymptomChars = 5

// Build constructs the []llm.Message slice for one analysis request: a fixed
// system message followed by a user message containing the symptom text, any
// present metadata, and the JSON-format instruction.
//
// Returns ErrInvalidInput if symptoms is empty or shorter than
// minSymptomChars after trimming.
func Build(symptoms string, info *AdditionalInfo) ([]llm.Message, error) {
	if utf8.RuneCountInString(strings.TrimSpace(symptoms)) < minSymptomChars {
		return nil, fmt.Errorf("%w: please provide a more detailed symptom description", ErrInvalidInput)
	}

	return []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: buildUserMessage(symptoms, info)},
	}, nil
}

// buildUserMessage assembles the user-turn content.
func buildUserMessage(symptoms string, info *AdditionalInfo) string {
	var sb strings.Builder

	sb.WriteString("Please analyze these symptoms:\n\n")
	sb.WriteString(symptoms)

	if entries := info.entries(); len(entries) > 0 {
		sb.WriteString("\n\nAdditional Information:")
		for _, e := range entries {
			sb.WriteString(fmt.Sprintf("\n- %s: %s", e.key, e.value))
		}
	}

	sb.WriteString("\n\nProvide your analysis in the specified JSON format.")
	return sb.String()
}

// titleCase capitalizes the first letter of each space-separated word and
// lowercases the rest ("2 days" becomes "2 Days").
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		for j, r := range runes {
			if unicode.IsLetter(r) {
				runes[j] = unicode.ToUpper(r)
				break
			}
		}
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
