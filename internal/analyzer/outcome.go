package analyzer

import "errors"

// Stable outcome codes exposed to transport adapters.
const (
	CodeInvalidInput   = "INVALID_INPUT"
	CodeAnalysisFailed = "ANALYSIS_FAILED"
)

// Outcome is the tagged result form consumed by transport adapters, so they
// never inspect error values directly: either {status: "success", data} or
// {status: "error", error, code}.
type Outcome struct {
	Status string  `json:"status"`
	Data   *Result `json:"data,omitempty"`
	Error  string  `json:"error,omitempty"`
	Code   string  `json:"code,omitempty"`
}

// OK reports whether the outcome is a success.
func (o Outcome) OK() bool {
	return o.Status == "success"
}

// Report converts an (result, error) pair from Analyze or Stream.Result into
// an Outcome. Input precondition failures keep their message and map to
// INVALID_INPUT; provider and malformed-response failures map to
// ANALYSIS_FAILED with a generic message, their cause belongs in logs, not
// in the reply.
func Report(result *Result, err error) Outcome {
	switch {
	case err == nil:
		return Outcome{Status: "success", Data: result}
	case errors.Is(err, ErrInvalidInput):
		return Outcome{Status: "error", Error: err.Error(), Code: CodeInvalidInput}
	default:
		return Outcome{
			Status: "error",
			Error:  "Failed to analyze symptoms. Please try again.",
			Code:   CodeAnalysisFailed,
		}
	}
}
