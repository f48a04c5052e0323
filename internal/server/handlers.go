package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/M-Ayaan-21/DG-Open-SEVA/internal/analyzer"
	"github.com/M-Ayaan-21/DG-Open-SEVA/internal/prompt"
)

// AnalyzeRequest is the JSON body accepted by the analyze endpoints.
type AnalyzeRequest struct {
	Symptoms       string `json:"symptoms"`
	Age            int    `json:"age,omitempty"`
	Gender         string `json:"gender,omitempty"`
	Duration       string `json:"duration,omitempty"`
	SeverityLevel  string `json:"severity_level,omitempty"`
	MedicalHistory string `json:"medical_history,omitempty"`
}

// additionalInfo converts the optional request fields into the engine's
// metadata type, or nil when none are present.
func (req *AnalyzeRequest) additionalInfo() *prompt.AdditionalInfo {
	info := prompt.AdditionalInfo{
		Age:            req.Age,
		Gender:         req.Gender,
		Duration:       req.Duration,
		SeverityLevel:  req.SeverityLevel,
		MedicalHistory: req.MedicalHistory,
	}
	if info == (prompt.AdditionalInfo{}) {
		return nil
	}
	return &info
}

// outcomeStatus maps an outcome to its HTTP status code.
func outcomeStatus(o analyzer.Outcome) int {
	switch {
	case o.OK():
		return http.StatusOK
	case o.Code == analyzer.CodeInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request: %v", err), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	result, err := s.engine.Analyze(r.Context(), req.Symptoms, req.additionalInfo())
	if err != nil {
		s.logger.Error("analysis request failed", "error", err)
	}

	outcome := analyzer.Report(result, err)
	writeJSON(w, outcomeStatus(outcome), outcome)
}

// handleAnalyzeStream serves the incremental mode as Server-Sent Events:
// zero or more "chunk" events carrying raw text fragments, terminated by a
// single "result" event (success outcome) or "error" event (failure
// outcome). Fragments are JSON-encoded strings since they may contain
// newlines.
func (s *Server) handleAnalyzeStream(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request: %v", err), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	stream, err := s.engine.AnalyzeStream(r.Context(), req.Symptoms, req.additionalInfo())
	if err != nil {
		// Failed before any event was sent; reply with a plain outcome.
		s.logger.Error("streaming analysis rejected", "error", err)
		outcome := analyzer.Report(nil, err)
		writeJSON(w, outcomeStatus(outcome), outcome)
		return
	}

	// The server-wide write timeout would sever streams that outlive it;
	// lift it for this response and rely on client disconnect instead.
	// Writers without deadline support (test recorders) make this a no-op.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for chunk := range stream.Chunks() {
		writeSSE(w, "chunk", chunk)
		flusher.Flush()
	}

	result, err := stream.Result()
	if err != nil {
		s.logger.Error("streaming analysis failed", "error", err)
	}

	outcome := analyzer.Report(result, err)
	event := "result"
	if !outcome.OK() {
		event = "error"
	}
	writeSSE(w, event, outcome)
	flusher.Flush()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("deep") != "" {
		if err := s.provider.Heartbeat(r.Context()); err != nil {
			s.logger.Error("provider heartbeat failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":  "degraded",
				"service": "servvia",
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "servvia",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// writeSSE emits one Server-Sent Event with a JSON-encoded data payload.
func writeSSE(w http.ResponseWriter, event string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
}
