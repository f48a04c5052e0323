package analyzer

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/M-Ayaan-21/DG-Open-SEVA/internal/llm"
)

const testSymptoms = "persistent headache for 2 days, nauseous, sensitive to light"

const fullPayload = `{
	"condition": "Migraine",
	"severity": "moderate",
	"confidence": "high",
	"analysis": "The combination of throbbing headache, nausea, and light sensitivity may indicate a migraine.",
	"remedies": ["Rest in a dark, quiet room", "Stay hydrated"],
	"when_to_see_doctor": ["Sudden severe headache unlike any before", "Headache with fever and stiff neck"],
	"precautions": ["Avoid bright screens", "Avoid skipping meals"],
	"disclaimer": "This is general information, not a diagnosis."
}`

// fakeProvider is a scripted llm.Provider for engine tests.
type fakeProvider struct {
	response  string
	chunks    []string
	chatErr   error
	streamErr error // delivered as a terminal stream event after chunks
	calls     atomic.Int32
}

func (f *fakeProvider) Chat(ctx context.Context, messages []llm.Message, opts *llm.ChatOptions) (*llm.Response, error) {
	f.calls.Add(1)
	if f.chatErr != nil {
		return nil, f.chatErr
	}
	return &llm.Response{Content: f.response}, nil
}

func (f *fakeProvider) ChatStream(ctx context.Context, messages []llm.Message, opts *llm.ChatOptions) (<-chan llm.StreamEvent, error) {
	f.calls.Add(1)
	events := make(chan llm.StreamEvent)
	go func() {
		defer close(events)
		for _, c := range f.chunks {
			select {
			case events <- llm.StreamEvent{Content: c}:
			case <-ctx.Done():
				return
			}
		}
		if f.streamErr != nil {
			events <- llm.StreamEvent{Error: f.streamErr, Done: true}
			return
		}
		events <- llm.StreamEvent{Done: true}
	}()
	return events, nil
}

func (f *fakeProvider) Heartbeat(ctx context.Context) error { return nil }

func newTestEngine(provider llm.Provider) *Engine {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return New(provider, Options{Model: "test-model"}, logger)
}

// splitChunks slices a payload into small fragments that are individually
// not valid JSON, mimicking provider deltas.
func splitChunks(payload string, size int) []string {
	var chunks []string
	for len(payload) > size {
		chunks = append(chunks, payload[:size])
		payload = payload[size:]
	}
	return append(chunks, payload)
}

// TestAnalyze_InvalidInput verifies that short inputs fail before any
// provider call is made.
func TestAnalyze_InvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		symptoms string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"too short", "achy"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fake := &fakeProvider{response: fullPayload}
			engine := newTestEngine(fake)

			_, err := engine.Analyze(context.Background(), tc.symptoms, nil)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
			if got := fake.calls.Load(); got != 0 {
				t.Errorf("provider calls: got %d, want 0", got)
			}
		})
	}
}

// TestAnalyze_RoundTrip checks that a complete model payload maps field for
// field onto the result.
func TestAnalyze_RoundTrip(t *testing.T) {
	engine := newTestEngine(&fakeProvider{response: fullPayload})

	result, err := engine.Analyze(context.Background(), testSymptoms, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := &Result{
		Condition:       "Migraine",
		Severity:        "moderate",
		Confidence:      "high",
		Analysis:        "The combination of throbbing headache, nausea, and light sensitivity may indicate a migraine.",
		Remedies:        []string{"Rest in a dark, quiet room", "Stay hydrated"},
		WhenToSeeDoctor: []string{"Sudden severe headache unlike any before", "Headache with fever and stiff neck"},
		Precautions:     []string{"Avoid bright screens", "Avoid skipping meals"},
		Disclaimer:      "This is general information, not a diagnosis.",
	}

	if !reflect.DeepEqual(result, want) {
		t.Errorf("result mismatch:\ngot  %+v\nwant %+v", result, want)
	}
}

// TestAnalyze_Defaults verifies backfilling of absent keys.
func TestAnalyze_Defaults(t *testing.T) {
	payload := `{
		"condition": "Tension headache",
		"analysis": "Stress related.",
		"remedies": ["Rest"]
	}`
	engine := newTestEngine(&fakeProvider{response: payload})

	result, err := engine.Analyze(context.Background(), testSymptoms, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Severity != "moderate" {
		t.Errorf("severity: got %q, want %q", result.Severity, "moderate")
	}
	if result.Confidence != "medium" {
		t.Errorf("confidence: got %q, want %q", result.Confidence, "medium")
	}
	if result.Disclaimer != DefaultDisclaimer {
		t.Errorf("disclaimer: got %q, want default", result.Disclaimer)
	}
	if result.Condition != "Tension headache" {
		t.Errorf("condition: got %q, want preserved value", result.Condition)
	}
	if result.WhenToSeeDoctor == nil || result.Precautions == nil {
		t.Error("absent list fields should decode to empty, non-nil slices")
	}
}

// TestAnalyze_MalformedResponse covers non-JSON and truncated payloads.
func TestAnalyze_MalformedResponse(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"prose", "I think you may have a migraine."},
		{"truncated", `{"condition": "Migra`},
		{"array", `["not", "an", "object"]`},
		{"empty", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			engine := newTestEngine(&fakeProvider{response: tc.payload})

			_, err := engine.Analyze(context.Background(), testSymptoms, nil)
			if !errors.Is(err, ErrMalformedResponse) {
				t.Errorf("expected ErrMalformedResponse, got %v", err)
			}
		})
	}
}

// TestAnalyze_ProviderError checks that the underlying cause is preserved.
func TestAnalyze_ProviderError(t *testing.T) {
	cause := errors.New("429 rate limit exceeded")
	engine := newTestEngine(&fakeProvider{chatErr: cause})

	_, err := engine.Analyze(context.Background(), testSymptoms, nil)
	if !errors.Is(err, ErrProvider) {
		t.Fatalf("expected ErrProvider, got %v", err)
	}
	if !strings.Contains(err.Error(), cause.Error()) {
		t.Errorf("error should preserve the cause message, got %q", err.Error())
	}
}

// TestAnalyzeStream_MatchesBlocking verifies that concatenating the streamed
// chunks equals the blocking payload and decodes to the same result.
func TestAnalyzeStream_MatchesBlocking(t *testing.T) {
	chunks := splitChunks(fullPayload, 7)
	engine := newTestEngine(&fakeProvider{chunks: chunks})

	stream, err := engine.AnalyzeStream(context.Background(), testSymptoms, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var sb strings.Builder
	var received int
	for chunk := range stream.Chunks() {
		sb.WriteString(chunk)
		received++
	}

	if received != len(chunks) {
		t.Errorf("chunks received: got %d, want %d", received, len(chunks))
	}
	if sb.String() != fullPayload {
		t.Error("concatenated chunks should equal the full payload")
	}

	streamed, err := stream.Result()
	if err != nil {
		t.Fatalf("unexpected stream result error: %v", err)
	}

	blocking, err := newTestEngine(&fakeProvider{response: fullPayload}).
		Analyze(context.Background(), testSymptoms, nil)
	if err != nil {
		t.Fatalf("unexpected blocking error: %v", err)
	}

	if !reflect.DeepEqual(streamed, blocking) {
		t.Errorf("streamed and blocking results differ:\nstream   %+v\nblocking %+v", streamed, blocking)
	}
}

// TestAnalyzeStream_MalformedAtEnd verifies every fragment is yielded before
// the terminal decode failure.
func TestAnalyzeStream_MalformedAtEnd(t *testing.T) {
	chunks := []string{`{"condition": `, `"Migra`} // never completes
	engine := newTestEngine(&fakeProvider{chunks: chunks})

	stream, err := engine.AnalyzeStream(context.Background(), testSymptoms, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var received []string
	for chunk := range stream.Chunks() {
		received = append(received, chunk)
	}
	if !reflect.DeepEqual(received, chunks) {
		t.Errorf("chunks: got %v, want %v", received, chunks)
	}

	result, err := stream.Result()
	if !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("expected ErrMalformedResponse, got %v", err)
	}
	if result != nil {
		t.Error("no result should be available after a decode failure")
	}
}

// TestAnalyzeStream_ProviderErrorMidStream checks transport failure after
// some chunks were already delivered.
func TestAnalyzeStream_ProviderErrorMidStream(t *testing.T) {
	engine := newTestEngine(&fakeProvider{
		chunks:    []string{`{"condition":`},
		streamErr: errors.New("connection reset by peer"),
	})

	stream, err := engine.AnalyzeStream(context.Background(), testSymptoms, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var received int
	for range stream.Chunks() {
		received++
	}
	if received != 1 {
		t.Errorf("chunks received: got %d, want 1", received)
	}

	result, err := stream.Result()
	if !errors.Is(err, ErrProvider) {
		t.Errorf("expected ErrProvider, got %v", err)
	}
	if result != nil {
		t.Error("no result should be available after a transport failure")
	}
}

// TestAnalyzeStream_InvalidInput verifies validation happens before the
// stream is created.
func TestAnalyzeStream_InvalidInput(t *testing.T) {
	fake := &fakeProvider{chunks: splitChunks(fullPayload, 16)}
	engine := newTestEngine(fake)

	stream, err := engine.AnalyzeStream(context.Background(), "hm", nil)
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if stream != nil {
		t.Error("no stream should be returned for invalid input")
	}
	if got := fake.calls.Load(); got != 0 {
		t.Errorf("provider calls: got %d, want 0", got)
	}
}

// TestAnalyzeStream_Cancel verifies that abandoning the stream after the
// first chunk terminates it with no result, and that a fresh call starts an
// independent request.
func TestAnalyzeStream_Cancel(t *testing.T) {
	fake := &fakeProvider{chunks: splitChunks(fullPayload, 4)}
	engine := newTestEngine(fake)

	ctx, cancel := context.WithCancel(context.Background())
	stream, err := engine.AnalyzeStream(ctx, testSymptoms, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, ok := <-stream.Chunks()
	if !ok || first == "" {
		t.Fatal("expected at least one chunk before cancellation")
	}
	cancel()

	result, err := stream.Result()
	if err == nil {
		t.Error("expected an error after cancellation")
	}
	if result != nil {
		t.Error("no result should be available after cancellation")
	}

	// A subsequent call is a fresh, independent request.
	fresh, err := engine.AnalyzeStream(context.Background(), testSymptoms, nil)
	if err != nil {
		t.Fatalf("unexpected error on fresh stream: %v", err)
	}
	for range fresh.Chunks() {
	}
	if _, err := fresh.Result(); err != nil {
		t.Errorf("fresh stream should succeed, got %v", err)
	}
}
