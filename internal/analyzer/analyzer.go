// Package analyzer implements the AI-backed symptom analysis engine.
//
// The Engine owns a single llm.Provider handle and exposes two delivery
// modes over the same prompt-construction and decoding logic: Analyze (one
// blocking round trip) and AnalyzeStream (incremental fragments followed by
// the decoded result). All domain reasoning is delegated to the model; the
// engine validates only the structure of the response, never its medical
// content.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/M-Ayaan-21/DG-Open-SEVA/internal/llm"
	"github.com/M-Ayaan-21/DG-Open-SEVA/internal/prompt"
)

// Errors surfaced by the engine. All are recoverable at the caller.
var (
	// ErrInvalidInput mirrors the prompt package's precondition failure so
	// callers can match the whole taxonomy against one package.
	ErrInvalidInput = prompt.ErrInvalidInput

	// ErrProvider indicates the completion request itself failed
	// (transport, auth, rate limit, provider-side error). The underlying
	// cause is preserved in the wrapped message.
	ErrProvider = errors.New("analyzer: llm request failed")

	// ErrMalformedResponse indicates the provider returned text that is not
	// a valid JSON object. This is a provider-contract violation, not a
	// user error.
	ErrMalformedResponse = errors.New("analyzer: llm returned malformed response")
)

// Options holds the read-only model configuration applied to every request.
type Options struct {
	// Model identifies the chat model; empty uses the provider default.
	Model string

	// Temperature is the decoding temperature. Moderate and non-zero so
	// phrasing varies while staying consistent.
	Temperature float32

	// MaxTokens bounds the generated answer.
	MaxTokens int
}

// Engine performs symptom analysis by delegating to an LLM provider.
// It holds no per-call state and is safe for concurrent use.
type Engine struct {
	provider llm.Provider
	opts     Options
	logger   *slog.Logger
}

// New creates an Engine around the given provider. Zero option fields fall
// back to the standard decoding configuration (temperature 0.7, 2000 tokens).
func New(provider llm.Provider, opts Options, logger *slog.Logger) *Engine {
	if opts.Temperature == 0 {
		opts.Temperature = 0.7
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = 2000
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		provider: provider,
		opts:     opts,
		logger:   logger,
	}
}

// Analyze performs one blocking analysis round trip: validate, send the
// prompt, read the full response, decode it into a Result.
//
// Error taxonomy: ErrInvalidInput if the symptom text fails the
// precondition (no network call is made), ErrProvider if the completion
// request fails, ErrMalformedResponse if the payload is not a JSON object.
func (e *Engine) Analyze(ctx context.Context, symptoms string, info *prompt.AdditionalInfo) (*Result, error) {
	messages, err := prompt.Build(symptoms, info)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("analyzing symptoms", "model", e.opts.Model, "chars", len(symptoms))

	resp, err := e.provider.Chat(ctx, messages, e.chatOptions())
	if err != nil {
		e.logger.Error("analysis request failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	result, err := decodeResult(resp.Content)
	if err != nil {
		e.logger.Error("analysis response not decodable", "error", err)
		return nil, err
	}

	e.logger.Debug("analysis complete", "condition", result.Condition, "severity", result.Severity)
	return result, nil
}

// Stream is the handle returned by AnalyzeStream. Chunks yields raw text
// fragments as they arrive; the fragments are slices of the eventual JSON
// document and must not be parsed individually. Once the channel is closed,
// Result returns the decoded final value or the terminal error. Fragments
// already delivered are never retracted by a terminal error.
type Stream struct {
	chunks chan string
	done   chan struct{}

	// set by the pump goroutine before done is closed
	result *Result
	err    error
}

// Chunks returns the channel of raw text fragments. The channel is closed
// when the provider signals completion or the stream fails.
func (s *Stream) Chunks() <-chan string {
	return s.chunks
}

// Result blocks until the stream has terminated, then returns the decoded
// result or the terminal error (ErrProvider on mid-stream transport failure,
// ErrMalformedResponse when the accumulated text is not a JSON object).
func (s *Stream) Result() (*Result, error) {
	<-s.done
	return s.result, s.err
}

// AnalyzeStream starts an incremental analysis. Input validation happens
// before any network call, so an ErrInvalidInput is returned here and no
// Stream is created. Canceling ctx at any point releases the underlying
// request; chunks already received remain delivered but no result becomes
// available.
func (e *Engine) AnalyzeStream(ctx context.Context, symptoms string, info *prompt.AdditionalInfo) (*Stream, error) {
	messages, err := prompt.Build(symptoms, info)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("starting streaming analysis", "model", e.opts.Model, "chars", len(symptoms))

	events, err := e.provider.ChatStream(ctx, messages, e.chatOptions())
	if err != nil {
		e.logger.Error("failed to start analysis stream", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	s := &Stream{
		chunks: make(chan string),
		done:   make(chan struct{}),
	}

	go e.pump(ctx, events, s)

	return s, nil
}

// pump forwards provider events to the stream and decodes the accumulated
// text once the provider signals completion.
func (e *Engine) pump(ctx context.Context, events <-chan llm.StreamEvent, s *Stream) {
	defer close(s.done)
	defer close(s.chunks)

	var sb strings.Builder

	for event := range events {
		if event.Error != nil {
			e.logger.Error("analysis stream failed", "error", event.Error)
			s.err = fmt.Errorf("%w: %v", ErrProvider, event.Error)
			return
		}

		if event.Content == "" {
			continue
		}

		sb.WriteString(event.Content)

		select {
		case s.chunks <- event.Content:
		case <-ctx.Done():
			e.logger.Debug("analysis stream canceled", "error", ctx.Err())
			s.err = fmt.Errorf("%w: %v", ErrProvider, ctx.Err())
			return
		}
	}

	result, err := decodeResult(sb.String())
	if err != nil {
		e.logger.Error("streamed payload not decodable", "error", err)
		s.err = err
		return
	}

	e.logger.Debug("streaming analysis complete", "condition", result.Condition)
	s.result = result
}

func (e *Engine) chatOptions() *llm.ChatOptions {
	return &llm.ChatOptions{
		Model:       e.opts.Model,
		Temperature: e.opts.Temperature,
		MaxTokens:   e.opts.MaxTokens,
		JSONOutput:  true,
	}
}
