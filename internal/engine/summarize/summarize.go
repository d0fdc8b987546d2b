// Package summarize condenses transcripts with an LLM using a two-level
// reduce: one call per token-bounded chunk, then one call over the partials.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Yudaimo23/yt-summarizer/internal/engine"
)

// ErrEmptyTranscript is returned when there is no text to summarize.
var ErrEmptyTranscript = errors.New("empty transcript")

// Condenser is one LLM backend.
type Condenser interface {
	Condense(ctx context.Context, text, prompt string) (string, error)
}

type backend struct {
	condenser   Condenser
	chunkTokens int
}

// Summarizer dispatches to registered backends. Safe for concurrent use.
type Summarizer struct {
	tok      Tokenizer
	backends map[engine.Backend]backend
	limiter  *rate.Limiter // nil = unpaced
}

// Option configures a Summarizer.
type Option func(*Summarizer)

// WithBackend registers a condenser and its per-chunk token budget.
func WithBackend(b engine.Backend, c Condenser, chunkTokens int) Option {
	return func(s *Summarizer) {
		s.backends[b] = backend{condenser: c, chunkTokens: chunkTokens}
	}
}

// WithRequestsPerMinute paces LLM calls. rpm <= 0 disables pacing.
func WithRequestsPerMinute(rpm int) Option {
	return func(s *Summarizer) {
		if rpm > 0 {
			s.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1)
		}
	}
}

func New(tok Tokenizer, opts ...Option) *Summarizer {
	s := &Summarizer{tok: tok, backends: make(map[engine.Backend]backend)}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Summarize chunks the transcript, condenses each chunk in order, then
// condenses the newline-joined partials once more. The second pass runs even
// for a single chunk. LLM errors abort the call; no partial result is returned.
func (s *Summarizer) Summarize(ctx context.Context, tr engine.Transcript, b engine.Backend, prompt string) (string, error) {
	be, ok := s.backends[b]
	if !ok {
		return "", fmt.Errorf("%w: %q", engine.ErrUnsupportedBackend, b)
	}
	if strings.TrimSpace(prompt) == "" {
		prompt = engine.DefaultPrompt
	}

	chunks := Chunk(tr.Texts(), be.chunkTokens, s.tok)
	if len(chunks) == 0 {
		return "", ErrEmptyTranscript
	}
	engine.IncrSummaries()
	slog.Debug("summarize: chunked transcript",
		slog.String("backend", string(b)), slog.Int("segments", len(tr)),
		slog.Int("chunks", len(chunks)), slog.Int("limit", be.chunkTokens))

	partials := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		out, err := s.condense(ctx, be.condenser, chunk, prompt)
		if err != nil {
			return "", fmt.Errorf("summarize chunk %d/%d: %w", i+1, len(chunks), err)
		}
		partials = append(partials, out)
	}

	final, err := s.condense(ctx, be.condenser, strings.Join(partials, "\n"), prompt)
	if err != nil {
		return "", fmt.Errorf("summarize final pass: %w", err)
	}
	return final, nil
}

func (s *Summarizer) condense(ctx context.Context, c Condenser, text, prompt string) (string, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}
	engine.IncrLLMCalls()
	out, err := c.Condense(ctx, text, prompt)
	if err != nil {
		engine.IncrLLMErrors()
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Close releases backend clients that hold connections.
func (s *Summarizer) Close() error {
	var errs []error
	for _, be := range s.backends {
		if c, ok := be.condenser.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
