// Package pipeline wires URL parsing, transcript resolution, optional
// speech-to-text and summarization into one call for the CLI and MCP server.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Yudaimo23/yt-summarizer/internal/engine"
	"github.com/Yudaimo23/yt-summarizer/internal/engine/transcribe"
)

// Method selects how the transcript is acquired.
type Method string

const (
	MethodCaption Method = "caption" // captions only
	MethodAuto    Method = "auto"    // captions, then speech-to-text on ErrNoCaptions
	MethodWhisper Method = "whisper" // speech-to-text only
)

// ParseMethod maps a user-supplied name onto a Method. Empty means caption.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return MethodCaption, nil
	case MethodCaption, MethodAuto, MethodWhisper:
		return m, nil
	default:
		return "", fmt.Errorf("unknown method %q (want auto, caption or whisper)", s)
	}
}

// Request is one pipeline run.
type Request struct {
	URL      string
	Language string // preferred caption language; empty uses the configured default
	Method   Method
	Whisper  transcribe.Mode
	Backend  engine.Backend // empty = gemini
	Prompt   string         // empty = engine.DefaultPrompt
}

// Result carries everything a caller needs to render or persist.
type Result struct {
	VideoID    string
	Source     string // resolver strategy name, or "whisper-local" / "whisper-api"
	Transcript engine.Transcript
	Backend    engine.Backend
	Summary    string
}

// TranscriptResolver is satisfied by *resolver.Resolver.
type TranscriptResolver interface {
	ResolveSource(ctx context.Context, videoID, lang string) (engine.Transcript, string, error)
}

// Summarizer is satisfied by *summarize.Summarizer.
type Summarizer interface {
	Summarize(ctx context.Context, tr engine.Transcript, b engine.Backend, prompt string) (string, error)
}

// TranscriberFunc returns the speech-to-text collaborator for a mode.
type TranscriberFunc func(mode transcribe.Mode) (transcribe.Transcriber, error)

// Deps are the pipeline's collaborators. Cache may be nil.
type Deps struct {
	Resolver    TranscriptResolver
	Summarizer  Summarizer
	Transcriber TranscriberFunc
	Cache       *engine.Cache
	Language    string
}

// slowSummary is the duration past which a summarization is logged as slow.
const slowSummary = 3 * time.Minute

type Pipeline struct {
	deps Deps
}

func New(d Deps) *Pipeline {
	if d.Language == "" {
		d.Language = "ja"
	}
	return &Pipeline{deps: d}
}

type cachedTranscript struct {
	Source   string            `json:"source"`
	Segments engine.Transcript `json:"segments"`
}

// Transcript resolves the request's transcript without summarizing it.
func (p *Pipeline) Transcript(ctx context.Context, req Request) (Result, error) {
	id, err := engine.ParseVideoID(req.URL)
	if err != nil {
		return Result{}, err
	}
	lang := req.Language
	if lang == "" {
		lang = p.deps.Language
	}
	method := req.Method
	if method == "" {
		method = MethodCaption
	}

	res := Result{VideoID: id}
	switch method {
	case MethodCaption, MethodAuto:
		res.Transcript, res.Source, err = p.captions(ctx, id, lang)
		if err == nil || method == MethodCaption || !errors.Is(err, engine.ErrNoCaptions) {
			return res, err
		}
		slog.Info("pipeline: no captions, falling back to speech-to-text",
			slog.String("id", id), slog.String("mode", string(req.Whisper)))
		res.Transcript, res.Source, err = p.speech(ctx, id, req.Whisper)
		return res, err
	case MethodWhisper:
		res.Transcript, res.Source, err = p.speech(ctx, id, req.Whisper)
		return res, err
	default:
		return Result{}, fmt.Errorf("unknown method %q", method)
	}
}

// Run resolves the transcript and summarizes it.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	if p.deps.Summarizer == nil {
		return Result{}, errors.New("pipeline: no summarizer configured")
	}
	b := req.Backend
	if b == "" {
		b = engine.BackendGemini
	}

	res, err := p.Transcript(ctx, req)
	if err != nil {
		return res, err
	}
	res.Backend = b

	start := time.Now()
	err = engine.TrackOperation(ctx, "summarize "+res.VideoID, slowSummary, func(ctx context.Context) error {
		var serr error
		res.Summary, serr = p.deps.Summarizer.Summarize(ctx, res.Transcript, b, req.Prompt)
		return serr
	})
	if err != nil {
		return res, fmt.Errorf("summarize %s: %w", res.VideoID, err)
	}
	slog.Info("pipeline: summary ready",
		slog.String("id", res.VideoID), slog.String("source", res.Source),
		slog.String("backend", string(b)), slog.Int("segments", len(res.Transcript)),
		slog.Duration("summarize", time.Since(start)))
	return res, nil
}

func (p *Pipeline) captions(ctx context.Context, id, lang string) (engine.Transcript, string, error) {
	key := engine.CacheKey("captions", id, lang)
	if c, ok := engine.CacheLoadJSON[cachedTranscript](ctx, p.deps.Cache, key); ok && len(c.Segments) > 0 {
		return c.Segments, c.Source, nil
	}
	if p.deps.Resolver == nil {
		return nil, "", errors.New("pipeline: no resolver configured")
	}
	tr, src, err := p.deps.Resolver.ResolveSource(ctx, id, lang)
	if err != nil {
		return nil, "", err
	}
	engine.CacheStoreJSON(ctx, p.deps.Cache, key, cachedTranscript{Source: src, Segments: tr})
	return tr, src, nil
}

func (p *Pipeline) speech(ctx context.Context, id string, mode transcribe.Mode) (engine.Transcript, string, error) {
	if mode == "" {
		mode = transcribe.ModeLocal
	}
	source := "whisper-" + string(mode)
	key := engine.CacheKey("speech", id, string(mode))
	if c, ok := engine.CacheLoadJSON[cachedTranscript](ctx, p.deps.Cache, key); ok && len(c.Segments) > 0 {
		return c.Segments, c.Source, nil
	}
	if p.deps.Transcriber == nil {
		return nil, "", errors.New("pipeline: speech-to-text is not configured")
	}
	t, err := p.deps.Transcriber(mode)
	if err != nil {
		return nil, "", err
	}
	tr, err := t.Transcribe(ctx, engine.WatchURL(id))
	if err != nil {
		return nil, "", fmt.Errorf("speech-to-text %s: %w", id, err)
	}
	engine.CacheStoreJSON(ctx, p.deps.Cache, key, cachedTranscript{Source: source, Segments: tr})
	return tr, source, nil
}

// Persist writes <dir>/<id>.json and, when present, <dir>/<id>_summary.md.
func Persist(dir string, res Result) (transcriptPath, summaryPath string, err error) {
	transcriptPath, err = engine.WriteTranscript(dir, res.VideoID, res.Transcript)
	if err != nil {
		return "", "", err
	}
	if res.Summary != "" {
		summaryPath, err = engine.WriteSummary(dir, res.VideoID, res.Summary)
		if err != nil {
			return transcriptPath, "", err
		}
	}
	return transcriptPath, summaryPath, nil
}
