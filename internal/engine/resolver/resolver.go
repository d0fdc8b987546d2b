// Package resolver turns a video id into a transcript by walking an ordered
// chain of caption acquisition strategies.
package resolver

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/Yudaimo23/yt-summarizer/internal/engine"
)

// ErrStrategySkipped marks a strategy that is not configured or had nothing
// to try. The resolver moves on without logging a failure.
var ErrStrategySkipped = errors.New("strategy skipped")

// Strategy is one transcript acquisition method.
//
// Attempt returns an error wrapping engine.ErrNoTranscript when the platform
// itself reports that no captions exist; the chain stops there. Any other
// error is treated as transient.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, videoID, lang string) (engine.Transcript, error)
}

// Resolver tries strategies strictly in order. The first success wins.
type Resolver struct {
	strategies []Strategy
}

func New(strategies ...Strategy) *Resolver {
	return &Resolver{strategies: strategies}
}

// Strategies returns the strategy names in attempt order.
func (r *Resolver) Strategies() []string {
	names := make([]string, len(r.strategies))
	for i, s := range r.strategies {
		names[i] = s.Name()
	}
	return names
}

// Resolve returns the transcript for videoID, or an error matching
// engine.ErrNoCaptions once every strategy has been exhausted.
func (r *Resolver) Resolve(ctx context.Context, videoID, lang string) (engine.Transcript, error) {
	tr, _, err := r.ResolveSource(ctx, videoID, lang)
	return tr, err
}

// ResolveSource is Resolve that also reports which strategy succeeded.
func (r *Resolver) ResolveSource(ctx context.Context, videoID, lang string) (engine.Transcript, string, error) {
	engine.IncrTranscriptRequests()

	var failed []string
	for _, s := range r.strategies {
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}

		tr, err := s.Attempt(ctx, videoID, lang)
		switch {
		case err == nil && len(tr) > 0:
			engine.IncrCaptionsSource(s.Name())
			slog.Debug("resolver: transcript resolved",
				slog.String("id", videoID), slog.String("strategy", s.Name()), slog.Int("segments", len(tr)))
			return tr, s.Name(), nil

		case err == nil:
			slog.Warn("resolver: strategy returned empty transcript, falling through",
				slog.String("id", videoID), slog.String("strategy", s.Name()))
			failed = append(failed, s.Name())

		case errors.Is(err, ErrStrategySkipped):
			slog.Debug("resolver: strategy skipped",
				slog.String("id", videoID), slog.String("strategy", s.Name()), slog.Any("reason", err))

		case errors.Is(err, engine.ErrNoTranscript):
			engine.IncrNoCaptions()
			slog.Info("resolver: platform reports no captions",
				slog.String("id", videoID), slog.String("strategy", s.Name()), slog.Any("err", err))
			return nil, "", &engine.NoCaptionsError{VideoID: videoID, Reason: err.Error(), Err: err}

		default:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, "", ctxErr
			}
			slog.Warn("resolver: strategy failed, falling through",
				slog.String("id", videoID), slog.String("strategy", s.Name()), slog.Any("err", err))
			failed = append(failed, s.Name())
		}
	}

	engine.IncrNoCaptions()
	reason := "no strategy was available"
	if len(failed) > 0 {
		reason = "tried " + strings.Join(failed, ", ")
	}
	return nil, "", &engine.NoCaptionsError{VideoID: videoID, Reason: reason}
}
