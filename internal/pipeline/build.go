package pipeline

import (
	"context"
	"errors"

	"github.com/Yudaimo23/yt-summarizer/internal/engine"
	"github.com/Yudaimo23/yt-summarizer/internal/engine/resolver"
	"github.com/Yudaimo23/yt-summarizer/internal/engine/summarize"
	"github.com/Yudaimo23/yt-summarizer/internal/engine/transcribe"
)

// Build constructs a pipeline from configuration. The returned close func
// releases the cache and LLM clients.
func Build(ctx context.Context, cfg engine.Config) (*Pipeline, func() error, error) {
	sum, err := summarize.Build(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	cache := engine.NewCache(cfg.RedisURL, cfg.CacheTTL, cfg.CacheMaxEntries, cfg.CacheCleanupInterval)

	p := New(Deps{
		Resolver:   resolver.Build(cfg),
		Summarizer: sum,
		Transcriber: func(mode transcribe.Mode) (transcribe.Transcriber, error) {
			return transcribe.Build(cfg, mode)
		},
		Cache:    cache,
		Language: cfg.PreferredLanguage,
	})
	closeFn := func() error {
		return errors.Join(sum.Close(), cache.Close())
	}
	return p, closeFn, nil
}
