package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Yudaimo23/yt-summarizer/internal/engine"
	"github.com/Yudaimo23/yt-summarizer/internal/engine/sources"
)

// CaptionFetcher is satisfied by *sources.CaptionsClient.
type CaptionFetcher interface {
	Fetch(ctx context.Context, videoID string, langs []string) (engine.Transcript, error)
}

// SubtitleFetcher is satisfied by *sources.YtDlp.
type SubtitleFetcher interface {
	Subtitles(ctx context.Context, videoID string, langs []string) (engine.Transcript, error)
}

// captionLangs is the language order for caption API strategies.
func captionLangs(lang string) []string { return engine.Languages(lang, "en", "ja") }

// --- direct ---

// Direct queries the captions API over the plain network path.
type Direct struct {
	captions CaptionFetcher
}

func NewDirect(f CaptionFetcher) *Direct { return &Direct{captions: f} }

func (d *Direct) Name() string { return "direct" }

func (d *Direct) Attempt(ctx context.Context, videoID, lang string) (engine.Transcript, error) {
	return d.captions.Fetch(ctx, videoID, captionLangs(lang))
}

// --- proxied ---

// DialFunc builds a caption fetcher routed through proxyURL.
type DialFunc func(proxyURL string) (CaptionFetcher, error)

// Proxied repeats the direct query through up to maxProxies distinct
// anonymous proxies.
type Proxied struct {
	provider   sources.ProxyProvider
	maxProxies int
	dial       DialFunc
}

func NewProxied(p sources.ProxyProvider, maxProxies int, dial DialFunc) *Proxied {
	if maxProxies <= 0 {
		maxProxies = 3
	}
	return &Proxied{provider: p, maxProxies: maxProxies, dial: dial}
}

func (p *Proxied) Name() string { return "proxied" }

func (p *Proxied) Attempt(ctx context.Context, videoID, lang string) (engine.Transcript, error) {
	if p.provider == nil || p.dial == nil {
		return nil, fmt.Errorf("%w: no proxy provider", ErrStrategySkipped)
	}
	proxies, err := p.provider.Proxies(ctx, p.maxProxies)
	if err != nil {
		return nil, fmt.Errorf("proxy list: %w", err)
	}
	if len(proxies) == 0 {
		return nil, fmt.Errorf("%w: no proxies available", ErrStrategySkipped)
	}

	langs := captionLangs(lang)
	var lastErr error
	for i, proxy := range proxies {
		f, err := p.dial(proxy)
		if err != nil {
			lastErr = err
			continue
		}
		tr, err := f.Fetch(ctx, videoID, langs)
		if err == nil {
			return tr, nil
		}
		if errors.Is(err, engine.ErrNoTranscript) || ctx.Err() != nil {
			return nil, err
		}
		slog.Debug("resolver: proxy attempt failed",
			slog.String("id", videoID), slog.Int("attempt", i+1), slog.String("proxy", proxy), slog.Any("err", err))
		lastErr = err
	}
	return nil, fmt.Errorf("%d proxies failed, last: %w", len(proxies), lastErr)
}

// --- ytdlp ---

// YtDlp downloads subtitle tracks with the external downloader.
// Its failures are never definitive.
type YtDlp struct {
	subs SubtitleFetcher
}

func NewYtDlp(s SubtitleFetcher) *YtDlp { return &YtDlp{subs: s} }

func (y *YtDlp) Name() string { return "ytdlp" }

func (y *YtDlp) Attempt(ctx context.Context, videoID, lang string) (engine.Transcript, error) {
	if y.subs == nil {
		return nil, fmt.Errorf("%w: yt-dlp not configured", ErrStrategySkipped)
	}
	tr, err := y.subs.Subtitles(ctx, videoID, engine.Languages(lang, "en"))
	if errors.Is(err, engine.ErrNoTranscript) {
		// Subtitle download problems are access failures, not platform answers.
		return nil, fmt.Errorf("yt-dlp: %v", err)
	}
	return tr, err
}

// --- paid ---

// Paid makes one attempt through an authenticated proxy. A nil fetcher means
// none is configured.
type Paid struct {
	captions CaptionFetcher
}

func NewPaid(f CaptionFetcher) *Paid { return &Paid{captions: f} }

func (p *Paid) Name() string { return "paid" }

func (p *Paid) Attempt(ctx context.Context, videoID, lang string) (engine.Transcript, error) {
	if p.captions == nil {
		return nil, fmt.Errorf("%w: no paid proxy configured", ErrStrategySkipped)
	}
	return p.captions.Fetch(ctx, videoID, captionLangs(lang))
}
