package resolver

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Yudaimo23/yt-summarizer/internal/engine"
	"github.com/Yudaimo23/yt-summarizer/internal/engine/sources"
)

const (
	proxyTimeout = 15 * time.Second
	paidTimeout  = 30 * time.Second
)

// Build wires the default chain: direct, proxied, ytdlp, paid.
func Build(cfg engine.Config) *Resolver {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	dial := func(proxyURL string) (CaptionFetcher, error) {
		hc, err := sources.NewProxyHTTPClient(proxyURL, proxyTimeout)
		if err != nil {
			return nil, err
		}
		return sources.NewCaptionsClient(hc), nil
	}

	return New(
		NewDirect(sources.NewCaptionsClient(hc)),
		NewProxied(sources.NewGeonodeProvider(hc, cfg.ProxyListURL), cfg.ProxyAttempts, dial),
		NewYtDlp(sources.NewYtDlp(cfg.YtDlpPath)),
		NewPaid(paidFetcher(cfg)),
	)
}

// paidFetcher prefers an explicit authenticated proxy URL, then a Webshare
// pool behind the stealth browser client. Returns nil when neither is set.
func paidFetcher(cfg engine.Config) CaptionFetcher {
	if cfg.PaidProxyURL != "" {
		hc, err := sources.NewProxyHTTPClient(cfg.PaidProxyURL, paidTimeout)
		if err == nil {
			return sources.NewCaptionsClient(hc)
		}
		slog.Warn("resolver: invalid PAID_PROXY_URL, ignoring", slog.Any("error", err))
	}
	if cfg.WebshareAPIKey != "" {
		bc, err := engine.NewWebshareClient(cfg.WebshareAPIKey, int(paidTimeout/time.Second))
		if err != nil {
			slog.Warn("resolver: webshare client init failed, paid strategy disabled", slog.Any("error", err))
			return nil
		}
		return sources.NewCaptionsClient(engine.NewBrowserHTTP(bc))
	}
	return nil
}
