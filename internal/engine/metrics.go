package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	TranscriptRequests atomic.Int64
	CaptionsDirect     atomic.Int64
	CaptionsProxied    atomic.Int64
	CaptionsYtDlp      atomic.Int64
	CaptionsPaid       atomic.Int64
	NoCaptions         atomic.Int64
	STTRequests        atomic.Int64
	Summaries          atomic.Int64
	LLMCalls           atomic.Int64
	LLMErrors          atomic.Int64
}

var metricKeys = []string{
	"transcript_requests",
	"captions_direct", "captions_proxied", "captions_ytdlp", "captions_paid",
	"no_captions", "stt_requests",
	"summaries", "llm_calls", "llm_errors",
	"cache_hits", "cache_misses",
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"transcript_requests": metrics.TranscriptRequests.Load(),
		"captions_direct":     metrics.CaptionsDirect.Load(),
		"captions_proxied":    metrics.CaptionsProxied.Load(),
		"captions_ytdlp":      metrics.CaptionsYtDlp.Load(),
		"captions_paid":       metrics.CaptionsPaid.Load(),
		"no_captions":         metrics.NoCaptions.Load(),
		"stt_requests":        metrics.STTRequests.Load(),
		"summaries":           metrics.Summaries.Load(),
		"llm_calls":           metrics.LLMCalls.Load(),
		"llm_errors":          metrics.LLMErrors.Load(),
		"cache_hits":          hits,
		"cache_misses":        misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

func IncrTranscriptRequests() { metrics.TranscriptRequests.Add(1) }
func IncrNoCaptions()         { metrics.NoCaptions.Add(1) }
func IncrSTTRequests()        { metrics.STTRequests.Add(1) }
func IncrSummaries()          { metrics.Summaries.Add(1) }
func IncrLLMCalls()           { metrics.LLMCalls.Add(1) }
func IncrLLMErrors()          { metrics.LLMErrors.Add(1) }

// IncrCaptionsSource counts a successful resolution by strategy name.
func IncrCaptionsSource(strategy string) {
	switch strategy {
	case "direct":
		metrics.CaptionsDirect.Add(1)
	case "proxied":
		metrics.CaptionsProxied.Add(1)
	case "ytdlp":
		metrics.CaptionsYtDlp.Add(1)
	case "paid":
		metrics.CaptionsPaid.Add(1)
	}
}

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, threshold time.Duration, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > threshold {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
