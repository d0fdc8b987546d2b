package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/Yudaimo23/yt-summarizer/internal/engine"
)

// Doer issues HTTP requests. *http.Client and *engine.BrowserHTTP satisfy it.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// CaptionsClient fetches caption tracks for a video.
// Primary:  scrape watch page ytInitialPlayerResponse → caption XML
// Fallback: ANDROID Innertube /player → captionTracks
//
// Errors wrapping engine.ErrNoTranscript are the platform's definitive answer;
// everything else is a transient access failure.
type CaptionsClient struct {
	http      Doer
	watchURL  string
	playerURL string
	retry     engine.RetryConfig
}

// CaptionsOption configures a CaptionsClient.
type CaptionsOption func(*CaptionsClient)

// WithEndpoints overrides the watch-page prefix (the id is appended) and the player URL.
func WithEndpoints(watchURL, playerURL string) CaptionsOption {
	return func(c *CaptionsClient) {
		c.watchURL = watchURL
		c.playerURL = playerURL
	}
}

// WithRetry overrides the HTTP retry policy.
func WithRetry(rc engine.RetryConfig) CaptionsOption {
	return func(c *CaptionsClient) { c.retry = rc }
}

func NewCaptionsClient(doer Doer, opts ...CaptionsOption) *CaptionsClient {
	if doer == nil {
		doer = http.DefaultClient
	}
	c := &CaptionsClient{
		http:      doer,
		watchURL:  ytWatchURL,
		playerURL: ytInnertubeURL,
		retry:     engine.DefaultRetryConfig,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Fetch returns the transcript of the best caption track for langs (priority order).
func (c *CaptionsClient) Fetch(ctx context.Context, videoID string, langs []string) (engine.Transcript, error) {
	tracks, err := c.tracksFromWatchPage(ctx, videoID)
	if err != nil && !errors.Is(err, engine.ErrNoTranscript) {
		slog.Debug("youtube: page scrape failed, trying player",
			slog.String("id", videoID), slog.Any("err", err))
		tracks, err = c.tracksFromPlayer(ctx, videoID)
	}
	if err != nil {
		return nil, err
	}

	track, err := pickTrack(tracks, langs)
	if err != nil {
		return nil, err
	}
	return c.fetchTimedText(ctx, track.BaseURL)
}

// tracksFromWatchPage scrapes the watch page HTML and reads captionTracks
// from ytInitialPlayerResponse.
func (c *CaptionsClient) tracksFromWatchPage(ctx context.Context, videoID string) ([]captionTrack, error) {
	watchURL := c.watchURL + url.QueryEscape(videoID)

	resp, err := engine.RetryHTTP(ctx, c.retry, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, watchURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.RandomUserAgent())
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Cookie", "CONSENT=YES+cb")
		return c.http.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("watch page: HTTP %d", resp.StatusCode)
	}

	jsonData, err := findPlayerResponse(io.LimitReader(resp.Body, 6*1024*1024))
	if err != nil {
		return nil, err
	}

	var player playerResponse
	if err := json.Unmarshal(jsonData, &player); err != nil {
		return nil, fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	return captionTracks(player)
}

// findPlayerResponse walks the page's <script> elements and returns the
// ytInitialPlayerResponse JSON object.
func findPlayerResponse(r io.Reader) ([]byte, error) {
	z := html.NewTokenizer(r)
	inScript := false
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != nil && err != io.EOF {
				return nil, fmt.Errorf("read watch page: %w", err)
			}
			return nil, errors.New("ytInitialPlayerResponse not found in watch page")
		case html.StartTagToken:
			name, _ := z.TagName()
			inScript = string(name) == "script"
		case html.EndTagToken:
			inScript = false
		case html.TextToken:
			if !inScript {
				continue
			}
			text := z.Text()
			idx := bytes.Index(text, []byte(ytInitialPlayerResponseMarker))
			if idx < 0 {
				continue
			}
			if data := extractJSON(text[idx+len(ytInitialPlayerResponseMarker):]); data != nil {
				return data, nil
			}
			return nil, errors.New("failed to extract ytInitialPlayerResponse JSON")
		}
	}
}

// tracksFromPlayer uses the ANDROID Innertube /player endpoint.
func (c *CaptionsClient) tracksFromPlayer(ctx context.Context, videoID string) ([]captionTrack, error) {
	reqBody, err := json.Marshal(androidPlayerRequest(videoID))
	if err != nil {
		return nil, err
	}

	resp, err := engine.RetryHTTP(ctx, c.retry, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.playerURL, bytes.NewReader(reqBody))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", ytAndroidUA)
		req.Header.Set("X-Youtube-Client-Name", "3")
		req.Header.Set("X-Youtube-Client-Version", ytAndroidVersion)
		return c.http.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("android innertube: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("android innertube: HTTP %d", resp.StatusCode)
	}

	var player playerResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 3*1024*1024)).Decode(&player); err != nil {
		return nil, fmt.Errorf("decode player: %w", err)
	}
	return captionTracks(player)
}

// captionTracks classifies a player response. An unavailable video or a
// playable video without captions is definitive; anything else that blocks
// access (LOGIN_REQUIRED bot checks, unplayable in region) is transient.
func captionTracks(p playerResponse) ([]captionTrack, error) {
	var status, reason string
	if p.PlayabilityStatus != nil {
		status, reason = p.PlayabilityStatus.Status, p.PlayabilityStatus.Reason
	}
	switch status {
	case "OK":
	case "ERROR":
		if reason == "" {
			reason = "video unavailable"
		}
		return nil, engine.NoTranscript(reason)
	case "":
		return nil, errors.New("player response has no playability status")
	default:
		return nil, fmt.Errorf("playability %s: %s", status, reason)
	}

	if p.Captions == nil || len(p.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks) == 0 {
		return nil, engine.NoTranscript("captions are disabled for this video")
	}
	return p.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks, nil
}

// needsPoToken reports whether a caption track URL requires a PoToken (browser-only).
// Tracks with &exp=xpe cannot be fetched server-side.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// pickTrack selects a manual track in language order, then an auto-generated
// one. No track in any requested language is definitive; matching tracks that
// all need a PoToken are not.
func pickTrack(tracks []captionTrack, langs []string) (captionTrack, error) {
	matched := false
	for _, auto := range []bool{false, true} {
		for _, lang := range langs {
			for _, t := range tracks {
				if t.LanguageCode != lang || (t.Kind == "asr") != auto {
					continue
				}
				matched = true
				if !needsPoToken(t.BaseURL) {
					return t, nil
				}
			}
		}
	}
	if matched {
		return captionTrack{}, errors.New("all matching caption tracks require PoToken")
	}
	return captionTrack{}, engine.NoTranscript(fmt.Sprintf("no transcript in %s", strings.Join(langs, ", ")))
}

// fetchTimedText fetches and parses a YouTube timedtext XML caption URL.
func (c *CaptionsClient) fetchTimedText(ctx context.Context, baseURL string) (engine.Transcript, error) {
	resp, err := engine.RetryHTTP(ctx, c.retry, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.RandomUserAgent())
		return c.http.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch timedtext: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch timedtext: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
	if err != nil {
		return nil, err
	}
	return parseTimedText(body)
}

func parseTimedText(body []byte) (engine.Transcript, error) {
	var tt ytTimedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return nil, fmt.Errorf("parse timedtext XML: %w", err)
	}

	out := make(engine.Transcript, 0, len(tt.Lines))
	for _, line := range tt.Lines {
		text := engine.CleanHTML(line.Text)
		if text == "" {
			continue
		}
		out = append(out, engine.Segment{Text: text, Start: line.Start, Duration: line.Dur})
	}
	if len(out) == 0 {
		return nil, errors.New("empty timedtext")
	}
	return out, nil
}
