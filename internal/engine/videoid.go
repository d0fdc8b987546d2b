package engine

import (
	"fmt"
	"net/url"
	"strings"
)

// ParseVideoID extracts the video identifier from a YouTube URL.
//   - https://youtu.be/<id>
//   - https://www.youtube.com/watch?v=<id>&t=5s
func ParseVideoID(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	host := strings.ToLower(u.Hostname())

	var id string
	switch {
	case host == "youtu.be" || host == "www.youtu.be":
		id = strings.Trim(u.Path, "/")
		if strings.Contains(id, "/") {
			id = ""
		}
	case host == "youtube.com" || strings.HasSuffix(host, ".youtube.com"):
		if strings.TrimRight(u.Path, "/") == "/watch" {
			id = u.Query().Get("v")
		}
	default:
		return "", fmt.Errorf("%w: unrecognized host %q", ErrInvalidURL, u.Host)
	}
	if id == "" {
		return "", fmt.Errorf("%w: no video id in %q", ErrInvalidURL, rawURL)
	}
	return id, nil
}

// WatchURL returns the canonical watch URL for a video id.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + url.QueryEscape(videoID)
}
