// Package sources fetches raw transcript data from YouTube and its
// neighbours: the public caption endpoints, the yt-dlp binary and free
// proxy lists. Every fetcher returns engine.Transcript or an error
// wrapping engine.ErrNoTranscript when YouTube says no captions exist.
//
// YouTube caption access is split across two files by responsibility:
//
//	youtube_innertube.go - Innertube request/response types and constants
//	youtube_captions.go  - watch page + ANDROID player fallback, track choice, timedtext
package sources
