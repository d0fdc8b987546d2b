// Package transcribe produces transcripts from a video's audio when no
// captions can be fetched. Only used when a caller asks for it.
package transcribe

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/Yudaimo23/yt-summarizer/internal/engine"
)

// Transcriber turns a video URL into a transcript.
type Transcriber interface {
	Transcribe(ctx context.Context, videoURL string) (engine.Transcript, error)
}

// Mode selects the speech-to-text implementation.
type Mode string

const (
	ModeLocal Mode = "local" // whisper.cpp
	ModeAPI   Mode = "api"   // OpenAI audio transcriptions
)

// ParseMode maps a user-supplied name onto a Mode. Empty means local.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeLocal, nil
	case ModeLocal, ModeAPI:
		return m, nil
	default:
		return "", fmt.Errorf("unknown whisper mode %q (want local or api)", s)
	}
}

// runFunc runs an external command and returns its combined output.
type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func runCombined(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Build returns the transcriber for mode.
func Build(cfg engine.Config, mode Mode) (Transcriber, error) {
	audio := &audioFetcher{ytdlp: cfg.YtDlpPath, ffmpeg: cfg.FFmpegPath, run: runCombined}
	switch Mode(strings.ToLower(string(mode))) {
	case ModeLocal, "":
		return newLocal(audio, cfg.WhisperBin, cfg.WhisperModel), nil
	case ModeAPI:
		key := cfg.OpenAIAPIKey
		if key == "" {
			return nil, fmt.Errorf("whisper api: OPENAI_API_KEY is not set")
		}
		return newAPI(audio, key, cfg.WhisperAPIModel, cfg.HTTPClient), nil
	default:
		return nil, fmt.Errorf("unknown whisper mode %q (want local or api)", mode)
	}
}
