package transcribe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// audioFetcher downloads a video's best audio stream with yt-dlp and converts
// it to 16 kHz mono WAV with ffmpeg.
type audioFetcher struct {
	ytdlp  string
	ffmpeg string
	run    runFunc
}

// WAV writes <dir>/audio.wav and returns its path.
func (a *audioFetcher) WAV(ctx context.Context, videoURL, dir string) (string, error) {
	ytdlp, ffmpeg := a.ytdlp, a.ffmpeg
	if ytdlp == "" {
		ytdlp = "yt-dlp"
	}
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}

	if b, err := a.run(ctx, ytdlp,
		"-f", "bestaudio",
		"--no-playlist",
		"--no-warnings",
		"-o", filepath.Join(dir, "source.%(ext)s"),
		videoURL,
	); err != nil {
		return "", fmt.Errorf("yt-dlp audio download: %w\n%s", err, string(b))
	}

	matches, err := filepath.Glob(filepath.Join(dir, "source.*"))
	if err != nil || len(matches) == 0 {
		return "", fmt.Errorf("yt-dlp audio download: no output file in %s", dir)
	}
	src := matches[0]
	for _, m := range matches {
		if !strings.HasSuffix(m, ".part") {
			src = m
			break
		}
	}

	wav := filepath.Join(dir, "audio.wav")
	if b, err := a.run(ctx, ffmpeg,
		"-y",
		"-i", src,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		wav,
	); err != nil {
		return "", fmt.Errorf("ffmpeg extract audio: %w\n%s", err, string(b))
	}
	if _, err := os.Stat(wav); err != nil {
		return "", fmt.Errorf("ffmpeg extract audio: %w", err)
	}
	return wav, nil
}
