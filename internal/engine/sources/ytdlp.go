package sources

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/Yudaimo23/yt-summarizer/internal/engine"
)

// YtDlp drives the yt-dlp binary to download subtitle tracks only.
type YtDlp struct {
	bin string
	run func(ctx context.Context, name string, args ...string) ([]byte, error)
}

func NewYtDlp(bin string) *YtDlp {
	if bin == "" {
		bin = "yt-dlp"
	}
	return &YtDlp{bin: bin, run: runCombined}
}

func runCombined(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Subtitles downloads manual or auto-generated VTT subtitles for langs and
// parses the first file found in language priority order.
func (y *YtDlp) Subtitles(ctx context.Context, videoID string, langs []string) (engine.Transcript, error) {
	if len(langs) == 0 {
		return nil, errors.New("yt-dlp: no subtitle languages")
	}
	dir, err := os.MkdirTemp("", "ytsum-subs-*")
	if err != nil {
		return nil, fmt.Errorf("yt-dlp: temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	args := []string{
		"--skip-download",
		"--write-auto-subs",
		"--write-subs",
		"--sub-langs", strings.Join(langs, ","),
		"--sub-format", "vtt",
		"--no-warnings",
		"-o", filepath.Join(dir, "%(id)s.%(ext)s"),
		engine.WatchURL(videoID),
	}
	if b, err := y.run(ctx, y.bin, args...); err != nil {
		return nil, fmt.Errorf("yt-dlp failed: %w\n%s", err, engine.Truncate(string(b), 2000))
	}

	path, err := pickSubtitleFile(dir, langs)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp: read subtitles: %w", err)
	}
	tr := ParseVTT(data)
	if len(tr) == 0 {
		return nil, fmt.Errorf("yt-dlp: no cues in %s", filepath.Base(path))
	}
	return tr, nil
}

// pickSubtitleFile returns <id>.<lang>.vtt (or a regional variant such as
// <id>.en-US.vtt) for the first language that has one.
func pickSubtitleFile(dir string, langs []string) (string, error) {
	for _, lang := range langs {
		for _, pattern := range []string{"*." + lang + ".vtt", "*." + lang + "-*.vtt"} {
			matches, err := filepath.Glob(filepath.Join(dir, pattern))
			if err != nil {
				return "", fmt.Errorf("yt-dlp: glob: %w", err)
			}
			if len(matches) > 0 {
				return matches[0], nil
			}
		}
	}
	return "", fmt.Errorf("yt-dlp: no subtitles in %s", strings.Join(langs, ", "))
}
