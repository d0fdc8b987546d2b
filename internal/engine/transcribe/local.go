package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Yudaimo23/yt-summarizer/internal/engine"
)

// Local transcribes with a whisper.cpp binary.
type Local struct {
	audio *audioFetcher
	bin   string
	model string
}

func newLocal(audio *audioFetcher, bin, model string) *Local {
	if bin == "" {
		bin = "whisper-cli"
	}
	return &Local{audio: audio, bin: bin, model: model}
}

// whisperCppOutput is the -oj JSON document written by whisper.cpp.
type whisperCppOutput struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"` // ms
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

func (l *Local) Transcribe(ctx context.Context, videoURL string) (engine.Transcript, error) {
	engine.IncrSTTRequests()

	dir, err := os.MkdirTemp("", "ytsum-whisper-*")
	if err != nil {
		return nil, fmt.Errorf("whisper.cpp: temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	wav, err := l.audio.WAV(ctx, videoURL, dir)
	if err != nil {
		return nil, err
	}

	outPrefix := filepath.Join(dir, "whisper")
	args := []string{
		"-m", l.model,
		"-f", wav,
		"-l", "auto",
		"-oj",
		"-of", outPrefix,
	}
	if b, err := l.audio.run(ctx, l.bin, args...); err != nil {
		return nil, fmt.Errorf("whisper.cpp failed: %w\n%s", err, string(b))
	}

	jb, err := os.ReadFile(outPrefix + ".json")
	if err != nil {
		return nil, fmt.Errorf("whisper.cpp: read output: %w", err)
	}
	return parseWhisperCpp(jb)
}

func parseWhisperCpp(data []byte) (engine.Transcript, error) {
	var out whisperCppOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("whisper.cpp: parse output: %w", err)
	}
	tr := make(engine.Transcript, 0, len(out.Transcription))
	for _, s := range out.Transcription {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		start := float64(s.Offsets.From) / 1000
		dur := float64(s.Offsets.To-s.Offsets.From) / 1000
		if dur < 0 {
			dur = 0
		}
		tr = append(tr, engine.Segment{Text: text, Start: start, Duration: dur})
	}
	if len(tr) == 0 {
		return nil, fmt.Errorf("whisper.cpp: empty transcription")
	}
	return tr, nil
}
