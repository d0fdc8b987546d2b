package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Yudaimo23/yt-summarizer/internal/engine"
)

const openAITranscriptionsURL = "https://api.openai.com/v1/audio/transcriptions"

// API transcribes through OpenAI's /v1/audio/transcriptions endpoint.
type API struct {
	audio    *audioFetcher
	apiKey   string
	model    string
	endpoint string
	http     *http.Client
}

func newAPI(audio *audioFetcher, apiKey, model string, hc *http.Client) *API {
	if model == "" {
		model = "whisper-1"
	}
	// Uploads and transcription of long videos outlive the default client timeout.
	client := &http.Client{Timeout: 30 * time.Minute}
	if hc != nil && hc.Transport != nil {
		client.Transport = hc.Transport
	}
	return &API{audio: audio, apiKey: apiKey, model: model, endpoint: openAITranscriptionsURL, http: client}
}

type verboseJSONResp struct {
	Language string `json:"language"`
	Text     string `json:"text"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

func (a *API) Transcribe(ctx context.Context, videoURL string) (engine.Transcript, error) {
	engine.IncrSTTRequests()

	dir, err := os.MkdirTemp("", "ytsum-whisper-*")
	if err != nil {
		return nil, fmt.Errorf("whisper api: temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	wav, err := a.audio.WAV(ctx, videoURL, dir)
	if err != nil {
		return nil, err
	}
	return a.transcribeFile(ctx, wav)
}

func (a *API) transcribeFile(ctx context.Context, audioPath string) (engine.Transcript, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("model", a.model); err != nil {
		return nil, err
	}
	if err := mw.WriteField("response_format", "verbose_json"); err != nil {
		return nil, err
	}
	fw, err := mw.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(fw, f); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	payload := body.Bytes()
	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+a.apiKey)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		return a.http.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("whisper api: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("whisper api: HTTP %d: %s", resp.StatusCode, string(b))
	}

	var vr verboseJSONResp
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return nil, fmt.Errorf("whisper api: decode: %w", err)
	}
	return verboseSegments(vr)
}

func verboseSegments(vr verboseJSONResp) (engine.Transcript, error) {
	tr := make(engine.Transcript, 0, len(vr.Segments))
	for _, s := range vr.Segments {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		dur := s.End - s.Start
		if dur < 0 {
			dur = 0
		}
		tr = append(tr, engine.Segment{Text: text, Start: s.Start, Duration: dur})
	}
	// Older models may return text without segments.
	if len(tr) == 0 {
		if text := strings.TrimSpace(vr.Text); text != "" {
			return engine.Transcript{{Text: text}}, nil
		}
		return nil, fmt.Errorf("whisper api: empty transcription")
	}
	return tr, nil
}
