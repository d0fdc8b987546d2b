package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yudaimo23/yt-summarizer/internal/engine"
	"github.com/Yudaimo23/yt-summarizer/internal/engine/transcribe"
)

var captionTr = engine.Transcript{{Text: "from captions", Start: 0, Duration: 1}}
var speechTr = engine.Transcript{{Text: "from speech", Start: 0, Duration: 2}}

type fakeResolver struct {
	err   error
	calls int
	lang  string
}

func (f *fakeResolver) ResolveSource(_ context.Context, _, lang string) (engine.Transcript, string, error) {
	f.calls++
	f.lang = lang
	if f.err != nil {
		return nil, "", f.err
	}
	return captionTr, "direct", nil
}

type fakeTranscriber struct {
	calls int
	url   string
}

func (f *fakeTranscriber) Transcribe(_ context.Context, url string) (engine.Transcript, error) {
	f.calls++
	f.url = url
	return speechTr, nil
}

type fakeSummarizer struct {
	backend engine.Backend
	prompt  string
	got     engine.Transcript
}

func (f *fakeSummarizer) Summarize(_ context.Context, tr engine.Transcript, b engine.Backend, prompt string) (string, error) {
	f.got, f.backend, f.prompt = tr, b, prompt
	return "summary of " + tr.Text(), nil
}

type fixture struct {
	res   *fakeResolver
	stt   *fakeTranscriber
	sum   *fakeSummarizer
	modes []transcribe.Mode
	p     *Pipeline
}

func newFixture(resolveErr error, cache *engine.Cache) *fixture {
	f := &fixture{
		res: &fakeResolver{err: resolveErr},
		stt: &fakeTranscriber{},
		sum: &fakeSummarizer{},
	}
	f.p = New(Deps{
		Resolver:   f.res,
		Summarizer: f.sum,
		Transcriber: func(mode transcribe.Mode) (transcribe.Transcriber, error) {
			f.modes = append(f.modes, mode)
			return f.stt, nil
		},
		Cache: cache,
	})
	return f
}

func noCaptions() error {
	return &engine.NoCaptionsError{VideoID: "abc", Reason: "tried direct"}
}

func TestParseMethod(t *testing.T) {
	for in, want := range map[string]Method{"": MethodCaption, "auto": MethodAuto, " Whisper ": MethodWhisper, "caption": MethodCaption} {
		got, err := ParseMethod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseMethod("ocr")
	assert.Error(t, err)
}

func TestRun_Methods(t *testing.T) {
	tests := []struct {
		name       string
		method     Method
		resolveErr error
		wantSource string
		wantErr    error
		wantRes    int
		wantSTT    int
	}{
		{"caption ok", MethodCaption, nil, "direct", nil, 1, 0},
		{"caption no captions", MethodCaption, noCaptions(), "", engine.ErrNoCaptions, 1, 0},
		{"auto ok", MethodAuto, nil, "direct", nil, 1, 0},
		{"auto falls back to speech", MethodAuto, noCaptions(), "whisper-api", nil, 1, 1},
		{"auto keeps other errors", MethodAuto, context.DeadlineExceeded, "", context.DeadlineExceeded, 1, 0},
		{"whisper only", MethodWhisper, nil, "whisper-api", nil, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.resolveErr, nil)
			res, err := f.p.Run(context.Background(), Request{
				URL:     "https://youtu.be/abc",
				Method:  tt.method,
				Whisper: transcribe.ModeAPI,
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantSource, res.Source)
				assert.Equal(t, "abc", res.VideoID)
				assert.Equal(t, "summary of "+res.Transcript.Text(), res.Summary)
			}
			assert.Equal(t, tt.wantRes, f.res.calls, "resolver calls")
			assert.Equal(t, tt.wantSTT, f.stt.calls, "speech-to-text calls")
		})
	}
}

func TestRun_Defaults(t *testing.T) {
	f := newFixture(nil, nil)
	res, err := f.p.Run(context.Background(), Request{URL: "https://www.youtube.com/watch?v=abc"})
	require.NoError(t, err)
	assert.Equal(t, engine.BackendGemini, res.Backend)
	assert.Equal(t, engine.BackendGemini, f.sum.backend)
	assert.Equal(t, "ja", f.res.lang)
	assert.Equal(t, captionTr, f.sum.got)
}

func TestRun_SpeechDefaultsToLocal(t *testing.T) {
	f := newFixture(nil, nil)
	_, err := f.p.Run(context.Background(), Request{URL: "https://youtu.be/abc", Method: MethodWhisper})
	require.NoError(t, err)
	assert.Equal(t, []transcribe.Mode{transcribe.ModeLocal}, f.modes)
	assert.Equal(t, "https://www.youtube.com/watch?v=abc", f.stt.url)
}

func TestRun_InvalidURL(t *testing.T) {
	f := newFixture(nil, nil)
	_, err := f.p.Run(context.Background(), Request{URL: "https://vimeo.com/1"})
	assert.ErrorIs(t, err, engine.ErrInvalidURL)
	assert.Zero(t, f.res.calls, "no network activity for invalid URLs")
}

func TestTranscript_Cached(t *testing.T) {
	cache := engine.NewCache("", time.Minute, 10, time.Minute)
	defer cache.Close()
	f := newFixture(nil, cache)

	for range 3 {
		res, err := f.p.Transcript(context.Background(), Request{URL: "https://youtu.be/abc", Language: "en"})
		require.NoError(t, err)
		assert.Equal(t, captionTr, res.Transcript)
		assert.Equal(t, "direct", res.Source)
	}
	assert.Equal(t, 1, f.res.calls)

	_, err := f.p.Transcript(context.Background(), Request{URL: "https://youtu.be/abc", Language: "ja"})
	require.NoError(t, err)
	assert.Equal(t, 2, f.res.calls, "different language is a different cache entry")
}

func TestPersist(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "outputs")
	tp, sp, err := Persist(dir, Result{VideoID: "abc", Transcript: captionTr, Summary: "- point"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "abc.json"), tp)
	assert.Equal(t, filepath.Join(dir, "abc_summary.md"), sp)

	b, err := os.ReadFile(sp)
	require.NoError(t, err)
	assert.Equal(t, "- point\n", string(b))

	_, sp, err = Persist(dir, Result{VideoID: "xyz", Transcript: captionTr})
	require.NoError(t, err)
	assert.Empty(t, sp)
}

func TestRun_SummarizerError(t *testing.T) {
	f := newFixture(nil, nil)
	f.p.deps.Summarizer = errSummarizer{}
	_, err := f.p.Run(context.Background(), Request{URL: "https://youtu.be/abc"})
	assert.ErrorIs(t, err, errLLM)
}

var errLLM = errors.New("quota exceeded")

type errSummarizer struct{}

func (errSummarizer) Summarize(context.Context, engine.Transcript, engine.Backend, string) (string, error) {
	return "", errLLM
}
