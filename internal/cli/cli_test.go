package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yudaimo23/yt-summarizer/internal/engine"
	"github.com/Yudaimo23/yt-summarizer/internal/engine/transcribe"
	"github.com/Yudaimo23/yt-summarizer/internal/pipeline"
)

type fakeRunner struct {
	got         pipeline.Request
	runs        int
	transcripts int
	err         error
}

var fakeTranscript = engine.Transcript{{Text: "こんにちは", Start: 0, Duration: 1.5}}

func (f *fakeRunner) Transcript(_ context.Context, req pipeline.Request) (pipeline.Result, error) {
	f.got = req
	f.transcripts++
	if f.err != nil {
		return pipeline.Result{}, f.err
	}
	return pipeline.Result{VideoID: "dQw4w9WgXcQ", Source: "direct", Transcript: fakeTranscript}, nil
}

func (f *fakeRunner) Run(_ context.Context, req pipeline.Request) (pipeline.Result, error) {
	f.got = req
	f.runs++
	if f.err != nil {
		return pipeline.Result{}, f.err
	}
	return pipeline.Result{
		VideoID:    "dQw4w9WgXcQ",
		Source:     "direct",
		Transcript: fakeTranscript,
		Backend:    req.Backend,
		Summary:    "- 挨拶",
	}, nil
}

func execute(t *testing.T, r *fakeRunner, args ...string) (string, error) {
	t.Helper()
	closed := false
	build := func(context.Context, engine.Config) (Runner, func() error, error) {
		return r, func() error { closed = true; return nil }, nil
	}
	cmd := newRootCmd(build)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	if err == nil {
		assert.True(t, closed, "pipeline must be closed")
	}
	return out.String(), err
}

func TestRun_WritesOutputs(t *testing.T) {
	dir := t.TempDir()
	r := &fakeRunner{}
	out, err := execute(t, r, "https://youtu.be/dQw4w9WgXcQ", "--out", dir, "--backend", "openai", "--preset", "brief")
	require.NoError(t, err)

	assert.Equal(t, 1, r.runs)
	assert.Equal(t, pipeline.MethodAuto, r.got.Method)
	assert.Equal(t, transcribe.ModeLocal, r.got.Whisper)
	assert.Equal(t, engine.BackendOpenAI, r.got.Backend)
	assert.Equal(t, engine.PromptPresets["brief"], r.got.Prompt)

	assert.Contains(t, out, "transcript via direct")
	assert.Contains(t, out, "summary saved")

	data, err := os.ReadFile(filepath.Join(dir, "dQw4w9WgXcQ.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "こんにちは")

	md, err := os.ReadFile(filepath.Join(dir, "dQw4w9WgXcQ_summary.md"))
	require.NoError(t, err)
	assert.Equal(t, "- 挨拶\n", string(md))
}

func TestRun_Defaults(t *testing.T) {
	r := &fakeRunner{}
	_, err := execute(t, r, "dQw4w9WgXcQ", "--out", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, engine.BackendGemini, r.got.Backend)
	assert.Equal(t, engine.DefaultPrompt, r.got.Prompt)
	assert.Empty(t, r.got.Language)
}

func TestRun_TranscriptOnly(t *testing.T) {
	dir := t.TempDir()
	r := &fakeRunner{}
	out, err := execute(t, r, "dQw4w9WgXcQ", "--out", dir, "--transcript-only", "--method", "caption", "--lang", "en")
	require.NoError(t, err)
	assert.Equal(t, 0, r.runs)
	assert.Equal(t, 1, r.transcripts)
	assert.Equal(t, pipeline.MethodCaption, r.got.Method)
	assert.Equal(t, "en", r.got.Language)
	assert.NotContains(t, out, "summary saved")

	_, err = os.Stat(filepath.Join(dir, "dQw4w9WgXcQ_summary.md"))
	assert.True(t, os.IsNotExist(err))
}

func TestRun_InvalidFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"method", []string{"x", "--method", "ocr"}, "unknown method"},
		{"whisper", []string{"x", "--whisper", "cloud"}, "unknown whisper mode"},
		{"backend", []string{"x", "--backend", "claude"}, "unsupported"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRunner{}
			_, err := execute(t, r, tt.args...)
			require.Error(t, err)
			assert.Contains(t, strings.ToLower(err.Error()), tt.want)
			assert.Zero(t, r.runs)
		})
	}
}

func TestRun_RequiresURL(t *testing.T) {
	_, err := execute(t, &fakeRunner{})
	assert.Error(t, err)
}

func TestExitCode(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, 0, exitCode(nil, &buf))
	assert.Empty(t, buf.String())

	noCaps := &engine.NoCaptionsError{VideoID: "dQw4w9WgXcQ", Reason: "tried direct, ytdlp"}
	assert.Equal(t, ExitNoCaptions, exitCode(noCaps, &buf))
	assert.Contains(t, buf.String(), "cannot be summarized")

	buf.Reset()
	assert.Equal(t, 1, exitCode(errors.New("boom"), &buf))
	assert.Equal(t, "boom\n", buf.String())
}

func TestRun_NoCaptionsPropagates(t *testing.T) {
	noCaps := &engine.NoCaptionsError{VideoID: "dQw4w9WgXcQ", Reason: "captions are disabled"}
	_, err := execute(t, &fakeRunner{err: noCaps}, "dQw4w9WgXcQ", "--out", t.TempDir())
	assert.ErrorIs(t, err, engine.ErrNoCaptions)
	assert.Equal(t, ExitNoCaptions, exitCode(err, &bytes.Buffer{}))
}
