package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yudaimo23/yt-summarizer/internal/engine"
)

var errTransient = errors.New("connection reset by peer")

type mockStrategy struct {
	name  string
	tr    engine.Transcript
	err   error
	calls int
	langs []string
}

func (m *mockStrategy) Name() string { return m.name }

func (m *mockStrategy) Attempt(_ context.Context, _, lang string) (engine.Transcript, error) {
	m.calls++
	m.langs = append(m.langs, lang)
	return m.tr, m.err
}

var okTranscript = engine.Transcript{{Text: "hello", Start: 0, Duration: 1}}

func chain(results ...*mockStrategy) (*Resolver, []*mockStrategy) {
	ss := make([]Strategy, len(results))
	for i, r := range results {
		ss[i] = r
	}
	return New(ss...), results
}

func calls(ms []*mockStrategy) []int {
	out := make([]int, len(ms))
	for i, m := range ms {
		out[i] = m.calls
	}
	return out
}

func TestResolve_DefinitiveShortCircuits(t *testing.T) {
	r, ms := chain(
		&mockStrategy{name: "direct", err: engine.NoTranscript("captions are disabled for this video")},
		&mockStrategy{name: "proxied", tr: okTranscript},
		&mockStrategy{name: "ytdlp", tr: okTranscript},
		&mockStrategy{name: "paid", tr: okTranscript},
	)

	_, err := r.Resolve(context.Background(), "abc", "ja")
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrNoCaptions)
	assert.ErrorIs(t, err, engine.ErrNoTranscript)
	assert.Equal(t, []int{1, 0, 0, 0}, calls(ms))

	var nce *engine.NoCaptionsError
	require.ErrorAs(t, err, &nce)
	assert.Equal(t, "abc", nce.VideoID)
	assert.Contains(t, nce.Reason, "disabled")
}

func TestResolve_TransientFallsThrough(t *testing.T) {
	r, ms := chain(
		&mockStrategy{name: "direct", err: errTransient},
		&mockStrategy{name: "proxied", tr: okTranscript},
		&mockStrategy{name: "ytdlp", tr: okTranscript},
	)

	tr, src, err := r.ResolveSource(context.Background(), "abc", "ja")
	require.NoError(t, err)
	assert.Equal(t, okTranscript, tr)
	assert.Equal(t, "proxied", src)
	assert.Equal(t, []int{1, 1, 0}, calls(ms))
	assert.Equal(t, []string{"ja"}, ms[1].langs)
}

func TestResolve_FirstSuccessWins(t *testing.T) {
	r, ms := chain(
		&mockStrategy{name: "direct", tr: okTranscript},
		&mockStrategy{name: "proxied", tr: okTranscript},
	)
	_, err := r.Resolve(context.Background(), "abc", "en")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, calls(ms))
}

func TestResolve_AllFail(t *testing.T) {
	r, ms := chain(
		&mockStrategy{name: "direct", err: errTransient},
		&mockStrategy{name: "proxied", err: errTransient},
		&mockStrategy{name: "ytdlp", err: errTransient},
		&mockStrategy{name: "paid", err: errTransient},
	)

	_, err := r.Resolve(context.Background(), "abc", "ja")
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrNoCaptions)
	assert.NotErrorIs(t, err, engine.ErrNoTranscript)
	assert.NotErrorIs(t, err, errTransient, "transient errors are swallowed")
	assert.Equal(t, []int{1, 1, 1, 1}, calls(ms))
	assert.Contains(t, err.Error(), "restricting access")
}

func TestResolve_SkippedAndEmpty(t *testing.T) {
	r, ms := chain(
		&mockStrategy{name: "direct", err: errTransient},
		&mockStrategy{name: "proxied", err: ErrStrategySkipped},
		&mockStrategy{name: "ytdlp"}, // empty transcript, no error
		&mockStrategy{name: "paid", err: ErrStrategySkipped},
	)

	_, err := r.Resolve(context.Background(), "abc", "ja")
	assert.ErrorIs(t, err, engine.ErrNoCaptions)
	assert.Equal(t, []int{1, 1, 1, 1}, calls(ms))
}

func TestResolve_NoStrategies(t *testing.T) {
	_, err := New().Resolve(context.Background(), "abc", "ja")
	assert.ErrorIs(t, err, engine.ErrNoCaptions)
}

func TestResolve_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r, ms := chain(&mockStrategy{name: "direct", tr: okTranscript})

	_, err := r.Resolve(ctx, "abc", "ja")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []int{0}, calls(ms))
}

func TestStrategies(t *testing.T) {
	r := Build(engine.Config{})
	assert.Equal(t, []string{"direct", "proxied", "ytdlp", "paid"}, r.Strategies())
}
