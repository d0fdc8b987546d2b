package engine

import (
	"fmt"
	"strings"
)

// --- Transcript types ---

// Segment is one timed unit of transcript text.
// Start and Duration are seconds; both are 0 when the source cannot report timing.
type Segment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// Transcript is an ordered sequence of segments owned by the call that produced it.
type Transcript []Segment

// Texts returns the segment texts in order.
func (t Transcript) Texts() []string {
	out := make([]string, len(t))
	for i, s := range t {
		out[i] = s.Text
	}
	return out
}

// Text joins all segment texts with a single space.
func (t Transcript) Text() string {
	return strings.Join(t.Texts(), " ")
}

// --- Summarization backends ---

// Backend selects the LLM provider used for condensation.
type Backend string

const (
	BackendGemini Backend = "gemini"
	BackendOpenAI Backend = "openai"
)

// Backends lists every backend the CLI and MCP surfaces accept.
var Backends = []Backend{BackendGemini, BackendOpenAI}

// ParseBackend maps a user-supplied name onto a Backend.
func ParseBackend(name string) (Backend, error) {
	b := Backend(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Backends {
		if b == known {
			return b, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedBackend, name)
}

// Default per-chunk token budgets. Gemini accepts far larger inputs than the
// OpenAI-compatible models we route through go-kit/llm.
const (
	DefaultChunkTokensGemini = 8000
	DefaultChunkTokensOpenAI = 3500
)

// --- Tool I/O types (MCP) ---

type TranscriptInput struct {
	URL      string `json:"url" jsonschema:"YouTube video URL (youtu.be/<id> or youtube.com/watch?v=<id>)"`
	Language string `json:"language,omitempty" jsonschema:"Preferred caption language (default: ja)"`
	Method   string `json:"method,omitempty" jsonschema:"Transcript method: caption (default), auto (caption then speech-to-text), whisper"`
	Whisper  string `json:"whisper,omitempty" jsonschema:"Speech-to-text mode: local (whisper.cpp, default) or api"`
	Segments bool   `json:"segments,omitempty" jsonschema:"Include timed segments in the output"`
}

type TranscriptOutput struct {
	VideoID  string     `json:"video_id"`
	Source   string     `json:"source"`
	Segments int        `json:"segments"`
	Text     string     `json:"text"`
	Items    Transcript `json:"items,omitempty"`
}

type SummarizeInput struct {
	URL      string `json:"url" jsonschema:"YouTube video URL"`
	Language string `json:"language,omitempty" jsonschema:"Preferred caption language (default: ja)"`
	Backend  string `json:"backend,omitempty" jsonschema:"LLM backend: gemini (default) or openai"`
	Prompt   string `json:"prompt,omitempty" jsonschema:"Summarization instruction; overrides preset"`
	Preset   string `json:"preset,omitempty" jsonschema:"Prompt preset: standard, brief, english, timeline"`
	Method   string `json:"method,omitempty" jsonschema:"Transcript method: caption (default), auto (caption then speech-to-text), whisper"`
	Whisper  string `json:"whisper,omitempty" jsonschema:"Speech-to-text mode: local (whisper.cpp, default) or api"`
}

type SummarizeOutput struct {
	VideoID string `json:"video_id"`
	Source  string `json:"source"`
	Backend string `json:"backend"`
	Summary string `json:"summary"`
}
