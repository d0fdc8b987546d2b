// Package ytserver exposes the transcript pipeline as MCP tools.
package ytserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Yudaimo23/yt-summarizer/internal/engine"
	"github.com/Yudaimo23/yt-summarizer/internal/engine/transcribe"
	"github.com/Yudaimo23/yt-summarizer/internal/pipeline"
)

// maxTextRunes caps the plain-text transcript returned to MCP clients.
const maxTextRunes = 60000

// Runner is satisfied by *pipeline.Pipeline.
type Runner interface {
	Transcript(ctx context.Context, req pipeline.Request) (pipeline.Result, error)
	Run(ctx context.Context, req pipeline.Request) (pipeline.Result, error)
}

// RegisterTools registers youtube_transcript and youtube_summarize on server.
func RegisterTools(server *mcp.Server, p Runner) {
	registerTranscript(server, p)
	registerSummarize(server, p)
}

// ToolCount is the number of tools RegisterTools adds.
const ToolCount = 2

// buildRequest validates the fields shared by both tools.
func buildRequest(url, lang, method, whisper string) (pipeline.Request, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return pipeline.Request{}, fmt.Errorf("url is required")
	}
	m, err := pipeline.ParseMethod(method)
	if err != nil {
		return pipeline.Request{}, err
	}
	w, err := transcribe.ParseMode(whisper)
	if err != nil {
		return pipeline.Request{}, err
	}
	return pipeline.Request{
		URL:      url,
		Language: strings.TrimSpace(lang),
		Method:   m,
		Whisper:  w,
	}, nil
}

func transcriptOutput(res pipeline.Result, withSegments bool) engine.TranscriptOutput {
	out := engine.TranscriptOutput{
		VideoID:  res.VideoID,
		Source:   res.Source,
		Segments: len(res.Transcript),
		Text:     engine.TruncateRunes(res.Transcript.Text(), maxTextRunes, "…"),
	}
	if withSegments {
		out.Items = res.Transcript
	}
	return out
}
