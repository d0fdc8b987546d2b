package ytserver

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Yudaimo23/yt-summarizer/internal/engine"
)

type transcriptFunc func(ctx context.Context, req *mcp.CallToolRequest, input engine.TranscriptInput) (*mcp.CallToolResult, engine.TranscriptOutput, error)

func registerTranscript(server *mcp.Server, p Runner) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_transcript",
		Description: "Fetch the transcript of a YouTube video. Tries public captions directly, through free proxies, via yt-dlp and through a paid proxy; optionally falls back to speech-to-text (method=auto or whisper). Returns plain text plus optional timed segments.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, transcriptHandler(p))
}

func transcriptHandler(p Runner) transcriptFunc {
	return func(ctx context.Context, req *mcp.CallToolRequest, input engine.TranscriptInput) (*mcp.CallToolResult, engine.TranscriptOutput, error) {
		preq, err := buildRequest(input.URL, input.Language, input.Method, input.Whisper)
		if err != nil {
			return nil, engine.TranscriptOutput{}, err
		}

		res, err := p.Transcript(ctx, preq)
		if err != nil {
			slog.Warn("youtube_transcript: failed", slog.String("url", preq.URL), slog.Any("error", err))
			return nil, engine.TranscriptOutput{}, err
		}

		slog.Info("youtube_transcript: done",
			slog.String("id", res.VideoID), slog.String("source", res.Source),
			slog.Int("segments", len(res.Transcript)))
		return nil, transcriptOutput(res, input.Segments), nil
	}
}
