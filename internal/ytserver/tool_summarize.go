package ytserver

import (
	"context"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Yudaimo23/yt-summarizer/internal/engine"
)

type summarizeFunc func(ctx context.Context, req *mcp.CallToolRequest, input engine.SummarizeInput) (*mcp.CallToolResult, engine.SummarizeOutput, error)

func registerSummarize(server *mcp.Server, p Runner) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_summarize",
		Description: "Summarize a YouTube video. Resolves the transcript (captions, optionally speech-to-text), splits it into token-bounded chunks, condenses each chunk with the chosen LLM backend (gemini or openai) and merges the partial summaries. Prompt presets: " + strings.Join(engine.PresetNames(), ", ") + ".",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, summarizeHandler(p))
}

func summarizeHandler(p Runner) summarizeFunc {
	return func(ctx context.Context, req *mcp.CallToolRequest, input engine.SummarizeInput) (*mcp.CallToolResult, engine.SummarizeOutput, error) {
		preq, err := buildRequest(input.URL, input.Language, input.Method, input.Whisper)
		if err != nil {
			return nil, engine.SummarizeOutput{}, err
		}
		if input.Backend != "" {
			if preq.Backend, err = engine.ParseBackend(input.Backend); err != nil {
				return nil, engine.SummarizeOutput{}, err
			}
		}
		preq.Prompt = engine.ResolvePrompt(input.Prompt, input.Preset)

		res, err := p.Run(ctx, preq)
		if err != nil {
			slog.Warn("youtube_summarize: failed", slog.String("url", preq.URL), slog.Any("error", err))
			return nil, engine.SummarizeOutput{}, err
		}

		return nil, engine.SummarizeOutput{
			VideoID: res.VideoID,
			Source:  res.Source,
			Backend: string(res.Backend),
			Summary: res.Summary,
		}, nil
	}
}
