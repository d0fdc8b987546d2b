// yt-summarizer: YouTube transcript and summary MCP server.
//
// Exposes two MCP tools: youtube_transcript, youtube_summarize.
// Runs as HTTP MCP server or stdio transport. The ytsum CLI in cmd/ytsum
// drives the same pipeline from a terminal.
package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Yudaimo23/yt-summarizer/internal/engine"
	"github.com/Yudaimo23/yt-summarizer/internal/pipeline"
	"github.com/Yudaimo23/yt-summarizer/internal/ytserver"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8892")
)

func main() {
	_ = godotenv.Load()

	cfg := engine.LoadConfig()
	p, closeFn, err := pipeline.Build(context.Background(), cfg)
	if err != nil {
		slog.Error("pipeline init failed", slog.Any("error", err))
		return
	}
	defer func() {
		if err := closeFn(); err != nil {
			slog.Warn("shutdown", slog.Any("error", err))
		}
	}()

	slog.Info("starting yt-summarizer",
		slog.String("port", mcpPort),
		slog.String("language", cfg.PreferredLanguage),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "yt-summarizer",
		Version: version,
	}, nil)

	ytserver.RegisterTools(server, p)
	slog.Info("tools registered", slog.Int("count", ytserver.ToolCount))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "yt-summarizer",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}
