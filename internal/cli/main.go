// Package cli implements the ytsum command: resolve a video's transcript,
// summarize it and write both under an output directory.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Yudaimo23/yt-summarizer/internal/engine"
	"github.com/Yudaimo23/yt-summarizer/internal/pipeline"
)

// ExitNoCaptions is the status for videos without any usable transcript.
const ExitNoCaptions = 2

const noCaptionsMessage = "× this video cannot be summarized: no captions are available"

// Runner is satisfied by *pipeline.Pipeline.
type Runner interface {
	Transcript(ctx context.Context, req pipeline.Request) (pipeline.Result, error)
	Run(ctx context.Context, req pipeline.Request) (pipeline.Result, error)
}

// buildFunc constructs the runner; the returned func releases it.
type buildFunc func(ctx context.Context, cfg engine.Config) (Runner, func() error, error)

func buildPipeline(ctx context.Context, cfg engine.Config) (Runner, func() error, error) {
	return pipeline.Build(ctx, cfg)
}

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := newRootCmd(buildPipeline)
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	os.Exit(exitCode(root.Execute(), os.Stderr))
}

func exitCode(err error, stderr io.Writer) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, engine.ErrNoCaptions):
		fmt.Fprintln(stderr, noCaptionsMessage)
		fmt.Fprintln(stderr, "  "+err.Error())
		return ExitNoCaptions
	default:
		fmt.Fprintln(stderr, err)
		return 1
	}
}

func newRootCmd(build buildFunc) *cobra.Command {
	root := &cobra.Command{
		Use:          "ytsum <url>",
		Short:        "Summarize a YouTube video from its captions",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], build)
		},
	}
	root.SilenceErrors = true

	root.Flags().String("method", "auto", "auto = captions then speech-to-text, caption = captions only, whisper = speech-to-text only")
	root.Flags().String("whisper", "local", "Speech-to-text backend: local (whisper.cpp) or api (OpenAI)")
	root.Flags().String("backend", string(engine.BackendGemini), "LLM backend: "+backendNames())
	root.Flags().String("lang", "", "Preferred caption language (default from YTSUM_LANGUAGE, else ja)")
	root.Flags().String("prompt", "", "Summarization instruction (overrides --preset)")
	root.Flags().String("preset", "", "Prompt preset: "+strings.Join(engine.PresetNames(), ", "))
	root.Flags().String("out", "", "Output directory (default from OUTPUT_DIR, else outputs)")
	root.Flags().Bool("transcript-only", false, "Write the transcript and skip summarization")
	return root
}

func backendNames() string {
	names := make([]string, len(engine.Backends))
	for i, b := range engine.Backends {
		names[i] = string(b)
	}
	return strings.Join(names, ", ")
}
