package cli

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Yudaimo23/yt-summarizer/internal/engine"
	"github.com/Yudaimo23/yt-summarizer/internal/engine/transcribe"
	"github.com/Yudaimo23/yt-summarizer/internal/pipeline"
)

func run(cmd *cobra.Command, url string, build buildFunc) error {
	methodFlag, _ := cmd.Flags().GetString("method")
	whisperFlag, _ := cmd.Flags().GetString("whisper")
	backendFlag, _ := cmd.Flags().GetString("backend")
	lang, _ := cmd.Flags().GetString("lang")
	prompt, _ := cmd.Flags().GetString("prompt")
	preset, _ := cmd.Flags().GetString("preset")
	outDir, _ := cmd.Flags().GetString("out")
	transcriptOnly, _ := cmd.Flags().GetBool("transcript-only")

	method, err := pipeline.ParseMethod(methodFlag)
	if err != nil {
		return err
	}
	mode, err := transcribe.ParseMode(whisperFlag)
	if err != nil {
		return err
	}
	backend, err := engine.ParseBackend(backendFlag)
	if err != nil {
		return err
	}

	cfg := engine.LoadConfig()
	if outDir == "" {
		outDir = cfg.OutputDir
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, closeFn, err := build(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer func() {
		if err := closeFn(); err != nil {
			slog.Warn("ytsum: close failed", slog.Any("error", err))
		}
	}()

	req := pipeline.Request{
		URL:      url,
		Language: lang,
		Method:   method,
		Whisper:  mode,
		Backend:  backend,
		Prompt:   engine.ResolvePrompt(prompt, preset),
	}

	var res pipeline.Result
	if transcriptOnly {
		res, err = p.Transcript(ctx, req)
	} else {
		res, err = p.Run(ctx, req)
	}
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ transcript via %s (%d segments)\n", res.Source, len(res.Transcript))

	jsonPath, mdPath, err := pipeline.Persist(outDir, res)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ transcript saved → %s\n", jsonPath)
	if mdPath != "" {
		fmt.Fprintf(out, "✓ summary saved → %s\n", mdPath)
	}
	return nil
}
