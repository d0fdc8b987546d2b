package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/Yudaimo23/yt-summarizer/internal/engine"
)

// Gemini condenses text with a Google generative model.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Gemini{client: client, model: client.GenerativeModel(model)}, nil
}

func (g *Gemini) Condense(ctx context.Context, text, prompt string) (string, error) {
	resp, err := engine.RetryDo(ctx, engine.DefaultRetryConfig, func() (*genai.GenerateContentResponse, error) {
		return g.model.GenerateContent(ctx, genai.Text(prompt+"\n\n"+text))
	})
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	return geminiText(resp)
}

func (g *Gemini) Close() error {
	return g.client.Close()
}

// geminiText concatenates the text parts of the first candidate that has content.
func geminiText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", errors.New("gemini: nil response")
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		var sb strings.Builder
		for _, part := range c.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
		if sb.Len() > 0 {
			return sb.String(), nil
		}
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0] != nil {
		return "", fmt.Errorf("gemini: empty response (finish reason %v)", resp.Candidates[0].FinishReason)
	}
	return "", errors.New("gemini: no candidates")
}
