package summarize

import (
	"context"
	"fmt"

	"github.com/anatolykoptev/go-kit/llm"
)

// OpenAI condenses text through any OpenAI-compatible chat completions endpoint.
type OpenAI struct {
	client *llm.Client
}

func NewOpenAI(client *llm.Client) *OpenAI {
	return &OpenAI{client: client}
}

func (o *OpenAI) Condense(ctx context.Context, text, prompt string) (string, error) {
	out, err := o.client.Complete(ctx, "", prompt+"\n\n"+text)
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	return out, nil
}
