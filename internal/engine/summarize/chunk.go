package summarize

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// Tokenizer counts subword tokens.
type Tokenizer interface {
	Count(text string) int
}

// Chunk packs texts, in order, into space-joined chunks whose token total
// stays within limit. A single text over the limit becomes its own chunk.
func Chunk(texts []string, limit int, tok Tokenizer) []string {
	var (
		out    []string
		buf    []string
		tokens int
	)
	for _, t := range texts {
		n := tok.Count(t)
		if tokens+n > limit && len(buf) > 0 {
			out = append(out, strings.Join(buf, " "))
			buf, tokens = nil, 0
		}
		buf = append(buf, t)
		tokens += n
	}
	if len(buf) > 0 {
		out = append(out, strings.Join(buf, " "))
	}
	return out
}

// cl100kEncoding matches the tokenizer of current OpenAI chat models; it is
// used for budgeting regardless of backend.
const cl100kEncoding = "cl100k_base"

var (
	loaderOnce sync.Once
	bpe        *tiktoken.Tiktoken
	bpeErr     error
)

type tiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

func (t tiktokenCounter) Count(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

// NewTokenizer returns the cl100k_base tokenizer. The BPE ranks are embedded,
// so no network access is needed.
func NewTokenizer() (Tokenizer, error) {
	loaderOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
		bpe, bpeErr = tiktoken.GetEncoding(cl100kEncoding)
	})
	if bpeErr != nil {
		return nil, fmt.Errorf("load %s: %w", cl100kEncoding, bpeErr)
	}
	return tiktokenCounter{enc: bpe}, nil
}
