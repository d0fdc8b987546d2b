package summarize

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anatolykoptev/go-kit/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAICondense(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		raw, _ := json.Marshal(req["messages"])
		gotBody = string(raw)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"- point"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	o := NewOpenAI(llm.NewClient(srv.URL, "test-key", "gpt-4o-mini"))
	out, err := o.Condense(context.Background(), "transcript text", "summarize this")
	require.NoError(t, err)
	assert.Equal(t, "- point", strings.TrimSpace(out))
	assert.Contains(t, gotBody, `summarize this\n\ntranscript text`)
}
