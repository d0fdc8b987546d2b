package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/proxypool"
)

// Re-export stealth types and functions for engine consumers.
type (
	BrowserClient = stealth.BrowserClient
	RetryConfig   = stealth.RetryConfig
)

var DefaultRetryConfig = stealth.DefaultRetryConfig

func RandomUserAgent() string { return stealth.RandomUserAgent() }

func RetryDo[T any](ctx context.Context, rc stealth.RetryConfig, fn func() (T, error)) (T, error) {
	return stealth.RetryDo(ctx, rc, fn)
}

func RetryHTTP(ctx context.Context, rc stealth.RetryConfig, fn func() (*http.Response, error)) (*http.Response, error) {
	return stealth.RetryHTTP(ctx, rc, fn)
}

// NewWebshareClient builds a Chrome-fingerprinted client that rotates through
// the Webshare proxy pool tied to apiKey.
func NewWebshareClient(apiKey string, timeoutSec int) (*BrowserClient, error) {
	pool, err := proxypool.NewWebshare(apiKey)
	if err != nil {
		return nil, fmt.Errorf("webshare pool: %w", err)
	}
	slog.Info("proxy pool initialized", slog.Int("proxies", pool.Len()))
	bc, err := stealth.NewClient(stealth.WithTimeout(timeoutSec), stealth.WithProxyPool(pool))
	if err != nil {
		return nil, fmt.Errorf("stealth client: %w", err)
	}
	return bc, nil
}

// browserDoer is the subset of stealth.BrowserClient used to issue requests.
type browserDoer interface {
	Do(method, url string, headers map[string]string, body io.Reader) ([]byte, int, error)
}

// BrowserHTTP adapts a stealth browser client to the Do(*http.Request) shape
// used by the caption fetchers.
type BrowserHTTP struct {
	bc browserDoer
}

func NewBrowserHTTP(bc *BrowserClient) *BrowserHTTP {
	return &BrowserHTTP{bc: bc}
}

func (b *BrowserHTTP) Do(req *http.Request) (*http.Response, error) {
	headers := make(map[string]string, len(req.Header))
	for k := range req.Header {
		headers[strings.ToLower(k)] = req.Header.Get(k)
	}
	var body io.Reader
	if req.Body != nil {
		defer req.Body.Close()
		body = req.Body
	}
	data, status, err := b.bc.Do(req.Method, req.URL.String(), headers, body)
	if err != nil {
		return nil, err
	}
	return &http.Response{
		Status:     fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode: status,
		Header:     make(http.Header),
		Body:       io.NopCloser(bytes.NewReader(data)),
		Request:    req,
	}, nil
}
