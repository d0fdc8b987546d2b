package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/Yudaimo23/yt-summarizer/internal/engine"
)

// ProxyProvider hands out anonymous proxy URLs. An empty result is a normal
// outcome, not an error.
type ProxyProvider interface {
	Proxies(ctx context.Context, n int) ([]string, error)
}

// GeonodeProvider reads the free geonode proxy list.
type GeonodeProvider struct {
	http    Doer
	listURL string
}

func NewGeonodeProvider(doer Doer, listURL string) *GeonodeProvider {
	if doer == nil {
		doer = http.DefaultClient
	}
	return &GeonodeProvider{http: doer, listURL: listURL}
}

type geonodeResp struct {
	Data []struct {
		IP   string      `json:"ip"`
		Port json.Number `json:"port"`
	} `json:"data"`
}

// Proxies returns up to n distinct http://ip:port URLs in random order.
func (p *GeonodeProvider) Proxies(ctx context.Context, n int) ([]string, error) {
	if n <= 0 || p.listURL == "" {
		return nil, nil
	}

	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.listURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.UserAgentBot)
		req.Header.Set("Accept", "application/json")
		return p.http.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("proxy list: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("proxy list: HTTP %d", resp.StatusCode)
	}

	var data geonodeResp
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1024*1024)).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode proxy list: %w", err)
	}

	seen := make(map[string]bool, len(data.Data))
	all := make([]string, 0, len(data.Data))
	for _, d := range data.Data {
		if d.IP == "" || d.Port == "" {
			continue
		}
		addr := "http://" + net.JoinHostPort(d.IP, d.Port.String())
		if seen[addr] {
			continue
		}
		seen[addr] = true
		all = append(all, addr)
	}
	rand.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	if len(all) > n {
		all = all[:n]
	}
	return all, nil
}

// NewProxyHTTPClient builds a client that routes every request through proxyURL.
func NewProxyHTTPClient(proxyURL string, timeout time.Duration) (*http.Client, error) {
	u, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("parse proxy url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parse proxy url: missing scheme or host in %q", u.Redacted())
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyURL(u),
			MaxIdleConns:        4,
			IdleConnTimeout:     30 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}, nil
}
