// Package retrieval provides a client for the filing passage search service.
package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Passage is one retrieved chunk of a prior filing. Passages are owned by
// the search service and borrowed for the duration of one generation call.
type Passage struct {
	Text       string  `json:"text"`
	Company    string  `json:"company"`
	Section    string  `json:"section"`
	FilingDate string  `json:"filing_date"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float64 `json:"score"`
}

// Query describes one top-k passage search. Ticker and Section are optional
// filters; empty means unfiltered.
type Query struct {
	Text    string `json:"query"`
	K       int    `json:"k"`
	Ticker  string `json:"ticker,omitempty"`
	Section string `json:"section,omitempty"`
}

// Client defines the passage search operations used by the drafting engine.
// Search returns an empty slice, not an error, when nothing matches.
type Client interface {
	Search(ctx context.Context, q Query) ([]Passage, error)
}

// Option configures the retrieval client.
type Option func(*httpClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit sets the request rate limit in requests per second.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a retrieval client for the search service at baseURL.
func NewClient(baseURL string, opts ...Option) Client {
	c := &httpClient{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(10, 10),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchResponse struct {
	Passages []Passage `json:"passages"`
}

// retryableStatusCode returns true if the HTTP status code should trigger a retry.
func retryableStatusCode(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusInternalServerError ||
		code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable
}

func (c *httpClient) Search(ctx context.Context, q Query) ([]Passage, error) {
	if q.K <= 0 {
		q.K = 8
	}

	body, err := json.Marshal(q)
	if err != nil {
		return nil, eris.Wrap(err, "retrieval: marshal query")
	}

	const maxAttempts = 3
	backoff := 1 * time.Second

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "retrieval: rate limit wait")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
		if err != nil {
			return nil, eris.Wrap(err, "retrieval: build request")
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
		} else {
			respBody, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if readErr != nil {
				return nil, eris.Wrap(readErr, "retrieval: read response")
			}

			if resp.StatusCode == http.StatusOK {
				var parsed searchResponse
				if err := json.Unmarshal(respBody, &parsed); err != nil {
					return nil, eris.Wrap(err, "retrieval: decode response")
				}
				return parsed.Passages, nil
			}

			if !retryableStatusCode(resp.StatusCode) {
				return nil, eris.Errorf("retrieval: search returned status %d: %s", resp.StatusCode, truncate(respBody, 200))
			}
			lastErr = eris.Errorf("retrieval: search returned status %d", resp.StatusCode)
		}

		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}

	return nil, eris.Wrap(lastErr, "retrieval: search failed after retries")
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
