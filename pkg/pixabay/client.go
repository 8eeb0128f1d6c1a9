// Package pixabay is a minimal client for the image search provider:
// keyword search plus binary download, with bounded retries around the
// provider's rate limiting.
package pixabay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const (
	// attemptLimit bounds retries for a single request; after that the
	// caller treats the keyword as exhausted.
	attemptLimit = 3

	// rateLimitCooldown is the fixed wait after an HTTP 429.
	rateLimitCooldown = 10 * time.Second

	// transientDelay is the fixed wait after 502s and network errors.
	transientDelay = 2 * time.Second
)

// userAgents is rotated across attempts so provider-side throttling has a
// harder time correlating requests.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
}

// Hit is one search result. Results missing Tags or LargeImageURL are
// unusable and skipped by callers.
type Hit struct {
	Tags          string `json:"tags"`
	LargeImageURL string `json:"largeImageURL"`
	Type          string `json:"type"`
}

type searchResponse struct {
	Hits []Hit `json:"hits"`
}

// Client queries the image search endpoint.
type Client struct {
	APIKey   string
	Endpoint string
	PerPage  int
	HTTP     *http.Client
	Logger   *slog.Logger

	// Sleep is the retry delay hook, replaceable in tests. Nil means
	// real sleeping, aborted early when the context is canceled.
	Sleep func(ctx context.Context, d time.Duration) error

	uaCursor int
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	if c.Sleep != nil {
		return c.Sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *Client) nextUserAgent() string {
	ua := userAgents[c.uaCursor%len(userAgents)]
	c.uaCursor++
	return ua
}

// Search queries one result page for a keyword.
func (c *Client) Search(ctx context.Context, keyword string) ([]Hit, error) {
	q := url.Values{}
	q.Set("key", c.APIKey)
	q.Set("q", keyword)
	q.Set("per_page", fmt.Sprint(c.PerPage))

	body, err := c.get(ctx, c.Endpoint+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("image search for %q failed: %w", keyword, err)
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}
	return resp.Hits, nil
}

// Download fetches the image binary at rawURL.
func (c *Client) Download(ctx context.Context, rawURL string) ([]byte, error) {
	body, err := c.get(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("image download failed: %w", err)
	}
	return body, nil
}

// get performs a GET with the retry policy: 429 waits the rate-limit
// cooldown, everything else transient waits the short delay, bounded at
// attemptLimit attempts.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < attemptLimit; attempt++ {
		if attempt > 0 {
			delay := transientDelay
			if isRateLimit(lastErr) {
				delay = rateLimitCooldown
			}
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		body, err := c.doOnce(ctx, rawURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.Logger.Warn("image request failed", "url", rawURL, "attempt", attempt+1, "error", err)
	}
	return nil, fmt.Errorf("request failed after %d attempts: %w", attemptLimit, lastErr)
}

func (c *Client) doOnce(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.nextUserAgent())

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{code: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}

func isRateLimit(err error) bool {
	se, ok := err.(*statusError)
	return ok && se.code == http.StatusTooManyRequests
}
