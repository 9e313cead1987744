package atlan

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ohler55/ojg/oj"
	"golang.org/x/time/rate"
)

// maxErrorBodyBytes caps how much of an error response body is kept for
// logging.
const maxErrorBodyBytes = 4096

// TransportError covers every failure mode of a search call: network
// errors, non-2xx statuses, and unparseable response bodies. Callers treat
// all of them identically, as an empty-result outcome.
type TransportError struct {
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("search request to %s failed with status %d: %s", e.URL, e.StatusCode, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("search request to %s failed: %v", e.URL, e.Err)
	default:
		return fmt.Sprintf("search request to %s failed", e.URL)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Client is a synchronous search API client. One instance is shared across
// tenants; it holds no per-tenant state.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	retry   retryConfig
}

// NewClient creates a search client with a per-call timeout and an outbound
// request rate limit in requests per second.
func NewClient(timeout time.Duration, rps int) *Client {
	if rps <= 0 {
		rps = 10
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), rps*2),
		retry:   defaultRetryConfig(),
	}
}

// Search posts a JSON payload to the given URL and returns the parsed
// response object. Transient network failures and 5xx gateway statuses are
// retried with bounded backoff; every other failure surfaces immediately as
// a *TransportError.
func (c *Client) Search(ctx context.Context, url, bearer string, payload any) (map[string]any, error) {
	body := oj.JSON(payload)

	var result map[string]any
	err := executeWithRetry(ctx, c.retry, func() error {
		res, err := c.post(ctx, url, bearer, body)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) post(ctx context.Context, url, bearer, body string) (map[string]any, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	req.Header.Set("Authorization", bearer)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: url, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Body:       truncate(string(data), maxErrorBodyBytes),
		}
	}

	parsed, err := oj.Parse(data)
	if err != nil {
		return nil, &TransportError{
			URL:  url,
			Body: truncate(string(data), maxErrorBodyBytes),
			Err:  fmt.Errorf("parse response body: %w", err),
		}
	}

	obj, ok := parsed.(map[string]any)
	if !ok {
		return nil, &TransportError{
			URL: url,
			Err: fmt.Errorf("response body is not a JSON object"),
		}
	}
	return obj, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "...(truncated)"
}
