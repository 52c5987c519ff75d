package fetcher

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/lender-qualify/internal/resilience"
)

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent string
	Timeout   time.Duration
	Retry     resilience.RetryConfig
	// RatePerSec limits outbound requests; 0 means 2/s.
	RatePerSec float64
}

// HTTPFetcher downloads spreadsheets with rate limiting and retries on
// network errors, 429 and 5xx responses.
type HTTPFetcher struct {
	client  *http.Client
	opts    HTTPOptions
	limiter *rate.Limiter
}

// NewHTTPFetcher creates an HTTPFetcher, filling defaults for zero options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "qualify-cli/1.0"
	}
	if opts.RatePerSec <= 0 {
		opts.RatePerSec = 2
	}
	if opts.Retry.OnRetry == nil {
		opts.Retry.OnRetry = resilience.LogRetries("fetch lender matrix")
	}
	return &HTTPFetcher{
		client:  &http.Client{Timeout: opts.Timeout},
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSec), 1),
	}
}

// Download fetches url and returns the body of a 200 response.
func (f *HTTPFetcher) Download(ctx context.Context, url string) (io.ReadCloser, error) {
	body, _, _, err := f.DownloadIfChanged(ctx, url, "")
	return body, err
}

// DownloadIfChanged sends If-None-Match when etag is set and reports a 304
// as unchanged.
func (f *HTTPFetcher) DownloadIfChanged(ctx context.Context, url, etag string) (io.ReadCloser, string, bool, error) {
	resp, err := resilience.Do(ctx, f.opts.Retry, func(ctx context.Context) (*http.Response, error) {
		return f.get(ctx, url, etag)
	})
	if err != nil {
		return nil, "", false, eris.Wrapf(err, "fetch: download %s", url)
	}

	if resp.StatusCode == http.StatusNotModified {
		_ = resp.Body.Close()
		return nil, etag, false, nil
	}
	return resp.Body, resp.Header.Get("ETag"), true, nil
}

// get performs one attempt. Retryable statuses come back as TransientError.
func (f *HTTPFetcher) get(ctx context.Context, url, etag string) (*http.Response, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "fetch: rate limiter wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrap(err, "fetch: create request")
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "fetch: request")
	}

	switch {
	case resp.StatusCode == http.StatusOK, resp.StatusCode == http.StatusNotModified:
		return resp, nil
	case resilience.IsTransientHTTPStatus(resp.StatusCode):
		_ = resp.Body.Close()
		return nil, resilience.NewTransientError(eris.Errorf("fetch: status %d", resp.StatusCode), resp.StatusCode)
	default:
		_ = resp.Body.Close()
		return nil, eris.Errorf("fetch: unexpected status %d from %s", resp.StatusCode, url)
	}
}
