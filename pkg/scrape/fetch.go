package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/hashicorp/go-retryablehttp"
)

// Fetcher issues the single static GET of an extraction attempt. The
// orchestrator owns the retry budget, so the underlying client does no
// retries of its own.
type Fetcher struct {
	client *retryablehttp.Client
}

func NewFetcher() *Fetcher {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.Logger = nil
	return &Fetcher{client: retryClient}
}

// Get fetches the page body. Transport failures and non-2xx statuses come
// back as retryable network errors.
func (f *Fetcher) Get(ctx context.Context, pageURL string, opts Options) (string, *Error) {
	opts = opts.WithDefaults()

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", InvalidURLError(err.Error())
	}
	req.Header.Set("User-Agent", opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en")

	client := f.client
	if proxy := opts.proxy(); proxy != "" {
		proxyURL, err := url.Parse(proxy)
		if err != nil {
			return "", InvalidURLError(fmt.Sprintf("bad proxy URL: %v", err))
		}
		// Per-call client so concurrent scrapes with different proxy
		// settings never share a mutated transport.
		client = retryablehttp.NewClient()
		client.RetryMax = 0
		client.Logger = nil
		client.HTTPClient.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", NetworkError(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", NetworkError(fmt.Sprintf("HTTP %d for %s", resp.StatusCode, pageURL))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", NetworkError(err.Error())
	}
	return string(body), nil
}
