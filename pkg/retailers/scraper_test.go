package retailers

import (
	"context"
	"testing"
	"time"

	"github.com/pricewatch/pricewatch/pkg/scrape"
)

// scriptedExtractor returns its results in order, repeating the last one.
type scriptedExtractor struct {
	name    scrape.Retailer
	results []scrape.Result
	calls   int
}

func (e *scriptedExtractor) Name() scrape.Retailer { return e.name }

func (e *scriptedExtractor) Extract(ctx context.Context, url string, opts scrape.Options) scrape.Result {
	i := e.calls
	if i >= len(e.results) {
		i = len(e.results) - 1
	}
	e.calls++
	return e.results[i]
}

func snapshotResult() scrape.Result {
	return scrape.Succeeded(&scrape.Snapshot{
		Title:        "Widget",
		CurrentPrice: 10,
		Currency:     "USD",
		Retailer:     scrape.Amazon,
		RetailerID:   "B0863TXGM3",
	}, time.Millisecond)
}

func newTestScraper(ext Extractor) *Scraper {
	s := NewScraper(nil, ext)
	s.backoff = time.Millisecond
	return s
}

func TestScrapeRetriesNetworkErrors(t *testing.T) {
	ext := &scriptedExtractor{name: scrape.Amazon, results: []scrape.Result{
		scrape.Failed(scrape.NetworkError("timeout"), time.Millisecond),
		scrape.Failed(scrape.NetworkError("timeout"), time.Millisecond),
		snapshotResult(),
	}}
	s := newTestScraper(ext)

	res := s.Scrape(context.Background(), "https://www.amazon.com/dp/B0863TXGM3", scrape.Options{})
	if !res.Success {
		t.Fatalf("scrape failed: %v", res.Err)
	}
	if ext.calls != 3 {
		t.Errorf("extractor called %d times; want 3", ext.calls)
	}
}

func TestScrapeDoesNotRetryExtractionFailures(t *testing.T) {
	ext := &scriptedExtractor{name: scrape.Amazon, results: []scrape.Result{
		scrape.Failed(scrape.ExtractionError("selectors missed", []string{"price"}), time.Millisecond),
	}}
	s := newTestScraper(ext)

	res := s.Scrape(context.Background(), "https://www.amazon.com/dp/B0863TXGM3", scrape.Options{})
	if res.Success || ext.calls != 1 {
		t.Fatalf("calls = %d, success = %v; want single failed attempt", ext.calls, res.Success)
	}
	if res.Err.Kind != scrape.KindExtractionFailed {
		t.Errorf("kind = %s", res.Err.Kind)
	}
}

func TestScrapeExhaustsRetryBudget(t *testing.T) {
	ext := &scriptedExtractor{name: scrape.Amazon, results: []scrape.Result{
		scrape.Failed(scrape.NetworkError("connection refused"), time.Millisecond),
	}}
	s := newTestScraper(ext)

	res := s.Scrape(context.Background(), "https://www.amazon.com/dp/B0863TXGM3", scrape.Options{MaxRetries: 2})
	if res.Success {
		t.Fatal("expected failure")
	}
	if ext.calls != 3 {
		t.Errorf("extractor called %d times; want initial attempt plus 2 retries", ext.calls)
	}
}

func TestScrapeFailsFastOnUnsupportedURL(t *testing.T) {
	ext := &scriptedExtractor{name: scrape.Amazon, results: []scrape.Result{snapshotResult()}}
	s := newTestScraper(ext)

	res := s.Scrape(context.Background(), "https://www.example.com/product/1", scrape.Options{})
	if res.Success || res.Err.Kind != scrape.KindInvalidURL {
		t.Fatalf("result = %+v; want invalid URL failure", res)
	}
	if ext.calls != 0 {
		t.Errorf("extractor should not run for unsupported URLs")
	}
}

func TestScrapeStampsResponseTime(t *testing.T) {
	ext := &scriptedExtractor{name: scrape.Amazon, results: []scrape.Result{snapshotResult()}}
	s := newTestScraper(ext)

	res := s.Scrape(context.Background(), "https://www.amazon.com/dp/B0863TXGM3", scrape.Options{})
	if res.ResponseTime <= 0 {
		t.Errorf("response time = %v; want > 0", res.ResponseTime)
	}
}
