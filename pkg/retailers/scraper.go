package retailers

import (
	"context"
	"time"

	"github.com/pricewatch/pricewatch/pkg/scrape"
)

// Logger abstracts logging so callers can use logrus, stdlib log, or any
// other logger that satisfies this interface.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// nopLogger silently discards all messages.
type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Debugf(string, ...interface{}) {}

// Scraper routes a product URL to the right retailer extractor and
// applies the retry budget. The retailer set is small and fixed, so a
// plain map stands in for any registration machinery.
type Scraper struct {
	extractors map[scrape.Retailer]Extractor
	log        Logger
	backoff    time.Duration
}

func NewScraper(log Logger, extractors ...Extractor) *Scraper {
	if log == nil {
		log = nopLogger{}
	}
	m := make(map[scrape.Retailer]Extractor, len(extractors))
	for _, e := range extractors {
		m[e.Name()] = e
	}
	return &Scraper{extractors: m, log: log, backoff: time.Second}
}

// Scrape resolves the retailer, delegates to its extractor, and retries
// retryable failures with exponential backoff. Non-retryable failures
// (bad URL, extraction failure) return immediately without consuming the
// retry budget. ResponseTime covers the whole call either way.
func (s *Scraper) Scrape(ctx context.Context, rawURL string, opts scrape.Options) scrape.Result {
	start := time.Now()
	opts = opts.WithDefaults()

	retailer, _, err := Identify(rawURL)
	if err != nil {
		return scrape.Failed(scrape.InvalidURLError(err.Error()), time.Since(start))
	}
	ext, ok := s.extractors[retailer]
	if !ok {
		return scrape.Failed(scrape.InvalidURLError("no extractor for retailer "+string(retailer)), time.Since(start))
	}

	var res scrape.Result
	for attempt := 0; ; attempt++ {
		res = ext.Extract(ctx, rawURL, opts)
		if res.Success || res.Err == nil || !res.Err.Retryable {
			break
		}
		if attempt >= opts.MaxRetries {
			s.log.Warnf("scrape of %s failed after %d retries: %v", rawURL, opts.MaxRetries, res.Err)
			break
		}

		backoff := time.Duration(1<<uint(attempt)) * s.backoff
		s.log.Debugf("scrape of %s failed (%v), retrying in %s", rawURL, res.Err, backoff)
		select {
		case <-ctx.Done():
			res = scrape.Failed(scrape.NetworkError(ctx.Err().Error()), time.Since(start))
			res.ResponseTime = time.Since(start)
			return res
		case <-time.After(backoff):
		}
	}

	res.ResponseTime = time.Since(start)
	return res
}
