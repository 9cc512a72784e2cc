package retailers

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pricewatch/pricewatch/pkg/scrape"
)

// Extractor turns a retailer product URL into a normalized snapshot or a
// typed failure. One implementation per supported retailer.
type Extractor interface {
	Name() scrape.Retailer
	Extract(ctx context.Context, pageURL string, opts scrape.Options) scrape.Result
}

// PageFetcher is the static-fetch half of an extraction attempt.
// *scrape.Fetcher is the production implementation; tests substitute
// canned pages.
type PageFetcher interface {
	Get(ctx context.Context, pageURL string, opts scrape.Options) (string, *scrape.Error)
}

// Strategy is the two-stage extraction pipeline shared by every retailer:
// a static-HTML attempt first, then a rendered-browser attempt when the
// static pass does not yield both a title and a parseable price. Retailer
// packages supply the selector lists and any embedded-JSON recovery.
type Strategy struct {
	Retailer  scrape.Retailer
	Selectors scrape.FieldSelectors

	// WaitSelectors are known-good selectors the rendered attempt races
	// against its grace timeout before reading the DOM.
	WaitSelectors []string

	// Enrich recovers fields from JSON embedded in the page after the
	// CSS pass (Walmart __NEXT_DATA__, Best Buy JSON-LD). Optional.
	Enrich func(doc *goquery.Document, body string, f *scrape.Fields)

	Fetcher  PageFetcher
	Renderer scrape.Renderer
}

func (s *Strategy) Name() scrape.Retailer { return s.Retailer }

func (s *Strategy) Extract(ctx context.Context, pageURL string, opts scrape.Options) scrape.Result {
	start := time.Now()

	retailer, retailerID, err := Identify(pageURL)
	if err != nil || retailer != s.Retailer {
		return scrape.Failed(scrape.InvalidURLError("not a "+string(s.Retailer)+" product URL"), time.Since(start))
	}

	var fields scrape.Fields
	parsed := false

	body, fetchErr := s.Fetcher.Get(ctx, pageURL, opts)
	if fetchErr == nil {
		if f, ok := s.parse(body); ok {
			fields = f
			parsed = true
		}
	}

	if !parsed || !fields.Complete() {
		rendered, renderErr := s.render(ctx, pageURL, opts)
		switch {
		case renderErr == nil:
			if f, ok := s.parse(rendered); ok {
				fields = f
				parsed = true
			}
		case fetchErr != nil:
			// Both attempts failed at transport level: retryable.
			return scrape.Failed(fetchErr, time.Since(start))
		case !parsed:
			return scrape.Failed(renderErr, time.Since(start))
		}
	}

	if !parsed {
		if fetchErr != nil {
			return scrape.Failed(fetchErr, time.Since(start))
		}
		return scrape.Failed(scrape.ExtractionError("page did not parse as HTML", nil), time.Since(start))
	}

	snap, missing := scrape.BuildSnapshot(fields, s.Retailer, retailerID, pageURL)
	if snap == nil {
		return scrape.Failed(scrape.ExtractionError("essential fields unrecoverable", missing), time.Since(start))
	}
	return scrape.Succeeded(snap, time.Since(start))
}

func (s *Strategy) render(ctx context.Context, pageURL string, opts scrape.Options) (string, *scrape.Error) {
	if s.Renderer == nil {
		return "", scrape.NetworkError("no renderer configured")
	}
	return s.Renderer.RenderHTML(ctx, pageURL, s.WaitSelectors, opts)
}

func (s *Strategy) parse(body string) (scrape.Fields, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return scrape.Fields{}, false
	}
	f := scrape.CollectFields(doc, s.Selectors)
	if s.Enrich != nil {
		s.Enrich(doc, body, &f)
	}
	return f, true
}
