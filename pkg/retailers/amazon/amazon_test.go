package amazon

import (
	"context"
	"testing"

	"github.com/pricewatch/pricewatch/pkg/scrape"
)

const productURL = "https://www.amazon.com/dp/B0863TXGM3"

const fullPage = `<html><body>
<span id="productTitle"> Sony WH-1000XM4 Wireless Headphones </span>
<div id="corePrice_feature_div"><span class="a-offscreen">$1,299.00</span></div>
<span class="basisPrice"><span class="a-offscreen">$1,499.00</span></span>
<img id="landingImage" src="https://images.example/41x.jpg">
<div id="availability"><span> In Stock </span></div>
<div id="feature-bullets">Industry leading noise canceling.</div>
</body></html>`

const skeletalPage = `<html><body>
<span id="productTitle">Sony WH-1000XM4 Wireless Headphones</span>
<div id="apex_desktop_placeholder"></div>
</body></html>`

const aStatePage = `<html><body>
<span id="productTitle">Sony WH-1000XM4 Wireless Headphones</span>
<script type="a-state" data-a-state='{"key":"desktop-buybox"}'>{"desktop_buybox_group_1":[{"displayPrice":"$89.99"}]}</script>
</body></html>`

type fakeFetcher struct {
	body string
	err  *scrape.Error
}

func (f fakeFetcher) Get(ctx context.Context, url string, opts scrape.Options) (string, *scrape.Error) {
	return f.body, f.err
}

type fakeRenderer struct {
	html   string
	err    *scrape.Error
	called bool
}

func (r *fakeRenderer) RenderHTML(ctx context.Context, url string, waitSelectors []string, opts scrape.Options) (string, *scrape.Error) {
	r.called = true
	return r.html, r.err
}

func TestExtractStaticSuccess(t *testing.T) {
	renderer := &fakeRenderer{}
	ext := New(fakeFetcher{body: fullPage}, renderer)

	res := ext.Extract(context.Background(), productURL, scrape.Options{})
	if !res.Success {
		t.Fatalf("extract failed: %v", res.Err)
	}
	if renderer.called {
		t.Error("rendered attempt should be skipped when static extraction is complete")
	}
	snap := res.Data
	if snap.Title != "Sony WH-1000XM4 Wireless Headphones" {
		t.Errorf("title = %q", snap.Title)
	}
	if snap.CurrentPrice != 1299.00 || snap.Currency != "USD" {
		t.Errorf("price = %v %s; want 1299 USD", snap.CurrentPrice, snap.Currency)
	}
	if snap.OriginalPrice != 1499.00 {
		t.Errorf("original price = %v; want 1499", snap.OriginalPrice)
	}
	if snap.RetailerID != "B0863TXGM3" || snap.Retailer != scrape.Amazon {
		t.Errorf("identity = %s/%s", snap.Retailer, snap.RetailerID)
	}
	if !snap.Available {
		t.Error("expected available")
	}
}

func TestExtractFallsBackToRendered(t *testing.T) {
	renderer := &fakeRenderer{html: fullPage}
	ext := New(fakeFetcher{body: skeletalPage}, renderer)

	res := ext.Extract(context.Background(), productURL, scrape.Options{})
	if !res.Success {
		t.Fatalf("extract failed: %v", res.Err)
	}
	if !renderer.called {
		t.Error("rendered attempt should run when the static page has no price")
	}
	if res.Data.CurrentPrice != 1299.00 {
		t.Errorf("price = %v; want 1299", res.Data.CurrentPrice)
	}
}

func TestExtractNetworkFailureIsRetryable(t *testing.T) {
	renderer := &fakeRenderer{err: scrape.NetworkError("browser launch failed")}
	ext := New(fakeFetcher{err: scrape.NetworkError("connection refused")}, renderer)

	res := ext.Extract(context.Background(), productURL, scrape.Options{})
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Err.Kind != scrape.KindNetworkError || !res.Err.Retryable {
		t.Errorf("error = %+v; want retryable network error", res.Err)
	}
}

func TestExtractMissingFieldsNotRetryable(t *testing.T) {
	renderer := &fakeRenderer{html: skeletalPage}
	ext := New(fakeFetcher{body: skeletalPage}, renderer)

	res := ext.Extract(context.Background(), productURL, scrape.Options{})
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Err.Kind != scrape.KindExtractionFailed || res.Err.Retryable {
		t.Errorf("error = %+v; want non-retryable extraction failure", res.Err)
	}
	if len(res.Err.MissingFields) != 1 || res.Err.MissingFields[0] != "price" {
		t.Errorf("missing fields = %v; want [price]", res.Err.MissingFields)
	}
}

func TestExtractRecoversPriceFromAState(t *testing.T) {
	ext := New(fakeFetcher{body: aStatePage}, &fakeRenderer{})

	res := ext.Extract(context.Background(), productURL, scrape.Options{})
	if !res.Success {
		t.Fatalf("extract failed: %v", res.Err)
	}
	if res.Data.CurrentPrice != 89.99 {
		t.Errorf("price = %v; want 89.99", res.Data.CurrentPrice)
	}
}

func TestExtractRejectsForeignURL(t *testing.T) {
	ext := New(fakeFetcher{body: fullPage}, &fakeRenderer{})

	res := ext.Extract(context.Background(), "https://www.walmart.com/ip/520486259", scrape.Options{})
	if res.Success || res.Err.Kind != scrape.KindInvalidURL {
		t.Fatalf("result = %+v; want invalid URL failure", res)
	}
}
