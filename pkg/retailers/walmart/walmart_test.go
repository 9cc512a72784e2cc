package walmart

import (
	"context"
	"testing"

	"github.com/pricewatch/pricewatch/pkg/scrape"
)

const productURL = "https://www.walmart.com/ip/Apple-AirPods-Pro/520486259"

// Server HTML with a skeletal DOM but a populated Next.js data island,
// which is what Walmart actually returns to non-JS clients.
const nextDataPage = `<html><body>
<div id="__next"></div>
<script id="__NEXT_DATA__" type="application/json">
{"props":{"pageProps":{"initialData":{"data":{"product":{
  "name":"Apple AirPods Pro (2nd Gen)",
  "priceInfo":{"currentPrice":{"price":199.99,"priceString":"$199.99","currencyUnit":"USD"},
               "wasPrice":{"priceString":"$249.00"}},
  "imageInfo":{"thumbnailUrl":"https://i5.walmartimages.example/airpods.jpg"},
  "shortDescription":"Active Noise Cancellation.",
  "availabilityStatus":"IN_STOCK"}}}}}}
</script>
</body></html>`

const oosNextDataPage = `<html><body>
<script id="__NEXT_DATA__" type="application/json">
{"props":{"pageProps":{"initialData":{"data":{"product":{
  "name":"Apple AirPods Pro (2nd Gen)",
  "priceInfo":{"currentPrice":{"priceString":"$199.99"}},
  "availabilityStatus":"OUT_OF_STOCK"}}}}}}
</script>
</body></html>`

type fakeFetcher struct {
	body string
	err  *scrape.Error
}

func (f fakeFetcher) Get(ctx context.Context, url string, opts scrape.Options) (string, *scrape.Error) {
	return f.body, f.err
}

type fakeRenderer struct{ called bool }

func (r *fakeRenderer) RenderHTML(ctx context.Context, url string, waitSelectors []string, opts scrape.Options) (string, *scrape.Error) {
	r.called = true
	return "", scrape.NetworkError("renderer should not run")
}

func TestExtractFromNextData(t *testing.T) {
	renderer := &fakeRenderer{}
	ext := New(fakeFetcher{body: nextDataPage}, renderer)

	res := ext.Extract(context.Background(), productURL, scrape.Options{})
	if !res.Success {
		t.Fatalf("extract failed: %v", res.Err)
	}
	if renderer.called {
		t.Error("data island recovery should make the rendered attempt unnecessary")
	}
	snap := res.Data
	if snap.Title != "Apple AirPods Pro (2nd Gen)" {
		t.Errorf("title = %q", snap.Title)
	}
	if snap.CurrentPrice != 199.99 || snap.Currency != "USD" {
		t.Errorf("price = %v %s; want 199.99 USD", snap.CurrentPrice, snap.Currency)
	}
	if snap.OriginalPrice != 249.00 {
		t.Errorf("original price = %v; want 249", snap.OriginalPrice)
	}
	if snap.ImageURL == "" || snap.Description == "" {
		t.Errorf("image/description not recovered: %+v", snap)
	}
	if !snap.Available {
		t.Error("expected available")
	}
	if snap.RetailerID != "520486259" {
		t.Errorf("retailer id = %q", snap.RetailerID)
	}
}

func TestExtractOutOfStockFromNextData(t *testing.T) {
	ext := New(fakeFetcher{body: oosNextDataPage}, &fakeRenderer{})

	res := ext.Extract(context.Background(), productURL, scrape.Options{})
	if !res.Success {
		t.Fatalf("extract failed: %v", res.Err)
	}
	if res.Data.Available {
		t.Error("expected unavailable for OUT_OF_STOCK status")
	}
}
