package amazon

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"

	"github.com/pricewatch/pricewatch/pkg/retailers"
	"github.com/pricewatch/pricewatch/pkg/scrape"
)

// Selector lists ordered newest-layout-first. Amazon reshuffles its
// price markup constantly, hence the long price chain.
var selectors = scrape.FieldSelectors{
	Title: []string{
		"#productTitle",
		"#title span",
		"h1.a-size-large",
	},
	Price: []string{
		"#corePrice_feature_div span.a-offscreen",
		"#corePriceDisplay_desktop_feature_div span.a-offscreen",
		"span.a-price:not(.a-text-price) span.a-offscreen",
		"#priceblock_ourprice",
		"#priceblock_dealprice",
		"#price_inside_buybox",
	},
	OriginalPrice: []string{
		"span.basisPrice span.a-offscreen",
		"span.a-price.a-text-price span.a-offscreen",
		"#listPrice",
	},
	Image: []string{
		"#landingImage",
		"#imgBlkFront",
		"#main-image",
	},
	Description: []string{
		"#feature-bullets",
		"#productDescription p",
	},
	Availability: []string{
		"#availability span",
		"#availability",
		"#outOfStock",
	},
}

var waitSelectors = []string{
	"#productTitle",
	"#corePrice_feature_div",
	"span.a-price",
}

func New(fetcher retailers.PageFetcher, renderer scrape.Renderer) *retailers.Strategy {
	return &retailers.Strategy{
		Retailer:      scrape.Amazon,
		Selectors:     selectors,
		WaitSelectors: waitSelectors,
		Enrich:        enrich,
		Fetcher:       fetcher,
		Renderer:      renderer,
	}
}

// Some layouts only carry the buybox price inside an a-state data island.
// Fall back to it when the CSS pass found nothing parseable.
func enrich(doc *goquery.Document, _ string, f *scrape.Fields) {
	if _, ok := scrape.ParsePrice(f.PriceText); ok {
		return
	}
	doc.Find(`script[type="a-state"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		price := gjson.Get(s.Text(), "desktop_buybox_group_1.0.displayPrice")
		if price.Exists() && price.String() != "" {
			f.PriceText = price.String()
			return false
		}
		return true
	})
}
