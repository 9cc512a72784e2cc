package bestbuy

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"

	"github.com/pricewatch/pricewatch/pkg/retailers"
	"github.com/pricewatch/pricewatch/pkg/scrape"
)

var selectors = scrape.FieldSelectors{
	Title: []string{
		".sku-title h1",
		"h1.heading-5",
	},
	Price: []string{
		`div[data-testid="customer-price"] span[aria-hidden="true"]`,
		".priceView-hero-price span[aria-hidden='true']",
		".priceView-customer-price span",
	},
	OriginalPrice: []string{
		".pricing-price__regular-price",
		`div[data-testid="regular-price"] span`,
	},
	Image: []string{
		"img.primary-image",
		".shop-media-gallery img",
	},
	Description: []string{
		".product-description",
		`div[data-testid="product-description"]`,
	},
	Availability: []string{
		".fulfillment-add-to-cart-button",
		`button[data-button-state="SOLD_OUT"]`,
	},
}

var waitSelectors = []string{
	".sku-title h1",
	`div[data-testid="customer-price"]`,
	".priceView-hero-price",
}

func New(fetcher retailers.PageFetcher, renderer scrape.Renderer) *retailers.Strategy {
	return &retailers.Strategy{
		Retailer:      scrape.BestBuy,
		Selectors:     selectors,
		WaitSelectors: waitSelectors,
		Enrich:        enrich,
		Fetcher:       fetcher,
		Renderer:      renderer,
	}
}

// Best Buy publishes schema.org Product JSON-LD with the offer price,
// which survives markup redesigns far better than the CSS above.
func enrich(doc *goquery.Document, _ string, f *scrape.Fields) {
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		data := gjson.Parse(s.Text())
		if data.Get("@type").String() != "Product" {
			return true
		}

		if f.Title == "" {
			f.Title = data.Get("name").String()
		}
		if _, ok := scrape.ParsePrice(f.PriceText); !ok {
			if price := data.Get("offers.price"); price.Exists() {
				f.PriceText = price.String()
			}
			if cur := data.Get("offers.priceCurrency").String(); cur != "" {
				f.Currency = cur
			}
		}
		if f.ImageURL == "" {
			f.ImageURL = data.Get("image").String()
		}
		if f.Description == "" {
			f.Description = data.Get("description").String()
		}
		if f.AvailabilityText == "" {
			availability := data.Get("offers.availability").String()
			if availability != "" && !strings.Contains(availability, "InStock") {
				f.AvailabilityText = "Sold Out"
			}
		}
		return false
	})
}
