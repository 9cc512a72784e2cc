package walmart

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"

	"github.com/pricewatch/pricewatch/pkg/retailers"
	"github.com/pricewatch/pricewatch/pkg/scrape"
)

var selectors = scrape.FieldSelectors{
	Title: []string{
		`h1[itemprop="name"]`,
		"h1.prod-ProductTitle",
		`h1[data-automation-id="product-title"]`,
	},
	Price: []string{
		`span[itemprop="price"]`,
		`span[data-automation-id="product-price"]`,
		"span.price-characteristic",
	},
	OriginalPrice: []string{
		`span[data-automation-id="was-price"]`,
		"span.strike-through",
	},
	Image: []string{
		`img[data-testid="hero-image"]`,
		"img.prod-hero-image-image",
	},
	Description: []string{
		`div[data-testid="product-description-content"]`,
		".about-product-description",
	},
	Availability: []string{
		`div[data-automation-id="fulfillment-section"]`,
		".prod-ProductOffer-oosMsg",
	},
}

var waitSelectors = []string{
	`h1[itemprop="name"]`,
	`span[itemprop="price"]`,
	"#__NEXT_DATA__",
}

func New(fetcher retailers.PageFetcher, renderer scrape.Renderer) *retailers.Strategy {
	return &retailers.Strategy{
		Retailer:      scrape.Walmart,
		Selectors:     selectors,
		WaitSelectors: waitSelectors,
		Enrich:        enrich,
		Fetcher:       fetcher,
		Renderer:      renderer,
	}
}

// Walmart renders product state out of the Next.js data island; the
// server HTML often carries it even when the visible markup is skeletal.
func enrich(doc *goquery.Document, _ string, f *scrape.Fields) {
	raw := doc.Find("script#__NEXT_DATA__").First().Text()
	if raw == "" {
		return
	}
	product := gjson.Get(raw, "props.pageProps.initialData.data.product")
	if !product.Exists() {
		return
	}

	if f.Title == "" {
		f.Title = product.Get("name").String()
	}
	if _, ok := scrape.ParsePrice(f.PriceText); !ok {
		price := product.Get("priceInfo.currentPrice")
		if s := price.Get("priceString").String(); s != "" {
			f.PriceText = s
		} else if p := price.Get("price"); p.Exists() {
			f.PriceText = p.String()
		}
		if unit := price.Get("currencyUnit").String(); unit != "" {
			f.Currency = unit
		}
	}
	if _, ok := scrape.ParsePrice(f.OriginalPriceText); !ok {
		if was := product.Get("priceInfo.wasPrice.priceString").String(); was != "" {
			f.OriginalPriceText = was
		}
	}
	if f.ImageURL == "" {
		f.ImageURL = product.Get("imageInfo.thumbnailUrl").String()
	}
	if f.Description == "" {
		f.Description = product.Get("shortDescription").String()
	}
	if f.AvailabilityText == "" {
		if status := product.Get("availabilityStatus").String(); status != "" && status != "IN_STOCK" {
			f.AvailabilityText = "Out of stock"
		}
	}
}
