package scrape

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// FieldSelectors is an ordered fallback list of CSS selectors per field.
// Retailers restructure markup routinely; the first selector yielding
// non-empty text wins.
type FieldSelectors struct {
	Title         []string
	Price         []string
	OriginalPrice []string
	Image         []string
	Description   []string
	Availability  []string
}

// Fields holds the raw text pulled out of a page before normalization.
type Fields struct {
	Title             string
	PriceText         string
	OriginalPriceText string
	ImageURL          string
	Description       string
	AvailabilityText  string

	// Currency overrides symbol inference when the page states the ISO
	// code outright (embedded JSON usually does).
	Currency string
}

// FirstText returns the trimmed text of the first selector that matches
// a node with non-empty text.
func FirstText(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// FirstAttr returns the named attribute of the first selector that
// matches a node carrying it.
func FirstAttr(doc *goquery.Document, selectors []string, attr string) string {
	for _, sel := range selectors {
		if val, ok := doc.Find(sel).First().Attr(attr); ok && strings.TrimSpace(val) != "" {
			return strings.TrimSpace(val)
		}
	}
	return ""
}

// CollectFields runs the selector lists against a parsed document.
func CollectFields(doc *goquery.Document, sel FieldSelectors) Fields {
	return Fields{
		Title:             FirstText(doc, sel.Title),
		PriceText:         FirstText(doc, sel.Price),
		OriginalPriceText: FirstText(doc, sel.OriginalPrice),
		ImageURL:          FirstAttr(doc, sel.Image, "src"),
		Description:       FirstText(doc, sel.Description),
		AvailabilityText:  FirstText(doc, sel.Availability),
	}
}

// Complete reports whether the fields are enough to build a snapshot
// without falling through to rendered extraction.
func (f Fields) Complete() bool {
	if f.Title == "" {
		return false
	}
	_, ok := ParsePrice(f.PriceText)
	return ok
}

// BuildSnapshot normalizes extracted fields into a Snapshot. When title
// or price is unrecoverable it returns nil plus the missing field names
// for diagnostics; a snapshot with an empty title or unparseable price is
// never emitted as success.
func BuildSnapshot(f Fields, retailer Retailer, retailerID, sourceURL string) (*Snapshot, []string) {
	var missing []string
	f.Title = strings.TrimSpace(f.Title)
	if f.Title == "" {
		missing = append(missing, "title")
	}
	price, ok := ParsePrice(f.PriceText)
	if !ok {
		missing = append(missing, "price")
	}
	if len(missing) > 0 {
		return nil, missing
	}

	currency := f.Currency
	if currency == "" {
		currency = InferCurrency(f.PriceText)
	}

	snap := &Snapshot{
		Title:        f.Title,
		CurrentPrice: price,
		Currency:     currency,
		ImageURL:     f.ImageURL,
		Description:  f.Description,
		Available:    InferAvailability(f.AvailabilityText),
		Retailer:     retailer,
		RetailerID:   retailerID,
		SourceURL:    sourceURL,
		CapturedAt:   time.Now().UTC(),
	}
	if orig, ok := ParsePrice(f.OriginalPriceText); ok && orig >= price {
		snap.OriginalPrice = orig
	}
	return snap, nil
}
