package scrape

import (
	"strconv"
	"strings"
)

// currencySymbols maps the symbols retailers actually render to ISO codes.
var currencySymbols = []struct {
	symbol string
	code   string
}{
	{"$", "USD"},
	{"€", "EUR"},
	{"£", "GBP"},
	{"¥", "JPY"},
}

var negativeAvailability = []string{
	"sold out",
	"out of stock",
	"unavailable",
	"currently not available",
}

// ParsePrice normalizes a raw price string ("$1,299.00", "Now  €45,  ")
// into a non-negative amount. Everything except digits and the decimal
// point is stripped before parsing.
func ParsePrice(raw string) (float64, bool) {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, false
	}
	// "1.299.00" style artifacts from thousand separators: keep the last
	// dot as the decimal point.
	if strings.Count(cleaned, ".") > 1 {
		last := strings.LastIndex(cleaned, ".")
		cleaned = strings.ReplaceAll(cleaned[:last], ".", "") + cleaned[last:]
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// InferCurrency guesses the ISO currency code from the symbol present in
// a raw price string, defaulting to USD.
func InferCurrency(raw string) string {
	for _, c := range currencySymbols {
		if strings.Contains(raw, c.symbol) {
			return c.code
		}
	}
	return "USD"
}

// InferAvailability treats a listing as available unless the relevant
// text fragment carries a negative keyword.
func InferAvailability(text string) bool {
	lowered := strings.ToLower(text)
	for _, kw := range negativeAvailability {
		if strings.Contains(lowered, kw) {
			return false
		}
	}
	return true
}
