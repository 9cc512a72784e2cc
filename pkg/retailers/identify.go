package retailers

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/pricewatch/pricewatch/pkg/scrape"
)

// ErrInvalidURL is returned when a URL does not parse, matches no
// supported retailer, or carries no recognizable product id.
var ErrInvalidURL = errors.New("invalid or unsupported product URL")

// domainTable matches host substrings, deliberately loose so regional
// storefronts (amazon.co.uk, www.amazon.de) resolve without per-country
// entries.
var domainTable = []struct {
	substr   string
	retailer scrape.Retailer
}{
	{"amazon.", scrape.Amazon},
	{"walmart.", scrape.Walmart},
	{"bestbuy.", scrape.BestBuy},
}

// idPatterns extracts the retailer-local product id from the URL path.
var idPatterns = map[scrape.Retailer]*regexp.Regexp{
	scrape.Amazon:  regexp.MustCompile(`/(?:dp|gp/product)/([A-Z0-9]{10})(?:[/?]|$)`),
	scrape.Walmart: regexp.MustCompile(`/ip/(?:[^/]+/)*(\d+)(?:[/?]|$)`),
	scrape.BestBuy: regexp.MustCompile(`/site/[^/]+/(\d+)\.p(?:[/?]|$)`),
}

// Identify classifies a product URL into a supported retailer and its
// retailer-local id. Purely a parser: no network access.
func Identify(rawURL string) (scrape.Retailer, string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", "", fmt.Errorf("%w: not an absolute http(s) URL", ErrInvalidURL)
	}

	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")

	for _, entry := range domainTable {
		if !strings.Contains(host, entry.substr) {
			continue
		}
		pattern := idPatterns[entry.retailer]
		m := pattern.FindStringSubmatch(u.Path)
		if m == nil {
			return "", "", fmt.Errorf("%w: no product id in path %q", ErrInvalidURL, u.Path)
		}
		return entry.retailer, m[1], nil
	}
	return "", "", fmt.Errorf("%w: unsupported host %q", ErrInvalidURL, host)
}
