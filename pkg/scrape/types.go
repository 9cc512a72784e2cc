package scrape

import (
	"fmt"
	"strings"
	"time"
)

// Retailer identifies one of the supported e-commerce sites.
type Retailer string

const (
	Amazon  Retailer = "amazon"
	Walmart Retailer = "walmart"
	BestBuy Retailer = "bestbuy"
)

// Snapshot is a single point-in-time normalized reading of a product
// listing, shared by the static and rendered extraction paths.
type Snapshot struct {
	Title         string    `json:"title"`
	CurrentPrice  float64   `json:"current_price"`
	OriginalPrice float64   `json:"original_price,omitempty"` // 0 when the page shows no strike-through price
	Currency      string    `json:"currency"`
	ImageURL      string    `json:"image_url,omitempty"`
	Description   string    `json:"description,omitempty"`
	Available     bool      `json:"available"`
	Retailer      Retailer  `json:"retailer"`
	RetailerID    string    `json:"retailer_id"`
	SourceURL     string    `json:"source_url"`
	CapturedAt    time.Time `json:"captured_at"`
}

// ErrorKind classifies scrape failures for retry decisions.
type ErrorKind string

const (
	KindInvalidURL       ErrorKind = "INVALID_URL"
	KindNetworkError     ErrorKind = "NETWORK_ERROR"
	KindExtractionFailed ErrorKind = "EXTRACTION_FAILED"
)

// Error is a typed scrape failure. Retryable is true only for
// transport-level failures; a selector miss on a fetched page will fail
// identically on retry.
type Error struct {
	Kind          ErrorKind
	Message       string
	Retryable     bool
	MissingFields []string
}

func (e *Error) Error() string {
	if len(e.MissingFields) > 0 {
		return fmt.Sprintf("%s: %s (missing: %s)", e.Kind, e.Message, strings.Join(e.MissingFields, ", "))
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func InvalidURLError(msg string) *Error {
	return &Error{Kind: KindInvalidURL, Message: msg}
}

func NetworkError(msg string) *Error {
	return &Error{Kind: KindNetworkError, Message: msg, Retryable: true}
}

func ExtractionError(msg string, missing []string) *Error {
	return &Error{Kind: KindExtractionFailed, Message: msg, MissingFields: missing}
}

// Result is the outcome of one scrape. ResponseTime is always populated,
// success or not.
type Result struct {
	Success      bool          `json:"success"`
	Data         *Snapshot     `json:"data,omitempty"`
	Err          *Error        `json:"error,omitempty"`
	ResponseTime time.Duration `json:"response_time_ms"`
}

func Succeeded(snap *Snapshot, elapsed time.Duration) Result {
	return Result{Success: true, Data: snap, ResponseTime: elapsed}
}

func Failed(err *Error, elapsed time.Duration) Result {
	return Result{Success: false, Err: err, ResponseTime: elapsed}
}

const (
	DefaultUserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	DefaultTimeout    = 10 * time.Second
	DefaultMaxRetries = 3

	// RenderGrace is how long the rendered path waits for one of the
	// known-good selectors to appear before reading the DOM as-is.
	RenderGrace = 5 * time.Second
)

// Options controls a single scrape. The zero value means: proxy enabled
// (when one is configured), 10s timeout, 3 retries, default desktop UA.
type Options struct {
	// DisableProxy skips the configured proxy for this scrape. The
	// default (false) uses ProxyURL when it is set.
	DisableProxy bool
	ProxyURL     string
	Timeout      time.Duration
	MaxRetries   int
	UserAgent    string
}

// WithDefaults fills unset fields with the documented defaults.
func (o Options) WithDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = DefaultMaxRetries
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	return o
}

func (o Options) proxy() string {
	if o.DisableProxy {
		return ""
	}
	return o.ProxyURL
}
