package storage

import "time"

// Product is one tracked listing, scoped to its owning user. Two users
// tracking the same listing get two rows; the second row's
// RetailerProductID carries a disambiguating suffix (see prices.Service).
type Product struct {
	ID                int64     `json:"id"`
	UserID            int64     `json:"user_id"`
	Title             string    `json:"title"`
	URL               string    `json:"url"`
	Retailer          string    `json:"retailer"`
	RetailerProductID string    `json:"retailer_product_id"`
	CurrentPrice      float64   `json:"current_price"`
	Currency          string    `json:"currency"`
	ImageURL          string    `json:"image_url,omitempty"`
	Description       string    `json:"description,omitempty"`
	Available         bool      `json:"available"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// PricePoint is one entry of a product's append-only price series.
type PricePoint struct {
	ID         int64     `json:"id"`
	ProductID  int64     `json:"product_id"`
	Price      float64   `json:"price"`
	Currency   string    `json:"currency"`
	RecordedAt time.Time `json:"recorded_at"`
}

// PriceStats aggregates a product's history.
type PriceStats struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Avg   float64 `json:"avg"`
	Count int64   `json:"count"`
}

// Alert is a user's "notify me at or below target" threshold on one of
// their products. IsTriggered flips true exactly once per arming; an
// explicit reset re-arms it.
type Alert struct {
	ID          int64     `json:"id"`
	ProductID   int64     `json:"product_id"`
	UserID      int64     `json:"user_id"`
	TargetPrice float64   `json:"target_price"`
	IsTriggered bool      `json:"is_triggered"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
