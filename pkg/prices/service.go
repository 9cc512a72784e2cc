package prices

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pricewatch/pricewatch/pkg/alerts"
	"github.com/pricewatch/pricewatch/pkg/notify"
	"github.com/pricewatch/pricewatch/pkg/retailers"
	"github.com/pricewatch/pricewatch/pkg/scrape"
	"github.com/pricewatch/pricewatch/pkg/storage"
)

// ErrScrapeFailed wraps a scrape failure surfaced to the caller of an
// add or recheck operation.
var ErrScrapeFailed = errors.New("scrape failed")

// Logger abstracts logging so callers can use logrus, stdlib log, or any
// other logger that satisfies this interface.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Debugf(string, ...interface{}) {}

// Scraper is the orchestrator capability the service consumes;
// *retailers.Scraper is the production implementation.
type Scraper interface {
	Scrape(ctx context.Context, rawURL string, opts scrape.Options) scrape.Result
}

// Config wires a Service. Concurrency bounds the batch-recheck worker
// pool; headless browsers are expensive, so the default stays small.
type Config struct {
	DB          *storage.DB
	Scraper     Scraper
	Alerts      *alerts.Engine
	Notifier    notify.Notifier
	ScrapeOpts  scrape.Options
	Concurrency int // defaults to 4 if <= 0
	Log         Logger
}

// Service orchestrates "add product from URL" and "recheck product
// price": scraping, persistence, alert evaluation, and notification
// fan-out.
type Service struct {
	db          *storage.DB
	scraper     Scraper
	alerts      *alerts.Engine
	notifier    notify.Notifier
	opts        scrape.Options
	concurrency int
	log         Logger
}

func NewService(cfg Config) *Service {
	log := cfg.Log
	if log == nil {
		log = nopLogger{}
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Service{
		db:          cfg.DB,
		scraper:     cfg.Scraper,
		alerts:      cfg.Alerts,
		notifier:    cfg.Notifier,
		opts:        cfg.ScrapeOpts,
		concurrency: concurrency,
		log:         log,
	}
}

// AddProductFromURL starts tracking a listing for a user.
//
// Re-adding a URL the user already tracks returns their existing row
// unchanged. A listing some other user already tracks is reused: its
// scraped data seeds a new per-user row without hitting the retailer
// again, stored under a user-suffixed retailer id so the natural
// identity stays unique. Only genuinely new listings are scraped.
func (s *Service) AddProductFromURL(ctx context.Context, rawURL string, userID int64) (*storage.Product, error) {
	retailer, retailerID, err := retailers.Identify(rawURL)
	if err != nil {
		return nil, err
	}

	if existing, err := s.db.GetProductByListingForUser(ctx, string(retailer), retailerID, userID); err == nil {
		return existing, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	if seed, err := s.db.GetProductByListing(ctx, string(retailer), retailerID); err == nil {
		product := &storage.Product{
			UserID:            userID,
			Title:             seed.Title,
			URL:               rawURL,
			Retailer:          seed.Retailer,
			RetailerProductID: fmt.Sprintf("%s-u%d", retailerID, userID),
			CurrentPrice:      seed.CurrentPrice,
			Currency:          seed.Currency,
			ImageURL:          seed.ImageURL,
			Description:       seed.Description,
			Available:         seed.Available,
		}
		if err := s.db.CreateProduct(ctx, product); err != nil {
			return nil, err
		}
		s.log.Infof("reused listing %s/%s for user %d", retailer, retailerID, userID)
		return product, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	res := s.scraper.Scrape(ctx, rawURL, s.opts)
	if !res.Success {
		return nil, fmt.Errorf("%w: %v", ErrScrapeFailed, res.Err)
	}
	snap := res.Data

	product := &storage.Product{
		UserID:            userID,
		Title:             snap.Title,
		URL:               rawURL,
		Retailer:          string(snap.Retailer),
		RetailerProductID: snap.RetailerID,
		CurrentPrice:      snap.CurrentPrice,
		Currency:          snap.Currency,
		ImageURL:          snap.ImageURL,
		Description:       snap.Description,
		Available:         snap.Available,
	}
	if err := s.db.CreateProduct(ctx, product); err != nil {
		return nil, err
	}
	s.log.Infof("tracking new listing %s/%s for user %d at %.2f %s",
		retailer, retailerID, userID, snap.CurrentPrice, snap.Currency)
	return product, nil
}

// RecheckPrice re-scrapes one product. An unchanged price is an
// idempotent no-op: no history point, no alert evaluation, no events.
// On movement the product row and history advance in one transaction,
// alerts are evaluated, and a drop additionally dispatches a PriceDrop
// event for the owner.
func (s *Service) RecheckPrice(ctx context.Context, productID int64) (*storage.Product, bool, error) {
	product, err := s.db.GetProduct(ctx, productID)
	if err != nil {
		return nil, false, err
	}

	res := s.scraper.Scrape(ctx, product.URL, s.opts)
	if !res.Success {
		return nil, false, fmt.Errorf("%w: %v", ErrScrapeFailed, res.Err)
	}
	snap := res.Data

	oldPrice := product.CurrentPrice
	if snap.CurrentPrice == oldPrice {
		return product, false, nil
	}

	if err := s.db.RecordPrice(ctx, product.ID, snap.CurrentPrice, snap.Currency, snap.Available); err != nil {
		return nil, false, err
	}
	product.CurrentPrice = snap.CurrentPrice
	product.Currency = snap.Currency
	product.Available = snap.Available

	// The price update is committed; alert and notification legs are
	// best-effort from here on.
	if s.alerts != nil {
		if _, err := s.alerts.Evaluate(ctx, product, snap.CurrentPrice); err != nil {
			s.log.Warnf("alert evaluation for product %d: %v", product.ID, err)
		}
	}
	if s.notifier != nil && snap.CurrentPrice < oldPrice {
		s.notifier.Dispatch(ctx, notify.PriceDrop(product, oldPrice, snap.CurrentPrice))
	}

	s.log.Infof("product %d price %.2f -> %.2f", product.ID, oldPrice, snap.CurrentPrice)
	return product, true, nil
}

// CheckPricesForProducts rechecks a batch concurrently under the worker
// bound. Each product is independent: a failure is logged and collected
// without cancelling or failing siblings, and only the successfully
// rechecked subset is returned.
func (s *Service) CheckPricesForProducts(ctx context.Context, productIDs []int64) ([]storage.Product, []error) {
	if len(productIDs) == 0 {
		return nil, nil
	}

	idChan := make(chan int64, len(productIDs))

	var mu sync.Mutex
	var updated []storage.Product
	var errs []error

	var wg sync.WaitGroup
	for i := 0; i < s.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range idChan {
				product, _, err := s.RecheckPrice(ctx, id)
				if err != nil {
					s.log.Warnf("recheck of product %d failed: %v", id, err)
					mu.Lock()
					errs = append(errs, fmt.Errorf("product %d: %w", id, err))
					mu.Unlock()
					continue
				}
				mu.Lock()
				updated = append(updated, *product)
				mu.Unlock()
			}
		}()
	}

	for _, id := range productIDs {
		idChan <- id
	}
	close(idChan)
	wg.Wait()

	return updated, errs
}

// DeleteProduct removes one of the caller's products; history and
// alerts cascade.
func (s *Service) DeleteProduct(ctx context.Context, userID, productID int64) error {
	product, err := s.db.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	if product.UserID != userID {
		return alerts.ErrPermissionDenied
	}
	return s.db.DeleteProduct(ctx, productID)
}
