package alerts

import (
	"context"
	"errors"
	"fmt"

	"github.com/pricewatch/pricewatch/pkg/notify"
	"github.com/pricewatch/pricewatch/pkg/storage"
)

// ErrPermissionDenied is returned when the caller does not own the alert
// or product being mutated. Deliberately distinct from storage.ErrNotFound
// so callers can tell "doesn't exist" from "not yours".
var ErrPermissionDenied = errors.New("permission denied")

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

// Engine decides which alerts fire on a price movement and owns every
// alert mutation, including the ownership checks.
type Engine struct {
	db       *storage.DB
	notifier notify.Notifier
	log      Logger
}

func NewEngine(db *storage.DB, notifier notify.Notifier, log Logger) *Engine {
	if log == nil {
		log = nopLogger{}
	}
	return &Engine{db: db, notifier: notifier, log: log}
}

// Evaluate fires every armed alert of the product whose target price is
// at or above the new price. Each alert transitions false→true exactly
// once per arming: the conditional update in MarkTriggered loses races
// cleanly, and a lost race means someone else already notified.
func (e *Engine) Evaluate(ctx context.Context, product *storage.Product, currentPrice float64) ([]storage.Alert, error) {
	armed, err := e.db.ArmedAlertsAtOrAbove(ctx, product.ID, currentPrice)
	if err != nil {
		return nil, fmt.Errorf("loading armed alerts for product %d: %w", product.ID, err)
	}

	var fired []storage.Alert
	for _, a := range armed {
		ok, err := e.db.MarkTriggered(ctx, a.ID)
		if err != nil {
			e.log.Warnf("could not trigger alert %d: %v", a.ID, err)
			continue
		}
		if !ok {
			continue
		}
		a.IsTriggered = true
		fired = append(fired, a)

		if e.notifier != nil {
			alert := a
			e.notifier.Dispatch(ctx, notify.AlertTriggered(&alert, product))
		}
	}
	if len(fired) > 0 {
		e.log.Infof("product %d at %.2f fired %d alert(s)", product.ID, currentPrice, len(fired))
	}
	return fired, nil
}

// Create registers an alert against one of the caller's products.
func (e *Engine) Create(ctx context.Context, userID, productID int64, targetPrice float64) (*storage.Alert, error) {
	product, err := e.db.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.UserID != userID {
		return nil, ErrPermissionDenied
	}

	a := &storage.Alert{ProductID: productID, UserID: userID, TargetPrice: targetPrice}
	if err := e.db.CreateAlert(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (e *Engine) List(ctx context.Context, userID int64) ([]storage.Alert, error) {
	return e.db.ListAlertsByUser(ctx, userID)
}

// UpdateTarget changes the threshold of one of the caller's alerts.
func (e *Engine) UpdateTarget(ctx context.Context, userID, alertID int64, targetPrice float64) error {
	if err := e.authorize(ctx, userID, alertID); err != nil {
		return err
	}
	return e.db.UpdateAlertTarget(ctx, alertID, targetPrice)
}

// Reset re-arms a triggered alert for a future crossing.
func (e *Engine) Reset(ctx context.Context, userID, alertID int64) error {
	if err := e.authorize(ctx, userID, alertID); err != nil {
		return err
	}
	return e.db.ResetAlert(ctx, alertID)
}

func (e *Engine) Delete(ctx context.Context, userID, alertID int64) error {
	if err := e.authorize(ctx, userID, alertID); err != nil {
		return err
	}
	return e.db.DeleteAlert(ctx, alertID)
}

func (e *Engine) authorize(ctx context.Context, userID, alertID int64) error {
	a, err := e.db.GetAlert(ctx, alertID)
	if err != nil {
		return err
	}
	if a.UserID != userID {
		return ErrPermissionDenied
	}
	return nil
}
