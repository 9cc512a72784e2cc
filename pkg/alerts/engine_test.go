package alerts

import (
	"context"
	"errors"
	"testing"

	"github.com/pricewatch/pricewatch/pkg/notify"
	"github.com/pricewatch/pricewatch/pkg/storage"
)

type recordingNotifier struct {
	events []notify.Event
}

func (n *recordingNotifier) Dispatch(_ context.Context, ev notify.Event) {
	n.events = append(n.events, ev)
}

func setup(t *testing.T) (*Engine, *storage.DB, *recordingNotifier, *storage.Product) {
	t.Helper()
	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	notifier := &recordingNotifier{}
	engine := NewEngine(db, notifier, nil)

	product := &storage.Product{
		UserID:            1,
		Title:             "Sony WH-1000XM4",
		URL:               "https://www.amazon.com/dp/B0863TXGM3",
		Retailer:          "amazon",
		RetailerProductID: "B0863TXGM3",
		CurrentPrice:      120,
		Currency:          "USD",
		Available:         true,
	}
	if err := db.CreateProduct(context.Background(), product); err != nil {
		t.Fatal(err)
	}
	return engine, db, notifier, product
}

func TestEvaluateFiresCrossedAlertOnce(t *testing.T) {
	engine, _, notifier, product := setup(t)
	ctx := context.Background()

	alert, err := engine.Create(ctx, 1, product.ID, 100)
	if err != nil {
		t.Fatal(err)
	}

	// 120 → 95 crosses the 100 threshold.
	fired, err := engine.Evaluate(ctx, product, 95)
	if err != nil {
		t.Fatal(err)
	}
	if len(fired) != 1 || fired[0].ID != alert.ID || !fired[0].IsTriggered {
		t.Fatalf("fired = %+v; want alert %d triggered", fired, alert.ID)
	}
	if len(notifier.events) != 1 || notifier.events[0].Type != notify.EventAlertTriggered {
		t.Fatalf("events = %+v; want one alert_triggered", notifier.events)
	}

	// A further drop must not re-fire without an explicit reset.
	fired, err = engine.Evaluate(ctx, product, 90)
	if err != nil {
		t.Fatal(err)
	}
	if len(fired) != 0 {
		t.Fatalf("re-fired without reset: %+v", fired)
	}
	if len(notifier.events) != 1 {
		t.Errorf("events = %d; want still 1", len(notifier.events))
	}
}

func TestEvaluateSkipsUncrossedAlerts(t *testing.T) {
	engine, _, notifier, product := setup(t)
	ctx := context.Background()

	if _, err := engine.Create(ctx, 1, product.ID, 50); err != nil {
		t.Fatal(err)
	}

	fired, err := engine.Evaluate(ctx, product, 95)
	if err != nil {
		t.Fatal(err)
	}
	if len(fired) != 0 || len(notifier.events) != 0 {
		t.Fatalf("alert with target 50 fired at price 95")
	}
}

func TestResetReArmsAlert(t *testing.T) {
	engine, _, _, product := setup(t)
	ctx := context.Background()

	alert, err := engine.Create(ctx, 1, product.ID, 100)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := engine.Evaluate(ctx, product, 95); err != nil {
		t.Fatal(err)
	}

	if err := engine.Reset(ctx, 1, alert.ID); err != nil {
		t.Fatal(err)
	}
	fired, err := engine.Evaluate(ctx, product, 90)
	if err != nil {
		t.Fatal(err)
	}
	if len(fired) != 1 {
		t.Fatalf("reset alert did not fire again: %+v", fired)
	}
}

func TestOwnershipChecks(t *testing.T) {
	engine, _, _, product := setup(t)
	ctx := context.Background()

	// Creating against someone else's product is a permission error,
	// not a not-found.
	if _, err := engine.Create(ctx, 2, product.ID, 100); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("create = %v; want ErrPermissionDenied", err)
	}
	if _, err := engine.Create(ctx, 1, 9999, 100); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("create against missing product = %v; want ErrNotFound", err)
	}

	alert, err := engine.Create(ctx, 1, product.ID, 100)
	if err != nil {
		t.Fatal(err)
	}
	if err := engine.Reset(ctx, 2, alert.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("reset = %v; want ErrPermissionDenied", err)
	}
	if err := engine.Delete(ctx, 2, alert.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("delete = %v; want ErrPermissionDenied", err)
	}
	if err := engine.UpdateTarget(ctx, 2, alert.ID, 80); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("update = %v; want ErrPermissionDenied", err)
	}
	if err := engine.Delete(ctx, 1, 9999); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("delete missing = %v; want ErrNotFound", err)
	}

	if err := engine.Delete(ctx, 1, alert.ID); err != nil {
		t.Errorf("owner delete failed: %v", err)
	}
}
