package notify

import (
	"fmt"
	"time"

	"github.com/pricewatch/pricewatch/pkg/storage"
)

type EventType string

const (
	EventPriceDrop      EventType = "price_drop"
	EventAlertTriggered EventType = "alert_triggered"
)

// Event is one notification fanned out to the real-time channels and the
// email leg.
type Event struct {
	Type       EventType        `json:"type"`
	Product    *storage.Product `json:"product"`
	Alert      *storage.Alert   `json:"alert,omitempty"`
	OldPrice   float64          `json:"old_price,omitempty"`
	NewPrice   float64          `json:"new_price,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
}

func PriceDrop(product *storage.Product, oldPrice, newPrice float64) Event {
	return Event{
		Type:       EventPriceDrop,
		Product:    product,
		OldPrice:   oldPrice,
		NewPrice:   newPrice,
		OccurredAt: time.Now().UTC(),
	}
}

func AlertTriggered(alert *storage.Alert, product *storage.Product) Event {
	return Event{
		Type:       EventAlertTriggered,
		Product:    product,
		Alert:      alert,
		OccurredAt: time.Now().UTC(),
	}
}

// UserID is the owner the event concerns.
func (e Event) UserID() int64 {
	if e.Alert != nil {
		return e.Alert.UserID
	}
	if e.Product != nil {
		return e.Product.UserID
	}
	return 0
}

// Channels names the per-user and per-product channels the event is
// published to.
func (e Event) Channels() []string {
	var channels []string
	if id := e.UserID(); id != 0 {
		channels = append(channels, UserChannel(id))
	}
	if e.Product != nil {
		channels = append(channels, ProductChannel(e.Product.ID))
	}
	return channels
}

func UserChannel(userID int64) string       { return fmt.Sprintf("user:%d", userID) }
func ProductChannel(productID int64) string { return fmt.Sprintf("product:%d", productID) }
