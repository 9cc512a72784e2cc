package notify

import "context"

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

// Notifier is the dispatch capability the price service and alert engine
// consume. Dispatcher is the production implementation.
type Notifier interface {
	Dispatch(ctx context.Context, ev Event)
}

// Mailer is the asynchronous notification collaborator, keyed by
// template type. The real sender lives outside this module.
type Mailer interface {
	Send(ctx context.Context, template string, userID int64, ev Event) error
}

// Dispatcher fans a triggered event out to the real-time hub channels
// and hands it to the mailer. Both legs are best-effort: a full
// subscriber buffer drops, a mailer error is logged and swallowed, and
// neither can fail the price-update transaction that produced the event.
type Dispatcher struct {
	hub    *Hub
	mailer Mailer
	log    Logger
}

func NewDispatcher(hub *Hub, mailer Mailer, log Logger) *Dispatcher {
	if log == nil {
		log = nopLogger{}
	}
	return &Dispatcher{hub: hub, mailer: mailer, log: log}
}

func (d *Dispatcher) Hub() *Hub { return d.hub }

func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) {
	for _, channel := range ev.Channels() {
		n := d.hub.Publish(channel, ev)
		d.log.Debugf("published %s to %s (%d subscribers)", ev.Type, channel, n)
	}

	if d.mailer == nil {
		return
	}
	if err := d.mailer.Send(ctx, templateFor(ev.Type), ev.UserID(), ev); err != nil {
		d.log.Warnf("email dispatch for %s failed: %v", ev.Type, err)
	}
}

func templateFor(t EventType) string {
	switch t {
	case EventPriceDrop:
		return "price-drop"
	case EventAlertTriggered:
		return "alert-triggered"
	default:
		return string(t)
	}
}

// LogMailer stands in for the external email service in the CLI: it just
// records what would have been sent.
type LogMailer struct {
	Log  Logger
	From string
}

func (m LogMailer) Send(_ context.Context, template string, userID int64, ev Event) error {
	log := m.Log
	if log == nil {
		log = nopLogger{}
	}
	from := m.From
	if from == "" {
		from = "pricewatch"
	}
	log.Infof("notify user %d from %s: template=%s product=%q", userID, from, template, ev.Product.Title)
	return nil
}
