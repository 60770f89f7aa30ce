// Package notify fans a single order event out to the customer email and
// admin message channels. Delivery is best-effort: one attempt per channel,
// failures are logged and swallowed, and nothing here ever unwinds into the
// state transition that produced the event.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type Kind string

const (
	KindWelcome        Kind = "welcome"
	KindPlaced         Kind = "order_placed"
	KindShipped        Kind = "order_shipped"
	KindOutForDelivery Kind = "order_out_for_delivery"
	KindDelivered      Kind = "order_delivered"
	KindCancelled      Kind = "order_cancelled"
)

type Line struct {
	Name     string
	Quantity uint
}

// Event is the ephemeral value handed to Dispatch. It is not persisted:
// if delivery fails the event is lost, by design.
type Event struct {
	OrderID        uint
	Kind           Kind
	CustomerName   string
	RecipientEmail string
	Phone          string
	Address        string
	PaymentMethod  string
	Total          float64
	Items          []Line
	OTP            string
	Reason         string
	AdminInitiated bool
}

type Channel interface {
	Name() string
	Send(ctx context.Context, ev Event) error
}

type Dispatcher struct {
	Email   Channel
	Admin   Channel
	Logger  *slog.Logger
	Timeout time.Duration

	wg sync.WaitGroup
}

const defaultTimeout = 10 * time.Second

// Dispatch hands the event to the applicable channels on a background
// goroutine and returns immediately.
func (d *Dispatcher) Dispatch(ev Event) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.deliver(ev)
	}()
}

// Wait blocks until all in-flight dispatches finish. Used on shutdown and
// in tests.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) deliver(ev Event) {
	if d.Email != nil && ev.RecipientEmail != "" && emailApplies(ev) {
		d.send(d.Email, ev)
	}
	if d.Admin != nil && adminApplies(ev) {
		d.send(d.Admin, ev)
	}
}

// Customer email goes out on every kind except a cancellation the customer
// triggered themselves. The admin channel gets new orders and customer
// cancellations.
func emailApplies(ev Event) bool {
	return ev.Kind != KindCancelled || ev.AdminInitiated
}

func adminApplies(ev Event) bool {
	if ev.Kind == KindPlaced {
		return true
	}
	return ev.Kind == KindCancelled && !ev.AdminInitiated
}

func (d *Dispatcher) send(ch Channel, ev Event) {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := ch.Send(ctx, ev); err != nil {
		logger := d.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("notification send failed",
			"channel", ch.Name(),
			"kind", ev.Kind,
			"order_id", ev.OrderID,
			"error", err,
		)
	}
}
