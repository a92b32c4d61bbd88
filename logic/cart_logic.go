// Package logic is the cart state engine: it turns user actions into the
// next cart snapshot plus the events and notification intents they emit.
package logic

import (
	"github.com/pr-poehali-dev/souvenir-shop-yurievets-800/catalog"
	"github.com/pr-poehali-dev/souvenir-shop-yurievets-800/evented"
)

// Outcome is the result of a cart operation. Cart is the next snapshot;
// on error it is the unchanged input.
type Outcome struct {
	Cart          Cart
	Events        []evented.Event
	Notifications []Notification
}

// Changed reports whether the operation produced any events.
func (o Outcome) Changed() bool {
	return len(o.Events) > 0
}

type CartLogic interface {
	RebuildState(eventBook *evented.EventBook) Cart
	HandleAddItem(cart Cart, product catalog.Product) (Outcome, error)
	HandleRemoveItem(cart Cart, productID int64) (Outcome, error)
	HandleSetQuantity(cart Cart, productID int64, quantity int32) (Outcome, error)
	HandleIncrementQuantity(cart Cart, productID int64) (Outcome, error)
	HandleDecrementQuantity(cart Cart, productID int64) (Outcome, error)
	HandleClearCart(cart Cart) (Outcome, error)
}

type DefaultCartLogic struct{}

func NewCartLogic() CartLogic {
	return &DefaultCartLogic{}
}

// commit applies a freshly decided event to cart and bundles the result.
// The next snapshot is rejected when its total no longer fits in int64.
func (l *DefaultCartLogic) commit(cart Cart, event cartEvent, notifications ...Notification) (Outcome, error) {
	next := event.applyTo(cart)
	if _, ok := next.checkedTotal(); !ok {
		return Outcome{Cart: cart}, evented.NewFailedPrecondition(ErrMsgTotalOverflow)
	}
	return Outcome{Cart: next, Events: []evented.Event{event}, Notifications: notifications}, nil
}
