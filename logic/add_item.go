package logic

import (
	"math"

	"github.com/pr-poehali-dev/souvenir-shop-yurievets-800/catalog"
	"github.com/pr-poehali-dev/souvenir-shop-yurievets-800/evented"
)

func (l *DefaultCartLogic) HandleAddItem(cart Cart, product catalog.Product) (Outcome, error) {
	if err := evented.RequireNonZero(product.ID, ErrMsgProductIDRequired); err != nil {
		return Outcome{Cart: cart}, err
	}
	if err := evented.RequireNotEmptyString(product.Name, ErrMsgProductNameRequired); err != nil {
		return Outcome{Cart: cart}, err
	}
	if err := evented.RequireNonNegative(product.Price, ErrMsgPriceNegative); err != nil {
		return Outcome{Cart: cart}, err
	}

	event := &ItemAdded{Product: product, Quantity: 1}
	if item, ok := cart.Find(product.ID); ok {
		if item.Quantity == math.MaxInt32 {
			return Outcome{Cart: cart}, evented.NewFailedPrecondition(ErrMsgQuantityLimit)
		}
		// An existing line keeps its own product fields.
		event = &ItemAdded{Product: item.Product, Quantity: item.Quantity + 1}
	}

	return l.commit(cart, event, addedNotification(product.Name))
}
