package logic

import (
	"math"

	"github.com/pr-poehali-dev/souvenir-shop-yurievets-800/evented"
)

// HandleSetQuantity replaces a line's quantity. Values below 1 are
// rejected; an absent product is a no-op.
func (l *DefaultCartLogic) HandleSetQuantity(cart Cart, productID int64, quantity int32) (Outcome, error) {
	if err := evented.RequirePositive(quantity, ErrMsgQuantityTooSmall); err != nil {
		return Outcome{Cart: cart}, err
	}

	item, ok := cart.Find(productID)
	if !ok || item.Quantity == quantity {
		return Outcome{Cart: cart}, nil
	}

	event := &QuantityUpdated{
		ProductID:   productID,
		OldQuantity: item.Quantity,
		NewQuantity: quantity,
	}
	return l.commit(cart, event)
}

func (l *DefaultCartLogic) HandleIncrementQuantity(cart Cart, productID int64) (Outcome, error) {
	item, ok := cart.Find(productID)
	if !ok {
		return Outcome{Cart: cart}, nil
	}
	if item.Quantity == math.MaxInt32 {
		return Outcome{Cart: cart}, evented.NewFailedPrecondition(ErrMsgQuantityLimit)
	}
	return l.HandleSetQuantity(cart, productID, item.Quantity+1)
}

// HandleDecrementQuantity lowers a line by one, never below 1.
func (l *DefaultCartLogic) HandleDecrementQuantity(cart Cart, productID int64) (Outcome, error) {
	item, ok := cart.Find(productID)
	if !ok {
		return Outcome{Cart: cart}, nil
	}
	return l.HandleSetQuantity(cart, productID, max(1, item.Quantity-1))
}
