package logic

// HandleRemoveItem drops a line. Removing an absent product is a no-op.
func (l *DefaultCartLogic) HandleRemoveItem(cart Cart, productID int64) (Outcome, error) {
	item, ok := cart.Find(productID)
	if !ok {
		return Outcome{Cart: cart}, nil
	}

	event := &ItemRemoved{ProductID: productID, Quantity: item.Quantity}
	return l.commit(cart, event)
}
