package logic

// HandleClearCart empties the cart. Clearing an empty cart still succeeds
// and still asks for the "cleared" notification.
func (l *DefaultCartLogic) HandleClearCart(cart Cart) (Outcome, error) {
	event := &CartCleared{Lines: cart.Len()}
	return l.commit(cart, event, clearedNotification())
}
