package logic

import (
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/pr-poehali-dev/souvenir-shop-yurievets-800/evented"
)

var stateBuilder = evented.NewStateBuilder(func() Cart { return Cart{} }).
	On(EventItemAdded, applyDecoded(func(p *structpb.Struct) cartEvent { return decodeItemAdded(p) })).
	On(EventQuantityUpdated, applyDecoded(func(p *structpb.Struct) cartEvent { return decodeQuantityUpdated(p) })).
	On(EventItemRemoved, applyDecoded(func(p *structpb.Struct) cartEvent { return decodeItemRemoved(p) })).
	On(EventCartCleared, applyDecoded(func(*structpb.Struct) cartEvent { return &CartCleared{} })).
	On(EventCartSnapshot, applyDecoded(func(p *structpb.Struct) cartEvent { return decodeCartSnapshot(p) }))

// RebuildState folds an event history back into a Cart.
func (l *DefaultCartLogic) RebuildState(eventBook *evented.EventBook) Cart {
	return stateBuilder.Rebuild(eventBook)
}

// applyDecoded replays a stored event through the same transition the
// engine used when it decided the event.
func applyDecoded(decode func(*structpb.Struct) cartEvent) evented.StateApplier[Cart] {
	return func(cart *Cart, payload *structpb.Struct) {
		*cart = decode(payload).applyTo(*cart)
	}
}
