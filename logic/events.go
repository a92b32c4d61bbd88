package logic

import (
	"strconv"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/pr-poehali-dev/souvenir-shop-yurievets-800/catalog"
	"github.com/pr-poehali-dev/souvenir-shop-yurievets-800/evented"
)

// Event type names.
const (
	EventItemAdded       = "ItemAdded"
	EventQuantityUpdated = "QuantityUpdated"
	EventItemRemoved     = "ItemRemoved"
	EventCartCleared     = "CartCleared"
	EventCartSnapshot    = "CartSnapshot"
)

// cartEvent is a decided event that can be applied to a live Cart
// directly. Payloads are only built when the event is stored.
type cartEvent interface {
	evented.Event
	applyTo(cart Cart) Cart
}

// ItemAdded records a product entering the cart or an existing line
// growing by one. Quantity is the line's quantity after the add.
type ItemAdded struct {
	Product  catalog.Product
	Quantity int32
}

func (e *ItemAdded) EventType() string { return EventItemAdded }

// Payload carries int64 fields as decimal strings; Struct numbers are
// doubles and cannot hold every id or price.
func (e *ItemAdded) Payload() (*structpb.Struct, error) {
	return structpb.NewStruct(productFields(e.Product, e.Quantity))
}

func (e *ItemAdded) applyTo(cart Cart) Cart {
	if _, ok := cart.Find(e.Product.ID); ok {
		return cart.withQuantity(e.Product.ID, e.Quantity)
	}
	return cart.withAppended(CartItem{Product: e.Product, Quantity: e.Quantity})
}

// QuantityUpdated records a direct quantity replacement.
type QuantityUpdated struct {
	ProductID   int64
	OldQuantity int32
	NewQuantity int32
}

func (e *QuantityUpdated) EventType() string { return EventQuantityUpdated }

func (e *QuantityUpdated) Payload() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"product_id":   formatInt(e.ProductID),
		"old_quantity": e.OldQuantity,
		"new_quantity": e.NewQuantity,
	})
}

func (e *QuantityUpdated) applyTo(cart Cart) Cart {
	return cart.withQuantity(e.ProductID, e.NewQuantity)
}

// ItemRemoved records a line leaving the cart.
type ItemRemoved struct {
	ProductID int64
	Quantity  int32
}

func (e *ItemRemoved) EventType() string { return EventItemRemoved }

func (e *ItemRemoved) Payload() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"product_id": formatInt(e.ProductID),
		"quantity":   e.Quantity,
	})
}

func (e *ItemRemoved) applyTo(cart Cart) Cart {
	return cart.without(e.ProductID)
}

// CartCleared records every line being dropped at once.
type CartCleared struct {
	Lines int
}

func (e *CartCleared) EventType() string { return EventCartCleared }

func (e *CartCleared) Payload() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"lines": e.Lines,
	})
}

func (e *CartCleared) applyTo(Cart) Cart {
	return Cart{}
}

// CartSnapshot replaces the whole cart. Sessions write one when they
// compact a long history, so a rebuild can start from it.
type CartSnapshot struct {
	Items []CartItem
}

// NewCartSnapshot captures cart as a snapshot event.
func NewCartSnapshot(cart Cart) *CartSnapshot {
	return &CartSnapshot{Items: cart.Items()}
}

func (e *CartSnapshot) EventType() string { return EventCartSnapshot }

func (e *CartSnapshot) Payload() (*structpb.Struct, error) {
	items := make([]interface{}, 0, len(e.Items))
	for _, item := range e.Items {
		items = append(items, productFields(item.Product, item.Quantity))
	}
	return structpb.NewStruct(map[string]interface{}{
		"items": items,
	})
}

// applyTo keeps the current cart if the snapshot breaks a cart invariant.
func (e *CartSnapshot) applyTo(cart Cart) Cart {
	next, err := NewCart(e.Items...)
	if err != nil {
		return cart
	}
	return next
}

func productFields(p catalog.Product, quantity int32) map[string]interface{} {
	return map[string]interface{}{
		"product_id": formatInt(p.ID),
		"name":       p.Name,
		"price":      formatInt(p.Price),
		"image":      p.Image,
		"quantity":   quantity,
	}
}

func decodeItemAdded(p *structpb.Struct) *ItemAdded {
	return &ItemAdded{
		Product: catalog.Product{
			ID:    intField(p, "product_id"),
			Name:  stringField(p, "name"),
			Price: intField(p, "price"),
			Image: stringField(p, "image"),
		},
		Quantity: int32(intField(p, "quantity")),
	}
}

func decodeQuantityUpdated(p *structpb.Struct) *QuantityUpdated {
	return &QuantityUpdated{
		ProductID:   intField(p, "product_id"),
		OldQuantity: int32(intField(p, "old_quantity")),
		NewQuantity: int32(intField(p, "new_quantity")),
	}
}

func decodeItemRemoved(p *structpb.Struct) *ItemRemoved {
	return &ItemRemoved{
		ProductID: intField(p, "product_id"),
		Quantity:  int32(intField(p, "quantity")),
	}
}

func decodeCartSnapshot(p *structpb.Struct) *CartSnapshot {
	values := p.GetFields()["items"].GetListValue().GetValues()
	items := make([]CartItem, 0, len(values))
	for _, v := range values {
		line := decodeItemAdded(v.GetStructValue())
		items = append(items, CartItem{Product: line.Product, Quantity: line.Quantity})
	}
	return &CartSnapshot{Items: items}
}

func formatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}

// intField reads an integer stored either as a decimal string or, for
// small values such as quantities, as a number.
func intField(p *structpb.Struct, key string) int64 {
	v := p.GetFields()[key]
	if s, ok := v.GetKind().(*structpb.Value_StringValue); ok {
		n, _ := strconv.ParseInt(s.StringValue, 10, 64)
		return n
	}
	return int64(v.GetNumberValue())
}

func stringField(p *structpb.Struct, key string) string {
	return p.GetFields()[key].GetStringValue()
}
