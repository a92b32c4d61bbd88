package logic

import (
	"math"

	"github.com/pr-poehali-dev/souvenir-shop-yurievets-800/catalog"
	"github.com/pr-poehali-dev/souvenir-shop-yurievets-800/evented"
)

// CartItem is a catalog product with a quantity of at least one.
type CartItem struct {
	catalog.Product
	Quantity int32 `json:"quantity"`
}

// Subtotal returns price × quantity for the line.
func (i CartItem) Subtotal() int64 {
	return i.Price * int64(i.Quantity)
}

// Cart is an immutable snapshot of line items in insertion order.
//
// The zero value is an empty cart. Operations never modify a Cart; they
// return a new one, so a snapshot handed to a reader stays valid.
type Cart struct {
	items []CartItem
}

// NewCart builds a cart from items. Repeated product ids are merged into
// the first occurrence by summing quantities. Quantities below 1, merged
// quantities beyond int32 and totals beyond int64 are rejected.
func NewCart(items ...CartItem) (Cart, error) {
	var c Cart
	for _, item := range items {
		if err := evented.RequirePositive(item.Quantity, ErrMsgQuantityTooSmall); err != nil {
			return Cart{}, err
		}
		if err := evented.RequireNonNegative(item.Price, ErrMsgPriceNegative); err != nil {
			return Cart{}, err
		}
		if idx := c.index(item.ID); idx >= 0 {
			existing := c.items[idx].Quantity
			if existing > math.MaxInt32-item.Quantity {
				return Cart{}, evented.NewInvalidArgumentf(ErrMsgQuantityOverflow, item.ID)
			}
			c = c.withQuantity(item.ID, existing+item.Quantity)
			continue
		}
		c = c.withAppended(item)
	}
	if _, ok := c.checkedTotal(); !ok {
		return Cart{}, evented.NewInvalidArgument(ErrMsgTotalOverflow)
	}
	return c, nil
}

// Items returns a copy of the line items.
func (c Cart) Items() []CartItem {
	out := make([]CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// Find returns the line for a product id.
func (c Cart) Find(productID int64) (CartItem, bool) {
	if idx := c.index(productID); idx >= 0 {
		return c.items[idx], true
	}
	return CartItem{}, false
}

// Len returns the number of distinct lines.
func (c Cart) Len() int {
	return len(c.items)
}

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// Total is the sum of price × quantity over all lines.
func (c Cart) Total() int64 {
	var total int64
	for _, item := range c.items {
		total += item.Subtotal()
	}
	return total
}

// ItemCount is the sum of quantities, not the number of lines.
func (c Cart) ItemCount() int64 {
	var count int64
	for _, item := range c.items {
		count += int64(item.Quantity)
	}
	return count
}

// checkedTotal is Total with overflow detection. Every Cart the engine
// publishes passes it, so Total and Subtotal never wrap.
func (c Cart) checkedTotal() (int64, bool) {
	var total int64
	for _, item := range c.items {
		q := int64(item.Quantity)
		if item.Price < 0 || q < 0 || (q != 0 && item.Price > math.MaxInt64/q) {
			return 0, false
		}
		subtotal := item.Price * q
		if total > math.MaxInt64-subtotal {
			return 0, false
		}
		total += subtotal
	}
	return total, true
}

func (c Cart) index(productID int64) int {
	for i, item := range c.items {
		if item.ID == productID {
			return i
		}
	}
	return -1
}

func (c Cart) withAppended(item CartItem) Cart {
	items := make([]CartItem, len(c.items), len(c.items)+1)
	copy(items, c.items)
	return Cart{items: append(items, item)}
}

func (c Cart) withQuantity(productID int64, quantity int32) Cart {
	idx := c.index(productID)
	if idx < 0 {
		return c
	}
	items := c.Items()
	items[idx].Quantity = quantity
	return Cart{items: items}
}

func (c Cart) without(productID int64) Cart {
	idx := c.index(productID)
	if idx < 0 {
		return c
	}
	if len(c.items) == 1 {
		return Cart{}
	}
	items := make([]CartItem, 0, len(c.items)-1)
	items = append(items, c.items[:idx]...)
	items = append(items, c.items[idx+1:]...)
	return Cart{items: items}
}
