package logic

// Error message constants for the cart domain.
const (
	ErrMsgProductIDRequired   = "Product ID is required"
	ErrMsgProductNameRequired = "Product name is required"
	ErrMsgPriceNegative       = "Price must be non-negative"
	ErrMsgQuantityTooSmall    = "Quantity must be at least 1"
	ErrMsgQuantityLimit       = "Quantity limit reached"
	ErrMsgTotalOverflow       = "Cart total is too large"
	ErrMsgQuantityOverflow    = "Quantity of product %d is too large"
)
