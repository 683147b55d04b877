package checkout

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart              = errors.New("cart is empty, nothing to checkout")
	ErrAuthenticationRequired = errors.New("please log in to place an order")
)

// StockAdjustmentError is one failed stock patch. It is recorded on the
// Result and never returned from Checkout.
type StockAdjustmentError struct {
	ItemID    string
	ProductID string
	Updated   int
	Err       error
}

func (e *StockAdjustmentError) Error() string {
	return fmt.Sprintf("adjust stock of product %s to %d: %v", e.ProductID, e.Updated, e.Err)
}

func (e *StockAdjustmentError) Unwrap() error { return e.Err }

// NotificationDispatchError is a failed confirmation email. Like stock
// failures it is recorded, not returned.
type NotificationDispatchError struct {
	OrderID string
	Err     error
}

func (e *NotificationDispatchError) Error() string {
	return fmt.Sprintf("send confirmation for order %s: %v", e.OrderID, e.Err)
}

func (e *NotificationDispatchError) Unwrap() error { return e.Err }

// UnexpectedCheckoutError aborts the checkout. The cart is left intact so
// the shopper can retry.
type UnexpectedCheckoutError struct {
	Stage string
	Err   error
}

func (e *UnexpectedCheckoutError) Error() string {
	return fmt.Sprintf("checkout failed during %s: %v", e.Stage, e.Err)
}

func (e *UnexpectedCheckoutError) Unwrap() error { return e.Err }
