/*
Package order - order domain errors

Sentinels support errors.Is. Constructors return structured errors that
capture the stack where they were created and optionally name the request
field at fault (items.1.product_id). No HTTP status codes live here.
*/
package order

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/SChris-dev/EcoShop-API/domain/catalog"
	"github.com/SChris-dev/EcoShop-API/domain/shared"
)

var (
	ErrOrderNotFound = errors.New("order not found")

	// ErrProductNotFound aliases the catalog sentinel so either package can be matched.
	ErrProductNotFound = catalog.ErrProductNotFound

	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrStockChanged stock dropped between validation and commit. The caller may resubmit.
	ErrStockChanged = errors.New("stock changed while placing the order")

	ErrAccessDenied = errors.New("access denied")

	ErrInvalidOrderState = errors.New("invalid order state transition")

	ErrInvalidStatus = errors.New("invalid order status")

	ErrEmptyOrderItems = errors.New("order must have at least one item")

	ErrInvalidQuantity = errors.New("quantity must be at least 1")

	// ErrConcurrentModification optimistic lock conflict, retried by the unit of work.
	ErrConcurrentModification = errors.New("order was modified by another transaction, please retry")

	ErrStorageFailure = errors.New("storage failure")

	// ErrPlacementInProgress another request with the same idempotency key has not finished.
	ErrPlacementInProgress = errors.New("an order with this idempotency key is still being placed")
)

func NewOrderNotFoundError(orderID int64) error {
	return shared.NewDomainError(ErrOrderNotFound, "order", "", "order not found: "+strconv.FormatInt(orderID, 10))
}

// NewProductNotFoundError index is the position of the offending line in the request.
func NewProductNotFoundError(index int, productID int64) error {
	return shared.NewDomainError(ErrProductNotFound, "order",
		fmt.Sprintf("items.%d.product_id", index),
		"The selected product does not exist.")
}

func NewEmptyOrderItemsError() error {
	return shared.NewDomainError(ErrEmptyOrderItems, "order", "items", "The items field is required.")
}

func NewInvalidQuantityError(index int) error {
	return shared.NewDomainError(ErrInvalidQuantity, "order",
		fmt.Sprintf("items.%d.quantity", index),
		"The quantity must be at least 1.")
}

func NewInvalidStatusError(value string) error {
	return shared.NewDomainError(ErrInvalidStatus, "order", "status",
		fmt.Sprintf("The selected status %q is invalid.", value))
}

func NewInvalidOrderStateError(current, target Status) error {
	return shared.NewDomainError(ErrInvalidOrderState, "order", "status",
		"cannot transition from "+current.String()+" to "+target.String())
}

func NewAccessDeniedError(message string) error {
	return shared.NewDomainError(ErrAccessDenied, "order", "", message)
}

func NewConcurrentModificationError(orderID int64) error {
	return shared.NewDomainError(ErrConcurrentModification, "order", "",
		"order "+strconv.FormatInt(orderID, 10)+" was modified by another transaction, please retry")
}

// InsufficientStockError is returned by the stock validator. Requested is the
// total asked for the product across all lines of the request.
type InsufficientStockError struct {
	*shared.DomainError
	ProductID   int64
	ProductName string
	Available   int
	Requested   int
}

func NewInsufficientStockError(index int, p catalog.Product, requested int) error {
	msg := fmt.Sprintf("Insufficient stock for product: %s. Available: %d, Requested: %d", p.Name, p.Stock, requested)
	return &InsufficientStockError{
		DomainError: shared.NewDomainError(ErrInsufficientStock, "order", fmt.Sprintf("items.%d.quantity", index), msg),
		ProductID:   p.ID,
		ProductName: p.Name,
		Available:   p.Stock,
		Requested:   requested,
	}
}

// StockChangedError is returned by the committer when the locked row no
// longer covers the requested quantity.
type StockChangedError struct {
	*shared.DomainError
	ProductID int64
	Available int
	Requested int
}

func NewStockChangedError(productID int64, productName string, available, requested int) error {
	msg := fmt.Sprintf("Stock for product: %s changed while placing the order. Available: %d, Requested: %d", productName, available, requested)
	return &StockChangedError{
		DomainError: shared.NewDomainError(ErrStockChanged, "order", "", msg),
		ProductID:   productID,
		Available:   available,
		Requested:   requested,
	}
}

// storageFailure matches both ErrStorageFailure and the underlying cause.
type storageFailure struct {
	cause error
	stack []uintptr
}

func NewStorageFailureError(cause error) error {
	return &storageFailure{cause: cause, stack: shared.CaptureStack(3)}
}

func (e *storageFailure) Error() string {
	return "storage failure: " + e.cause.Error()
}

func (e *storageFailure) Unwrap() []error {
	return []error{ErrStorageFailure, e.cause}
}

func (e *storageFailure) Stack() []string {
	return shared.FormatStack(e.stack)
}
