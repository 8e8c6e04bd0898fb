package catalog

import (
	"errors"
	"strconv"

	"github.com/SChris-dev/EcoShop-API/domain/shared"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInvalidProduct    = errors.New("invalid product")
	ErrInsufficientStock = errors.New("insufficient stock")
)

func NewProductNotFoundError(id int64) error {
	return shared.NewDomainError(ErrProductNotFound, "product", "", "product not found: "+strconv.FormatInt(id, 10))
}

func NewInvalidProductError(field, message string) error {
	return shared.NewDomainError(ErrInvalidProduct, "product", field, message)
}

func NewStockConflictError(id int64) error {
	return shared.NewDomainError(ErrInsufficientStock, "product", "", "stock for product "+strconv.FormatInt(id, 10)+" is lower than requested")
}
