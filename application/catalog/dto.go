package catalog

import (
	"time"

	"github.com/SChris-dev/EcoShop-API/domain/shared"
)

type CreateProductRequest struct {
	Name        string        `json:"name" binding:"required,max=255"`
	Description string        `json:"description" binding:"required"`
	Price       *shared.Money `json:"price" binding:"required"`
	Stock       *int          `json:"stock" binding:"required,min=0"`
}

// UpdateProductRequest only changes the fields that are present.
type UpdateProductRequest struct {
	Name        *string       `json:"name" binding:"omitempty,min=1,max=255"`
	Description *string       `json:"description" binding:"omitempty,min=1"`
	Price       *shared.Money `json:"price"`
	Stock       *int          `json:"stock" binding:"omitempty,min=0"`
}

type ProductResponse struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Price       shared.Money `json:"price"`
	Stock       int          `json:"stock"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}
