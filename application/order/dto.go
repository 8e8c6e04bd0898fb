package order

import "time"

// PlaceOrderRequest is the body of POST /user/orders. Prices are never
// accepted from the client.
type PlaceOrderRequest struct {
	Items []LineItemRequest `json:"items" binding:"required,min=1,dive"`
}

type LineItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required,gt=0"`
	Quantity  int   `json:"quantity" binding:"required,min=1"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending processing completed cancelled"`
}

// ListOrdersFilter narrows a listing. UserID is honoured for admins only.
type ListOrdersFilter struct {
	Status string    `form:"status" binding:"omitempty,oneof=pending processing completed cancelled"`
	UserID int64     `form:"user_id" binding:"omitempty,gt=0"`
	From   time.Time `form:"from" time_format:"2006-01-02"`
	To     time.Time `form:"to" time_format:"2006-01-02"`
}

type OrderResponse struct {
	ID          int64               `json:"id"`
	UserID      int64               `json:"user_id"`
	TotalAmount Money               `json:"total_amount"`
	Status      string              `json:"status"`
	OrderItems  []OrderItemResponse `json:"order_items"`
	ItemsCount  int                 `json:"items_count"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

type OrderItemResponse struct {
	ID          int64  `json:"id"`
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Price       Money  `json:"price"`
	TotalPrice  Money  `json:"total_price"`
}

// PlaceOrderResult Replayed is true when an Idempotency-Key matched an
// order placed earlier.
type PlaceOrderResult struct {
	Order    *OrderResponse
	Replayed bool
}
