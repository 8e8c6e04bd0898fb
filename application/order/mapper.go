package order

import (
	"github.com/SChris-dev/EcoShop-API/domain/order"
	"github.com/SChris-dev/EcoShop-API/domain/shared"
)

// Money is rendered as a JSON number with two decimals.
type Money = shared.Money

func toLineRequests(items []LineItemRequest) []order.LineRequest {
	lines := make([]order.LineRequest, len(items))
	for i, item := range items {
		lines[i] = order.LineRequest{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	return lines
}

func ToOrderResponse(o *order.Order) *OrderResponse {
	items := o.Items()
	resp := &OrderResponse{
		ID:          o.ID(),
		UserID:      o.UserID(),
		TotalAmount: o.TotalAmount(),
		Status:      o.Status().String(),
		OrderItems:  make([]OrderItemResponse, len(items)),
		ItemsCount:  len(items),
		CreatedAt:   o.CreatedAt(),
		UpdatedAt:   o.UpdatedAt(),
	}
	for i, item := range items {
		resp.OrderItems[i] = OrderItemResponse{
			ID:          item.ID(),
			ProductID:   item.ProductID(),
			ProductName: item.ProductName(),
			Quantity:    item.Quantity(),
			Price:       item.Price(),
			TotalPrice:  item.TotalPrice(),
		}
	}
	return resp
}

func toOrderResponses(orders []*order.Order) []*OrderResponse {
	out := make([]*OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = ToOrderResponse(o)
	}
	return out
}
