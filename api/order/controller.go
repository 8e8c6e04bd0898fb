/*
Package order exposes order placement and order management over HTTP.

Handlers only bind input, pull the caller's principal from the gin context
and hand both to the application service. Binding failures go through
response.HandleValidationError; everything the service returns goes through
response.HandleAppError, which picks the status code.
*/
package order

import (
	"strconv"
	"strings"

	"github.com/SChris-dev/EcoShop-API/api/ctxutil"
	"github.com/SChris-dev/EcoShop-API/api/response"
	orderapp "github.com/SChris-dev/EcoShop-API/application/order"
	"github.com/SChris-dev/EcoShop-API/pkg/errors"

	"github.com/gin-gonic/gin"
)

// IdempotencyKeyHeader lets clients retry POST /user/orders safely.
const IdempotencyKeyHeader = "Idempotency-Key"

const maxIdempotencyKeyLength = 128

type Controller struct {
	orderService *orderapp.ApplicationService
}

func NewController(orderService *orderapp.ApplicationService) *Controller {
	return &Controller{orderService: orderService}
}

// RegisterUserRoutes mounts the customer routes; user must already require
// authentication.
func (c *Controller) RegisterUserRoutes(user gin.IRoutes) {
	user.GET("/orders", c.ListOrders)
	user.POST("/orders", c.PlaceOrder)
	user.GET("/orders/:id", c.GetOrder)
}

// RegisterAdminRoutes mounts the order management routes.
func (c *Controller) RegisterAdminRoutes(admin gin.IRoutes) {
	admin.GET("/orders", c.ListOrders)
	admin.PUT("/orders/:id", c.UpdateOrderStatus)
	admin.DELETE("/orders/:id", c.DeleteOrder)
}

// PlaceOrder POST /api/v1/user/orders
func (c *Controller) PlaceOrder(ctx *gin.Context) {
	principal, ok := ctxutil.PrincipalFrom(ctx)
	if !ok {
		response.HandleError(ctx, errors.CodeUnauthorized, "Unauthenticated.")
		return
	}

	var req orderapp.PlaceOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleValidationError(ctx, err)
		return
	}

	key := strings.TrimSpace(ctx.GetHeader(IdempotencyKeyHeader))
	if len(key) > maxIdempotencyKeyLength {
		response.HandleError(ctx, errors.CodeBadRequest, "Idempotency-Key may not be greater than 128 characters.")
		return
	}

	result, err := c.orderService.PlaceOrder(ctxutil.WithRequestID(ctx), principal, req, key)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	data := gin.H{"order": result.Order}
	if result.Replayed {
		response.HandleSuccess(ctx, data, "Order already created")
		return
	}
	response.HandleCreated(ctx, data, "Order created successfully")
}

// ListOrders GET /api/v1/user/orders and /api/v1/admin/orders
func (c *Controller) ListOrders(ctx *gin.Context) {
	principal, ok := ctxutil.PrincipalFrom(ctx)
	if !ok {
		response.HandleError(ctx, errors.CodeUnauthorized, "Unauthenticated.")
		return
	}

	var filter orderapp.ListOrdersFilter
	if err := ctx.ShouldBindQuery(&filter); err != nil {
		response.HandleValidationError(ctx, err)
		return
	}

	orders, err := c.orderService.ListOrders(ctxutil.WithRequestID(ctx), principal, filter)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, gin.H{"orders": orders}, "")
}

// GetOrder GET /api/v1/user/orders/:id
func (c *Controller) GetOrder(ctx *gin.Context) {
	principal, ok := ctxutil.PrincipalFrom(ctx)
	if !ok {
		response.HandleError(ctx, errors.CodeUnauthorized, "Unauthenticated.")
		return
	}
	orderID, ok := orderIDParam(ctx)
	if !ok {
		return
	}

	order, err := c.orderService.GetOrder(ctxutil.WithRequestID(ctx), principal, orderID)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, gin.H{"order": order}, "")
}

// UpdateOrderStatus PUT /api/v1/admin/orders/:id
func (c *Controller) UpdateOrderStatus(ctx *gin.Context) {
	principal, ok := ctxutil.PrincipalFrom(ctx)
	if !ok {
		response.HandleError(ctx, errors.CodeUnauthorized, "Unauthenticated.")
		return
	}
	orderID, ok := orderIDParam(ctx)
	if !ok {
		return
	}

	var req orderapp.UpdateOrderStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleValidationError(ctx, err)
		return
	}

	order, err := c.orderService.UpdateOrderStatus(ctxutil.WithRequestID(ctx), principal, orderID, req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, gin.H{"order": order}, "Order updated successfully")
}

// DeleteOrder DELETE /api/v1/admin/orders/:id
func (c *Controller) DeleteOrder(ctx *gin.Context) {
	principal, ok := ctxutil.PrincipalFrom(ctx)
	if !ok {
		response.HandleError(ctx, errors.CodeUnauthorized, "Unauthenticated.")
		return
	}
	orderID, ok := orderIDParam(ctx)
	if !ok {
		return
	}

	if err := c.orderService.DeleteOrder(ctxutil.WithRequestID(ctx), principal, orderID); err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleMessage(ctx, "Order deleted successfully")
}

func orderIDParam(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.HandleError(ctx, errors.CodeOrderNotFound, "Order not found.")
		return 0, false
	}
	return id, true
}
