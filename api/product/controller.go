// Package product exposes the catalog: public reads and admin management.
package product

import (
	"strconv"

	"github.com/SChris-dev/EcoShop-API/api/ctxutil"
	"github.com/SChris-dev/EcoShop-API/api/response"
	catalogapp "github.com/SChris-dev/EcoShop-API/application/catalog"
	"github.com/SChris-dev/EcoShop-API/pkg/errors"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	catalogService *catalogapp.ApplicationService
}

func NewController(catalogService *catalogapp.ApplicationService) *Controller {
	return &Controller{catalogService: catalogService}
}

func (c *Controller) RegisterPublicRoutes(public gin.IRoutes) {
	public.GET("/products", c.ListProducts)
	public.GET("/products/:id", c.GetProduct)
}

func (c *Controller) RegisterAdminRoutes(admin gin.IRoutes) {
	admin.POST("/products", c.CreateProduct)
	admin.PUT("/products/:id", c.UpdateProduct)
	admin.DELETE("/products/:id", c.DeleteProduct)
}

func (c *Controller) ListProducts(ctx *gin.Context) {
	products, err := c.catalogService.ListProducts(ctxutil.WithRequestID(ctx))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, gin.H{"products": products}, "")
}

func (c *Controller) GetProduct(ctx *gin.Context) {
	id, ok := productIDParam(ctx)
	if !ok {
		return
	}

	product, err := c.catalogService.GetProduct(ctxutil.WithRequestID(ctx), id)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, gin.H{"product": product}, "")
}

func (c *Controller) CreateProduct(ctx *gin.Context) {
	principal, _ := ctxutil.PrincipalFrom(ctx)

	var req catalogapp.CreateProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleValidationError(ctx, err)
		return
	}

	product, err := c.catalogService.CreateProduct(ctxutil.WithRequestID(ctx), principal, req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleCreated(ctx, gin.H{"product": product}, "Product created successfully")
}

func (c *Controller) UpdateProduct(ctx *gin.Context) {
	principal, _ := ctxutil.PrincipalFrom(ctx)
	id, ok := productIDParam(ctx)
	if !ok {
		return
	}

	var req catalogapp.UpdateProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleValidationError(ctx, err)
		return
	}

	product, err := c.catalogService.UpdateProduct(ctxutil.WithRequestID(ctx), principal, id, req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, gin.H{"product": product}, "Product updated successfully")
}

func (c *Controller) DeleteProduct(ctx *gin.Context) {
	principal, _ := ctxutil.PrincipalFrom(ctx)
	id, ok := productIDParam(ctx)
	if !ok {
		return
	}

	if err := c.catalogService.DeleteProduct(ctxutil.WithRequestID(ctx), principal, id); err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleMessage(ctx, "Product deleted successfully")
}

func productIDParam(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.HandleError(ctx, errors.CodeProductNotFound, "Product not found.")
		return 0, false
	}
	return id, true
}
