package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/SChris-dev/EcoShop-API/domain/catalog"
	"github.com/SChris-dev/EcoShop-API/domain/order"
	"github.com/SChris-dev/EcoShop-API/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	UseJSONFieldNames()
}

type lineBody struct {
	ProductID int64 `json:"product_id" binding:"required,gt=0"`
	Quantity  int   `json:"quantity" binding:"required,min=1"`
}

type orderBody struct {
	Items []lineBody `json:"items" binding:"required,min=1,dive"`
}

func serve(t *testing.T, handler gin.HandlerFunc, body string) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	r := gin.New()
	r.POST("/", func(c *gin.Context) {
		c.Set(RequestIDKey, "req-1")
		handler(c)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestHandleAppErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"insufficient stock", order.NewInsufficientStockError(0, catalog.Product{ID: 1, Name: "Bamboo Toothbrush", Stock: 100}, 101), http.StatusBadRequest, "INSUFFICIENT_STOCK"},
		{"stock changed", order.NewStockChangedError(1, "Bamboo Toothbrush", 2, 3), http.StatusConflict, "STOCK_CHANGED"},
		{"order not found", order.ErrOrderNotFound, http.StatusNotFound, "ORDER_NOT_FOUND"},
		{"product not found", catalog.ErrProductNotFound, http.StatusNotFound, "PRODUCT_NOT_FOUND"},
		{"access denied", order.ErrAccessDenied, http.StatusForbidden, "FORBIDDEN"},
		{"invalid state", order.ErrInvalidOrderState, http.StatusUnprocessableEntity, "INVALID_ORDER_STATE"},
		{"in progress", order.ErrPlacementInProgress, http.StatusConflict, "IDEMPOTENCY_IN_PROGRESS"},
		{"unauthorized", errors.Unauthorized("missing token"), http.StatusUnauthorized, "UNAUTHORIZED"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, resp := serve(t, func(c *gin.Context) { HandleAppError(c, tc.err) }, "")
			assert.Equal(t, tc.status, w.Code)
			assert.False(t, resp.Success)
			assert.Equal(t, tc.code, resp.Error)
			assert.Equal(t, tc.status, resp.Code)
			assert.Equal(t, "req-1", resp.RequestID)
		})
	}
}

func TestHandleAppErrorHidesInternalMessage(t *testing.T) {
	w, resp := serve(t, func(c *gin.Context) {
		HandleAppError(c, assert.AnError)
	}, "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_ERROR", resp.Error)
	assert.Equal(t, "internal server error", resp.Message)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}

func TestHandleValidationErrorReportsFieldPaths(t *testing.T) {
	bind := func(c *gin.Context) {
		var body orderBody
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleValidationError(c, err)
			return
		}
		HandleSuccess(c, body, "ok")
	}

	t.Run("empty items", func(t *testing.T) {
		w, resp := serve(t, bind, `{"items":[]}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error)
		assert.Equal(t, []string{"At least one item is required for the order."}, resp.Errors["items"])
		assert.Equal(t, "At least one item is required for the order.", resp.Message)
	})

	t.Run("bad quantity", func(t *testing.T) {
		w, resp := serve(t, bind, `{"items":[{"product_id":1,"quantity":1},{"product_id":2,"quantity":-1}]}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, []string{"Quantity must be at least 1."}, resp.Errors["items.1.quantity"])
	})

	t.Run("missing product id", func(t *testing.T) {
		_, resp := serve(t, bind, `{"items":[{"quantity":2}]}`)
		assert.Equal(t, []string{"Product ID is required for each item."}, resp.Errors["items.0.product_id"])
	})

	t.Run("malformed json", func(t *testing.T) {
		w, resp := serve(t, bind, `{"items":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "BAD_REQUEST", resp.Error)
	})

	t.Run("valid", func(t *testing.T) {
		w, resp := serve(t, bind, `{"items":[{"product_id":1,"quantity":2}]}`)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, resp.Success)
	})
}

func TestFieldPath(t *testing.T) {
	assert.Equal(t, "items.0.quantity", fieldPath("orderBody.items[0].quantity"))
	assert.Equal(t, "items", fieldPath("orderBody.items"))
	assert.Equal(t, "status", fieldPath("status"))
}
