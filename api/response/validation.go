package response

import (
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/SChris-dev/EcoShop-API/domain/shared"
	"github.com/SChris-dev/EcoShop-API/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	tagNamesOnce sync.Once
	indexPattern = regexp.MustCompile(`\[(\d+)\]`)
)

// UseJSONFieldNames makes validation errors report json/form tag names
// instead of Go field names. Safe to call more than once.
func UseJSONFieldNames() {
	tagNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return f.Name
		})
	})
}

// HandleValidationError answers a failed ShouldBind*. Field violations
// become 422 with per-field messages; an unreadable body becomes 400.
func HandleValidationError(c *gin.Context, err error) {
	var fieldErrs validator.ValidationErrors
	if stdErrors.As(err, &fieldErrs) {
		appErr := errors.Validation("The given data was invalid.")
		for _, fe := range fieldErrs {
			path := fieldPath(fe.Namespace())
			appErr.WithDetail(path, messageFor(path, fe))
		}
		if len(fieldErrs) > 0 {
			first := fieldPath(fieldErrs[0].Namespace())
			appErr.Message = appErr.Details[first][0]
		}
		HandleAppError(c, appErr)
		return
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case stdErrors.Is(err, shared.ErrMoneyPrecision):
		appErr := errors.Validation("The price may not have more than 2 decimal places.")
		HandleAppError(c, appErr.WithDetail("price", appErr.Message))
	case stdErrors.Is(err, io.EOF):
		HandleError(c, errors.CodeBadRequest, "request body is empty")
	case stdErrors.As(err, &syntaxErr), stdErrors.Is(err, io.ErrUnexpectedEOF):
		HandleError(c, errors.CodeBadRequest, "request body is not valid JSON")
	case stdErrors.As(err, &typeErr):
		appErr := errors.Validation(fmt.Sprintf("The %s field has the wrong type.", typeErr.Field))
		HandleAppError(c, appErr.WithDetail(typeErr.Field, appErr.Message))
	default:
		HandleError(c, errors.CodeBadRequest, err.Error())
	}
}

// fieldPath turns "PlaceOrderRequest.items[0].quantity" into "items.0.quantity".
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		namespace = namespace[i+1:]
	}
	return indexPattern.ReplaceAllString(namespace, ".$1")
}

func messageFor(path string, fe validator.FieldError) string {
	field := fe.Field()
	isItem := strings.HasPrefix(path, "items.")

	switch {
	case path == "items" && (fe.Tag() == "required" || fe.Tag() == "min"):
		return "At least one item is required for the order."
	case isItem && field == "product_id" && fe.Tag() == "required":
		return "Product ID is required for each item."
	case isItem && field == "quantity" && fe.Tag() == "required":
		return "Quantity is required for each item."
	case isItem && field == "quantity" && fe.Tag() == "min":
		return "Quantity must be at least 1."
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "min":
		return fmt.Sprintf("The %s must be at least %s.", field, fe.Param())
	case "max":
		return fmt.Sprintf("The %s may not be greater than %s.", field, fe.Param())
	case "gt":
		return fmt.Sprintf("The %s must be greater than %s.", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", field)
	}
	return fmt.Sprintf("The %s field is invalid.", field)
}
