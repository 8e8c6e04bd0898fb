package response

import (
	stdErrors "errors"
	"net/http"
	"runtime"

	"github.com/SChris-dev/EcoShop-API/domain/shared"
	"github.com/SChris-dev/EcoShop-API/pkg/errors"
	"github.com/SChris-dev/EcoShop-API/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var httpStatusMap = map[errors.ErrorCode]int{
	errors.CodeInternal:       http.StatusInternalServerError,
	errors.CodeBadRequest:     http.StatusBadRequest,
	errors.CodeUnauthorized:   http.StatusUnauthorized,
	errors.CodeNotFound:       http.StatusNotFound,
	errors.CodeConflict:       http.StatusConflict,
	errors.CodeForbidden:      http.StatusForbidden,
	errors.CodeTooManyRequest: http.StatusTooManyRequests,
	errors.CodeValidation:     http.StatusUnprocessableEntity,

	errors.CodeProductNotFound:       http.StatusNotFound,
	errors.CodeInsufficientStock:     http.StatusBadRequest,
	errors.CodeStockChanged:          http.StatusConflict,
	errors.CodeOrderNotFound:         http.StatusNotFound,
	errors.CodeInvalidOrderState:     http.StatusUnprocessableEntity,
	errors.CodeConcurrentModify:      http.StatusConflict,
	errors.CodeIdempotencyInProgress: http.StatusConflict,
}

func StatusFor(code errors.ErrorCode) int {
	if status, ok := httpStatusMap[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func getRequestID(c *gin.Context) string {
	if requestID, exists := c.Get(RequestIDKey); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return ""
}

func GetRequestID(c *gin.Context) string {
	return getRequestID(c)
}

func captureStack(skip int) []string {
	var pcs [16]uintptr
	n := runtime.Callers(skip, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	stack := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		frame, more := frames.Next()
		if frame.Function != "" {
			stack = append(stack, frame.Function)
		}
		if !more {
			break
		}
	}
	return stack
}

// HandleAppError classifies err, logs it with its stack and writes the
// error envelope.
func HandleAppError(c *gin.Context, err error) {
	requestID := getRequestID(c)
	appErr := errors.FromDomainError(err)
	httpStatus := StatusFor(appErr.Code)

	fields := []zap.Field{
		zap.String("request_id", requestID),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.String("error_code", string(appErr.Code)),
		zap.Int("http_status", httpStatus),
	}
	if appErr.Err != nil {
		fields = append(fields, zap.Error(appErr.Err))
	}

	userMessage := appErr.Message
	if httpStatus >= http.StatusInternalServerError {
		userMessage = "internal server error"
		logger.Error(appErr.Message, append(fields, zap.Strings("stack", extractStack(err)))...)
	} else {
		logger.Warn(appErr.Message, fields...)
	}

	c.AbortWithStatusJSON(httpStatus, &Response{
		Success:   false,
		Error:     string(appErr.Code),
		Errors:    appErr.Details,
		Message:   userMessage,
		Code:      httpStatus,
		RequestID: requestID,
	})
}

// HandleError answers framework-level failures (bad path parameter, missing
// token) that never reached the application layer.
func HandleError(c *gin.Context, code errors.ErrorCode, message string) {
	HandleAppError(c, errors.New(code, message))
}

func extractStack(err error) []string {
	var stacker shared.Stacker
	if stdErrors.As(err, &stacker) {
		if stack := stacker.Stack(); len(stack) > 0 {
			return stack
		}
	}
	return captureStack(4)
}
