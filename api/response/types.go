/*
Package response writes the JSON envelope every endpoint returns and maps
application error codes to HTTP status codes. The mapping lives only here;
domain and application code never see a status code.

	success: { success: true, data: {...}, message: "...", code: 200, request_id: "..." }
	failure: { success: false, error: "ERROR_CODE", message: "...", errors: {"items.0.quantity": [...]}, code: 4xx/5xx, request_id: "..." }

Internal errors are answered with "internal server error"; the real error
and its stack only go to the log.
*/
package response

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

type Response struct {
	Success   bool                `json:"success"`
	Data      interface{}         `json:"data,omitempty"`
	Error     string              `json:"error,omitempty"`
	Errors    map[string][]string `json:"errors,omitempty"`
	Code      int                 `json:"code"`
	Message   string              `json:"message"`
	RequestID string              `json:"request_id,omitempty"`
}
