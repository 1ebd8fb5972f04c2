package responses

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DhavalSuthar-24/clubhub/internal/apperr"
)

// SuccessResponse represents a standard success JSON response.
type SuccessResponse struct {
	Status  string      `json:"status"`  // "success"
	Message string      `json:"message"` // Optional success message
	Data    interface{} `json:"data"`    // The actual data payload
}

// ErrorResponse represents a standard error JSON response.
type ErrorResponse struct {
	Status  string            `json:"status"`  // "error" or "fail"
	Message string            `json:"message"` // Error message
	Code    int               `json:"code"`    // HTTP status code
	Fields  map[string]string `json:"fields,omitempty"`
}

// PageResponse is a success response for cursor-paginated lists.
type PageResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	Next    string      `json:"next,omitempty"` // opaque token for the following page
}

// SendSuccess sends a standardized success response.
func SendSuccess(c *gin.Context, statusCode int, message string, data interface{}) {
	if message == "" {
		message = "Operation completed successfully"
	}
	c.JSON(statusCode, SuccessResponse{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

// SendError sends a standardized error response.
func SendError(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, ErrorResponse{
		Status:  statusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

// SendValidationError sends a 400 with per-field messages.
func SendValidationError(c *gin.Context, fields map[string]string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Status:  statusText(http.StatusBadRequest),
		Message: "Invalid request payload",
		Code:    http.StatusBadRequest,
		Fields:  fields,
	})
}

// SendPage sends one page of a cursor-paginated listing.
func SendPage(c *gin.Context, message string, data interface{}, next string) {
	if message == "" {
		message = "Data retrieved successfully"
	}
	c.JSON(http.StatusOK, PageResponse{
		Status:  "success",
		Message: message,
		Data:    data,
		Next:    next,
	})
}

// SendAppError maps err to an HTTP status by its apperr kind. Server-side
// failures are logged; the client only sees the user-facing message.
func SendAppError(c *gin.Context, err error) {
	code := StatusFor(err)
	if code >= http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	SendError(c, code, apperr.UserMessage(err))
}

// StatusFor returns the HTTP status code for err.
func StatusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindPrecondition:
		return http.StatusUnprocessableEntity
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func statusText(statusCode int) string {
	if statusCode >= http.StatusInternalServerError {
		return "fail" // Differentiate client errors from server failures
	}
	return "error"
}

// Unauthorized sends a 401 Unauthorized error response.
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Unauthorized access"
	}
	SendError(c, http.StatusUnauthorized, message)
}

// Forbidden sends a 403 Forbidden error response.
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "Access to this resource is forbidden"
	}
	SendError(c, http.StatusForbidden, message)
}

// BadRequest sends a 400 Bad Request error response.
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request payload or parameters"
	}
	SendError(c, http.StatusBadRequest, message)
}
