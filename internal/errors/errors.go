// Package errors writes the JSON error bodies returned by the API:
// {"success": false, "code": ..., "message": ..., "details": ...}.
package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeValidation         = "VALIDATION_FAILED"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeRenderFailed       = "RENDER_FAILED"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// fallbacks holds the message used when a caller passes "".
var fallbacks = map[string]string{
	ErrCodeUnauthorized:       "Authentication required",
	ErrCodeInvalidCredentials: "Invalid username or password",
	ErrCodeForbidden:          "Access denied",
	ErrCodeInvalidInput:       "Invalid request",
	ErrCodeValidation:         "Missing required fields",
	ErrCodeNotFound:           "Resource not found",
	ErrCodeConflict:           "Resource conflict",
	ErrCodeRenderFailed:       "Failed to generate PDF",
	ErrCodeInternalError:      "Internal server error",
}

type APIError struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError builds an error body, filling in the default message for code.
func NewAPIError(code, message string, details any) *APIError {
	if message == "" {
		message = fallbacks[code]
	}
	return &APIError{Code: code, Message: message, Details: details}
}

func respond(c *gin.Context, status int, code, message string, details any) {
	c.JSON(status, NewAPIError(code, message, details))
}

func Unauthorized(c *gin.Context, message string) {
	respond(c, http.StatusUnauthorized, ErrCodeUnauthorized, message, nil)
}

func InvalidCredentials(c *gin.Context) {
	respond(c, http.StatusUnauthorized, ErrCodeInvalidCredentials, "", nil)
}

func Forbidden(c *gin.Context, message string) {
	respond(c, http.StatusForbidden, ErrCodeForbidden, message, nil)
}

func NotFound(c *gin.Context, message string) {
	respond(c, http.StatusNotFound, ErrCodeNotFound, message, nil)
}

func BadRequest(c *gin.Context, message string) {
	respond(c, http.StatusBadRequest, ErrCodeInvalidInput, message, nil)
}

// ValidationFailed is a 400 whose details list the missing field names.
func ValidationFailed(c *gin.Context, message string, missing []string) {
	respond(c, http.StatusBadRequest, ErrCodeValidation, message, gin.H{"missing": missing})
}

func Conflict(c *gin.Context, message string) {
	respond(c, http.StatusConflict, ErrCodeConflict, message, nil)
}

func RenderFailed(c *gin.Context) {
	respond(c, http.StatusInternalServerError, ErrCodeRenderFailed, "", nil)
}

func InternalError(c *gin.Context, message string) {
	respond(c, http.StatusInternalServerError, ErrCodeInternalError, message, nil)
}
