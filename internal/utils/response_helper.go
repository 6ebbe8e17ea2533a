package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wso2/health-consent-api/internal/models"
	"github.com/wso2/health-consent-api/internal/serviceerror"
)

// Context keys set by middleware
const (
	ContextKeyCorrelationID = "correlationID"
	ContextKeyIdentity      = "identity"
)

// SendErrorResponse sends an error JSON response
func SendErrorResponse(c *gin.Context, statusCode int, errCode, message, details string) {
	c.JSON(statusCode, models.ErrorResponse{
		Code:    errCode,
		Message: message,
		Details: details,
	})
}

// SendServiceError maps a service error to its HTTP status. Errors outside
// the taxonomy are reported as internal errors without their details.
func SendServiceError(c *gin.Context, err error) {
	var se *serviceerror.ServiceError
	if !errors.As(err, &se) {
		SendInternalServerError(c, "Internal server error", "")
		return
	}

	details := se.Description
	if !se.IsClientError() {
		// server-side causes are logged, not returned
		details = ""
	}
	SendErrorResponse(c, se.HTTPStatus(), se.Code, se.Message, details)
}

// SendCreatedResponse sends a 201 Created response
func SendCreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// SendOKResponse sends a 200 OK response
func SendOKResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// SendListResponse sends a 200 OK response wrapping a list
func SendListResponse[T any](c *gin.Context, items []T, limit int) {
	c.JSON(http.StatusOK, models.ListResponse{Data: items, Count: len(items), Limit: limit})
}

// SendBadRequestError sends a 400 Bad Request error
func SendBadRequestError(c *gin.Context, message, details string) {
	SendErrorResponse(c, http.StatusBadRequest, models.ErrCodeBadRequest, message, details)
}

// SendUnauthorizedError sends a 401 Unauthorized error
func SendUnauthorizedError(c *gin.Context, message string) {
	SendErrorResponse(c, http.StatusUnauthorized, models.ErrCodeUnauthorized, message, "")
}

// SendForbiddenError sends a 403 Forbidden error
func SendForbiddenError(c *gin.Context, message string) {
	SendErrorResponse(c, http.StatusForbidden, models.ErrCodeForbidden, message, "")
}

// SendInternalServerError sends a 500 Internal Server Error
func SendInternalServerError(c *gin.Context, message, details string) {
	SendErrorResponse(c, http.StatusInternalServerError, models.ErrCodeInternalError, message, details)
}

// SendValidationError sends a validation error response
func SendValidationError(c *gin.Context, details string) {
	SendErrorResponse(c, http.StatusBadRequest, models.ErrCodeValidationError, "Validation failed", details)
}

// GetIdentityFromContext returns the caller resolved by the identity middleware
func GetIdentityFromContext(c *gin.Context) *models.Identity {
	v, exists := c.Get(ContextKeyIdentity)
	if !exists {
		return nil
	}
	identity, _ := v.(*models.Identity)
	return identity
}

// GetCorrelationIDFromContext extracts correlation ID from context
func GetCorrelationIDFromContext(c *gin.Context) string {
	return c.GetString(ContextKeyCorrelationID)
}

// SetContextValue sets a value in the Gin context
func SetContextValue(c *gin.Context, key string, value interface{}) {
	c.Set(key, value)
}
