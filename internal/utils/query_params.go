package utils

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wso2/health-consent-api/internal/models"
)

// ParseLimit reads the optional "limit" query parameter. Zero means the
// caller did not ask for a specific page size.
func ParseLimit(c *gin.Context) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, fmt.Errorf("limit must be a positive integer")
	}
	return limit, nil
}

// ParseStatusFilter reads the optional "status" query parameter
func ParseStatusFilter(c *gin.Context) (*models.ConsentStatus, error) {
	raw := c.Query("status")
	if raw == "" {
		return nil, nil
	}
	status, ok := models.ParseConsentStatus(raw)
	if !ok {
		return nil, fmt.Errorf("invalid status %q: must be one of active, expired, revoked", raw)
	}
	return &status, nil
}

// ParseResultFilter reads the optional "result" query parameter
func ParseResultFilter(c *gin.Context) (*models.AccessResult, error) {
	raw := c.Query("result")
	if raw == "" {
		return nil, nil
	}
	result, ok := models.ParseAccessResult(raw)
	if !ok {
		return nil, fmt.Errorf("invalid result %q: must be allowed or denied", raw)
	}
	return &result, nil
}
