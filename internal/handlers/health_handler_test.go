package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

type stubChecker struct {
	err error
}

func (s stubChecker) HealthCheck(context.Context) error {
	return s.err
}

func serveHealth(checker HealthChecker) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	r := gin.New()
	r.GET("/health", NewHealthHandler(checker, logger).Health)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	return w
}

func TestHealth(t *testing.T) {
	assert.Equal(t, http.StatusOK, serveHealth(nil).Code)
	assert.Equal(t, http.StatusOK, serveHealth(stubChecker{}).Code)

	w := serveHealth(stubChecker{err: errors.New("connection refused")})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "unhealthy")
	assert.NotContains(t, w.Body.String(), "connection refused")
}
