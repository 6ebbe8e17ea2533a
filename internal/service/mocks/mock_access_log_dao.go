package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/wso2/health-consent-api/internal/models"
)

// MockAccessLogDAO is a mock implementation of AccessLogDAO
type MockAccessLogDAO struct {
	mock.Mock
}

func (m *MockAccessLogDAO) Create(ctx context.Context, entry *models.AccessLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAccessLogDAO) List(ctx context.Context, filter models.AccessLogFilter) ([]models.AccessLogEntry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AccessLogEntry), args.Error(1)
}

func (m *MockAccessLogDAO) Statistics(ctx context.Context) (*models.AccessLogStatistics, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AccessLogStatistics), args.Error(1)
}
