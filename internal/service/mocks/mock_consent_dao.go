package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/wso2/health-consent-api/internal/models"
)

// MockConsentDAO is a mock implementation of ConsentDAO
type MockConsentDAO struct {
	mock.Mock
}

func (m *MockConsentDAO) Create(ctx context.Context, consent *models.Consent) error {
	args := m.Called(ctx, consent)
	return args.Error(0)
}

func (m *MockConsentDAO) GetByID(ctx context.Context, consentID string) (*models.Consent, error) {
	args := m.Called(ctx, consentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Consent), args.Error(1)
}

func (m *MockConsentDAO) ListByPair(ctx context.Context, patientID, facilityID string) ([]models.Consent, error) {
	args := m.Called(ctx, patientID, facilityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Consent), args.Error(1)
}

func (m *MockConsentDAO) List(ctx context.Context, filter models.ConsentFilter) ([]models.Consent, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Consent), args.Error(1)
}

func (m *MockConsentDAO) Revoke(ctx context.Context, consentID string, revokedAt int64, revokedBy string) (*models.Consent, error) {
	args := m.Called(ctx, consentID, revokedAt, revokedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Consent), args.Error(1)
}

func (m *MockConsentDAO) CountAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockConsentDAO) CountActive(ctx context.Context, now int64) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}
