package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wso2/health-consent-api/internal/config"
	"github.com/wso2/health-consent-api/internal/metrics"
	"github.com/wso2/health-consent-api/internal/models"
	"github.com/wso2/health-consent-api/internal/serviceerror"
	"github.com/wso2/health-consent-api/pkg/utils"
)

const maxPurposeLength = 1024

// GrantRequest holds the fields of a new consent. PatientID comes from the
// authenticated patient, never from the request body.
type GrantRequest struct {
	PatientID   string
	FacilityID  string
	ConsentType string
	Purpose     string
	GrantedBy   string
	ExpiresAt   *int64
}

// RevokeRequest identifies a consent to revoke. When PatientID is set the
// consent must belong to that patient; administrative revokes leave it empty.
type RevokeRequest struct {
	ConsentID string
	PatientID string
	RevokedBy string
}

// ConsentService handles business logic for consent operations
type ConsentService struct {
	consentDAO ConsentDAO
	limits     config.AuditConfig
	clock      Clock
	metrics    *metrics.Metrics
	logger     *logrus.Logger
}

// NewConsentService creates a new consent service instance
func NewConsentService(
	consentDAO ConsentDAO,
	limits config.AuditConfig,
	clock Clock,
	m *metrics.Metrics,
	logger *logrus.Logger,
) *ConsentService {
	return &ConsentService{
		consentDAO: consentDAO,
		limits:     limits,
		clock:      clock,
		metrics:    m,
		logger:     logger,
	}
}

// Grant creates a new consent. Existing consents for the same pair are left
// untouched; several consents may coexist for one patient and facility.
func (s *ConsentService) Grant(ctx context.Context, req GrantRequest) (*models.Consent, error) {
	now := s.clock.now()

	consentType, err := s.validateGrantRequest(&req, now.UnixMilli())
	if err != nil {
		s.metrics.IncrementConsentOperation("grant", "invalid")
		return nil, err
	}

	grantedBy := req.GrantedBy
	if grantedBy == "" {
		grantedBy = req.PatientID
	}

	consent := &models.Consent{
		ConsentID:   utils.GenerateConsentID(),
		PatientID:   req.PatientID,
		FacilityID:  req.FacilityID,
		ConsentType: consentType,
		Purpose:     req.Purpose,
		GrantedBy:   grantedBy,
		GrantedAt:   now.UnixMilli(),
		ExpiresAt:   req.ExpiresAt,
	}

	if err := s.consentDAO.Create(ctx, consent); err != nil {
		s.metrics.IncrementConsentOperation("grant", "error")
		s.logger.WithError(err).WithField("patient_id", req.PatientID).Error("Failed to create consent")
		return nil, serviceerror.Wrap(serviceerror.DatabaseError, "failed to create consent", err)
	}

	s.metrics.IncrementConsentOperation("grant", "ok")
	fields := logrus.Fields{
		"consent_id":   consent.ConsentID,
		"patient_id":   consent.PatientID,
		"facility_id":  consent.FacilityID,
		"consent_type": consent.ConsentType,
	}
	if consent.ExpiresAt != nil {
		fields["expires_at"] = utils.FormatMillis(*consent.ExpiresAt)
	}
	s.logger.WithFields(fields).Info("Consent granted")

	return consent, nil
}

func (s *ConsentService) validateGrantRequest(req *GrantRequest, nowMillis int64) (models.ConsentType, error) {
	req.PatientID = utils.SanitizeString(req.PatientID)
	req.FacilityID = utils.SanitizeString(req.FacilityID)
	req.Purpose = utils.SanitizeString(req.Purpose)

	consentType, ok := models.ParseConsentType(req.ConsentType)
	if !ok {
		return "", serviceerror.Newf(serviceerror.ValidationError,
			"invalid consent type %q: must be one of view, edit, share", req.ConsentType)
	}
	if err := utils.ValidateIdentifier("patient ID", req.PatientID); err != nil {
		return "", serviceerror.New(serviceerror.ValidationError, err.Error())
	}
	if err := utils.ValidateIdentifier("facility ID", req.FacilityID); err != nil {
		return "", serviceerror.New(serviceerror.ValidationError, err.Error())
	}
	if err := utils.ValidateRequired("purpose", req.Purpose); err != nil {
		return "", serviceerror.New(serviceerror.ValidationError, err.Error())
	}
	if err := utils.ValidateMaxLength("purpose", req.Purpose, maxPurposeLength); err != nil {
		return "", serviceerror.New(serviceerror.ValidationError, err.Error())
	}
	if req.ExpiresAt != nil && *req.ExpiresAt <= nowMillis {
		return "", serviceerror.Newf(serviceerror.ValidationError,
			"expiresAt %s must be in the future", utils.FormatMillis(*req.ExpiresAt))
	}
	return consentType, nil
}

// FindForPair returns all consents, in any status, that patientID has
// issued to facilityID. It always reads from the store.
func (s *ConsentService) FindForPair(ctx context.Context, patientID, facilityID string) ([]models.Consent, error) {
	consents, err := s.consentDAO.ListByPair(ctx, patientID, facilityID)
	if err != nil {
		return nil, serviceerror.Wrap(serviceerror.DatabaseError, "failed to look up consents", err)
	}
	return consents, nil
}

// GetConsent retrieves a consent by ID
func (s *ConsentService) GetConsent(ctx context.Context, consentID string) (*models.Consent, error) {
	if err := utils.ValidateConsentID(consentID); err != nil {
		return nil, serviceerror.New(serviceerror.ValidationError, err.Error())
	}

	consent, err := s.consentDAO.GetByID(ctx, consentID)
	if err != nil {
		return nil, serviceerror.Wrap(serviceerror.DatabaseError, "failed to get consent", err)
	}
	if consent == nil {
		return nil, serviceerror.Newf(serviceerror.NotFoundError, "consent %s not found", consentID)
	}
	return consent, nil
}

// Revoke sets the revocation time of a consent. A consent is revoked at most
// once: a second revoke, including one that loses a concurrent race, fails
// with ConflictError.
func (s *ConsentService) Revoke(ctx context.Context, req RevokeRequest) (*models.Consent, error) {
	logger := s.logger.WithFields(logrus.Fields{
		"consent_id": req.ConsentID,
		"revoked_by": req.RevokedBy,
	})

	consent, err := s.GetConsent(ctx, req.ConsentID)
	if err != nil {
		s.metrics.IncrementConsentOperation("revoke", outcomeFor(err))
		return nil, err
	}

	if req.PatientID != "" && consent.PatientID != req.PatientID {
		s.metrics.IncrementConsentOperation("revoke", "forbidden")
		logger.Warn("Revoke rejected: consent belongs to another patient")
		return nil, serviceerror.New(serviceerror.ForbiddenError, "not authorized to revoke this consent")
	}

	if consent.RevokedAt != nil {
		s.metrics.IncrementConsentOperation("revoke", "conflict")
		return nil, serviceerror.Newf(serviceerror.ConflictError, "consent %s is already revoked", req.ConsentID)
	}

	revokedBy := req.RevokedBy
	if revokedBy == "" {
		revokedBy = consent.PatientID
	}

	revoked, err := s.consentDAO.Revoke(ctx, req.ConsentID, s.clock.now().UnixMilli(), revokedBy)
	if err != nil {
		s.metrics.IncrementConsentOperation("revoke", "error")
		logger.WithError(err).Error("Failed to revoke consent")
		return nil, serviceerror.Wrap(serviceerror.DatabaseError, "failed to revoke consent", err)
	}
	if revoked == nil {
		s.metrics.IncrementConsentOperation("revoke", "conflict")
		return nil, serviceerror.Newf(serviceerror.ConflictError, "consent %s is already revoked", req.ConsentID)
	}

	s.metrics.IncrementConsentOperation("revoke", "ok")
	logger.Info("Consent revoked")
	return revoked, nil
}

// ListByPatient lists a patient's consents, optionally filtered by status
func (s *ConsentService) ListByPatient(ctx context.Context, patientID string, status *models.ConsentStatus) ([]models.Consent, error) {
	if err := utils.ValidateIdentifier("patient ID", patientID); err != nil {
		return nil, serviceerror.New(serviceerror.ValidationError, err.Error())
	}
	return s.list(ctx, models.ConsentFilter{PatientID: patientID, Status: status})
}

// ListByFacility lists consents issued to a facility, optionally filtered by status
func (s *ConsentService) ListByFacility(ctx context.Context, facilityID string, status *models.ConsentStatus) ([]models.Consent, error) {
	if err := utils.ValidateIdentifier("facility ID", facilityID); err != nil {
		return nil, serviceerror.New(serviceerror.ValidationError, err.Error())
	}
	return s.list(ctx, models.ConsentFilter{FacilityID: facilityID, Status: status})
}

// ListAll lists the most recent consents across all patients
func (s *ConsentService) ListAll(ctx context.Context, limit int, status *models.ConsentStatus) ([]models.Consent, error) {
	return s.list(ctx, models.ConsentFilter{Status: status, Limit: s.limits.ClampLimit(limit)})
}

func (s *ConsentService) list(ctx context.Context, filter models.ConsentFilter) ([]models.Consent, error) {
	filter.Now = s.clock.now().UnixMilli()
	consents, err := s.consentDAO.List(ctx, filter)
	if err != nil {
		return nil, serviceerror.Wrap(serviceerror.DatabaseError, "failed to list consents", err)
	}
	return consents, nil
}

// Now returns the service clock's current time, used to derive consent status
// for responses.
func (s *ConsentService) Now() time.Time {
	return s.clock.now()
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, serviceerror.ValidationError):
		return "invalid"
	case errors.Is(err, serviceerror.NotFoundError):
		return "not_found"
	}
	return "error"
}
