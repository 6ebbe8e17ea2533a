package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/wso2/health-consent-api/internal/config"
	"github.com/wso2/health-consent-api/internal/models"
	"github.com/wso2/health-consent-api/internal/serviceerror"
	"github.com/wso2/health-consent-api/pkg/utils"
)

// ConsentCounter provides consent totals for statistics
type ConsentCounter interface {
	CountAll(ctx context.Context) (int64, error)
	CountActive(ctx context.Context, now int64) (int64, error)
}

// AuditService is the append-only access log. It exposes no way to modify
// or remove an entry.
type AuditService struct {
	accessLogDAO AccessLogDAO
	consents     ConsentCounter
	limits       config.AuditConfig
	clock        Clock
	logger       *logrus.Logger
}

// NewAuditService creates a new audit service instance
func NewAuditService(
	accessLogDAO AccessLogDAO,
	consents ConsentCounter,
	limits config.AuditConfig,
	clock Clock,
	logger *logrus.Logger,
) *AuditService {
	return &AuditService{
		accessLogDAO: accessLogDAO,
		consents:     consents,
		limits:       limits,
		clock:        clock,
		logger:       logger,
	}
}

// Append assigns an id and timestamp to attempt and persists it. Any storage
// failure is returned as AuditWriteError.
func (s *AuditService) Append(ctx context.Context, attempt models.AccessAttempt) (*models.AccessLogEntry, error) {
	entry := &models.AccessLogEntry{
		LogID:      utils.GenerateLogID(),
		PatientID:  attempt.PatientID,
		AccessedBy: attempt.AccessedBy,
		FacilityID: attempt.FacilityID,
		Action:     attempt.Action,
		Result:     attempt.Result,
		Reason:     attempt.Reason,
		Timestamp:  s.clock.now().UnixMilli(),
		IPAddress:  attempt.IPAddress,
	}

	if err := s.accessLogDAO.Create(ctx, entry); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"log_id":      entry.LogID,
			"patient_id":  entry.PatientID,
			"accessed_by": entry.AccessedBy,
		}).Error("Failed to write access log entry")
		return nil, serviceerror.Wrap(serviceerror.AuditWriteError, "failed to persist access attempt", err)
	}

	return entry, nil
}

// QueryByPatient returns the newest entries about a patient's records
func (s *AuditService) QueryByPatient(ctx context.Context, patientID string, limit int) ([]models.AccessLogEntry, error) {
	if err := utils.ValidateIdentifier("patient ID", patientID); err != nil {
		return nil, serviceerror.New(serviceerror.ValidationError, err.Error())
	}
	return s.query(ctx, models.AccessLogFilter{PatientID: patientID, Limit: limit})
}

// QueryByActor returns the newest entries for checks made by accessedBy
func (s *AuditService) QueryByActor(ctx context.Context, accessedBy string, limit int) ([]models.AccessLogEntry, error) {
	if err := utils.ValidateIdentifier("actor ID", accessedBy); err != nil {
		return nil, serviceerror.New(serviceerror.ValidationError, err.Error())
	}
	return s.query(ctx, models.AccessLogFilter{AccessedBy: accessedBy, Limit: limit})
}

// QueryByFacility returns the newest entries for checks made through a facility
func (s *AuditService) QueryByFacility(ctx context.Context, facilityID string, limit int) ([]models.AccessLogEntry, error) {
	if err := utils.ValidateIdentifier("facility ID", facilityID); err != nil {
		return nil, serviceerror.New(serviceerror.ValidationError, err.Error())
	}
	return s.query(ctx, models.AccessLogFilter{FacilityID: facilityID, Limit: limit})
}

// QueryAll returns the newest entries across the system, optionally only
// those with the given result
func (s *AuditService) QueryAll(ctx context.Context, limit int, result *models.AccessResult) ([]models.AccessLogEntry, error) {
	return s.query(ctx, models.AccessLogFilter{Result: result, Limit: limit})
}

func (s *AuditService) query(ctx context.Context, filter models.AccessLogFilter) ([]models.AccessLogEntry, error) {
	filter.Limit = s.limits.ClampLimit(filter.Limit)
	entries, err := s.accessLogDAO.List(ctx, filter)
	if err != nil {
		return nil, serviceerror.Wrap(serviceerror.DatabaseError, "failed to query access logs", err)
	}
	return entries, nil
}

// Statistics summarizes consents and access checks
func (s *AuditService) Statistics(ctx context.Context) (*models.Statistics, error) {
	total, err := s.consents.CountAll(ctx)
	if err != nil {
		return nil, serviceerror.Wrap(serviceerror.DatabaseError, "failed to count consents", err)
	}
	active, err := s.consents.CountActive(ctx, s.clock.now().UnixMilli())
	if err != nil {
		return nil, serviceerror.Wrap(serviceerror.DatabaseError, "failed to count active consents", err)
	}
	logs, err := s.accessLogDAO.Statistics(ctx)
	if err != nil {
		return nil, serviceerror.Wrap(serviceerror.DatabaseError, "failed to count access logs", err)
	}

	return &models.Statistics{
		Consents:   models.ConsentStatistics{Total: total, Active: active},
		AccessLogs: *logs,
	}, nil
}

// Limit returns the page size applied to a requested limit
func (s *AuditService) Limit(requested int) int {
	return s.limits.ClampLimit(requested)
}
