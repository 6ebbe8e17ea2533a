package service

import (
	"context"
	"time"

	"github.com/wso2/health-consent-api/internal/models"
)

// ConsentDAO is the consent persistence used by the services. Implemented by
// dao.ConsentDAO and memory.ConsentStore.
type ConsentDAO interface {
	Create(ctx context.Context, consent *models.Consent) error
	GetByID(ctx context.Context, consentID string) (*models.Consent, error)
	ListByPair(ctx context.Context, patientID, facilityID string) ([]models.Consent, error)
	List(ctx context.Context, filter models.ConsentFilter) ([]models.Consent, error)
	Revoke(ctx context.Context, consentID string, revokedAt int64, revokedBy string) (*models.Consent, error)
	CountAll(ctx context.Context) (int64, error)
	CountActive(ctx context.Context, now int64) (int64, error)
}

// AccessLogDAO is the append-only audit persistence. Implemented by
// dao.AccessLogDAO and memory.AccessLogStore.
type AccessLogDAO interface {
	Create(ctx context.Context, entry *models.AccessLogEntry) error
	List(ctx context.Context, filter models.AccessLogFilter) ([]models.AccessLogEntry, error)
	Statistics(ctx context.Context) (*models.AccessLogStatistics, error)
}

// ConsentFinder returns every consent for a patient/facility pair
type ConsentFinder interface {
	FindForPair(ctx context.Context, patientID, facilityID string) ([]models.Consent, error)
}

// AuditAppender persists one access attempt
type AuditAppender interface {
	Append(ctx context.Context, attempt models.AccessAttempt) (*models.AccessLogEntry, error)
}

// Clock returns the current time
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}
