package dao

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/wso2/health-consent-api/internal/database"
	"github.com/wso2/health-consent-api/internal/models"
)

const consentColumns = `CONSENT_ID, PATIENT_ID, FACILITY_ID, CONSENT_TYPE, PURPOSE, GRANTED_BY,
		       GRANTED_AT, EXPIRES_AT, REVOKED_AT, REVOKED_BY`

var (
	QueryCreateConsent = database.DBQuery{
		ID: "CONSENT_CREATE",
		Query: `INSERT INTO CONSENTS (
			CONSENT_ID, PATIENT_ID, FACILITY_ID, CONSENT_TYPE, PURPOSE, GRANTED_BY,
			GRANTED_AT, EXPIRES_AT, REVOKED_AT, REVOKED_BY
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	}

	QueryGetConsentByID = database.DBQuery{
		ID:    "CONSENT_GET_BY_ID",
		Query: `SELECT ` + consentColumns + ` FROM CONSENTS WHERE CONSENT_ID = ?`,
	}

	QueryListConsentsForPair = database.DBQuery{
		ID:    "CONSENT_LIST_FOR_PAIR",
		Query: `SELECT ` + consentColumns + ` FROM CONSENTS WHERE PATIENT_ID = ? AND FACILITY_ID = ?`,
	}

	QueryListConsents = database.DBQuery{
		ID:    "CONSENT_LIST",
		Query: `SELECT ` + consentColumns + ` FROM CONSENTS`,
	}

	// QueryRevokeConsent only matches unrevoked rows so that a revoke
	// happens at most once even under concurrent requests.
	QueryRevokeConsent = database.DBQuery{
		ID:    "CONSENT_REVOKE",
		Query: `UPDATE CONSENTS SET REVOKED_AT = ?, REVOKED_BY = ? WHERE CONSENT_ID = ? AND REVOKED_AT IS NULL`,
	}

	QueryCountConsents = database.DBQuery{
		ID:    "CONSENT_COUNT",
		Query: `SELECT COUNT(*) FROM CONSENTS`,
	}

	QueryCountActiveConsents = database.DBQuery{
		ID:    "CONSENT_COUNT_ACTIVE",
		Query: `SELECT COUNT(*) FROM CONSENTS WHERE REVOKED_AT IS NULL AND (EXPIRES_AT IS NULL OR EXPIRES_AT > ?)`,
	}
)

// ConsentDAO handles database operations for consents
type ConsentDAO struct {
	db *database.DB
}

// NewConsentDAO creates a new ConsentDAO instance
func NewConsentDAO(db *database.DB) *ConsentDAO {
	return &ConsentDAO{db: db}
}

// Create inserts a new consent into the database
func (dao *ConsentDAO) Create(ctx context.Context, consent *models.Consent) error {
	_, err := dao.db.ExecContext(
		ctx,
		dao.db.Resolve(QueryCreateConsent),
		consent.ConsentID,
		consent.PatientID,
		consent.FacilityID,
		consent.ConsentType,
		consent.Purpose,
		consent.GrantedBy,
		consent.GrantedAt,
		consent.ExpiresAt,
		consent.RevokedAt,
		consent.RevokedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to create consent: %w", err)
	}

	return nil
}

// GetByID retrieves a consent by ID. It returns nil without error when the
// consent does not exist.
func (dao *ConsentDAO) GetByID(ctx context.Context, consentID string) (*models.Consent, error) {
	var consent models.Consent
	err := dao.db.GetContext(ctx, &consent, dao.db.Resolve(QueryGetConsentByID), consentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get consent: %w", err)
	}

	return &consent, nil
}

// ListByPair retrieves every consent a patient has issued to a facility
func (dao *ConsentDAO) ListByPair(ctx context.Context, patientID, facilityID string) ([]models.Consent, error) {
	consents := []models.Consent{}
	err := dao.db.SelectContext(ctx, &consents, dao.db.Resolve(QueryListConsentsForPair), patientID, facilityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list consents for pair: %w", err)
	}

	return consents, nil
}

// List retrieves consents matching filter, newest grant first
func (dao *ConsentDAO) List(ctx context.Context, filter models.ConsentFilter) ([]models.Consent, error) {
	where, args := buildConsentWhere(filter)

	q := QueryListConsents
	q.Query += where + " ORDER BY GRANTED_AT DESC, CONSENT_ID ASC"
	if filter.Limit > 0 {
		q.Query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	consents := []models.Consent{}
	if err := dao.db.SelectContext(ctx, &consents, dao.db.Resolve(q), args...); err != nil {
		return nil, fmt.Errorf("failed to list consents: %w", err)
	}

	return consents, nil
}

// Revoke marks an unrevoked consent as revoked and returns the updated row.
// It returns nil without error when no unrevoked consent with the ID exists.
func (dao *ConsentDAO) Revoke(ctx context.Context, consentID string, revokedAt int64, revokedBy string) (*models.Consent, error) {
	var revoked *models.Consent

	err := dao.db.WithTransaction(ctx, func(tx *database.Transaction) error {
		result, err := tx.ExecContext(ctx, tx.Resolve(QueryRevokeConsent), revokedAt, revokedBy, consentID)
		if err != nil {
			return fmt.Errorf("failed to revoke consent: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return nil
		}

		var consent models.Consent
		if err := tx.GetContext(ctx, &consent, tx.Resolve(QueryGetConsentByID), consentID); err != nil {
			return fmt.Errorf("failed to read revoked consent: %w", err)
		}
		revoked = &consent
		return nil
	})
	if err != nil {
		return nil, err
	}

	return revoked, nil
}

// CountAll returns the number of stored consents
func (dao *ConsentDAO) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := dao.db.GetContext(ctx, &count, dao.db.Resolve(QueryCountConsents)); err != nil {
		return 0, fmt.Errorf("failed to count consents: %w", err)
	}
	return count, nil
}

// CountActive returns the number of consents active at now (epoch millis)
func (dao *ConsentDAO) CountActive(ctx context.Context, now int64) (int64, error) {
	var count int64
	if err := dao.db.GetContext(ctx, &count, dao.db.Resolve(QueryCountActiveConsents), now); err != nil {
		return 0, fmt.Errorf("failed to count active consents: %w", err)
	}
	return count, nil
}

// buildConsentWhere derives the status condition from the timestamps at
// filter.Now, matching models.Consent.EffectiveStatus.
func buildConsentWhere(filter models.ConsentFilter) (string, []interface{}) {
	var (
		conditions []string
		args       []interface{}
	)

	if filter.PatientID != "" {
		conditions = append(conditions, "PATIENT_ID = ?")
		args = append(args, filter.PatientID)
	}
	if filter.FacilityID != "" {
		conditions = append(conditions, "FACILITY_ID = ?")
		args = append(args, filter.FacilityID)
	}
	if filter.Status != nil {
		switch *filter.Status {
		case models.ConsentStatusRevoked:
			conditions = append(conditions, "REVOKED_AT IS NOT NULL")
		case models.ConsentStatusExpired:
			conditions = append(conditions, "REVOKED_AT IS NULL AND EXPIRES_AT IS NOT NULL AND EXPIRES_AT <= ?")
			args = append(args, filter.Now)
		case models.ConsentStatusActive:
			conditions = append(conditions, "REVOKED_AT IS NULL AND (EXPIRES_AT IS NULL OR EXPIRES_AT > ?)")
			args = append(args, filter.Now)
		}
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
