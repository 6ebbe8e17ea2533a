package dao

import (
	"context"
	"fmt"
	"strings"

	"github.com/wso2/health-consent-api/internal/database"
	"github.com/wso2/health-consent-api/internal/models"
)

// Access logs are append-only: this file defines no UPDATE or DELETE.
var (
	QueryCreateAccessLog = database.DBQuery{
		ID: "ACCESS_LOG_CREATE",
		Query: `INSERT INTO ACCESS_LOGS (
			LOG_ID, PATIENT_ID, ACCESSED_BY, FACILITY_ID, ACTION, RESULT, REASON, LOG_TIME, IP_ADDRESS
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	}

	QueryListAccessLogs = database.DBQuery{
		ID: "ACCESS_LOG_LIST",
		Query: `SELECT LOG_ID, PATIENT_ID, ACCESSED_BY, FACILITY_ID, ACTION, RESULT, REASON, LOG_TIME, IP_ADDRESS
		FROM ACCESS_LOGS`,
	}

	QueryAccessLogStatistics = database.DBQuery{
		ID: "ACCESS_LOG_STATISTICS",
		Query: `SELECT COUNT(*) AS TOTAL,
		       COALESCE(SUM(CASE WHEN RESULT = 'allowed' THEN 1 ELSE 0 END), 0) AS ALLOWED,
		       COALESCE(SUM(CASE WHEN RESULT = 'denied' THEN 1 ELSE 0 END), 0) AS DENIED
		FROM ACCESS_LOGS`,
		PostgresQuery: `SELECT COUNT(*) AS TOTAL,
		       COUNT(*) FILTER (WHERE RESULT = 'allowed') AS ALLOWED,
		       COUNT(*) FILTER (WHERE RESULT = 'denied') AS DENIED
		FROM ACCESS_LOGS`,
	}
)

// AccessLogDAO handles database operations for the audit trail
type AccessLogDAO struct {
	db *database.DB
}

// NewAccessLogDAO creates a new AccessLogDAO instance
func NewAccessLogDAO(db *database.DB) *AccessLogDAO {
	return &AccessLogDAO{db: db}
}

// Create appends an access log entry
func (dao *AccessLogDAO) Create(ctx context.Context, entry *models.AccessLogEntry) error {
	_, err := dao.db.ExecContext(
		ctx,
		dao.db.Resolve(QueryCreateAccessLog),
		entry.LogID,
		entry.PatientID,
		entry.AccessedBy,
		entry.FacilityID,
		entry.Action,
		entry.Result,
		entry.Reason,
		entry.Timestamp,
		entry.IPAddress,
	)
	if err != nil {
		return fmt.Errorf("failed to create access log: %w", err)
	}

	return nil
}

// List retrieves entries matching filter, newest first
func (dao *AccessLogDAO) List(ctx context.Context, filter models.AccessLogFilter) ([]models.AccessLogEntry, error) {
	var (
		conditions []string
		args       []interface{}
	)

	if filter.PatientID != "" {
		conditions = append(conditions, "PATIENT_ID = ?")
		args = append(args, filter.PatientID)
	}
	if filter.AccessedBy != "" {
		conditions = append(conditions, "ACCESSED_BY = ?")
		args = append(args, filter.AccessedBy)
	}
	if filter.FacilityID != "" {
		conditions = append(conditions, "FACILITY_ID = ?")
		args = append(args, filter.FacilityID)
	}
	if filter.Result != nil {
		conditions = append(conditions, "RESULT = ?")
		args = append(args, *filter.Result)
	}

	q := QueryListAccessLogs
	if len(conditions) > 0 {
		q.Query += " WHERE " + strings.Join(conditions, " AND ")
	}
	q.Query += " ORDER BY LOG_TIME DESC, LOG_ID DESC"
	if filter.Limit > 0 {
		q.Query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	entries := []models.AccessLogEntry{}
	if err := dao.db.SelectContext(ctx, &entries, dao.db.Resolve(q), args...); err != nil {
		return nil, fmt.Errorf("failed to list access logs: %w", err)
	}

	return entries, nil
}

// Statistics counts entries by result
func (dao *AccessLogDAO) Statistics(ctx context.Context) (*models.AccessLogStatistics, error) {
	var stats models.AccessLogStatistics
	if err := dao.db.GetContext(ctx, &stats, dao.db.Resolve(QueryAccessLogStatistics)); err != nil {
		return nil, fmt.Errorf("failed to compute access log statistics: %w", err)
	}
	return &stats, nil
}
