package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T, driver, dbType string) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = raw.Close() })

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return New(sqlx.NewDb(raw, driver), dbType, logger), mock
}

func TestResolve_DialectAndPlaceholders(t *testing.T) {
	q := DBQuery{
		ID:            "count",
		Query:         "SELECT SUM(RESULT = ?) FROM ACCESS_LOGS WHERE PATIENT_ID = ?",
		PostgresQuery: "SELECT COUNT(*) FILTER (WHERE RESULT = ?) FROM ACCESS_LOGS WHERE PATIENT_ID = ?",
	}

	mysqlDB, _ := newMockDB(t, "mysql", "mysql")
	assert.Equal(t, q.Query, mysqlDB.Resolve(q))

	pgDB, _ := newMockDB(t, "pgx", "postgres")
	assert.Equal(t, "SELECT COUNT(*) FILTER (WHERE RESULT = $1) FROM ACCESS_LOGS WHERE PATIENT_ID = $2", pgDB.Resolve(q))

	plain := DBQuery{ID: "plain", Query: "SELECT 1 FROM CONSENTS WHERE CONSENT_ID = ?"}
	assert.Equal(t, "SELECT 1 FROM CONSENTS WHERE CONSENT_ID = $1", pgDB.Resolve(plain))
}

func TestWithTransaction_CommitsOnSuccess(t *testing.T) {
	db, mock := newMockDB(t, "mysql", "mysql")
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE CONSENTS").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := db.WithTransaction(context.Background(), func(tx *Transaction) error {
		_, err := tx.ExecContext(context.Background(), "UPDATE CONSENTS SET REVOKED_AT = 1")
		return err
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTransaction_RollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t, "mysql", "mysql")
	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := db.WithTransaction(context.Background(), func(tx *Transaction) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthCheck(t *testing.T) {
	raw, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer raw.Close()

	db := New(sqlx.NewDb(raw, "mysql"), "mysql", logrus.New())
	mock.ExpectPing()
	assert.NoError(t, db.HealthCheck(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("down"))
	assert.Error(t, db.HealthCheck(context.Background()))
}
