//go:build integration

package dao

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wso2/health-consent-api/internal/config"
	"github.com/wso2/health-consent-api/internal/database"
	"github.com/wso2/health-consent-api/internal/models"
	"github.com/wso2/health-consent-api/pkg/utils"
)

// These tests run against a live database with the dbscripts schema applied.
// CONFIG_PATH selects the config file; database.type picks mysql or postgres.
//
//	CONFIG_PATH=configs/config.yaml go test -tags integration ./internal/dao/...
func setupIntegrationDB(t *testing.T) *database.DB {
	t.Helper()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "../../configs/config.yaml"
	}
	cfg, err := config.Load(path)
	require.NoError(t, err, "Failed to load config")
	if cfg.Database.Type == config.DatabaseTypeMemory {
		t.Skip("integration tests need a SQL database")
	}

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	db, err := database.Initialize(&cfg.Database, logger)
	require.NoError(t, err, "Failed to initialize database")
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestIntegration_ConsentLifecycle(t *testing.T) {
	db := setupIntegrationDB(t)
	consents := NewConsentDAO(db)
	ctx := context.Background()

	now := time.Now().UnixMilli()
	patientID := "P-" + utils.GenerateID()
	facilityID := "F-" + utils.GenerateID()
	expiresAt := now + time.Hour.Milliseconds()

	c := &models.Consent{
		ConsentID:   utils.GenerateConsentID(),
		PatientID:   patientID,
		FacilityID:  facilityID,
		ConsentType: models.ConsentTypeEdit,
		Purpose:     "integration",
		GrantedBy:   patientID,
		GrantedAt:   now,
		ExpiresAt:   &expiresAt,
	}
	require.NoError(t, consents.Create(ctx, c))

	got, err := consents.GetByID(ctx, c.ConsentID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, *c, *got)

	pair, err := consents.ListByPair(ctx, patientID, facilityID)
	require.NoError(t, err)
	assert.Len(t, pair, 1)

	active := models.ConsentStatusActive
	listed, err := consents.List(ctx, models.ConsentFilter{PatientID: patientID, Status: &active, Now: now, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	revoked, err := consents.Revoke(ctx, c.ConsentID, now+1, patientID)
	require.NoError(t, err)
	require.NotNil(t, revoked)
	assert.Equal(t, models.ConsentStatusRevoked, revoked.EffectiveStatus(time.UnixMilli(now)))

	again, err := consents.Revoke(ctx, c.ConsentID, now+2, patientID)
	require.NoError(t, err)
	assert.Nil(t, again)
}

func TestIntegration_ConcurrentRevokeHasOneWinner(t *testing.T) {
	db := setupIntegrationDB(t)
	consents := NewConsentDAO(db)
	ctx := context.Background()

	now := time.Now().UnixMilli()
	c := &models.Consent{
		ConsentID:   utils.GenerateConsentID(),
		PatientID:   "P-" + utils.GenerateID(),
		FacilityID:  "F-" + utils.GenerateID(),
		ConsentType: models.ConsentTypeView,
		Purpose:     "integration",
		GrantedBy:   "integration",
		GrantedAt:   now,
	}
	require.NoError(t, consents.Create(ctx, c))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := consents.Revoke(ctx, c.ConsentID, now+1, "integration")
			assert.NoError(t, err)
			if res != nil {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, winners)
}

func TestIntegration_AccessLogAppendAndQuery(t *testing.T) {
	db := setupIntegrationDB(t)
	logs := NewAccessLogDAO(db)
	ctx := context.Background()

	patientID := "P-" + utils.GenerateID()
	now := time.Now().UnixMilli()
	for i, result := range []models.AccessResult{models.AccessResultAllowed, models.AccessResultDenied} {
		require.NoError(t, logs.Create(ctx, &models.AccessLogEntry{
			LogID:      utils.GenerateLogID(),
			PatientID:  patientID,
			AccessedBy: "nurse-integration",
			FacilityID: "F-integration",
			Action:     models.ConsentTypeView,
			Result:     result,
			Reason:     models.ReasonNoConsent,
			Timestamp:  now + int64(i),
		}))
	}

	entries, err := logs.List(ctx, models.AccessLogFilter{PatientID: patientID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.AccessResultDenied, entries[0].Result, "newest first")

	stats, err := logs.Statistics(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, stats.Total, int64(2))
	assert.Equal(t, stats.Total, stats.Allowed+stats.Denied)
}
