package evaluator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wso2/health-consent-api/internal/models"
)

var (
	testNow    = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	testPast   = testNow.Add(-24 * time.Hour)
	testFuture = testNow.Add(24 * time.Hour)
)

func ms(t time.Time) *int64 {
	v := t.UnixMilli()
	return &v
}

func consent(id string, ct models.ConsentType) models.Consent {
	return models.Consent{
		ConsentID:   id,
		PatientID:   "P1",
		FacilityID:  "F1",
		ConsentType: ct,
		Purpose:     "checkup",
		GrantedBy:   "P1",
		GrantedAt:   testPast.UnixMilli(),
	}
}

func revoked(c models.Consent) models.Consent {
	c.RevokedAt = ms(testNow.Add(-time.Hour))
	by := c.PatientID
	c.RevokedBy = &by
	return c
}

func expiring(c models.Consent, at time.Time) models.Consent {
	c.ExpiresAt = ms(at)
	return c
}

func TestEvaluate_HierarchyCoversLowerActions(t *testing.T) {
	consents := []models.Consent{consent("c1", models.ConsentTypeShare)}

	for _, action := range []models.ConsentType{models.ConsentTypeView, models.ConsentTypeEdit, models.ConsentTypeShare} {
		t.Run(string(action), func(t *testing.T) {
			v := Evaluate(consents, action, testNow)
			assert.Equal(t, models.AccessResultAllowed, v.Result)
			assert.Equal(t, models.ReasonConsentSufficient, v.Reason)
			assert.Equal(t, "c1", v.GoverningConsentID)
			assert.Equal(t, models.ConsentTypeShare, v.GrantedType)
		})
	}
}

func TestEvaluate_InsufficientLevel(t *testing.T) {
	consents := []models.Consent{consent("c1", models.ConsentTypeView)}

	for _, action := range []models.ConsentType{models.ConsentTypeEdit, models.ConsentTypeShare} {
		t.Run(string(action), func(t *testing.T) {
			v := Evaluate(consents, action, testNow)
			assert.Equal(t, models.AccessResultDenied, v.Result)
			assert.Equal(t, models.ReasonInsufficientConsentLevel, v.Reason)
			assert.Equal(t, "c1", v.GoverningConsentID)
		})
	}
}

func TestEvaluate_ReasonsWhenNothingActive(t *testing.T) {
	tests := []struct {
		name     string
		consents []models.Consent
		want     models.AccessReason
	}{
		{"no consents", nil, models.ReasonNoConsent},
		{"empty slice", []models.Consent{}, models.ReasonNoConsent},
		{"only revoked", []models.Consent{revoked(consent("c1", models.ConsentTypeShare))}, models.ReasonRevoked},
		{"only expired", []models.Consent{expiring(consent("c1", models.ConsentTypeShare), testPast)}, models.ReasonExpired},
		{"expires exactly now", []models.Consent{expiring(consent("c1", models.ConsentTypeView), testNow)}, models.ReasonExpired},
		{
			"revoked preferred over expired",
			[]models.Consent{
				expiring(consent("c1", models.ConsentTypeView), testPast),
				revoked(consent("c2", models.ConsentTypeView)),
			},
			models.ReasonRevoked,
		},
		{
			"revoked preferred regardless of order",
			[]models.Consent{
				revoked(consent("c2", models.ConsentTypeView)),
				expiring(consent("c1", models.ConsentTypeView), testPast),
			},
			models.ReasonRevoked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Evaluate(tt.consents, models.ConsentTypeView, testNow)
			assert.Equal(t, models.AccessResultDenied, v.Result)
			assert.Equal(t, tt.want, v.Reason)
			assert.Empty(t, v.GoverningConsentID)
			assert.Empty(t, v.GrantedType)
		})
	}
}

func TestEvaluate_ConsidersAllConsentsForPair(t *testing.T) {
	older := consent("c1", models.ConsentTypeView)
	newer := consent("c2", models.ConsentTypeShare)
	newer.GrantedAt = testNow.Add(-time.Minute).UnixMilli()

	v := Evaluate([]models.Consent{older, newer}, models.ConsentTypeShare, testNow)
	assert.Equal(t, models.AccessResultAllowed, v.Result)
	assert.Equal(t, "c2", v.GoverningConsentID)

	// revoking the higher grant falls back to the remaining view grant
	v = Evaluate([]models.Consent{older, revoked(newer)}, models.ConsentTypeShare, testNow)
	assert.Equal(t, models.AccessResultDenied, v.Result)
	assert.Equal(t, models.ReasonInsufficientConsentLevel, v.Reason)
	assert.Equal(t, "c1", v.GoverningConsentID)

	v = Evaluate([]models.Consent{older, revoked(newer)}, models.ConsentTypeView, testNow)
	assert.True(t, v.Allowed())
}

func TestEvaluate_ActiveBeatsInactive(t *testing.T) {
	consents := []models.Consent{
		revoked(consent("c1", models.ConsentTypeShare)),
		expiring(consent("c2", models.ConsentTypeShare), testPast),
		expiring(consent("c3", models.ConsentTypeEdit), testFuture),
	}

	v := Evaluate(consents, models.ConsentTypeEdit, testNow)
	assert.Equal(t, models.AccessResultAllowed, v.Result)
	assert.Equal(t, "c3", v.GoverningConsentID)
}

func TestEvaluate_ExpiryBoundary(t *testing.T) {
	c := expiring(consent("c1", models.ConsentTypeView), testNow)

	assert.True(t, Evaluate([]models.Consent{c}, models.ConsentTypeView, testNow.Add(-time.Millisecond)).Allowed())
	assert.False(t, Evaluate([]models.Consent{c}, models.ConsentTypeView, testNow).Allowed())
}

func TestEvaluate_GoverningConsentIndependentOfOrder(t *testing.T) {
	a := consent("a", models.ConsentTypeEdit)
	b := consent("b", models.ConsentTypeEdit)
	newest := consent("z", models.ConsentTypeEdit)
	newest.GrantedAt = testNow.Add(-time.Second).UnixMilli()

	first := Evaluate([]models.Consent{a, b, newest}, models.ConsentTypeView, testNow)
	second := Evaluate([]models.Consent{newest, b, a}, models.ConsentTypeView, testNow)
	assert.Equal(t, first, second)
	assert.Equal(t, "z", first.GoverningConsentID)

	tie := Evaluate([]models.Consent{b, a}, models.ConsentTypeView, testNow)
	assert.Equal(t, "a", tie.GoverningConsentID)
}

func TestEvaluate_DoesNotMutateInput(t *testing.T) {
	consents := []models.Consent{consent("c1", models.ConsentTypeView), revoked(consent("c2", models.ConsentTypeEdit))}
	before := make([]models.Consent, len(consents))
	copy(before, consents)

	Evaluate(consents, models.ConsentTypeEdit, testNow)
	assert.Equal(t, before, consents)
}
