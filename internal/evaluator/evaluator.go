// Package evaluator decides whether a set of consents authorizes an action.
// Evaluate performs no I/O and reads no clock of its own, so the same inputs
// always produce the same verdict.
package evaluator

import (
	"time"

	"github.com/wso2/health-consent-api/internal/models"
)

// Evaluate computes the verdict for action given every consent a patient has
// issued to one facility. Status is recomputed for each consent at now.
//
// When no consent is active the reason reports why: revoked if any consent
// was revoked, otherwise expired if any consent expired, otherwise
// no_consent. The verdict is denied in all three cases.
func Evaluate(consents []models.Consent, action models.ConsentType, now time.Time) models.Verdict {
	var (
		governing  *models.Consent
		anyRevoked bool
		anyExpired bool
	)

	for i := range consents {
		c := &consents[i]
		switch c.EffectiveStatus(now) {
		case models.ConsentStatusRevoked:
			anyRevoked = true
		case models.ConsentStatusExpired:
			anyExpired = true
		case models.ConsentStatusActive:
			if outranks(c, governing) {
				governing = c
			}
		}
	}

	if governing == nil {
		reason := models.ReasonNoConsent
		switch {
		case anyRevoked:
			reason = models.ReasonRevoked
		case anyExpired:
			reason = models.ReasonExpired
		}
		return models.Verdict{Result: models.AccessResultDenied, Reason: reason}
	}

	v := models.Verdict{
		GoverningConsentID: governing.ConsentID,
		GrantedType:        governing.ConsentType,
	}
	if governing.ConsentType.Covers(action) {
		v.Result = models.AccessResultAllowed
		v.Reason = models.ReasonConsentSufficient
	} else {
		v.Result = models.AccessResultDenied
		v.Reason = models.ReasonInsufficientConsentLevel
	}
	return v
}

// outranks orders active consents by type rank, then newest grant, then id,
// so the governing consent does not depend on the order the store returned.
func outranks(c, current *models.Consent) bool {
	if current == nil {
		return true
	}
	if c.ConsentType.Rank() != current.ConsentType.Rank() {
		return c.ConsentType.Rank() > current.ConsentType.Rank()
	}
	if c.GrantedAt != current.GrantedAt {
		return c.GrantedAt > current.GrantedAt
	}
	return c.ConsentID < current.ConsentID
}
