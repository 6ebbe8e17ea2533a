package models

import (
	"strings"
	"time"
)

// ConsentType is the level of access a patient grants to a facility.
// Levels are ordered: view < edit < share.
type ConsentType string

const (
	ConsentTypeView  ConsentType = "view"
	ConsentTypeEdit  ConsentType = "edit"
	ConsentTypeShare ConsentType = "share"
)

// Rank returns the position of the type in the hierarchy, or 0 for an
// unknown type.
func (t ConsentType) Rank() int {
	switch t {
	case ConsentTypeView:
		return 1
	case ConsentTypeEdit:
		return 2
	case ConsentTypeShare:
		return 3
	}
	return 0
}

// IsValid reports whether t is one of the known consent types
func (t ConsentType) IsValid() bool {
	return t.Rank() > 0
}

// Covers reports whether a consent of type t authorizes action.
func (t ConsentType) Covers(action ConsentType) bool {
	return t.IsValid() && action.IsValid() && t.Rank() >= action.Rank()
}

// ParseConsentType converts user input to a ConsentType
func ParseConsentType(s string) (ConsentType, bool) {
	t := ConsentType(strings.ToLower(strings.TrimSpace(s)))
	return t, t.IsValid()
}

// ConsentStatus is derived from a consent's timestamps and never stored.
type ConsentStatus string

const (
	ConsentStatusActive  ConsentStatus = "active"
	ConsentStatusExpired ConsentStatus = "expired"
	ConsentStatusRevoked ConsentStatus = "revoked"
)

// ParseConsentStatus converts a status filter to a ConsentStatus
func ParseConsentStatus(s string) (ConsentStatus, bool) {
	st := ConsentStatus(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case ConsentStatusActive, ConsentStatusExpired, ConsentStatusRevoked:
		return st, true
	}
	return "", false
}

// Consent represents the CONSENTS table. Timestamps are epoch milliseconds.
type Consent struct {
	ConsentID   string      `db:"CONSENT_ID" json:"consentId"`
	PatientID   string      `db:"PATIENT_ID" json:"patientId"`
	FacilityID  string      `db:"FACILITY_ID" json:"facilityId"`
	ConsentType ConsentType `db:"CONSENT_TYPE" json:"consentType"`
	Purpose     string      `db:"PURPOSE" json:"purpose"`
	GrantedBy   string      `db:"GRANTED_BY" json:"grantedBy"`
	GrantedAt   int64       `db:"GRANTED_AT" json:"grantedAt"`
	ExpiresAt   *int64      `db:"EXPIRES_AT" json:"expiresAt,omitempty"`
	RevokedAt   *int64      `db:"REVOKED_AT" json:"revokedAt,omitempty"`
	RevokedBy   *string     `db:"REVOKED_BY" json:"revokedBy,omitempty"`
}

// EffectiveStatus computes the status of the consent at now. Revocation
// wins over expiry; a consent whose expiry equals now is expired.
func (c *Consent) EffectiveStatus(now time.Time) ConsentStatus {
	if c.RevokedAt != nil {
		return ConsentStatusRevoked
	}
	if c.ExpiresAt != nil && now.UnixMilli() >= *c.ExpiresAt {
		return ConsentStatusExpired
	}
	return ConsentStatusActive
}

// IsActive reports whether the consent is in force at now
func (c *Consent) IsActive(now time.Time) bool {
	return c.EffectiveStatus(now) == ConsentStatusActive
}

// ConsentGrantRequest is the request body for granting a consent
type ConsentGrantRequest struct {
	FacilityID  string `json:"facilityId"`
	ConsentType string `json:"consentType"`
	Purpose     string `json:"purpose"`
	ExpiresAt   *int64 `json:"expiresAt,omitempty"`
}

// ConsentResponse is a consent together with its status at response time
type ConsentResponse struct {
	Consent
	Status ConsentStatus `json:"status"`
}

// NewConsentResponse attaches the derived status to c
func NewConsentResponse(c Consent, now time.Time) ConsentResponse {
	return ConsentResponse{Consent: c, Status: c.EffectiveStatus(now)}
}

// NewConsentResponses converts a list of consents for output
func NewConsentResponses(consents []Consent, now time.Time) []ConsentResponse {
	out := make([]ConsentResponse, 0, len(consents))
	for _, c := range consents {
		out = append(out, NewConsentResponse(c, now))
	}
	return out
}

// ConsentFilter selects consents for listing. Zero fields do not filter.
// Status is evaluated against Now.
type ConsentFilter struct {
	PatientID  string
	FacilityID string
	Status     *ConsentStatus
	Now        int64
	Limit      int
}
