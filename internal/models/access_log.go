package models

import "strings"

// AccessResult is the outcome of an access check
type AccessResult string

const (
	AccessResultAllowed AccessResult = "allowed"
	AccessResultDenied  AccessResult = "denied"
)

// ParseAccessResult converts a result filter to an AccessResult
func ParseAccessResult(s string) (AccessResult, bool) {
	r := AccessResult(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case AccessResultAllowed, AccessResultDenied:
		return r, true
	}
	return "", false
}

// AccessReason explains an access result
type AccessReason string

const (
	ReasonConsentSufficient        AccessReason = "consent_sufficient"
	ReasonNoConsent                AccessReason = "no_consent"
	ReasonInsufficientConsentLevel AccessReason = "insufficient_consent_level"
	ReasonRevoked                  AccessReason = "revoked"
	ReasonExpired                  AccessReason = "expired"
)

// Verdict is the result of evaluating a set of consents against an action.
type Verdict struct {
	Result AccessResult
	Reason AccessReason
	// GoverningConsentID is the highest-ranked active consent, if any.
	GoverningConsentID string
	// GrantedType is the type of the governing consent, if any.
	GrantedType ConsentType
}

// Allowed reports whether the verdict permits the action
func (v Verdict) Allowed() bool {
	return v.Result == AccessResultAllowed
}

// AccessAttempt is an access check to be recorded, before it is assigned
// an id and timestamp.
type AccessAttempt struct {
	PatientID  string
	AccessedBy string
	FacilityID string
	Action     ConsentType
	Result     AccessResult
	Reason     AccessReason
	IPAddress  *string
}

// AccessLogEntry represents the ACCESS_LOGS table. Entries are append-only.
type AccessLogEntry struct {
	LogID      string       `db:"LOG_ID" json:"logId"`
	PatientID  string       `db:"PATIENT_ID" json:"patientId"`
	AccessedBy string       `db:"ACCESSED_BY" json:"accessedBy"`
	FacilityID string       `db:"FACILITY_ID" json:"facilityId"`
	Action     ConsentType  `db:"ACTION" json:"action"`
	Result     AccessResult `db:"RESULT" json:"result"`
	Reason     AccessReason `db:"REASON" json:"reason"`
	Timestamp  int64        `db:"LOG_TIME" json:"timestamp"`
	IPAddress  *string      `db:"IP_ADDRESS" json:"ipAddress,omitempty"`
}

// AccessCheckRequest is the request body for an access check
type AccessCheckRequest struct {
	PatientID string `json:"patientId"`
	Action    string `json:"action"`
}

// Statistics summarizes the consent and audit tables
type Statistics struct {
	Consents   ConsentStatistics   `json:"consents"`
	AccessLogs AccessLogStatistics `json:"accessLogs"`
}

// ConsentStatistics counts consents
type ConsentStatistics struct {
	Total  int64 `json:"total"`
	Active int64 `json:"active"`
}

// AccessLogStatistics counts audit entries by result
type AccessLogStatistics struct {
	Total   int64 `db:"TOTAL" json:"total"`
	Allowed int64 `db:"ALLOWED" json:"allowed"`
	Denied  int64 `db:"DENIED" json:"denied"`
}

// AccessLogFilter selects audit entries. Zero fields do not filter.
type AccessLogFilter struct {
	PatientID  string
	AccessedBy string
	FacilityID string
	Result     *AccessResult
	Limit      int
}
