package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wso2/health-consent-api/internal/evaluator"
	"github.com/wso2/health-consent-api/internal/metrics"
	"github.com/wso2/health-consent-api/internal/models"
	"github.com/wso2/health-consent-api/internal/serviceerror"
	"github.com/wso2/health-consent-api/pkg/utils"
)

// AccessRequest asks whether AccessedBy, acting for FacilityID, may perform
// Action on PatientID's records.
type AccessRequest struct {
	PatientID  string
	FacilityID string
	AccessedBy string
	Action     string
	IPAddress  *string
}

// AccessDecision is the outcome of an access check. It can only be obtained
// from CheckAndLog and always refers to a persisted access log entry.
type AccessDecision struct {
	entry   models.AccessLogEntry
	verdict models.Verdict
}

func newAccessDecision(entry *models.AccessLogEntry, verdict models.Verdict) *AccessDecision {
	return &AccessDecision{entry: *entry, verdict: verdict}
}

// Allowed reports whether the caller may proceed to read the patient's data.
// Any other outcome must be treated as a hard stop.
func (d *AccessDecision) Allowed() bool {
	return d != nil && d.entry.Result == models.AccessResultAllowed
}

// Result returns the recorded result, or denied for a nil decision
func (d *AccessDecision) Result() models.AccessResult {
	if d == nil {
		return models.AccessResultDenied
	}
	return d.entry.Result
}

// Reason returns the recorded reason, or empty for a nil decision
func (d *AccessDecision) Reason() models.AccessReason {
	if d == nil {
		return ""
	}
	return d.entry.Reason
}

// LogID returns the id of the audit entry backing the decision
func (d *AccessDecision) LogID() string {
	if d == nil {
		return ""
	}
	return d.entry.LogID
}

// Timestamp returns the audit entry time in epoch milliseconds
func (d *AccessDecision) Timestamp() int64 {
	if d == nil {
		return 0
	}
	return d.entry.Timestamp
}

// GoverningConsentID is the consent that decided the check, if any
func (d *AccessDecision) GoverningConsentID() string {
	if d == nil {
		return ""
	}
	return d.verdict.GoverningConsentID
}

// Entry returns a copy of the audit entry recorded for the check
func (d *AccessDecision) Entry() models.AccessLogEntry {
	if d == nil {
		return models.AccessLogEntry{}
	}
	return d.entry
}

// MarshalJSON renders the decision together with its audit reference
func (d *AccessDecision) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Allowed            bool                `json:"allowed"`
		Result             models.AccessResult `json:"result"`
		Reason             models.AccessReason `json:"reason"`
		PatientID          string              `json:"patientId"`
		FacilityID         string              `json:"facilityId"`
		Action             models.ConsentType  `json:"action"`
		GoverningConsentID string              `json:"governingConsentId,omitempty"`
		GrantedType        models.ConsentType  `json:"grantedType,omitempty"`
		LogID              string              `json:"logId"`
		Timestamp          int64               `json:"timestamp"`
	}{
		Allowed:            d.Allowed(),
		Result:             d.entry.Result,
		Reason:             d.entry.Reason,
		PatientID:          d.entry.PatientID,
		FacilityID:         d.entry.FacilityID,
		Action:             d.entry.Action,
		GoverningConsentID: d.verdict.GoverningConsentID,
		GrantedType:        d.verdict.GrantedType,
		LogID:              d.entry.LogID,
		Timestamp:          d.entry.Timestamp,
	})
}

// AccessController is the single entry point for access checks and the only
// writer of the access log.
type AccessController struct {
	consents ConsentFinder
	audit    AuditAppender
	clock    Clock
	metrics  *metrics.Metrics
	logger   *logrus.Logger
}

// NewAccessController creates a new access controller instance
func NewAccessController(
	consents ConsentFinder,
	audit AuditAppender,
	clock Clock,
	m *metrics.Metrics,
	logger *logrus.Logger,
) *AccessController {
	return &AccessController{
		consents: consents,
		audit:    audit,
		clock:    clock,
		metrics:  m,
		logger:   logger,
	}
}

// CheckAndLog evaluates the request against the pair's current consents and
// records exactly one access log entry for it. Malformed requests fail with
// ValidationError and are not recorded. A decision is returned only after its
// entry has been persisted; if the write fails the request fails with
// AuditWriteError. Once started, the write is not cancelled with ctx.
func (c *AccessController) CheckAndLog(ctx context.Context, req AccessRequest) (*AccessDecision, error) {
	start := time.Now()
	defer func() { c.metrics.ObserveCheckLatency(time.Since(start)) }()

	action, err := validateAccessRequest(&req)
	if err != nil {
		return nil, err
	}

	consents, err := c.consents.FindForPair(ctx, req.PatientID, req.FacilityID)
	if err != nil {
		return nil, err
	}

	verdict := evaluator.Evaluate(consents, action, c.clock.now())

	entry, err := c.audit.Append(context.WithoutCancel(ctx), models.AccessAttempt{
		PatientID:  req.PatientID,
		AccessedBy: req.AccessedBy,
		FacilityID: req.FacilityID,
		Action:     action,
		Result:     verdict.Result,
		Reason:     verdict.Reason,
		IPAddress:  req.IPAddress,
	})
	if err != nil {
		c.metrics.IncrementAuditWriteFailure()
		c.logger.WithError(err).WithFields(logrus.Fields{
			"patient_id":  req.PatientID,
			"facility_id": req.FacilityID,
			"accessed_by": req.AccessedBy,
		}).Error("Access check aborted: audit entry not recorded")
		return nil, err
	}

	c.metrics.IncrementDecision(string(entry.Result), string(entry.Reason))

	fields := logrus.Fields{
		"log_id":      entry.LogID,
		"patient_id":  entry.PatientID,
		"facility_id": entry.FacilityID,
		"accessed_by": entry.AccessedBy,
		"action":      entry.Action,
	}
	if verdict.Allowed() {
		c.logger.WithFields(fields).Info("Access allowed")
	} else {
		fields["reason"] = entry.Reason
		c.logger.WithFields(fields).Warn("Access denied")
	}

	return newAccessDecision(entry, verdict), nil
}

func validateAccessRequest(req *AccessRequest) (models.ConsentType, error) {
	action, ok := models.ParseConsentType(req.Action)
	if !ok {
		return "", serviceerror.Newf(serviceerror.ValidationError,
			"invalid action %q: must be one of view, edit, share", req.Action)
	}
	// identifiers are stored sanitized at grant time and must match here
	req.PatientID = utils.SanitizeString(req.PatientID)
	req.FacilityID = utils.SanitizeString(req.FacilityID)
	req.AccessedBy = utils.SanitizeString(req.AccessedBy)
	if err := utils.ValidateIdentifier("patient ID", req.PatientID); err != nil {
		return "", serviceerror.New(serviceerror.ValidationError, err.Error())
	}
	if err := utils.ValidateIdentifier("facility ID", req.FacilityID); err != nil {
		return "", serviceerror.New(serviceerror.ValidationError, err.Error())
	}
	if err := utils.ValidateIdentifier("actor ID", req.AccessedBy); err != nil {
		return "", serviceerror.New(serviceerror.ValidationError, err.Error())
	}
	return action, nil
}
