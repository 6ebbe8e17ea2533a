package models

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// NewErrorResponse creates a new error response
func NewErrorResponse(code, message, details string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// Common error codes for failures raised outside the service layer
const (
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeInternalError   = "INTERNAL_ERROR"
	ErrCodeValidationError = "VALIDATION_ERROR"
)

// ListResponse wraps list results
type ListResponse struct {
	Data  interface{} `json:"data"`
	Count int         `json:"count"`
	Limit int         `json:"limit,omitempty"`
}

// Role is the role of an authenticated caller
type Role string

const (
	RolePatient          Role = "patient"
	RoleHealthcareWorker Role = "healthcare_worker"
	RoleAdmin            Role = "admin"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	switch r {
	case RolePatient, RoleHealthcareWorker, RoleAdmin:
		return true
	}
	return false
}

// Identity is the resolved caller of a request. PatientID is set for
// patients and FacilityID for healthcare workers.
type Identity struct {
	ActorID    string `json:"actorId"`
	Role       Role   `json:"role"`
	PatientID  string `json:"patientId,omitempty"`
	FacilityID string `json:"facilityId,omitempty"`
}

// IsAdmin reports whether the caller is an administrator
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// IsPatient reports whether the caller is a patient
func (i *Identity) IsPatient() bool {
	return i != nil && i.Role == RolePatient
}

// IsHealthcareWorker reports whether the caller is a healthcare worker
func (i *Identity) IsHealthcareWorker() bool {
	return i != nil && i.Role == RoleHealthcareWorker
}

// CanReadPatient reports whether the caller may read records owned by patientID
func (i *Identity) CanReadPatient(patientID string) bool {
	return i.IsAdmin() || (i.IsPatient() && i.PatientID == patientID)
}

// CanReadFacility reports whether the caller may read records of facilityID
func (i *Identity) CanReadFacility(facilityID string) bool {
	return i.IsAdmin() || (i.IsHealthcareWorker() && i.FacilityID == facilityID)
}
