package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/wso2/health-consent-api/internal/models"
	"github.com/wso2/health-consent-api/internal/service"
	"github.com/wso2/health-consent-api/internal/utils"
)

// ConsentHandler handles consent-related HTTP requests
type ConsentHandler struct {
	consentService *service.ConsentService
}

// NewConsentHandler creates a new consent handler instance
func NewConsentHandler(consentService *service.ConsentService) *ConsentHandler {
	return &ConsentHandler{consentService: consentService}
}

// GrantConsent handles POST /consents
func (h *ConsentHandler) GrantConsent(c *gin.Context) {
	var body models.ConsentGrantRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	// the patient always grants on their own behalf
	identity := utils.GetIdentityFromContext(c)
	consent, err := h.consentService.Grant(c.Request.Context(), service.GrantRequest{
		PatientID:   identity.PatientID,
		FacilityID:  body.FacilityID,
		ConsentType: body.ConsentType,
		Purpose:     body.Purpose,
		GrantedBy:   identity.ActorID,
		ExpiresAt:   body.ExpiresAt,
	})
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	utils.SendCreatedResponse(c, models.NewConsentResponse(*consent, h.consentService.Now()))
}

// RevokeConsent handles PATCH /consents/:consentId/revoke
func (h *ConsentHandler) RevokeConsent(c *gin.Context) {
	identity := utils.GetIdentityFromContext(c)

	req := service.RevokeRequest{
		ConsentID: c.Param("consentId"),
		RevokedBy: identity.ActorID,
	}
	if !identity.IsAdmin() {
		req.PatientID = identity.PatientID
	}

	consent, err := h.consentService.Revoke(c.Request.Context(), req)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	utils.SendOKResponse(c, models.NewConsentResponse(*consent, h.consentService.Now()))
}

// GetConsent handles GET /consents/:consentId
func (h *ConsentHandler) GetConsent(c *gin.Context) {
	consent, err := h.consentService.GetConsent(c.Request.Context(), c.Param("consentId"))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	if !utils.GetIdentityFromContext(c).CanReadPatient(consent.PatientID) {
		utils.SendForbiddenError(c, "Not authorized to view this consent")
		return
	}

	utils.SendOKResponse(c, models.NewConsentResponse(*consent, h.consentService.Now()))
}

// ListPatientConsents handles GET /consents/patient/:patientId
func (h *ConsentHandler) ListPatientConsents(c *gin.Context) {
	patientID := c.Param("patientId")
	if !utils.GetIdentityFromContext(c).CanReadPatient(patientID) {
		utils.SendForbiddenError(c, "Not authorized to view consents of this patient")
		return
	}

	status, err := utils.ParseStatusFilter(c)
	if err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	consents, err := h.consentService.ListByPatient(c.Request.Context(), patientID, status)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	utils.SendListResponse(c, models.NewConsentResponses(consents, h.consentService.Now()), 0)
}

// ListFacilityConsents handles GET /consents/facility/:facilityId
func (h *ConsentHandler) ListFacilityConsents(c *gin.Context) {
	facilityID := c.Param("facilityId")
	if !utils.GetIdentityFromContext(c).CanReadFacility(facilityID) {
		utils.SendForbiddenError(c, "Not authorized to view consents of this facility")
		return
	}

	status, err := utils.ParseStatusFilter(c)
	if err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	consents, err := h.consentService.ListByFacility(c.Request.Context(), facilityID, status)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	utils.SendListResponse(c, models.NewConsentResponses(consents, h.consentService.Now()), 0)
}
