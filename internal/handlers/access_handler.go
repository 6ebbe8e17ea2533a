package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/wso2/health-consent-api/internal/models"
	"github.com/wso2/health-consent-api/internal/service"
	"github.com/wso2/health-consent-api/internal/utils"
)

// AccessHandler serves access checks and audit log reads
type AccessHandler struct {
	accessController *service.AccessController
	auditService     *service.AuditService
}

// NewAccessHandler creates a new access handler instance
func NewAccessHandler(accessController *service.AccessController, auditService *service.AuditService) *AccessHandler {
	return &AccessHandler{
		accessController: accessController,
		auditService:     auditService,
	}
}

// CheckAccess handles POST /access/check. A denied check is a successful
// request; only a failure to record the check is an error.
func (h *AccessHandler) CheckAccess(c *gin.Context) {
	var body models.AccessCheckRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	identity := utils.GetIdentityFromContext(c)
	ip := c.ClientIP()
	req := service.AccessRequest{
		PatientID:  body.PatientID,
		FacilityID: identity.FacilityID,
		AccessedBy: identity.ActorID,
		Action:     body.Action,
	}
	if ip != "" {
		req.IPAddress = &ip
	}

	decision, err := h.accessController.CheckAndLog(c.Request.Context(), req)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	utils.SendOKResponse(c, decision)
}

// ListPatientAccessLogs handles GET /access-logs/patient/:patientId
func (h *AccessHandler) ListPatientAccessLogs(c *gin.Context) {
	patientID := c.Param("patientId")
	if !utils.GetIdentityFromContext(c).CanReadPatient(patientID) {
		utils.SendForbiddenError(c, "Not authorized to view access logs of this patient")
		return
	}

	limit, err := utils.ParseLimit(c)
	if err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	entries, err := h.auditService.QueryByPatient(c.Request.Context(), patientID, limit)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendListResponse(c, entries, h.auditService.Limit(limit))
}

// ListMyAccessLogs handles GET /access-logs/worker/me
func (h *AccessHandler) ListMyAccessLogs(c *gin.Context) {
	limit, err := utils.ParseLimit(c)
	if err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	entries, err := h.auditService.QueryByActor(c.Request.Context(), utils.GetIdentityFromContext(c).ActorID, limit)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendListResponse(c, entries, h.auditService.Limit(limit))
}

// ListFacilityAccessLogs handles GET /access-logs/facility/:facilityId
func (h *AccessHandler) ListFacilityAccessLogs(c *gin.Context) {
	facilityID := c.Param("facilityId")
	if !utils.GetIdentityFromContext(c).CanReadFacility(facilityID) {
		utils.SendForbiddenError(c, "Not authorized to view access logs of this facility")
		return
	}

	limit, err := utils.ParseLimit(c)
	if err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	entries, err := h.auditService.QueryByFacility(c.Request.Context(), facilityID, limit)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendListResponse(c, entries, h.auditService.Limit(limit))
}
