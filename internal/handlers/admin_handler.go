package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/wso2/health-consent-api/internal/models"
	"github.com/wso2/health-consent-api/internal/service"
	"github.com/wso2/health-consent-api/internal/utils"
)

// AdminHandler serves the administrative views. Role checks happen in the
// router.
type AdminHandler struct {
	consentService *service.ConsentService
	auditService   *service.AuditService
}

// NewAdminHandler creates a new admin handler instance
func NewAdminHandler(consentService *service.ConsentService, auditService *service.AuditService) *AdminHandler {
	return &AdminHandler{
		consentService: consentService,
		auditService:   auditService,
	}
}

// ListAuditLogs handles GET /admin/audit-logs
func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	limit, err := utils.ParseLimit(c)
	if err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}
	result, err := utils.ParseResultFilter(c)
	if err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	entries, err := h.auditService.QueryAll(c.Request.Context(), limit, result)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendListResponse(c, entries, h.auditService.Limit(limit))
}

// ListConsents handles GET /admin/consents
func (h *AdminHandler) ListConsents(c *gin.Context) {
	limit, err := utils.ParseLimit(c)
	if err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}
	status, err := utils.ParseStatusFilter(c)
	if err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	consents, err := h.consentService.ListAll(c.Request.Context(), limit, status)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendListResponse(c, models.NewConsentResponses(consents, h.consentService.Now()), h.auditService.Limit(limit))
}

// GetStatistics handles GET /admin/statistics
func (h *AdminHandler) GetStatistics(c *gin.Context) {
	stats, err := h.auditService.Statistics(c.Request.Context())
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, stats)
}
