package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/wso2/health-consent-api/internal/config"
	"github.com/wso2/health-consent-api/internal/handlers"
	"github.com/wso2/health-consent-api/internal/metrics"
	"github.com/wso2/health-consent-api/internal/middleware"
	"github.com/wso2/health-consent-api/internal/models"
	"github.com/wso2/health-consent-api/internal/service"
)

// Dependencies are the services and settings the router wires into handlers
type Dependencies struct {
	Config           *config.Config
	ConsentService   *service.ConsentService
	AuditService     *service.AuditService
	AccessController *service.AccessController
	HealthChecker    handlers.HealthChecker
	Metrics          *metrics.Metrics
	// Gatherer serves /metrics; prometheus.DefaultGatherer when nil
	Gatherer prometheus.Gatherer
	Logger   *logrus.Logger
}

// SetupRouter configures all API routes
func SetupRouter(deps Dependencies) *gin.Engine {
	cfg := deps.Config
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationIDMiddleware())
	router.Use(middleware.RequestLogger(deps.Logger, deps.Metrics))
	if cfg.CORS.Enabled {
		router.Use(middleware.CORSMiddleware(cfg.CORS))
	}

	// Health check
	healthHandler := handlers.NewHealthHandler(deps.HealthChecker, deps.Logger)
	router.GET("/health", healthHandler.Health)

	if cfg.Metrics.Enabled {
		gatherer := deps.Gatherer
		if gatherer == nil {
			gatherer = prometheus.DefaultGatherer
		}
		router.GET(cfg.Metrics.Path, gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	var verifier *middleware.TokenVerifier
	if cfg.Security.JWT.Enabled {
		verifier = middleware.NewTokenVerifier(cfg.Security.JWT)
	} else {
		deps.Logger.Warn("JWT verification disabled; trusting identity headers from the gateway")
	}

	// Create handlers
	consentHandler := handlers.NewConsentHandler(deps.ConsentService)
	accessHandler := handlers.NewAccessHandler(deps.AccessController, deps.AuditService)
	adminHandler := handlers.NewAdminHandler(deps.ConsentService, deps.AuditService)

	patient := middleware.RequireRoles(models.RolePatient)
	worker := middleware.RequireRoles(models.RoleHealthcareWorker)
	patientOrAdmin := middleware.RequireRoles(models.RolePatient, models.RoleAdmin)
	workerOrAdmin := middleware.RequireRoles(models.RoleHealthcareWorker, models.RoleAdmin)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(middleware.Authenticate(verifier))
	{
		consents := v1.Group("/consents")
		{
			consents.POST("", patient, consentHandler.GrantConsent)
			consents.GET("/:consentId", patientOrAdmin, consentHandler.GetConsent)
			consents.PATCH("/:consentId/revoke", patientOrAdmin, consentHandler.RevokeConsent)
			consents.GET("/patient/:patientId", patientOrAdmin, consentHandler.ListPatientConsents)
			consents.GET("/facility/:facilityId", workerOrAdmin, consentHandler.ListFacilityConsents)
		}

		v1.POST("/access/check", worker, accessHandler.CheckAccess)

		accessLogs := v1.Group("/access-logs")
		{
			accessLogs.GET("/patient/:patientId", patientOrAdmin, accessHandler.ListPatientAccessLogs)
			accessLogs.GET("/worker/me", worker, accessHandler.ListMyAccessLogs)
			accessLogs.GET("/facility/:facilityId", workerOrAdmin, accessHandler.ListFacilityAccessLogs)
		}

		admin := v1.Group("/admin", middleware.RequireRoles(models.RoleAdmin))
		{
			admin.GET("/audit-logs", adminHandler.ListAuditLogs)
			admin.GET("/consents", adminHandler.ListConsents)
			admin.GET("/statistics", adminHandler.GetStatistics)
		}
	}

	return router
}
