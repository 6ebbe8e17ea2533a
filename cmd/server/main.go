package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/wso2/health-consent-api/internal/config"
	"github.com/wso2/health-consent-api/internal/dao"
	"github.com/wso2/health-consent-api/internal/dao/memory"
	"github.com/wso2/health-consent-api/internal/database"
	"github.com/wso2/health-consent-api/internal/handlers"
	"github.com/wso2/health-consent-api/internal/metrics"
	"github.com/wso2/health-consent-api/internal/router"
	"github.com/wso2/health-consent-api/internal/service"
)

// Version information (set by build script)
var (
	version   = "dev"
	buildDate = "unknown"
)

// stores are the persistence backends selected by database.type
type stores struct {
	consents   service.ConsentDAO
	accessLogs service.AccessLogDAO
	health     handlers.HealthChecker
	close      func() error
}

func main() {
	// Set Gin to release mode by default (can be overridden by GIN_MODE env var)
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	logger.WithFields(logrus.Fields{
		"version":    version,
		"build_date": buildDate,
	}).Info("Starting Health Consent API Server...")

	// CONFIG_PATH overrides the configs/config.yaml search
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	configureLogger(logger, cfg.Logging)

	logger.WithFields(logrus.Fields{
		"config_path":   configPath,
		"log_level":     logger.GetLevel().String(),
		"database_type": cfg.Database.Type,
	}).Info("Configuration loaded successfully")

	m := metrics.New(prometheus.DefaultRegisterer)

	st, err := openStores(cfg, m, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize storage")
	}
	defer func() {
		if err := st.close(); err != nil {
			logger.WithError(err).Warn("Failed to close storage")
		}
	}()

	// Initialize services
	consentService := service.NewConsentService(st.consents, cfg.Audit, time.Now, m, logger)
	auditService := service.NewAuditService(st.accessLogs, st.consents, cfg.Audit, time.Now, logger)
	accessController := service.NewAccessController(consentService, auditService, time.Now, m, logger)

	logger.Info("Services initialized successfully")

	ginRouter := router.SetupRouter(router.Dependencies{
		Config:           cfg,
		ConsentService:   consentService,
		AuditService:     auditService,
		AccessController: accessController,
		HealthChecker:    st.health,
		Metrics:          m,
		Logger:           logger,
	})

	server := &http.Server{
		Addr:           cfg.Server.GetServerAddress(),
		Handler:        ginRouter,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithField("addr", server.Addr).Info("Starting HTTP server...")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).Error("Server stopped with error")
		return
	}
	logger.Info("Server exited gracefully")
}

func configureLogger(logger *logrus.Logger, cfg config.LoggingConfig) {
	if level, err := logrus.ParseLevel(cfg.Level); err == nil {
		logger.SetLevel(level)
	}
	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

func openStores(cfg *config.Config, m *metrics.Metrics, logger *logrus.Logger) (*stores, error) {
	if cfg.Database.Type == config.DatabaseTypeMemory {
		logger.Warn("Using in-memory storage; consents and access logs are lost on restart")
		return &stores{
			consents:   memory.NewConsentStore(),
			accessLogs: memory.NewAccessLogStore(),
			close:      func() error { return nil },
		}, nil
	}

	db, err := database.Initialize(&cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	if cfg.Metrics.Enabled {
		if err := metrics.RegisterDBStats(prometheus.DefaultRegisterer, db.DB.DB); err != nil {
			logger.WithError(err).Warn("Failed to register database pool metrics")
		}
	}

	logger.Info("Database connection established successfully")
	return &stores{
		consents:   dao.NewConsentDAO(db),
		accessLogs: dao.NewAccessLogDAO(db),
		health:     db,
		close:      db.Close,
	}, nil
}
