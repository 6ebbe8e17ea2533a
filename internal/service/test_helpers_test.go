package service

import (
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wso2/health-consent-api/internal/config"
	"github.com/wso2/health-consent-api/internal/dao/memory"
	"github.com/wso2/health-consent-api/internal/service/mocks"
)

var (
	testNow    = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	testLimits = config.AuditConfig{DefaultLimit: 100, MaxLimit: 500}
)

// fakeClock is a settable clock safe for concurrent use
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{now: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// TestSetup wires the services over mocked DAOs
type TestSetup struct {
	MockConsentDAO   *mocks.MockConsentDAO
	MockAccessLogDAO *mocks.MockAccessLogDAO
	Clock            *fakeClock
	ConsentService   *ConsentService
	AuditService     *AuditService
	Controller       *AccessController
}

func NewTestSetup() *TestSetup {
	logger := newTestLogger()
	clock := newFakeClock(testNow)
	consentDAO := &mocks.MockConsentDAO{}
	accessLogDAO := &mocks.MockAccessLogDAO{}

	consents := NewConsentService(consentDAO, testLimits, clock.Now, nil, logger)
	audit := NewAuditService(accessLogDAO, consentDAO, testLimits, clock.Now, logger)

	return &TestSetup{
		MockConsentDAO:   consentDAO,
		MockAccessLogDAO: accessLogDAO,
		Clock:            clock,
		ConsentService:   consents,
		AuditService:     audit,
		Controller:       NewAccessController(consents, audit, clock.Now, nil, logger),
	}
}

// MemorySetup wires the services over the in-memory stores
type MemorySetup struct {
	Consents       *memory.ConsentStore
	AccessLogs     *memory.AccessLogStore
	Clock          *fakeClock
	ConsentService *ConsentService
	AuditService   *AuditService
	Controller     *AccessController
}

func NewMemorySetup() *MemorySetup {
	logger := newTestLogger()
	clock := newFakeClock(testNow)
	consentStore := memory.NewConsentStore()
	logStore := memory.NewAccessLogStore()

	consents := NewConsentService(consentStore, testLimits, clock.Now, nil, logger)
	audit := NewAuditService(logStore, consentStore, testLimits, clock.Now, logger)

	return &MemorySetup{
		Consents:       consentStore,
		AccessLogs:     logStore,
		Clock:          clock,
		ConsentService: consents,
		AuditService:   audit,
		Controller:     NewAccessController(consents, audit, clock.Now, nil, logger),
	}
}

func int64Ptr(v int64) *int64 {
	return &v
}

func strPtr(s string) *string {
	return &s
}
