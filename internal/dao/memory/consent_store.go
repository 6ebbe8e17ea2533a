// Package memory provides process-local implementations of the consent and
// access log DAOs. They back the "memory" database type and end-to-end tests.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/wso2/health-consent-api/internal/models"
)

// ConsentStore keeps consents in a map guarded by a read-write mutex
type ConsentStore struct {
	mu       sync.RWMutex
	consents map[string]models.Consent
}

// NewConsentStore creates an empty consent store
func NewConsentStore() *ConsentStore {
	return &ConsentStore{consents: make(map[string]models.Consent)}
}

// Create stores a new consent and rejects duplicate ids
func (s *ConsentStore) Create(_ context.Context, consent *models.Consent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.consents[consent.ConsentID]; exists {
		return fmt.Errorf("failed to create consent: duplicate id %s", consent.ConsentID)
	}
	s.consents[consent.ConsentID] = *consent
	return nil
}

// GetByID returns nil without error when the consent does not exist
func (s *ConsentStore) GetByID(_ context.Context, consentID string) (*models.Consent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.consents[consentID]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// ListByPair returns every consent, in any status, for the pair
func (s *ConsentStore) ListByPair(_ context.Context, patientID, facilityID string) ([]models.Consent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Consent{}
	for _, c := range s.consents {
		if c.PatientID == patientID && c.FacilityID == facilityID {
			out = append(out, c)
		}
	}
	return out, nil
}

// List returns consents matching filter, newest grant first
func (s *ConsentStore) List(_ context.Context, filter models.ConsentFilter) ([]models.Consent, error) {
	s.mu.RLock()
	out := []models.Consent{}
	now := time.UnixMilli(filter.Now)
	for _, c := range s.consents {
		if filter.PatientID != "" && c.PatientID != filter.PatientID {
			continue
		}
		if filter.FacilityID != "" && c.FacilityID != filter.FacilityID {
			continue
		}
		if filter.Status != nil && c.EffectiveStatus(now) != *filter.Status {
			continue
		}
		out = append(out, c)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b models.Consent) int {
		if c := cmp.Compare(b.GrantedAt, a.GrantedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ConsentID, b.ConsentID)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Revoke returns nil without error when no unrevoked consent with the ID exists
func (s *ConsentStore) Revoke(_ context.Context, consentID string, revokedAt int64, revokedBy string) (*models.Consent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.consents[consentID]
	if !ok || c.RevokedAt != nil {
		return nil, nil
	}
	c.RevokedAt = &revokedAt
	c.RevokedBy = &revokedBy
	s.consents[consentID] = c
	return &c, nil
}

// CountAll returns the number of stored consents
func (s *ConsentStore) CountAll(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.consents)), nil
}

// CountActive returns the number of consents active at now
func (s *ConsentStore) CountActive(_ context.Context, now int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t := time.UnixMilli(now)
	var n int64
	for _, c := range s.consents {
		if c.IsActive(t) {
			n++
		}
	}
	return n, nil
}
