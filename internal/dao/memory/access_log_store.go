package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/wso2/health-consent-api/internal/models"
)

// AccessLogStore is an append-only list of entries. Nothing removes or
// rewrites an entry once appended.
type AccessLogStore struct {
	mu      sync.RWMutex
	entries []models.AccessLogEntry
}

// NewAccessLogStore creates an empty access log store
func NewAccessLogStore() *AccessLogStore {
	return &AccessLogStore{}
}

// Create appends entry to the log
func (s *AccessLogStore) Create(_ context.Context, entry *models.AccessLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, *entry)
	return nil
}

// List returns entries matching filter, newest first
func (s *AccessLogStore) List(_ context.Context, filter models.AccessLogFilter) ([]models.AccessLogEntry, error) {
	s.mu.RLock()
	out := []models.AccessLogEntry{}
	for _, e := range s.entries {
		if filter.PatientID != "" && e.PatientID != filter.PatientID {
			continue
		}
		if filter.AccessedBy != "" && e.AccessedBy != filter.AccessedBy {
			continue
		}
		if filter.FacilityID != "" && e.FacilityID != filter.FacilityID {
			continue
		}
		if filter.Result != nil && e.Result != *filter.Result {
			continue
		}
		out = append(out, e)
	}
	s.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b models.AccessLogEntry) int {
		if c := cmp.Compare(b.Timestamp, a.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(b.LogID, a.LogID)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Statistics counts entries by result
func (s *AccessLogStore) Statistics(_ context.Context) (*models.AccessLogStatistics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := &models.AccessLogStatistics{Total: int64(len(s.entries))}
	for _, e := range s.entries {
		switch e.Result {
		case models.AccessResultAllowed:
			stats.Allowed++
		case models.AccessResultDenied:
			stats.Denied++
		}
	}
	return stats, nil
}

// Len returns the number of appended entries
func (s *AccessLogStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
