package utils

import (
	"github.com/google/uuid"
)

// GenerateID generates a new random UUID
func GenerateID() string {
	return uuid.New().String()
}

// GenerateConsentID generates a unique consent ID
func GenerateConsentID() string {
	return "CONSENT-" + uuid.New().String()
}

// GenerateLogID generates a unique access log ID. Version 7 UUIDs sort by
// creation time, which keeps entries written in the same millisecond in
// append order.
func GenerateLogID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return "LOG-" + uuid.New().String()
	}
	return "LOG-" + id.String()
}

// IsValidUUID checks if a string is a valid UUID
func IsValidUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
