package utils

import (
	"fmt"
	"strings"
)

// MaxIdentifierLength bounds ids stored in VARCHAR(255) columns
const MaxIdentifierLength = 255

// ValidateConsentID validates consent ID format
func ValidateConsentID(consentID string) error {
	return ValidateIdentifier("consent ID", consentID)
}

// ValidateIdentifier validates a required identifier such as a patient or facility ID
func ValidateIdentifier(fieldName, value string) error {
	if err := ValidateRequired(fieldName, value); err != nil {
		return err
	}
	return ValidateMaxLength(fieldName, value, MaxIdentifierLength)
}

// SanitizeString removes dangerous characters from user input
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")
	return strings.TrimSpace(input)
}

// ValidateRequired validates that a field is not empty
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ValidateMaxLength validates maximum string length
func ValidateMaxLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%s exceeds maximum length of %d characters", fieldName, maxLength)
	}
	return nil
}
