// Package validation checks user-supplied request fields
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"merocare/internal/models"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// DateLayout is the wire format for calendar dates
const DateLayout = "2006-01-02"

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) < 8 {
		return ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	if len(password) > 72 {
		return ValidationError{Field: "password", Message: "password must be at most 72 bytes"}
	}
	return nil
}

// ValidateName checks if a name is valid
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if utf8.RuneCountInString(name) < 2 {
		return ValidationError{Field: "name", Message: "name must be at least 2 characters"}
	}
	if utf8.RuneCountInString(name) > 100 {
		return ValidationError{Field: "name", Message: "name must be at most 100 characters"}
	}
	return nil
}

// ValidateRole checks the label a sender assigns to an invitee
func ValidateRole(role string) error {
	role = strings.TrimSpace(role)
	if role == "" {
		return ValidationError{Field: "role_for_receiver", Message: "role is required"}
	}
	if utf8.RuneCountInString(role) > 50 {
		return ValidationError{Field: "role_for_receiver", Message: "role must be at most 50 characters"}
	}
	return nil
}

// ValidateGender accepts an empty value or one of the known genders
func ValidateGender(gender string) error {
	if strings.TrimSpace(gender) == "" {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(gender)) {
	case models.GenderMale, models.GenderFemale, models.GenderUnspecified, "other":
		return nil
	default:
		return ValidationError{Field: "gender", Message: "gender must be male, female or other"}
	}
}

// ParseDate parses an optional YYYY-MM-DD date. An empty value yields nil.
func ParseDate(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	d, err := time.Parse(DateLayout, value)
	if err != nil {
		return nil, ValidationError{Field: field, Message: "date must be YYYY-MM-DD"}
	}
	return &d, nil
}

// ValidateRequired checks that a free-text field is present
func ValidateRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return ValidationError{Field: field, Message: field + " is required"}
	}
	return nil
}
