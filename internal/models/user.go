package models

import (
	"strings"
	"time"
)

// Gender values stored on a user profile
const (
	GenderMale        = "male"
	GenderFemale      = "female"
	GenderUnspecified = "unspecified"
)

// User represents a MeroCare account
type User struct {
	ID            int64
	Email         string
	FullName      string
	PasswordHash  string
	Gender        string // male, female, unspecified or empty
	DOB           *time.Time
	BloodGroup    string
	FamilyID      *int64
	OAuthProvider string
	OAuthSubject  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasFamily reports whether the user belongs to a family group
func (u *User) HasFamily() bool {
	return u.FamilyID != nil
}

// SameFamily reports whether both users belong to the same family group
func (u *User) SameFamily(other *User) bool {
	return u.HasFamily() && other.HasFamily() && *u.FamilyID == *other.FamilyID
}

// Age returns the user's age in whole years at now, or nil when dob is unknown
func (u *User) Age(now time.Time) *int {
	if u.DOB == nil {
		return nil
	}
	dob := *u.DOB
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return &age
}

// NormalizeGender lowercases a gender value, mapping anything unknown to unspecified
func NormalizeGender(gender string) string {
	switch g := strings.ToLower(strings.TrimSpace(gender)); g {
	case GenderMale, GenderFemale:
		return g
	case "":
		return ""
	default:
		return GenderUnspecified
	}
}
