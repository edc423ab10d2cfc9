package models

import "time"

// Diagnosis visibility. Public diagnoses are shared with the family group.
const (
	VisibilityPrivate = "private"
	VisibilityPublic  = "public"
)

// Urgency levels returned by the symptom checker
const (
	UrgencyRoutine   = "ROUTINE"
	UrgencyUrgent    = "URGENT"
	UrgencyEmergency = "EMERGENCY"
)

// Diagnosis is a stored symptom-checker result
type Diagnosis struct {
	ID               int64
	UserID           int64
	Symptoms         string
	PredictedDisease string
	TreatmentAdvice  string
	Urgency          string
	FullResponse     string
	Visibility       string
	CreatedAt        time.Time
}

// IsPublic reports whether family members may see the diagnosis
func (d *Diagnosis) IsPublic() bool {
	return d.Visibility == VisibilityPublic
}

// IsValidVisibility reports whether v is a known visibility value
func IsValidVisibility(v string) bool {
	return v == VisibilityPrivate || v == VisibilityPublic
}
