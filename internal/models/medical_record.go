package models

import "time"

// MedicalRecord is a user-entered history entry such as an illness or appointment
type MedicalRecord struct {
	ID              int64
	UserID          int64
	Illness         string
	DoctorName      string
	HospitalName    string
	AppointmentDate *time.Time
	CreatedAt       time.Time
}

// HealthTip is a short piece of general health advice
type HealthTip struct {
	ID      int64  `yaml:"-"`
	Title   string `yaml:"title"`
	Content string `yaml:"content"`
}
