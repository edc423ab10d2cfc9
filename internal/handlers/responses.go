package handlers

import (
	"time"

	"merocare/internal/models"
	"merocare/internal/validation"
)

type userResponse struct {
	ID         int64     `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"full_name"`
	Gender     string    `json:"gender,omitempty"`
	DOB        *string   `json:"dob"`
	Age        *int      `json:"age"`
	BloodGroup string    `json:"blood_group,omitempty"`
	FamilyID   *int64    `json:"family_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func newUserResponse(u *models.User, now time.Time) userResponse {
	return userResponse{
		ID:         u.ID,
		Email:      u.Email,
		FullName:   u.FullName,
		Gender:     u.Gender,
		DOB:        formatDate(u.DOB),
		Age:        u.Age(now),
		BloodGroup: u.BloodGroup,
		FamilyID:   u.FamilyID,
		CreatedAt:  u.CreatedAt,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      int64  `json:"user_id"`
}

type familyMemberResponse struct {
	userResponse
	Role string `json:"role"`
}

type pendingInviteResponse struct {
	InviteID     int64     `json:"invite_id"`
	FromName     string    `json:"from_name"`
	AssignedRole string    `json:"assigned_role"`
	SentAt       time.Time `json:"sent_at"`
}

type sentInviteResponse struct {
	InviteID     int64  `json:"invite_id"`
	ToName       string `json:"to_name"`
	Status       string `json:"status"`
	AssignedRole string `json:"assigned_role"`
}

type diagnosisResponse struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"user_id"`
	Symptoms         string    `json:"symptoms"`
	PredictedDisease string    `json:"predicted_disease"`
	TreatmentAdvice  string    `json:"treatment_advice"`
	Urgency          string    `json:"urgency"`
	Visibility       string    `json:"visibility"`
	CreatedAt        time.Time `json:"created_at"`
}

func newDiagnosisResponse(d *models.Diagnosis) diagnosisResponse {
	return diagnosisResponse{
		ID:               d.ID,
		UserID:           d.UserID,
		Symptoms:         d.Symptoms,
		PredictedDisease: d.PredictedDisease,
		TreatmentAdvice:  d.TreatmentAdvice,
		Urgency:          d.Urgency,
		Visibility:       d.Visibility,
		CreatedAt:        d.CreatedAt,
	}
}

func newDiagnosisList(list []models.Diagnosis) []diagnosisResponse {
	out := make([]diagnosisResponse, len(list))
	for i := range list {
		out[i] = newDiagnosisResponse(&list[i])
	}
	return out
}

type medicalRecordResponse struct {
	ID              int64     `json:"id"`
	Illness         string    `json:"illness"`
	DoctorName      string    `json:"doctor_name,omitempty"`
	HospitalName    string    `json:"hospital_name,omitempty"`
	AppointmentDate *string   `json:"appointment_date"`
	CreatedAt       time.Time `json:"created_at"`
}

func newMedicalRecordResponse(rec *models.MedicalRecord) medicalRecordResponse {
	return medicalRecordResponse{
		ID:              rec.ID,
		Illness:         rec.Illness,
		DoctorName:      rec.DoctorName,
		HospitalName:    rec.HospitalName,
		AppointmentDate: formatDate(rec.AppointmentDate),
		CreatedAt:       rec.CreatedAt,
	}
}

type healthTipResponse struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(validation.DateLayout)
	return &s
}
