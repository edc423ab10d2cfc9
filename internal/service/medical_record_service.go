package service

import (
	"context"
	"strings"

	"merocare/internal/models"
	"merocare/internal/repository"
	"merocare/internal/validation"
)

// MedicalRecordService manages user-entered medical history
type MedicalRecordService struct {
	recordRepo *repository.MedicalRecordRepository
}

// NewMedicalRecordService creates a new medical record service
func NewMedicalRecordService(recordRepo *repository.MedicalRecordRepository) *MedicalRecordService {
	return &MedicalRecordService{recordRepo: recordRepo}
}

// RecordInput carries the fields of a new medical record
type RecordInput struct {
	Illness         string
	DoctorName      string
	HospitalName    string
	AppointmentDate string
}

// Create stores a record for the user
func (s *MedicalRecordService) Create(ctx context.Context, userID int64, in RecordInput) (*models.MedicalRecord, error) {
	illness := strings.TrimSpace(in.Illness)
	if err := validation.ValidateRequired("illness", illness); err != nil {
		return nil, err
	}
	appointment, err := validation.ParseDate("appointment_date", in.AppointmentDate)
	if err != nil {
		return nil, err
	}

	rec := &models.MedicalRecord{
		UserID:          userID,
		Illness:         illness,
		DoctorName:      strings.TrimSpace(in.DoctorName),
		HospitalName:    strings.TrimSpace(in.HospitalName),
		AppointmentDate: appointment,
	}
	if err := s.recordRepo.CreateRecord(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// List returns the user's records, newest first
func (s *MedicalRecordService) List(ctx context.Context, userID int64) ([]models.MedicalRecord, error) {
	return s.recordRepo.ListByUser(ctx, userID)
}

// Delete removes one of the user's records
func (s *MedicalRecordService) Delete(ctx context.Context, userID, recordID int64) error {
	deleted, err := s.recordRepo.DeleteRecord(ctx, recordID, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrRecordNotFound
	}
	return nil
}
