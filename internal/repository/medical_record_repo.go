package repository

import (
	"context"
	"database/sql"
	"fmt"

	"merocare/internal/database"
	"merocare/internal/models"
)

const medicalRecordColumns = `id, user_id, illness, COALESCE(doctor_name, ''), COALESCE(hospital_name, ''), appointment_date, created_at`

// MedicalRecordRepository handles database operations for medical history entries
type MedicalRecordRepository struct {
	db database.DBTX
}

// NewMedicalRecordRepository creates a new medical record repository
func NewMedicalRecordRepository(db database.DBTX) *MedicalRecordRepository {
	return &MedicalRecordRepository{db: db}
}

// CreateRecord stores a record and fills in its ID
func (r *MedicalRecordRepository) CreateRecord(ctx context.Context, rec *models.MedicalRecord) error {
	query := `
		INSERT INTO medical_records (user_id, illness, doctor_name, hospital_name, appointment_date)
		VALUES (?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query, rec.UserID, rec.Illness,
		nullString(rec.DoctorName), nullString(rec.HospitalName), nullTime(rec.AppointmentDate))
	if err != nil {
		return fmt.Errorf("failed to create medical record: %w", err)
	}

	stored, err := r.GetRecord(ctx, id)
	if err != nil {
		return err
	}
	*rec = *stored
	return nil
}

// GetRecord retrieves a record by ID
func (r *MedicalRecordRepository) GetRecord(ctx context.Context, id int64) (*models.MedicalRecord, error) {
	query := `SELECT ` + medicalRecordColumns + ` FROM medical_records WHERE id = ?`
	rec, err := scanMedicalRecord(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get medical record: %w", err)
	}
	return rec, nil
}

// ListByUser returns a user's records, newest first
func (r *MedicalRecordRepository) ListByUser(ctx context.Context, userID int64) ([]models.MedicalRecord, error) {
	query := `SELECT ` + medicalRecordColumns + ` FROM medical_records WHERE user_id = ? ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query, userID)
}

// DeleteRecord removes a record owned by userID. It reports whether a row was deleted.
func (r *MedicalRecordRepository) DeleteRecord(ctx context.Context, id, userID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM medical_records WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete medical record: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete medical record: %w", err)
	}
	return n > 0, nil
}

func (r *MedicalRecordRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.MedicalRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query medical records: %w", err)
	}
	defer rows.Close()

	var out []models.MedicalRecord
	for rows.Next() {
		rec, err := scanMedicalRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan medical record: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func scanMedicalRecord(row rowScanner) (*models.MedicalRecord, error) {
	rec := &models.MedicalRecord{}
	var appointment sql.NullTime
	err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.Illness,
		&rec.DoctorName,
		&rec.HospitalName,
		&appointment,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if appointment.Valid {
		d := appointment.Time
		rec.AppointmentDate = &d
	}
	return rec, nil
}
