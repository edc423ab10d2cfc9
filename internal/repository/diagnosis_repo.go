package repository

import (
	"context"
	"database/sql"
	"fmt"

	"merocare/internal/database"
	"merocare/internal/models"
)

const diagnosisColumns = `id, user_id, symptoms, predicted_disease, COALESCE(treatment_advice, ''), urgency,
	COALESCE(full_response, ''), visibility, created_at`

// DiagnosisRepository handles database operations for symptom-checker results
type DiagnosisRepository struct {
	db database.DBTX
}

// NewDiagnosisRepository creates a new diagnosis repository
func NewDiagnosisRepository(db database.DBTX) *DiagnosisRepository {
	return &DiagnosisRepository{db: db}
}

// CreateDiagnosis stores a diagnosis and fills in its ID
func (r *DiagnosisRepository) CreateDiagnosis(ctx context.Context, d *models.Diagnosis) error {
	if d.Visibility == "" {
		d.Visibility = models.VisibilityPrivate
	}
	if d.Urgency == "" {
		d.Urgency = models.UrgencyRoutine
	}

	query := `
		INSERT INTO diagnoses (user_id, symptoms, predicted_disease, treatment_advice, urgency, full_response, visibility)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query, d.UserID, d.Symptoms, d.PredictedDisease,
		d.TreatmentAdvice, d.Urgency, d.FullResponse, d.Visibility)
	if err != nil {
		return fmt.Errorf("failed to create diagnosis: %w", err)
	}

	stored, err := r.GetDiagnosis(ctx, id)
	if err != nil {
		return err
	}
	*d = *stored
	return nil
}

// GetDiagnosis retrieves a diagnosis by ID
func (r *DiagnosisRepository) GetDiagnosis(ctx context.Context, id int64) (*models.Diagnosis, error) {
	query := `SELECT ` + diagnosisColumns + ` FROM diagnoses WHERE id = ?`
	d, err := scanDiagnosis(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get diagnosis: %w", err)
	}
	return d, nil
}

// ListByUser returns a user's diagnoses, newest first
func (r *DiagnosisRepository) ListByUser(ctx context.Context, userID int64) ([]models.Diagnosis, error) {
	query := `SELECT ` + diagnosisColumns + ` FROM diagnoses WHERE user_id = ? ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query, userID)
}

// ListPublicByUser returns the diagnoses a user shares with their family, newest first
func (r *DiagnosisRepository) ListPublicByUser(ctx context.Context, userID int64) ([]models.Diagnosis, error) {
	query := `SELECT ` + diagnosisColumns + ` FROM diagnoses WHERE user_id = ? AND visibility = ? ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query, userID, models.VisibilityPublic)
}

// UpdateVisibility changes whether a diagnosis is shared
func (r *DiagnosisRepository) UpdateVisibility(ctx context.Context, id int64, visibility string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE diagnoses SET visibility = ? WHERE id = ?", visibility, id)
	if err != nil {
		return fmt.Errorf("failed to update visibility: %w", err)
	}
	return nil
}

func (r *DiagnosisRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Diagnosis, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query diagnoses: %w", err)
	}
	defer rows.Close()

	var out []models.Diagnosis
	for rows.Next() {
		d, err := scanDiagnosis(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan diagnosis: %w", err)
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func scanDiagnosis(row rowScanner) (*models.Diagnosis, error) {
	d := &models.Diagnosis{}
	err := row.Scan(
		&d.ID,
		&d.UserID,
		&d.Symptoms,
		&d.PredictedDisease,
		&d.TreatmentAdvice,
		&d.Urgency,
		&d.FullResponse,
		&d.Visibility,
		&d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}
