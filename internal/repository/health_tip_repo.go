package repository

import (
	"context"
	"fmt"

	"merocare/internal/database"
	"merocare/internal/models"
)

// HealthTipRepository handles database operations for health tips
type HealthTipRepository struct {
	db database.DBTX
}

// NewHealthTipRepository creates a new health tip repository
func NewHealthTipRepository(db database.DBTX) *HealthTipRepository {
	return &HealthTipRepository{db: db}
}

// ListTips returns every tip in id order
func (r *HealthTipRepository) ListTips(ctx context.Context) ([]models.HealthTip, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, title, content FROM health_tips ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query health tips: %w", err)
	}
	defer rows.Close()

	var tips []models.HealthTip
	for rows.Next() {
		var tip models.HealthTip
		if err := rows.Scan(&tip.ID, &tip.Title, &tip.Content); err != nil {
			return nil, fmt.Errorf("failed to scan health tip: %w", err)
		}
		tips = append(tips, tip)
	}
	return tips, rows.Err()
}

// CountTips returns the number of stored tips
func (r *HealthTipRepository) CountTips(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM health_tips").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count health tips: %w", err)
	}
	return n, nil
}

// CreateTip stores a tip and returns its ID
func (r *HealthTipRepository) CreateTip(ctx context.Context, title, content string) (int64, error) {
	id, err := r.db.ExecReturningID(ctx, "INSERT INTO health_tips (title, content) VALUES (?, ?)", title, content)
	if err != nil {
		return 0, fmt.Errorf("failed to create health tip: %w", err)
	}
	return id, nil
}
