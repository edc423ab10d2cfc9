package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"merocare/internal/database"
	"merocare/internal/models"
)

// FamilyRepository handles database operations for family groups and the
// connections between their members
type FamilyRepository struct {
	db database.DBTX
}

// NewFamilyRepository creates a new family repository
func NewFamilyRepository(db database.DBTX) *FamilyRepository {
	return &FamilyRepository{db: db}
}

// WithTx returns a repository bound to a transaction
func (r *FamilyRepository) WithTx(tx database.DBTX) *FamilyRepository {
	return &FamilyRepository{db: tx}
}

// CreateFamily creates a new family group
func (r *FamilyRepository) CreateFamily(ctx context.Context, name string) (*models.Family, error) {
	id, err := r.db.ExecReturningID(ctx, "INSERT INTO families (name) VALUES (?)", name)
	if err != nil {
		return nil, fmt.Errorf("failed to create family: %w", err)
	}
	return r.GetFamilyByID(ctx, id)
}

// GetFamilyByID retrieves a family by ID
func (r *FamilyRepository) GetFamilyByID(ctx context.Context, familyID int64) (*models.Family, error) {
	family := &models.Family{}
	err := r.db.QueryRowContext(ctx, "SELECT id, name, created_at FROM families WHERE id = ?", familyID).
		Scan(&family.ID, &family.Name, &family.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}
	return family, nil
}

const connectionColumns = `c.id, c.sender_id, c.receiver_id, c.receiver_role, c.target_family_id, c.status, c.created_at,
	s.full_name, rc.full_name`

const connectionFrom = `
	FROM family_connections c
	INNER JOIN users s ON s.id = c.sender_id
	INNER JOIN users rc ON rc.id = c.receiver_id
`

// CreateConnection stores a pending invite. A repeat of the same sender,
// receiver and family yields ErrDuplicate.
func (r *FamilyRepository) CreateConnection(ctx context.Context, senderID, receiverID, familyID int64, role string) (*models.FamilyConnection, error) {
	query := `
		INSERT INTO family_connections (sender_id, receiver_id, receiver_role, target_family_id, status)
		VALUES (?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query, senderID, receiverID, role, familyID, models.ConnectionPending)
	if err != nil {
		if err = wrapUnique(r.db, err); errors.Is(err, ErrDuplicate) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create connection: %w", err)
	}
	return r.GetConnection(ctx, id)
}

// GetConnection retrieves a connection by ID
func (r *FamilyRepository) GetConnection(ctx context.Context, id int64) (*models.FamilyConnection, error) {
	query := `SELECT ` + connectionColumns + connectionFrom + `WHERE c.id = ?`
	conn, err := scanConnection(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}
	return conn, nil
}

// ConnectionExists reports whether sender already invited receiver into the family
func (r *FamilyRepository) ConnectionExists(ctx context.Context, senderID, receiverID, familyID int64) (bool, error) {
	query := `SELECT COUNT(*) FROM family_connections WHERE sender_id = ? AND receiver_id = ? AND target_family_id = ?`
	var count int
	if err := r.db.QueryRowContext(ctx, query, senderID, receiverID, familyID).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check connection: %w", err)
	}
	return count > 0, nil
}

// ListPendingForReceiver returns invites waiting on the receiver, oldest first
func (r *FamilyRepository) ListPendingForReceiver(ctx context.Context, receiverID int64) ([]models.FamilyConnection, error) {
	query := `SELECT ` + connectionColumns + connectionFrom + `WHERE c.receiver_id = ? AND c.status = ? ORDER BY c.id`
	return r.listConnections(ctx, query, receiverID, models.ConnectionPending)
}

// ListSentBy returns every invite the sender created, oldest first
func (r *FamilyRepository) ListSentBy(ctx context.Context, senderID int64) ([]models.FamilyConnection, error) {
	query := `SELECT ` + connectionColumns + connectionFrom + `WHERE c.sender_id = ? ORDER BY c.id`
	return r.listConnections(ctx, query, senderID)
}

// ListAcceptedConnections returns the accepted connections of a family
// group in ascending id order
func (r *FamilyRepository) ListAcceptedConnections(ctx context.Context, familyID int64) ([]models.FamilyConnection, error) {
	query := `SELECT ` + connectionColumns + connectionFrom + `WHERE c.target_family_id = ? AND c.status = ? ORDER BY c.id`
	return r.listConnections(ctx, query, familyID, models.ConnectionAccepted)
}

// UpdateConnectionStatus sets the status of a connection
func (r *FamilyRepository) UpdateConnectionStatus(ctx context.Context, id int64, status string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE family_connections SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return fmt.Errorf("failed to update connection: %w", err)
	}
	return nil
}

// DeleteConnection removes a connection
func (r *FamilyRepository) DeleteConnection(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM family_connections WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete connection: %w", err)
	}
	return nil
}

func (r *FamilyRepository) listConnections(ctx context.Context, query string, args ...interface{}) ([]models.FamilyConnection, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query connections: %w", err)
	}
	defer rows.Close()

	var conns []models.FamilyConnection
	for rows.Next() {
		conn, err := scanConnection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan connection: %w", err)
		}
		conns = append(conns, *conn)
	}
	return conns, rows.Err()
}

func scanConnection(row rowScanner) (*models.FamilyConnection, error) {
	c := &models.FamilyConnection{}
	err := row.Scan(
		&c.ID,
		&c.SenderID,
		&c.ReceiverID,
		&c.ReceiverRole,
		&c.TargetFamilyID,
		&c.Status,
		&c.CreatedAt,
		&c.SenderName,
		&c.ReceiverName,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}
