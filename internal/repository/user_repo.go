package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"merocare/internal/database"
	"merocare/internal/models"
)

const userColumns = `id, email, full_name, password_hash, COALESCE(gender, ''), dob, COALESCE(blood_group, ''),
	family_id, COALESCE(oauth_provider, ''), COALESCE(oauth_subject, ''), created_at, updated_at`

// UserRepository handles database operations for users
type UserRepository struct {
	db database.DBTX
}

// NewUserRepository creates a new user repository
func NewUserRepository(db database.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// WithTx returns a repository bound to a transaction
func (r *UserRepository) WithTx(tx database.DBTX) *UserRepository {
	return &UserRepository{db: tx}
}

// NewUser holds the fields required to create an account
type NewUser struct {
	Email        string
	FullName     string
	PasswordHash string
	Gender       string
	DOB          *time.Time
	BloodGroup   string
}

// CreateUser inserts a new user. A taken email yields ErrDuplicate.
func (r *UserRepository) CreateUser(ctx context.Context, u NewUser) (*models.User, error) {
	query := `
		INSERT INTO users (email, full_name, password_hash, gender, dob, blood_group)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query, u.Email, u.FullName, u.PasswordHash,
		nullString(u.Gender), nullTime(u.DOB), nullString(u.BloodGroup))
	if err != nil {
		if err = wrapUnique(r.db, err); errors.Is(err, ErrDuplicate) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return r.GetUserByID(ctx, id)
}

// GetUserByEmail retrieves a user by email address
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	return r.getOne(ctx, query, email)
}

// GetUserByID retrieves a user by ID
func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return r.getOne(ctx, query, id)
}

// GetUserByOAuth retrieves a user by linked provider identity
func (r *UserRepository) GetUserByOAuth(ctx context.Context, provider, subject string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE oauth_provider = ? AND oauth_subject = ?`
	return r.getOne(ctx, query, provider, subject)
}

// ListUsers returns a page of users ordered by id
func (r *UserRepository) ListUsers(ctx context.Context, skip, limit int) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id LIMIT ? OFFSET ?`
	return r.list(ctx, query, limit, skip)
}

// ListUsersInFamily returns every member of a family group in ascending id order
func (r *UserRepository) ListUsersInFamily(ctx context.Context, familyID int64) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE family_id = ? ORDER BY id`
	return r.list(ctx, query, familyID)
}

// ProfileUpdate carries the editable profile fields. Nil fields are left unchanged.
type ProfileUpdate struct {
	FullName   *string
	Gender     *string
	DOB        *time.Time
	BloodGroup *string
}

// UpdateProfile applies a partial profile update
func (r *UserRepository) UpdateProfile(ctx context.Context, userID int64, p ProfileUpdate) error {
	var fullName, gender, bloodGroup sql.NullString
	if p.FullName != nil {
		fullName = sql.NullString{String: *p.FullName, Valid: true}
	}
	if p.Gender != nil {
		gender = sql.NullString{String: *p.Gender, Valid: true}
	}
	if p.BloodGroup != nil {
		bloodGroup = sql.NullString{String: *p.BloodGroup, Valid: true}
	}

	query := `
		UPDATE users
		SET full_name = COALESCE(?, full_name),
		    gender = COALESCE(?, gender),
		    dob = COALESCE(?, dob),
		    blood_group = COALESCE(?, blood_group),
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	_, err := r.db.ExecContext(ctx, query, fullName, gender, nullTime(p.DOB), bloodGroup, userID)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

// SetFamilyIfEmpty assigns a family group to a user who has none. It
// reports whether the assignment happened.
func (r *UserRepository) SetFamilyIfEmpty(ctx context.Context, userID, familyID int64) (bool, error) {
	query := `UPDATE users SET family_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND family_id IS NULL`
	result, err := r.db.ExecContext(ctx, query, familyID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to set family: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to set family: %w", err)
	}
	return n > 0, nil
}

// LinkOAuthProvider links an existing user to a provider identity
func (r *UserRepository) LinkOAuthProvider(ctx context.Context, userID int64, provider, subject string) error {
	query := `UPDATE users SET oauth_provider = ?, oauth_subject = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, provider, subject, userID)
	if err != nil {
		return fmt.Errorf("failed to link oauth provider: %w", err)
	}
	return nil
}

// CreateOAuthUser inserts a user who signs in only through a provider
func (r *UserRepository) CreateOAuthUser(ctx context.Context, email, fullName, provider, subject string) (*models.User, error) {
	query := `
		INSERT INTO users (email, full_name, password_hash, oauth_provider, oauth_subject)
		VALUES (?, ?, '', ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query, email, fullName, provider, subject)
	if err != nil {
		if err = wrapUnique(r.db, err); errors.Is(err, ErrDuplicate) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create oauth user: %w", err)
	}
	return r.GetUserByID(ctx, id)
}

func (r *UserRepository) getOne(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	var dob sql.NullTime
	var familyID sql.NullInt64
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.FullName,
		&user.PasswordHash,
		&user.Gender,
		&dob,
		&user.BloodGroup,
		&familyID,
		&user.OAuthProvider,
		&user.OAuthSubject,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if dob.Valid {
		d := dob.Time
		user.DOB = &d
	}
	if familyID.Valid {
		id := familyID.Int64
		user.FamilyID = &id
	}
	return user, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
