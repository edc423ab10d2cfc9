package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"merocare/internal/database"
)

// BackupVersion is written into every export
const BackupVersion = "1.0"

// backupTables lists tables in dependency order. Import walks it forwards
// and Clear walks it backwards.
var backupTables = []string{
	"families",
	"users",
	"family_connections",
	"diagnoses",
	"medical_records",
	"health_tips",
}

// BackupData represents the complete database backup structure
type BackupData struct {
	Version        string                `json:"version"`
	ExportedAt     time.Time             `json:"exported_at"`
	DatabaseType   string                `json:"database_type"`
	Families       []FamilyBackup        `json:"families"`
	Users          []UserBackup          `json:"users"`
	Connections    []ConnectionBackup    `json:"connections"`
	Diagnoses      []DiagnosisBackup     `json:"diagnoses"`
	MedicalRecords []MedicalRecordBackup `json:"medical_records"`
	HealthTips     []HealthTipBackup     `json:"health_tips"`
}

// FamilyBackup represents a family group for backup
type FamilyBackup struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// UserBackup represents a user record for backup
type UserBackup struct {
	ID            int64      `json:"id"`
	Email         string     `json:"email"`
	FullName      string     `json:"full_name"`
	PasswordHash  string     `json:"password_hash"`
	Gender        string     `json:"gender"`
	DOB           *time.Time `json:"dob"`
	BloodGroup    string     `json:"blood_group"`
	FamilyID      *int64     `json:"family_id"`
	OAuthProvider string     `json:"oauth_provider"`
	OAuthSubject  string     `json:"oauth_subject"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ConnectionBackup represents a family connection for backup
type ConnectionBackup struct {
	ID             int64     `json:"id"`
	SenderID       int64     `json:"sender_id"`
	ReceiverID     int64     `json:"receiver_id"`
	ReceiverRole   string    `json:"receiver_role"`
	TargetFamilyID int64     `json:"target_family_id"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// DiagnosisBackup represents a stored diagnosis for backup
type DiagnosisBackup struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"user_id"`
	Symptoms         string    `json:"symptoms"`
	PredictedDisease string    `json:"predicted_disease"`
	TreatmentAdvice  string    `json:"treatment_advice"`
	Urgency          string    `json:"urgency"`
	FullResponse     string    `json:"full_response"`
	Visibility       string    `json:"visibility"`
	CreatedAt        time.Time `json:"created_at"`
}

// MedicalRecordBackup represents a medical history entry for backup
type MedicalRecordBackup struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"user_id"`
	Illness         string     `json:"illness"`
	DoctorName      string     `json:"doctor_name"`
	HospitalName    string     `json:"hospital_name"`
	AppointmentDate *time.Time `json:"appointment_date"`
	CreatedAt       time.Time  `json:"created_at"`
}

// HealthTipBackup represents a health tip for backup
type HealthTipBackup struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export writes a complete backup of the database to outputPath
func (s *BackupService) Export(ctx context.Context, outputPath string) (*BackupData, error) {
	file, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	backup, err := s.ExportToWriter(ctx, file)
	if err != nil {
		return nil, err
	}

	slog.Info("Database exported", "path", outputPath,
		"users", len(backup.Users), "families", len(backup.Families),
		"connections", len(backup.Connections), "diagnoses", len(backup.Diagnoses),
		"medical_records", len(backup.MedicalRecords), "health_tips", len(backup.HealthTips))
	return backup, nil
}

// ExportToWriter encodes a complete backup as indented JSON
func (s *BackupService) ExportToWriter(ctx context.Context, w io.Writer) (*BackupData, error) {
	backup, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}
	return backup, nil
}

// Snapshot reads every table into a BackupData
func (s *BackupService) Snapshot(ctx context.Context) (*BackupData, error) {
	backup := &BackupData{
		Version:      BackupVersion,
		ExportedAt:   time.Now().UTC(),
		DatabaseType: s.db.Dialect.DriverName(),
	}

	steps := []struct {
		name string
		fn   func(context.Context, *BackupData) error
	}{
		{"families", s.exportFamilies},
		{"users", s.exportUsers},
		{"connections", s.exportConnections},
		{"diagnoses", s.exportDiagnoses},
		{"medical records", s.exportMedicalRecords},
		{"health tips", s.exportHealthTips},
	}
	for _, step := range steps {
		if err := step.fn(ctx, backup); err != nil {
			return nil, fmt.Errorf("failed to export %s: %w", step.name, err)
		}
	}
	return backup, nil
}

// Import restores a database from a backup file
func (s *BackupService) Import(ctx context.Context, inputPath string) (*BackupData, error) {
	file, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(ctx, file)
}

// ImportFromReader restores a database from JSON read from r. All rows are
// inserted in one transaction.
func (s *BackupService) ImportFromReader(ctx context.Context, r io.Reader) (*BackupData, error) {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return nil, fmt.Errorf("failed to decode backup: %w", err)
	}
	slog.Info("Importing backup", "version", backup.Version, "exported_at", backup.ExportedAt)

	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		steps := []struct {
			name string
			fn   func(context.Context, database.DBTX, *BackupData) error
		}{
			{"families", importFamilies},
			{"users", importUsers},
			{"connections", importConnections},
			{"diagnoses", importDiagnoses},
			{"medical records", importMedicalRecords},
			{"health tips", importHealthTips},
		}
		for _, step := range steps {
			if err := step.fn(ctx, tx, &backup); err != nil {
				return fmt.Errorf("failed to import %s: %w", step.name, err)
			}
		}
		return resetSequences(ctx, tx)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Database import completed")
	return &backup, nil
}

// Clear deletes every row from the backed up tables
func (s *BackupService) Clear(ctx context.Context) error {
	return s.db.WithTx(ctx, func(tx *database.Tx) error {
		for i := len(backupTables) - 1; i >= 0; i-- {
			table := backupTables[i]
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear table %s: %w", table, err)
			}
			slog.Info("Cleared table", "table", table)
		}
		return nil
	})
}

func resetSequences(ctx context.Context, tx database.DBTX) error {
	for _, table := range backupTables {
		query := tx.GetDialect().ResetSequenceQuery(table)
		if query == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to reset sequence for %s: %w", table, err)
		}
	}
	return nil
}

func (s *BackupService) exportFamilies(ctx context.Context, backup *BackupData) error {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, created_at FROM families ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var f FamilyBackup
		if err := rows.Scan(&f.ID, &f.Name, &f.CreatedAt); err != nil {
			return err
		}
		backup.Families = append(backup.Families, f)
	}
	return rows.Err()
}

func (s *BackupService) exportUsers(ctx context.Context, backup *BackupData) error {
	query := `
		SELECT id, email, full_name, password_hash, COALESCE(gender, ''), dob, COALESCE(blood_group, ''),
		       family_id, COALESCE(oauth_provider, ''), COALESCE(oauth_subject, ''), created_at, updated_at
		FROM users ORDER BY id
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var u UserBackup
		var dob sql.NullTime
		var familyID sql.NullInt64
		if err := rows.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.Gender, &dob, &u.BloodGroup,
			&familyID, &u.OAuthProvider, &u.OAuthSubject, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return err
		}
		if dob.Valid {
			u.DOB = &dob.Time
		}
		if familyID.Valid {
			u.FamilyID = &familyID.Int64
		}
		backup.Users = append(backup.Users, u)
	}
	return rows.Err()
}

func (s *BackupService) exportConnections(ctx context.Context, backup *BackupData) error {
	query := `
		SELECT id, sender_id, receiver_id, receiver_role, target_family_id, status, created_at
		FROM family_connections ORDER BY id
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var c ConnectionBackup
		if err := rows.Scan(&c.ID, &c.SenderID, &c.ReceiverID, &c.ReceiverRole, &c.TargetFamilyID, &c.Status, &c.CreatedAt); err != nil {
			return err
		}
		backup.Connections = append(backup.Connections, c)
	}
	return rows.Err()
}

func (s *BackupService) exportDiagnoses(ctx context.Context, backup *BackupData) error {
	query := `
		SELECT id, user_id, symptoms, predicted_disease, COALESCE(treatment_advice, ''), urgency,
		       COALESCE(full_response, ''), visibility, created_at
		FROM diagnoses ORDER BY id
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var d DiagnosisBackup
		if err := rows.Scan(&d.ID, &d.UserID, &d.Symptoms, &d.PredictedDisease, &d.TreatmentAdvice, &d.Urgency,
			&d.FullResponse, &d.Visibility, &d.CreatedAt); err != nil {
			return err
		}
		backup.Diagnoses = append(backup.Diagnoses, d)
	}
	return rows.Err()
}

func (s *BackupService) exportMedicalRecords(ctx context.Context, backup *BackupData) error {
	query := `
		SELECT id, user_id, illness, COALESCE(doctor_name, ''), COALESCE(hospital_name, ''), appointment_date, created_at
		FROM medical_records ORDER BY id
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var m MedicalRecordBackup
		var appointment sql.NullTime
		if err := rows.Scan(&m.ID, &m.UserID, &m.Illness, &m.DoctorName, &m.HospitalName, &appointment, &m.CreatedAt); err != nil {
			return err
		}
		if appointment.Valid {
			m.AppointmentDate = &appointment.Time
		}
		backup.MedicalRecords = append(backup.MedicalRecords, m)
	}
	return rows.Err()
}

func (s *BackupService) exportHealthTips(ctx context.Context, backup *BackupData) error {
	rows, err := s.db.QueryContext(ctx, "SELECT id, title, content FROM health_tips ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var t HealthTipBackup
		if err := rows.Scan(&t.ID, &t.Title, &t.Content); err != nil {
			return err
		}
		backup.HealthTips = append(backup.HealthTips, t)
	}
	return rows.Err()
}

func importFamilies(ctx context.Context, db database.DBTX, backup *BackupData) error {
	for _, f := range backup.Families {
		_, err := db.ExecContext(ctx, "INSERT INTO families (id, name, created_at) VALUES (?, ?, ?)", f.ID, f.Name, f.CreatedAt)
		if err != nil {
			return fmt.Errorf("family %d: %w", f.ID, err)
		}
	}
	return nil
}

func importUsers(ctx context.Context, db database.DBTX, backup *BackupData) error {
	query := `
		INSERT INTO users (id, email, full_name, password_hash, gender, dob, blood_group, family_id,
		                   oauth_provider, oauth_subject, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, u := range backup.Users {
		_, err := db.ExecContext(ctx, query, u.ID, u.Email, u.FullName, u.PasswordHash,
			nullIfEmpty(u.Gender), nullIfNilTime(u.DOB), nullIfEmpty(u.BloodGroup), nullIfNilID(u.FamilyID),
			nullIfEmpty(u.OAuthProvider), nullIfEmpty(u.OAuthSubject), u.CreatedAt, u.UpdatedAt)
		if err != nil {
			return fmt.Errorf("user %d: %w", u.ID, err)
		}
	}
	return nil
}

func importConnections(ctx context.Context, db database.DBTX, backup *BackupData) error {
	query := `
		INSERT INTO family_connections (id, sender_id, receiver_id, receiver_role, target_family_id, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	for _, c := range backup.Connections {
		_, err := db.ExecContext(ctx, query, c.ID, c.SenderID, c.ReceiverID, c.ReceiverRole, c.TargetFamilyID, c.Status, c.CreatedAt)
		if err != nil {
			return fmt.Errorf("connection %d: %w", c.ID, err)
		}
	}
	return nil
}

func importDiagnoses(ctx context.Context, db database.DBTX, backup *BackupData) error {
	query := `
		INSERT INTO diagnoses (id, user_id, symptoms, predicted_disease, treatment_advice, urgency, full_response, visibility, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, d := range backup.Diagnoses {
		_, err := db.ExecContext(ctx, query, d.ID, d.UserID, d.Symptoms, d.PredictedDisease,
			nullIfEmpty(d.TreatmentAdvice), d.Urgency, nullIfEmpty(d.FullResponse), d.Visibility, d.CreatedAt)
		if err != nil {
			return fmt.Errorf("diagnosis %d: %w", d.ID, err)
		}
	}
	return nil
}

func importMedicalRecords(ctx context.Context, db database.DBTX, backup *BackupData) error {
	query := `
		INSERT INTO medical_records (id, user_id, illness, doctor_name, hospital_name, appointment_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	for _, m := range backup.MedicalRecords {
		_, err := db.ExecContext(ctx, query, m.ID, m.UserID, m.Illness, nullIfEmpty(m.DoctorName),
			nullIfEmpty(m.HospitalName), nullIfNilTime(m.AppointmentDate), m.CreatedAt)
		if err != nil {
			return fmt.Errorf("medical record %d: %w", m.ID, err)
		}
	}
	return nil
}

func importHealthTips(ctx context.Context, db database.DBTX, backup *BackupData) error {
	for _, t := range backup.HealthTips {
		_, err := db.ExecContext(ctx, "INSERT INTO health_tips (id, title, content) VALUES (?, ?, ?)", t.ID, t.Title, t.Content)
		if err != nil {
			return fmt.Errorf("health tip %d: %w", t.ID, err)
		}
	}
	return nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullIfNilTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

func nullIfNilID(id *int64) interface{} {
	if id == nil {
		return nil
	}
	return *id
}
