// Package records is the read-only accessor over the externally owned
// patient record schema. It never writes; the schema and its
// migrations belong to the record service.
package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/carelog/carebot/internal/core"
)

type Store struct {
	db *sql.DB
}

// NewStore wraps an existing handle. Useful for tests.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open opens the record database read-only.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open record store: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping record store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) PatientByID(ctx context.Context, id string) (*core.Patient, error) {
	query := `SELECT id, first_name, last_name, date_of_birth FROM patients WHERE id = ?`

	var (
		p   core.Patient
		dob sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.FirstName, &p.LastName, &dob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query patient: %w", err)
	}
	if dob.Valid {
		p.DateOfBirth = &dob.Time
	}
	return &p, nil
}

func (s *Store) PatientsByName(ctx context.Context, name string) ([]core.Patient, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	// Exact match on first name or full name, case-insensitive. Fuzzy
	// matching is deliberately absent: a near-miss must not resolve.
	query := `SELECT id, first_name, last_name, date_of_birth FROM patients
	          WHERE lower(first_name) = lower(?)
	             OR lower(first_name || ' ' || last_name) = lower(?)
	          ORDER BY last_name, first_name`

	rows, err := s.db.QueryContext(ctx, query, name, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query patients by name: %w", err)
	}
	defer rows.Close()

	var patients []core.Patient
	for rows.Next() {
		var (
			p   core.Patient
			dob sql.NullTime
		)
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &dob); err != nil {
			return nil, fmt.Errorf("failed to scan patient: %w", err)
		}
		if dob.Valid {
			p.DateOfBirth = &dob.Time
		}
		patients = append(patients, p)
	}
	return patients, rows.Err()
}

func (s *Store) MedicationsByPatient(ctx context.Context, patientID string) ([]core.Medication, error) {
	query := `SELECT id, patient_id, name, dosage, frequency, instructions FROM medications
	          WHERE patient_id = ? ORDER BY name ASC`

	rows, err := s.db.QueryContext(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query medications: %w", err)
	}
	defer rows.Close()

	var meds []core.Medication
	for rows.Next() {
		var (
			m            core.Medication
			instructions sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.PatientID, &m.Name, &m.Dosage, &m.Frequency, &instructions); err != nil {
			return nil, fmt.Errorf("failed to scan medication: %w", err)
		}
		m.Instructions = instructions.String
		meds = append(meds, m)
	}
	return meds, rows.Err()
}

func (s *Store) AppointmentsByPatient(ctx context.Context, patientID string) ([]core.Appointment, error) {
	query := `SELECT id, patient_id, title, provider, scheduled_at, location, status FROM appointments
	          WHERE patient_id = ? ORDER BY scheduled_at ASC`

	rows, err := s.db.QueryContext(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query appointments: %w", err)
	}
	defer rows.Close()

	var appts []core.Appointment
	for rows.Next() {
		var (
			a        core.Appointment
			provider sql.NullString
			location sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.PatientID, &a.Title, &provider, &a.ScheduledAt, &location, &a.Status); err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		a.Provider = provider.String
		a.Location = location.String
		appts = append(appts, a)
	}
	return appts, rows.Err()
}
