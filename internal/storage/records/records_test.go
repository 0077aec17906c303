package records

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/carelog/carebot/internal/core"
)

const recordsSchema = `
CREATE TABLE patients (
    id            TEXT PRIMARY KEY,
    first_name    TEXT NOT NULL,
    last_name     TEXT NOT NULL,
    date_of_birth TIMESTAMP
);
CREATE TABLE medications (
    id           TEXT PRIMARY KEY,
    patient_id   TEXT NOT NULL REFERENCES patients(id),
    name         TEXT NOT NULL,
    dosage       TEXT NOT NULL,
    frequency    TEXT NOT NULL,
    instructions TEXT
);
CREATE TABLE appointments (
    id           TEXT PRIMARY KEY,
    patient_id   TEXT NOT NULL REFERENCES patients(id),
    title        TEXT NOT NULL,
    provider     TEXT,
    scheduled_at TIMESTAMP NOT NULL,
    location     TEXT,
    status       TEXT NOT NULL
);
`

func testStore(t *testing.T) *Store {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.Exec(recordsSchema); err != nil {
		t.Fatalf("schema: %v", err)
	}

	seed := []string{
		`INSERT INTO patients (id, first_name, last_name) VALUES
		    ('p-1', 'Alice', 'Smith'),
		    ('p-2', 'Alice', 'Jones'),
		    ('p-3', 'Bob', 'Lee')`,
		`INSERT INTO medications (id, patient_id, name, dosage, frequency, instructions) VALUES
		    ('m-1', 'p-1', 'Lisinopril', '10 mg', 'once daily', NULL),
		    ('m-2', 'p-1', 'Amoxicillin', '500 mg', 'three times daily', 'with meals')`,
		`INSERT INTO appointments (id, patient_id, title, provider, scheduled_at, location, status) VALUES
		    ('a-2', 'p-1', 'Cardiology follow-up', 'Dr. Chen', '2026-09-20 14:30:00+00:00', NULL, 'scheduled'),
		    ('a-1', 'p-1', 'Annual physical', NULL, '2026-09-05 09:00:00+00:00', 'Main Clinic', 'scheduled')`,
	}
	for _, stmt := range seed {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	return NewStore(db)
}

func TestPatientByID(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	p, err := s.PatientByID(ctx, "p-1")
	if err != nil {
		t.Fatalf("PatientByID: %v", err)
	}
	if p.FullName() != "Alice Smith" {
		t.Fatalf("full name = %q", p.FullName())
	}

	if _, err := s.PatientByID(ctx, "nope"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("missing patient = %v, want ErrNotFound", err)
	}
}

func TestPatientsByNameExactOnly(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		want []string
	}{
		{"Alice", []string{"p-2", "p-1"}}, // two Alices, ordered by last name
		{"alice smith", []string{"p-1"}},  // full name narrows, case-insensitive
		{"Bob", []string{"p-3"}},
		{"Alic", nil}, // a near-miss must not resolve
		{"", nil},
	}

	for _, tt := range tests {
		got, err := s.PatientsByName(ctx, tt.name)
		if err != nil {
			t.Fatalf("PatientsByName(%q): %v", tt.name, err)
		}
		if len(got) != len(tt.want) {
			t.Fatalf("PatientsByName(%q) returned %d patients, want %d", tt.name, len(got), len(tt.want))
		}
		for i := range got {
			if got[i].ID != tt.want[i] {
				t.Fatalf("PatientsByName(%q)[%d] = %s, want %s", tt.name, i, got[i].ID, tt.want[i])
			}
		}
	}
}

func TestMedicationsOrderedByName(t *testing.T) {
	s := testStore(t)

	meds, err := s.MedicationsByPatient(context.Background(), "p-1")
	if err != nil {
		t.Fatalf("MedicationsByPatient: %v", err)
	}
	if len(meds) != 2 || meds[0].Name != "Amoxicillin" || meds[1].Name != "Lisinopril" {
		t.Fatalf("unexpected order: %+v", meds)
	}
	if meds[0].Instructions != "with meals" {
		t.Fatalf("instructions = %q", meds[0].Instructions)
	}
	if meds[1].Instructions != "" {
		t.Fatalf("NULL instructions should scan empty, got %q", meds[1].Instructions)
	}
}

func TestAppointmentsOrderedByTime(t *testing.T) {
	s := testStore(t)

	appts, err := s.AppointmentsByPatient(context.Background(), "p-1")
	if err != nil {
		t.Fatalf("AppointmentsByPatient: %v", err)
	}
	if len(appts) != 2 {
		t.Fatalf("got %d appointments, want 2", len(appts))
	}
	if appts[0].ID != "a-1" || appts[1].ID != "a-2" {
		t.Fatalf("order = [%s %s], want [a-1 a-2]", appts[0].ID, appts[1].ID)
	}
	if !appts[0].ScheduledAt.Before(appts[1].ScheduledAt) {
		t.Fatal("appointments not sorted by scheduled time")
	}
	if appts[0].ScheduledAt.UTC().Day() != 5 || appts[0].ScheduledAt.UTC().Month() != time.September {
		t.Fatalf("scheduled_at = %v", appts[0].ScheduledAt)
	}
}
