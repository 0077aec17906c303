package core

import (
	"context"
	"strings"
	"time"
)

// Patient is a subject in the external record store.
type Patient struct {
	ID          string     `json:"id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
}

func (p Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Medication belongs to exactly one patient. Fields are populated or
// empty, never placeholder strings.
type Medication struct {
	ID           string `json:"id"`
	PatientID    string `json:"patient_id"`
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency"`
	Instructions string `json:"instructions,omitempty"`
}

// Appointment belongs to exactly one patient.
type Appointment struct {
	ID          string    `json:"id"`
	PatientID   string    `json:"patient_id"`
	Title       string    `json:"title"`
	Provider    string    `json:"provider,omitempty"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Location    string    `json:"location,omitempty"`
	Status      string    `json:"status"`
}

// RecordSource is the read-only ground-truth accessor. The record
// store is owned elsewhere; nothing in this module writes to it.
type RecordSource interface {
	PatientByID(ctx context.Context, id string) (*Patient, error)
	// PatientsByName matches first name or full name,
	// case-insensitively, exact.
	PatientsByName(ctx context.Context, name string) ([]Patient, error)
	// MedicationsByPatient returns medications ordered by name asc.
	MedicationsByPatient(ctx context.Context, patientID string) ([]Medication, error)
	// AppointmentsByPatient returns appointments ordered by scheduled
	// time asc.
	AppointmentsByPatient(ctx context.Context, patientID string) ([]Appointment, error)
}
