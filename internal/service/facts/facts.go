// Package facts turns record-store rows into typed fact sets, formats
// them deterministically, and validates candidate fact sets against
// ground truth. Formatted output from this package is authoritative:
// the model never generates factual content, at most it restates it.
package facts

import (
	"context"
	"errors"
	"fmt"

	"github.com/carelog/carebot/internal/core"
)

type FactType string

const (
	TypeMedication  FactType = "medication"
	TypeAppointment FactType = "appointment"
)

// Fact is one ground-truth item. Name is the identifying reference;
// Fields holds the remaining attributes keyed by schema name.
type Fact struct {
	Name   string
	Fields map[string]string
}

type FactSet struct {
	SubjectID   string
	SubjectName string
	Type        FactType
	Count       int
	Facts       []Fact
}

// requiredFields lists, per fact type, the fields that must be
// populated for every fact. A row missing one of these is a data
// integrity failure, never papered over with a placeholder.
var requiredFields = map[FactType][]string{
	TypeMedication:  {"dosage", "frequency"},
	TypeAppointment: {"scheduled_at", "status"},
}

type Provider interface {
	Type() FactType
	// Facts returns the complete, deterministically ordered fact set
	// for one subject.
	Facts(ctx context.Context, subjectID string) (FactSet, error)
	// FormatText renders the authoritative deterministic answer.
	FormatText(fs FactSet) string
}

func subjectFor(ctx context.Context, records core.RecordSource, subjectID string) (*core.Patient, error) {
	patient, err := records.PatientByID(ctx, subjectID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, core.ErrSubjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load subject: %w", err)
	}
	return patient, nil
}
