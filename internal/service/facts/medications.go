package facts

import (
	"context"
	"fmt"
	"strings"

	"github.com/carelog/carebot/internal/core"
)

type MedicationProvider struct {
	records core.RecordSource
}

func NewMedicationProvider(records core.RecordSource) *MedicationProvider {
	return &MedicationProvider{records: records}
}

func (p *MedicationProvider) Type() FactType {
	return TypeMedication
}

func (p *MedicationProvider) Facts(ctx context.Context, subjectID string) (FactSet, error) {
	patient, err := subjectFor(ctx, p.records, subjectID)
	if err != nil {
		return FactSet{}, err
	}

	meds, err := p.records.MedicationsByPatient(ctx, subjectID)
	if err != nil {
		return FactSet{}, fmt.Errorf("load medications: %w", err)
	}

	fs := FactSet{
		SubjectID:   subjectID,
		SubjectName: patient.FullName(),
		Type:        TypeMedication,
		Count:       len(meds),
	}

	for _, m := range meds {
		if m.Name == "" {
			return FactSet{}, fmt.Errorf("medication %s for subject %s: empty name", m.ID, subjectID)
		}
		fields := map[string]string{
			"dosage":    m.Dosage,
			"frequency": m.Frequency,
		}
		if m.Instructions != "" {
			fields["instructions"] = m.Instructions
		}
		for _, req := range requiredFields[TypeMedication] {
			if fields[req] == "" {
				return FactSet{}, fmt.Errorf("medication %q for subject %s: missing required field %q", m.Name, subjectID, req)
			}
		}
		fs.Facts = append(fs.Facts, Fact{Name: m.Name, Fields: fields})
	}

	return fs, nil
}

func (p *MedicationProvider) FormatText(fs FactSet) string {
	if fs.Count == 0 {
		return fmt.Sprintf("%s has no medications on record.", fs.SubjectName)
	}

	var b strings.Builder
	plural := "medications"
	if fs.Count == 1 {
		plural = "medication"
	}
	fmt.Fprintf(&b, "%s has %d %s on record:\n", fs.SubjectName, fs.Count, plural)

	for _, f := range fs.Facts {
		fmt.Fprintf(&b, "- %s: %s, %s", f.Name, f.Fields["dosage"], f.Fields["frequency"])
		if instr := f.Fields["instructions"]; instr != "" {
			fmt.Fprintf(&b, " (%s)", instr)
		}
		b.WriteByte('\n')
	}

	return strings.TrimRight(b.String(), "\n")
}
