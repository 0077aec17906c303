package facts

import (
	"context"
	"fmt"
	"strings"

	"github.com/carelog/carebot/internal/core"
)

// apptTimeLayout keeps appointment rendering reproducible across runs.
const apptTimeLayout = "Mon, 02 Jan 2006 15:04"

type AppointmentProvider struct {
	records core.RecordSource
}

func NewAppointmentProvider(records core.RecordSource) *AppointmentProvider {
	return &AppointmentProvider{records: records}
}

func (p *AppointmentProvider) Type() FactType {
	return TypeAppointment
}

func (p *AppointmentProvider) Facts(ctx context.Context, subjectID string) (FactSet, error) {
	patient, err := subjectFor(ctx, p.records, subjectID)
	if err != nil {
		return FactSet{}, err
	}

	appts, err := p.records.AppointmentsByPatient(ctx, subjectID)
	if err != nil {
		return FactSet{}, fmt.Errorf("load appointments: %w", err)
	}

	fs := FactSet{
		SubjectID:   subjectID,
		SubjectName: patient.FullName(),
		Type:        TypeAppointment,
		Count:       len(appts),
	}

	for _, a := range appts {
		if a.Title == "" {
			return FactSet{}, fmt.Errorf("appointment %s for subject %s: empty title", a.ID, subjectID)
		}
		if a.ScheduledAt.IsZero() {
			return FactSet{}, fmt.Errorf("appointment %q for subject %s: missing required field %q", a.Title, subjectID, "scheduled_at")
		}
		fields := map[string]string{
			"scheduled_at": a.ScheduledAt.UTC().Format(apptTimeLayout),
			"status":       a.Status,
		}
		if a.Provider != "" {
			fields["provider"] = a.Provider
		}
		if a.Location != "" {
			fields["location"] = a.Location
		}
		for _, req := range requiredFields[TypeAppointment] {
			if fields[req] == "" {
				return FactSet{}, fmt.Errorf("appointment %q for subject %s: missing required field %q", a.Title, subjectID, req)
			}
		}
		fs.Facts = append(fs.Facts, Fact{Name: a.Title, Fields: fields})
	}

	return fs, nil
}

func (p *AppointmentProvider) FormatText(fs FactSet) string {
	if fs.Count == 0 {
		return fmt.Sprintf("%s has no appointments on record.", fs.SubjectName)
	}

	var b strings.Builder
	plural := "appointments"
	if fs.Count == 1 {
		plural = "appointment"
	}
	fmt.Fprintf(&b, "%s has %d %s on record:\n", fs.SubjectName, fs.Count, plural)

	for _, f := range fs.Facts {
		fmt.Fprintf(&b, "- %s: %s, %s", f.Name, f.Fields["scheduled_at"], f.Fields["status"])
		if prov := f.Fields["provider"]; prov != "" {
			fmt.Fprintf(&b, " with %s", prov)
		}
		if loc := f.Fields["location"]; loc != "" {
			fmt.Fprintf(&b, " at %s", loc)
		}
		b.WriteByte('\n')
	}

	return strings.TrimRight(b.String(), "\n")
}
