package facts

import (
	"fmt"
	"strings"
)

// Report is the outcome of a ground-truth check. Errors block
// delivery; warnings are logged but tolerated.
type Report struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// Validate compares a candidate fact set against ground truth. Pure
// and side-effect free: it reads both sets and nothing else.
//
// Errors: subject mismatch, a candidate fact name absent from ground
// truth (a hallucinated fact), or a candidate fact missing a required
// field. Warnings: count mismatch.
func Validate(ground, candidate FactSet) Report {
	var r Report

	if candidate.SubjectName != "" && !strings.EqualFold(candidate.SubjectName, ground.SubjectName) {
		r.Errors = append(r.Errors,
			fmt.Sprintf("subject mismatch: candidate %q, ground truth %q", candidate.SubjectName, ground.SubjectName))
	}

	if candidate.Count != ground.Count {
		r.Warnings = append(r.Warnings,
			fmt.Sprintf("count mismatch: candidate reports %d, ground truth has %d", candidate.Count, ground.Count))
	}

	groundByName := make(map[string]Fact, len(ground.Facts))
	for _, f := range ground.Facts {
		groundByName[strings.ToLower(f.Name)] = f
	}

	for _, cf := range candidate.Facts {
		gf, ok := groundByName[strings.ToLower(cf.Name)]
		if !ok {
			r.Errors = append(r.Errors, fmt.Sprintf("hallucinated fact: %q does not exist for %s", cf.Name, ground.SubjectName))
			continue
		}

		for _, req := range requiredFields[ground.Type] {
			cv, present := cf.Fields[req]
			if !present {
				// The restatement may omit a field entirely; that is
				// incompleteness, not fabrication.
				continue
			}
			if cv == "" {
				r.Errors = append(r.Errors, fmt.Sprintf("missing field: %q on fact %q", req, cf.Name))
				continue
			}
			if gv := gf.Fields[req]; gv != "" && !strings.EqualFold(normalizeField(cv), normalizeField(gv)) {
				r.Errors = append(r.Errors,
					fmt.Sprintf("field mismatch: %q on fact %q is %q, ground truth %q", req, cf.Name, cv, gv))
			}
		}
	}

	r.Valid = len(r.Errors) == 0
	return r
}

func normalizeField(v string) string {
	return strings.Join(strings.Fields(strings.TrimSpace(v)), " ")
}
