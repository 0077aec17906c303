package facts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func groundMedications() FactSet {
	return FactSet{
		SubjectID:   "p-1",
		SubjectName: "Alice Smith",
		Type:        TypeMedication,
		Count:       2,
		Facts: []Fact{
			{Name: "Amoxicillin", Fields: map[string]string{"dosage": "500 mg", "frequency": "three times daily"}},
			{Name: "Lisinopril", Fields: map[string]string{"dosage": "10 mg", "frequency": "once daily"}},
		},
	}
}

func TestValidate_MatchingCandidate(t *testing.T) {
	ground := groundMedications()
	report := Validate(ground, ground)

	assert.True(t, report.Valid)
	assert.Empty(t, report.Errors)
	assert.Empty(t, report.Warnings)
}

func TestValidate_HallucinatedFact(t *testing.T) {
	candidate := groundMedications()
	candidate.Facts = append(candidate.Facts, Fact{Name: "Warfarin", Fields: map[string]string{}})
	candidate.Count = 3

	report := Validate(groundMedications(), candidate)

	require.False(t, report.Valid)
	found := false
	for _, e := range report.Errors {
		if strings.Contains(e, "hallucinated fact") && strings.Contains(e, "Warfarin") {
			found = true
		}
	}
	assert.True(t, found, "expected a hallucinated-fact error, got %v", report.Errors)
	assert.NotEmpty(t, report.Warnings, "count mismatch should warn")
}

func TestValidate_SubjectMismatch(t *testing.T) {
	candidate := groundMedications()
	candidate.SubjectName = "Alice Jones"

	report := Validate(groundMedications(), candidate)

	require.False(t, report.Valid)
	assert.Contains(t, report.Errors[0], "subject mismatch")
}

func TestValidate_CountMismatchIsOnlyWarning(t *testing.T) {
	candidate := groundMedications()
	candidate.Facts = candidate.Facts[:1]
	candidate.Count = 1

	report := Validate(groundMedications(), candidate)

	assert.True(t, report.Valid, "an incomplete but truthful candidate is acceptable")
	assert.NotEmpty(t, report.Warnings)
}

func TestValidate_EmptyRequiredFieldValue(t *testing.T) {
	candidate := groundMedications()
	candidate.Facts[0].Fields["dosage"] = ""

	report := Validate(groundMedications(), candidate)

	require.False(t, report.Valid)
	assert.Contains(t, report.Errors[0], "missing field")
}

func TestValidate_FieldContradiction(t *testing.T) {
	candidate := groundMedications()
	candidate.Facts[1].Fields = map[string]string{"dosage": "100 mg", "frequency": "once daily"}

	report := Validate(groundMedications(), candidate)

	require.False(t, report.Valid)
	assert.Contains(t, report.Errors[0], "field mismatch")
}

func TestValidate_OmittedFieldIsTolerated(t *testing.T) {
	candidate := groundMedications()
	candidate.Facts[0].Fields = map[string]string{}

	report := Validate(groundMedications(), candidate)

	assert.True(t, report.Valid, "omission is incompleteness, not fabrication")
}

func TestExtractCandidate(t *testing.T) {
	text := "Alice Smith is taking the following:\n" +
		"- Amoxicillin: 500 mg, three times daily\n" +
		"- Lisinopril: 10 mg, once daily\n" +
		"Let me know if you need anything else."

	fs := ExtractCandidate("Alice Smith", TypeMedication, text)

	require.Equal(t, 2, fs.Count)
	assert.Equal(t, "Amoxicillin", fs.Facts[0].Name)
	assert.Equal(t, "500 mg", fs.Facts[0].Fields["dosage"])
	assert.Equal(t, "three times daily", fs.Facts[0].Fields["frequency"])
	assert.Equal(t, "Lisinopril", fs.Facts[1].Name)
}

func TestExtractCandidate_CatchesInventedBullet(t *testing.T) {
	text := "- Amoxicillin: 500 mg, three times daily\n" +
		"- Warfarin: 5 mg, once daily"

	fs := ExtractCandidate("Alice Smith", TypeMedication, text)
	report := Validate(groundMedications(), fs)

	require.False(t, report.Valid)
}
