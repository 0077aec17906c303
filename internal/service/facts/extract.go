package facts

import (
	"regexp"
	"strings"
)

var (
	bulletRe = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s+(.+)$`)
	// dosageRe matches "10mg", "2 x 500 mg", "5 ml" style amounts.
	dosageRe    = regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?\s?(?:mg|mcg|g|ml|units?|iu)\b`)
	frequencyRe = regexp.MustCompile(`(?i)\b(?:(?:once|twice|three times|four times)(?:\s(?:daily|weekly|a day|per day))?|daily|nightly|weekly|monthly|every [^,.;)\n]+|as needed|with meals?)\b`)
)

// ExtractCandidate parses a model restatement back into a candidate
// fact set so it can be validated against ground truth. It is
// intentionally independent of the ground-truth set: an invented
// bullet must surface as a candidate fact, not be filtered out here.
func ExtractCandidate(subjectName string, t FactType, text string) FactSet {
	fs := FactSet{
		SubjectName: subjectName,
		Type:        t,
	}

	for _, line := range strings.Split(text, "\n") {
		m := bulletRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		body := strings.TrimSpace(m[1])
		if body == "" {
			continue
		}

		fact := Fact{
			Name:   factName(body),
			Fields: map[string]string{},
		}
		if t == TypeMedication {
			if d := dosageRe.FindString(body); d != "" {
				fact.Fields["dosage"] = d
			}
			if f := frequencyRe.FindString(body); f != "" {
				fact.Fields["frequency"] = strings.ToLower(f)
			}
		}
		fs.Facts = append(fs.Facts, fact)
	}

	fs.Count = len(fs.Facts)
	return fs
}

// factName takes the identifying reference off the front of a bullet:
// everything before the first separator.
func factName(body string) string {
	for _, sep := range []string{":", " — ", " - ", " – ", ",", " ("} {
		if idx := strings.Index(body, sep); idx > 0 {
			return strings.TrimSpace(body[:idx])
		}
	}
	return strings.TrimSpace(body)
}
