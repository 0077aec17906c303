// Package classify routes raw utterances. The classifier is lexical
// and deterministic on purpose: every routing decision must be
// auditable, so no statistical model is involved.
package classify

import (
	"strings"
	"unicode"

	"github.com/carelog/carebot/internal/core"
)

type Intent string

const (
	IntentGeneral     Intent = "general"
	IntentMedication  Intent = "medication"
	IntentAppointment Intent = "appointment"
)

type RefKind int

const (
	RefNone RefKind = iota
	RefPronoun
	RefExplicitName
)

// SubjectRef is how the utterance refers to a subject, if at all.
type SubjectRef struct {
	Kind RefKind
	Name string
}

type Result struct {
	Intent  Intent
	Subject SubjectRef
}

var medicationKeywords = map[string]struct{}{
	"medication": {}, "medications": {}, "medicine": {}, "medicines": {},
	"med": {}, "meds": {}, "prescription": {}, "prescriptions": {},
	"drug": {}, "drugs": {}, "pill": {}, "pills": {},
	"dose": {}, "dosage": {}, "tablet": {}, "tablets": {},
}

var appointmentKeywords = map[string]struct{}{
	"appointment": {}, "appointments": {}, "visit": {}, "visits": {},
	"checkup": {}, "check-up": {}, "scheduled": {}, "schedule": {},
	"follow-up": {}, "followup": {}, "consultation": {}, "consultations": {},
}

var thirdPersonPronouns = map[string]struct{}{
	"he": {}, "she": {}, "they": {}, "him": {}, "her": {},
	"them": {}, "his": {}, "hers": {}, "their": {}, "theirs": {},
}

// capitalizedStopwords are common question words that start sentences
// capitalized and must never be read as names.
var capitalizedStopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "any": {}, "all": {}, "and": {}, "or": {},
	"i": {}, "my": {}, "me": {}, "we": {}, "you": {}, "your": {}, "it": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "does": {}, "do": {}, "did": {},
	"has": {}, "have": {}, "had": {}, "can": {}, "could": {}, "will": {},
	"would": {}, "should": {}, "what": {}, "when": {}, "where": {}, "which": {},
	"who": {}, "whose": {}, "why": {}, "how": {}, "list": {}, "show": {},
	"tell": {}, "give": {}, "get": {}, "find": {}, "please": {}, "thanks": {},
	"thank": {}, "about": {}, "for": {}, "with": {}, "there": {}, "this": {},
	"that": {}, "these": {}, "those": {}, "next": {}, "last": {}, "today": {},
	"tomorrow": {}, "yesterday": {}, "monday": {}, "tuesday": {}, "wednesday": {},
	"thursday": {}, "friday": {}, "saturday": {}, "sunday": {}, "january": {},
	"february": {}, "march": {}, "april": {}, "may": {}, "june": {}, "july": {},
	"august": {}, "september": {}, "october": {}, "november": {}, "december": {},
	"dr": {}, "mr": {}, "mrs": {}, "ms": {},
}

// Classify is a pure function. It returns core.ErrAmbiguousSubject
// when the utterance names more than one distinct candidate subject;
// guessing between them is exactly the failure mode this layer exists
// to prevent.
func Classify(utterance string) (Result, error) {
	words := splitWords(utterance)

	res := Result{Intent: detectIntent(words)}

	names := candidateNames(words)
	switch len(names) {
	case 0:
		if hasPronoun(words) {
			res.Subject = SubjectRef{Kind: RefPronoun}
		}
	case 1:
		res.Subject = SubjectRef{Kind: RefExplicitName, Name: names[0]}
	default:
		return res, core.ErrAmbiguousSubject
	}

	return res, nil
}

func detectIntent(words []string) Intent {
	var medHits, apptHits int
	for _, w := range words {
		lw := strings.ToLower(w)
		if _, ok := medicationKeywords[lw]; ok {
			medHits++
		}
		if _, ok := appointmentKeywords[lw]; ok {
			apptHits++
		}
	}

	switch {
	case medHits == 0 && apptHits == 0:
		return IntentGeneral
	case apptHits > medHits:
		return IntentAppointment
	default:
		// Ties go to medication; the order is fixed so routing stays
		// deterministic.
		return IntentMedication
	}
}

func hasPronoun(words []string) bool {
	for _, w := range words {
		if _, ok := thirdPersonPronouns[strings.ToLower(w)]; ok {
			return true
		}
	}
	return false
}

// candidateNames returns distinct explicit-name candidates in order
// of appearance. Consecutive capitalized words merge into one
// candidate ("Alice Smith").
func candidateNames(words []string) []string {
	var (
		names   []string
		seen    = map[string]struct{}{}
		current []string
	)

	flush := func() {
		if len(current) == 0 {
			return
		}
		name := strings.Join(current, " ")
		current = nil
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		names = append(names, name)
	}

	for _, w := range words {
		if isNameWord(w) {
			current = append(current, strings.TrimSuffix(w, "'s"))
			continue
		}
		flush()
	}
	flush()

	return names
}

func isNameWord(w string) bool {
	w = strings.TrimSuffix(w, "'s")
	if w == "" {
		return false
	}
	runes := []rune(w)
	if !unicode.IsUpper(runes[0]) {
		return false
	}
	for _, r := range runes[1:] {
		if !unicode.IsLower(r) {
			return false
		}
	}
	_, stop := capitalizedStopwords[strings.ToLower(w)]
	return !stop
}

func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		// Apostrophes and hyphens stay inside words so possessives
		// ("Alice's") and keywords ("follow-up") survive.
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\'' && r != '-'
	})
}
