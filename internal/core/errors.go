package core

import "errors"

var (
	// ErrAmbiguousSubject: the utterance names more than one candidate
	// subject. The orchestrator must ask, never guess.
	ErrAmbiguousSubject = errors.New("ambiguous subject reference")

	// ErrSubjectUnresolved: a pronoun or bare fact question with no
	// subject remembered on the session.
	ErrSubjectUnresolved = errors.New("subject unresolved")

	// ErrSubjectNotFound: an explicit name matched no patient record.
	ErrSubjectNotFound = errors.New("subject not found")

	// ErrValidationFailed: a candidate fact set contradicts ground
	// truth and must not reach the user.
	ErrValidationFailed = errors.New("fact validation failed")

	// ErrStoreUnavailable: the memory store cannot be reached. Turn
	// handling degrades to an empty context instead of failing.
	ErrStoreUnavailable = errors.New("memory store unavailable")

	// ErrModelCall: the model backend failed or timed out.
	ErrModelCall = errors.New("model call failed")

	ErrNotFound = errors.New("not found")
)
