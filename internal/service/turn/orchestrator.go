// Package turn drives a single conversational turn end to end:
// classification, subject resolution, the deterministic fact path or
// the model path, persistence, and the summarizer hand-off.
package turn

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/carelog/carebot/internal/core"
	"github.com/carelog/carebot/internal/service/classify"
	"github.com/carelog/carebot/internal/service/facts"
	"github.com/carelog/carebot/internal/service/memory"
	"github.com/carelog/carebot/internal/service/subject"
	"github.com/carelog/carebot/pkg/log"
	"github.com/carelog/carebot/pkg/retry"
)

const systemPrompt = `You are CareBot, a careful assistant for family caregivers.
You help track conversations about the people they care for.
Never invent medical facts. If you are not sure, say so plainly.`

// Canned responses. Routing failures ask, they never guess.
const (
	replyAmbiguous    = "I see more than one person that could refer to. Could you tell me who you mean, using their full name?"
	replyModelFailure = "I'm having trouble reaching my language model right now, so I can't answer that properly. Please try again in a moment."
	replyRecordsDown  = "I can't read the care records right now. Please try again in a moment."
)

// noSubjectFraming steers the model when a care question arrives with
// no resolvable subject: ask, never fill the gap.
const noSubjectFraming = `The user asked a care question but it is not clear who it is about and no one is on record for this conversation. Ask them to name the person. Do not guess and do not state any medication or appointment details.`

// Notifier is what the orchestrator pokes after a committed turn.
type Notifier interface {
	Notify(sessionID string)
}

// ProviderSource resolves the model backend for a session's model id.
type ProviderSource interface {
	For(modelID string) core.AIProvider
}

type Options struct {
	ModelID     string
	TokenBudget int
	// ConversationalFacts lets the model restate a fact answer in its
	// own words. The restatement is validated against ground truth and
	// dropped for the deterministic text on any mismatch.
	ConversationalFacts bool
}

type Orchestrator struct {
	sessions  core.SessionRepository
	store     *memory.Store
	assembler *memory.Assembler
	tracker   *subject.Tracker
	facts     map[classify.Intent]facts.Provider
	providers ProviderSource
	retrier   *retry.Retrier
	notifier  Notifier
	opts      Options

	mu    sync.Mutex
	locks map[string]*turnLock
}

// turnLock serializes turns within one session. It is reference
// counted so the registry only holds sessions with a turn in flight.
type turnLock struct {
	mu   sync.Mutex
	refs int
}

func NewOrchestrator(
	sessions core.SessionRepository,
	store *memory.Store,
	assembler *memory.Assembler,
	tracker *subject.Tracker,
	factProviders []facts.Provider,
	providers ProviderSource,
	notifier Notifier,
	opts Options,
) *Orchestrator {
	byIntent := make(map[classify.Intent]facts.Provider, len(factProviders))
	for _, p := range factProviders {
		switch p.Type() {
		case facts.TypeMedication:
			byIntent[classify.IntentMedication] = p
		case facts.TypeAppointment:
			byIntent[classify.IntentAppointment] = p
		}
	}
	if opts.TokenBudget <= 0 {
		opts.TokenBudget = 3000
	}
	return &Orchestrator{
		sessions:  sessions,
		store:     store,
		assembler: assembler,
		tracker:   tracker,
		facts:     byIntent,
		providers: providers,
		retrier:   retry.NewDefaultRetrier(),
		notifier:  notifier,
		opts:      opts,
		locks:     map[string]*turnLock{},
	}
}

// Result is one completed turn. ShortCircuit marks answers produced
// from the record store without a model round trip (canned routing
// replies included).
type Result struct {
	Reply        string
	Usage        core.TokenUsage
	ShortCircuit bool
}

// HandleTurn processes one utterance. Turns within a session run
// strictly one at a time; sessions do not block each other.
func (o *Orchestrator) HandleTurn(ctx context.Context, sessionID, utterance string) (Result, error) {
	return o.handle(ctx, sessionID, utterance, nil)
}

// HandleTurnStream is HandleTurn with incremental delivery. Fact-path
// and canned answers arrive as a single delta; model answers stream
// when the backend supports it.
func (o *Orchestrator) HandleTurnStream(ctx context.Context, sessionID, utterance string, onDelta func(string)) (Result, error) {
	return o.handle(ctx, sessionID, utterance, onDelta)
}

func (o *Orchestrator) handle(ctx context.Context, sessionID, utterance string, onDelta func(string)) (Result, error) {
	lock := o.acquireSession(sessionID)
	defer o.releaseSession(sessionID, lock)

	logger := log.FromCtx(ctx)

	session, err := o.sessions.GetOrCreate(ctx, sessionID, o.opts.ModelID)
	if err != nil {
		return Result{}, fmt.Errorf("load session: %w", err)
	}
	ai := o.providers.For(session.ModelID)

	cls, err := classify.Classify(utterance)
	switch {
	case errors.Is(err, core.ErrAmbiguousSubject):
		// Ambiguity only blocks the turn when the answer needs a
		// subject. Mentioning two people in ordinary conversation is
		// not a routing problem.
		if _, needsSubject := o.facts[cls.Intent]; needsSubject {
			return o.finishShortCircuit(ctx, sessionID, utterance, replyAmbiguous, onDelta)
		}
		cls.Subject = classify.SubjectRef{}
	case err != nil:
		// Unclassifiable input is still conversation.
		logger.Warn().Err(err).Msg("classification failed, treating as general")
		cls = classify.Result{Intent: classify.IntentGeneral}
	}

	logger.Debug().
		Str("session", sessionID).
		Str("intent", string(cls.Intent)).
		Msg("turn classified")

	if provider, ok := o.facts[cls.Intent]; ok {
		return o.factTurn(ctx, ai, session, provider, cls, utterance, onDelta)
	}

	return o.generalTurn(ctx, ai, sessionID, utterance, "", onDelta)
}

// factTurn is the short-circuit path: the answer comes from the record
// store, formatted deterministically. The model is consulted only to
// rephrase, and only when allowed and provably faithful.
func (o *Orchestrator) factTurn(ctx context.Context, ai core.AIProvider, session *core.Session, provider facts.Provider, cls classify.Result, utterance string, onDelta func(string)) (Result, error) {
	logger := log.FromCtx(ctx)

	subjectID, err := o.tracker.Resolve(ctx, cls.Subject, session)
	switch {
	case errors.Is(err, core.ErrAmbiguousSubject):
		return o.finishShortCircuit(ctx, session.ID, utterance, replyAmbiguous, onDelta)
	case errors.Is(err, core.ErrSubjectUnresolved):
		// Not an error turn: the model handles it conversationally,
		// framed so it asks instead of inventing.
		return o.generalTurn(ctx, ai, session.ID, utterance, noSubjectFraming, onDelta)
	case errors.Is(err, core.ErrSubjectNotFound):
		reply := notFoundReply(cls.Subject.Name)
		return o.finishShortCircuit(ctx, session.ID, utterance, reply, onDelta)
	case err != nil:
		logger.Error().Err(err).Msg("subject resolution failed, falling back to general")
		return o.generalTurn(ctx, ai, session.ID, utterance, "", onDelta)
	}

	ground, err := provider.Facts(ctx, subjectID)
	if errors.Is(err, core.ErrSubjectNotFound) {
		return o.finishShortCircuit(ctx, session.ID, utterance, notFoundReply(cls.Subject.Name), onDelta)
	}
	if err != nil {
		logger.Error().Err(err).Str("subject", subjectID).Msg("fact lookup failed")
		return o.finishShortCircuit(ctx, session.ID, utterance, replyRecordsDown, onDelta)
	}

	reply := provider.FormatText(ground)

	if o.opts.ConversationalFacts && ground.Count > 0 {
		if restated, ok := o.restate(ctx, ai, ground, reply); ok {
			reply = restated
		}
	}

	return o.finishShortCircuit(ctx, session.ID, utterance, reply, onDelta)
}

// restate asks the model to rephrase the deterministic answer, then
// extracts the facts it claims and checks every one against ground
// truth. Any validation error discards the restatement.
func (o *Orchestrator) restate(ctx context.Context, ai core.AIProvider, ground facts.FactSet, canonical string) (string, bool) {
	logger := log.FromCtx(ctx)

	prompt := fmt.Sprintf(
		"Restate the following record naturally for a caregiver. Keep every name, dosage, time and status exactly as written. Do not add, remove or reorder items.\n\n%s",
		canonical,
	)

	reply, err := ai.Generate(ctx, []core.Message{
		{Role: core.RoleSystem, Content: systemPrompt},
		{Role: core.RoleUser, Content: prompt},
	})
	if err != nil {
		logger.Warn().Err(err).Msg("restatement failed, using deterministic text")
		return "", false
	}

	candidate := facts.ExtractCandidate(ground.SubjectName, ground.Type, reply.Message.Content)
	if candidate.Count == 0 && ground.Count > 0 {
		// A restatement that yields no checkable facts cannot be
		// verified, so it is never delivered.
		logger.Warn().Msg("restatement is not checkable, using deterministic text")
		return "", false
	}
	report := facts.Validate(ground, candidate)
	if !report.Valid {
		logger.Warn().
			Strs("errors", report.Errors).
			Msg("restatement contradicts records, using deterministic text")
		return "", false
	}

	return reply.Message.Content, true
}

// generalTurn is the model path. Context is assembled before the user
// message is persisted, so the current turn never leaks into its own
// context. A non-empty framing is prepended as an extra system
// message.
func (o *Orchestrator) generalTurn(ctx context.Context, ai core.AIProvider, sessionID, utterance, framing string, onDelta func(string)) (Result, error) {
	logger := log.FromCtx(ctx)

	var reply core.Reply
	err := o.retrier.Do(ctx, func(attempt int) error {
		// A failed call may mean the context was too large for the
		// backend; the retry rebuilds it at half budget.
		budget := o.opts.TokenBudget >> attempt
		assembled := o.assembler.Build(ctx, sessionID, budget)

		messages := make([]core.Message, 0, len(assembled.Messages)+3)
		messages = append(messages, core.Message{Role: core.RoleSystem, Content: systemPrompt})
		if framing != "" {
			messages = append(messages, core.Message{Role: core.RoleSystem, Content: framing})
		}
		messages = append(messages, assembled.Messages...)
		messages = append(messages, core.Message{Role: core.RoleUser, Content: utterance})

		var genErr error
		if streamer, ok := ai.(core.StreamingProvider); ok && onDelta != nil {
			reply, genErr = streamer.GenerateStream(ctx, messages, onDelta)
		} else {
			reply, genErr = ai.Generate(ctx, messages)
		}
		return genErr
	})

	if err := o.appendUser(ctx, sessionID, utterance); err != nil {
		return Result{}, err
	}

	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		logger.Error().Err(err).Str("session", sessionID).Msg("model call failed")
		// The apology is delivered but never persisted: it is not part
		// of the conversation the model produced.
		emit(onDelta, replyModelFailure)
		o.notify(sessionID)
		return Result{Reply: replyModelFailure}, nil
	}

	assistant := core.StoredMessage{
		SessionID:  sessionID,
		Role:       core.RoleAssistant,
		Content:    reply.Message.Content,
		ModelID:    reply.ModelID,
		TokenUsage: reply.Usage.TotalTokens,
	}
	if err := o.store.Append(ctx, sessionID, assistant); err != nil {
		logger.Error().Err(err).Msg("failed to persist assistant message")
	}

	if _, isStreamer := ai.(core.StreamingProvider); !isStreamer {
		emit(onDelta, reply.Message.Content)
	}

	o.notify(sessionID)
	return Result{Reply: reply.Message.Content, Usage: reply.Usage}, nil
}

// finishShortCircuit commits a turn answered without the model: user
// message, then the deterministic reply, then the summarizer poke.
func (o *Orchestrator) finishShortCircuit(ctx context.Context, sessionID, utterance, reply string, onDelta func(string)) (Result, error) {
	if err := o.appendUser(ctx, sessionID, utterance); err != nil {
		return Result{}, err
	}

	assistant := core.StoredMessage{
		SessionID: sessionID,
		Role:      core.RoleAssistant,
		Content:   reply,
	}
	if err := o.store.Append(ctx, sessionID, assistant); err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("failed to persist assistant message")
	}

	emit(onDelta, reply)
	o.notify(sessionID)
	return Result{Reply: reply, ShortCircuit: true}, nil
}

func (o *Orchestrator) appendUser(ctx context.Context, sessionID, utterance string) error {
	msg := core.StoredMessage{
		SessionID: sessionID,
		Role:      core.RoleUser,
		Content:   utterance,
	}
	if err := o.store.Append(ctx, sessionID, msg); err != nil {
		return fmt.Errorf("persist user message: %w", err)
	}
	return nil
}

func (o *Orchestrator) notify(sessionID string) {
	if o.notifier != nil {
		o.notifier.Notify(sessionID)
	}
}

// acquireSession blocks until the caller holds the session's turn
// lock. Every acquire must be paired with releaseSession.
func (o *Orchestrator) acquireSession(sessionID string) *turnLock {
	o.mu.Lock()
	lock, ok := o.locks[sessionID]
	if !ok {
		lock = &turnLock{}
		o.locks[sessionID] = lock
	}
	lock.refs++
	o.mu.Unlock()

	lock.mu.Lock()
	return lock
}

func (o *Orchestrator) releaseSession(sessionID string, lock *turnLock) {
	lock.mu.Unlock()

	o.mu.Lock()
	lock.refs--
	if lock.refs == 0 {
		delete(o.locks, sessionID)
	}
	o.mu.Unlock()
}

func emit(onDelta func(string), text string) {
	if onDelta != nil {
		onDelta(text)
	}
}

func notFoundReply(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "I don't have records for that person."
	}
	return fmt.Sprintf("I don't have records for %s.", name)
}
