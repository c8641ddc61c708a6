package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultResumeDebounce = 500 * time.Millisecond

// Decision is the outcome of a resume evaluation.
type Decision string

const (
	// DecisionNone: no prompt; the client proceeds normally.
	DecisionNone Decision = "none"
	// DecisionPrompt: the client should show the welcome-back prompt
	// and then call Resume or StartFresh.
	DecisionPrompt Decision = "prompt"
)

// ResumePolicy decides, once per client lifetime, whether a returning
// client should be offered to resume an in-progress session. The
// decision keys on the session-active marker: absent means a fresh
// load, present means this client already decided.
type ResumePolicy struct {
	mu       sync.Mutex
	manager  *Manager
	markers  MarkerStore
	debounce time.Duration
	logger   *zap.Logger

	// evaluated tracks the last progress signature judged per session
	// so repeated checks against unchanged state resolve identically
	// without re-prompting.
	evaluated map[string]string
	pending   map[string]*time.Timer
}

func NewResumePolicy(manager *Manager, markers MarkerStore, debounce time.Duration, logger *zap.Logger) *ResumePolicy {
	if debounce <= 0 {
		debounce = defaultResumeDebounce
	}
	return &ResumePolicy{
		manager:   manager,
		markers:   markers,
		debounce:  debounce,
		logger:    logger,
		evaluated: make(map[string]string),
		pending:   make(map[string]*time.Timer),
	}
}

// Evaluate runs the resume check for a loading client. The decision is
// debounced: rapid repeated evaluations within the window collapse
// into one, and an unchanged progress signature never produces a
// second prompt.
func (p *ResumePolicy) Evaluate(ctx context.Context, sessionID string, notify func(Decision)) error {
	state, err := p.manager.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	decision := p.decide(ctx, state)

	p.mu.Lock()
	if prev, ok := p.pending[sessionID]; ok {
		prev.Stop()
	}
	p.pending[sessionID] = time.AfterFunc(p.debounce, func() {
		p.mu.Lock()
		delete(p.pending, sessionID)
		p.mu.Unlock()
		notify(decision)
	})
	p.mu.Unlock()
	return nil
}

// decide applies the policy and records both the marker and the
// progress signature so the same state is never prompted twice.
func (p *ResumePolicy) decide(ctx context.Context, state *State) Decision {
	hasProgress := !state.IsComplete && len(state.Answers) > 0

	active, err := p.markers.Active(ctx, state.ID)
	if err != nil {
		p.logger.Warn("marker lookup failed, skipping resume prompt",
			zap.String("session_id", state.ID), zap.Error(err))
		return DecisionNone
	}

	sig := state.Signature()
	p.mu.Lock()
	seen := p.evaluated[state.ID] == sig && sig != ""
	p.evaluated[state.ID] = sig
	p.mu.Unlock()

	if setErr := p.markers.SetActive(ctx, state.ID); setErr != nil {
		p.logger.Warn("failed to set session-active marker",
			zap.String("session_id", state.ID), zap.Error(setErr))
	}

	if hasProgress && !active && !seen {
		p.logger.Info("offering session resume",
			zap.String("session_id", state.ID),
			zap.Int("answers", len(state.Answers)))
		return DecisionPrompt
	}
	return DecisionNone
}

// Resume accepts the prompt: the session continues exactly where it
// left off, with the countdown re-armed from the persisted position.
func (p *ResumePolicy) Resume(ctx context.Context, sessionID string) (*State, error) {
	return p.manager.Resume(ctx, sessionID)
}

// StartFresh declines the prompt: progress is discarded and the marker
// is re-set so this client is not asked again.
func (p *ResumePolicy) StartFresh(ctx context.Context, sessionID string) (*State, error) {
	state, err := p.manager.Reset(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := p.markers.SetActive(ctx, sessionID); err != nil {
		p.logger.Warn("failed to re-set session-active marker",
			zap.String("session_id", sessionID), zap.Error(err))
	}

	p.mu.Lock()
	delete(p.evaluated, sessionID)
	p.mu.Unlock()
	return state, nil
}
