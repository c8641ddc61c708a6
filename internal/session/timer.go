package session

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultTick         = time.Second
	defaultWarningAt    = 5
	defaultPersistEvery = 10 * time.Second
)

// Remaining computes the seconds left on a question from its durable
// timer fields. It is the single source of truth for countdown
// display, expiry detection, and resume-after-reload: accumulated time
// plus the running clock, never below zero.
func Remaining(limit, timeSpent int, startedAt *time.Time, now time.Time) int {
	elapsed := timeSpent
	if startedAt != nil {
		if since := int(now.Sub(*startedAt).Seconds()); since > 0 {
			elapsed += since
		}
	}
	if r := limit - elapsed; r > 0 {
		return r
	}
	return 0
}

// TimerConfig tunes the countdown scheduler. Zero values fall back to
// the production defaults (1s tick, 5s warning, 10s persist interval).
type TimerConfig struct {
	Tick         time.Duration
	WarningAt    int
	PersistEvery time.Duration
}

func (c TimerConfig) withDefaults() TimerConfig {
	if c.Tick <= 0 {
		c.Tick = defaultTick
	}
	if c.WarningAt <= 0 {
		c.WarningAt = defaultWarningAt
	}
	if c.PersistEvery <= 0 {
		c.PersistEvery = defaultPersistEvery
	}
	return c
}

// TimerCallbacks receive countdown events. All callbacks are invoked
// from the timer goroutine and must not block.
type TimerCallbacks struct {
	// OnTick fires every tick with the recomputed remaining seconds.
	OnTick func(sessionID string, remaining int)
	// OnWarning fires once per question when remaining first drops to
	// the warning threshold.
	OnWarning func(sessionID string, remaining int)
	// OnPersist fires on the coalesced persistence interval and once
	// more at expiry with elapsed capped at the limit.
	OnPersist func(sessionID string, elapsed int)
	// OnTimeUp fires at most once per armed timer, after the timer has
	// been disarmed, so manual submission and expiry are mutually
	// exclusive.
	OnTimeUp func(sessionID, questionID string)
}

type questionTimer struct {
	sessionID   string
	questionID  string
	limit       int
	baseSpent   int
	startedAt   time.Time
	stop        chan struct{}
	warned      bool
	lastPersist time.Time
}

// TimerManager runs one countdown goroutine per active session. The
// durable fields are captured at arm time; remaining is recomputed
// from them on every tick rather than decremented, so drift and
// reloads cannot desynchronise the countdown from the stored state.
type TimerManager struct {
	mu     sync.Mutex
	timers map[string]*questionTimer
	cfg    TimerConfig
	cb     TimerCallbacks
	logger *zap.Logger
	now    func() time.Time
}

func NewTimerManager(cfg TimerConfig, cb TimerCallbacks, logger *zap.Logger) *TimerManager {
	return &TimerManager{
		timers: make(map[string]*questionTimer),
		cfg:    cfg.withDefaults(),
		cb:     cb,
		logger: logger,
		now:    time.Now,
	}
}

// Arm starts (or restarts) the countdown for a session's current
// question. An already-expired timer fires time-up on the first tick.
func (tm *TimerManager) Arm(sessionID, questionID string, limit, timeSpent int, startedAt time.Time) {
	tm.mu.Lock()
	if prev, ok := tm.timers[sessionID]; ok {
		close(prev.stop)
		delete(tm.timers, sessionID)
	}

	t := &questionTimer{
		sessionID:   sessionID,
		questionID:  questionID,
		limit:       limit,
		baseSpent:   timeSpent,
		startedAt:   startedAt,
		stop:        make(chan struct{}),
		lastPersist: tm.now(),
	}
	tm.timers[sessionID] = t
	tm.mu.Unlock()

	go tm.run(t)
}

// Disarm stops the session's countdown and reports whether it was
// still armed. A false return means the timer already fired (or was
// never armed) and its time-up path owns the question.
func (tm *TimerManager) Disarm(sessionID string) bool {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	t, ok := tm.timers[sessionID]
	if !ok {
		return false
	}
	close(t.stop)
	delete(tm.timers, sessionID)
	return true
}

// Armed reports whether a countdown is running for the session.
func (tm *TimerManager) Armed(sessionID string) bool {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	_, ok := tm.timers[sessionID]
	return ok
}

// Stop disarms every timer. Used on shutdown.
func (tm *TimerManager) Stop() {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	for id, t := range tm.timers {
		close(t.stop)
		delete(tm.timers, id)
	}
}

func (tm *TimerManager) run(t *questionTimer) {
	ticker := time.NewTicker(tm.cfg.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			if tm.tick(t) {
				return
			}
		}
	}
}

// tick processes one interval; it returns true when the timer expired
// and the goroutine should exit.
func (tm *TimerManager) tick(t *questionTimer) bool {
	now := tm.now()
	remaining := Remaining(t.limit, t.baseSpent, &t.startedAt, now)

	if tm.cb.OnTick != nil {
		tm.cb.OnTick(t.sessionID, remaining)
	}

	if remaining > 0 {
		if !t.warned && remaining <= tm.cfg.WarningAt && tm.cb.OnWarning != nil {
			t.warned = true
			tm.cb.OnWarning(t.sessionID, remaining)
		}
		if now.Sub(t.lastPersist) >= tm.cfg.PersistEvery && tm.cb.OnPersist != nil {
			t.lastPersist = now
			elapsed := t.limit - remaining
			tm.cb.OnPersist(t.sessionID, elapsed)
		}
		return false
	}

	// Expiry: claim the registration first so a concurrent manual
	// submission cannot also proceed for this question.
	tm.mu.Lock()
	claimed := tm.timers[t.sessionID] == t
	if claimed {
		delete(tm.timers, t.sessionID)
	}
	tm.mu.Unlock()

	if !claimed {
		return true
	}

	if tm.cb.OnPersist != nil {
		tm.cb.OnPersist(t.sessionID, t.limit)
	}
	if tm.cb.OnTimeUp != nil {
		tm.cb.OnTimeUp(t.sessionID, t.questionID)
	}
	tm.logger.Debug("question timer expired",
		zap.String("session_id", t.sessionID),
		zap.String("question_id", t.questionID))
	return true
}
