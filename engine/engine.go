// Package engine implements the single-active-timer state machine: it
// coordinates start/pause/resume/stop across work and break modes,
// computes net elapsed durations that exclude paused time, and owns the
// session log.
package engine

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/radum/pontaj/internal/models"
	"github.com/radum/pontaj/internal/timeutil"
	"github.com/radum/pontaj/store"
)

// A pause shorter than this is logged as a cigarette, anything longer as
// a proper break. Classification happens once, when the pause closes.
const cigaretteThresholdMs = 5 * timeutil.MsInMinute

// CigaretteThresholdMs returns the pause length at which a cigarette
// becomes a break.
func CigaretteThresholdMs() int64 {
	return cigaretteThresholdMs
}

// Engine holds the active timer state and the session log. It expects a
// single logical writer: all mutations happen synchronously on the
// caller's goroutine, and only persistence is deferred.
type Engine struct {
	state  *models.TimerState
	db     store.DB
	now    func() time.Time
	newID  func() string
	logger *slog.Logger
	wg     sync.WaitGroup

	// saveMu serializes writes to the store; saveSeq/savedSeq order the
	// snapshots so a slow older write can never clobber a newer one.
	saveMu   sync.Mutex
	saveSeq  uint64
	savedSeq uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the wall clock. Durations are computed from a clock
// read at call time; there is no ticking inside the engine.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithIDGenerator replaces the session id generator.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) {
		e.newID = newID
	}
}

// WithLogger replaces the logger used for persist failures.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New loads the stored state from db and returns an engine operating on
// it.
func New(db store.DB, opts ...Option) (*Engine, error) {
	e := &Engine{
		db:     db,
		now:    time.Now,
		newID:  uuid.NewString,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	state, err := db.LoadState()
	if err != nil {
		return nil, err
	}

	e.state = state

	return e, nil
}

func (e *Engine) nowMs() int64 {
	return timeutil.ToMs(e.now())
}

// persist requests an asynchronous store of the full state snapshot. The
// snapshot and its sequence number are taken synchronously so later
// mutations cannot leak into an in-flight write; the write itself runs
// under saveMu and is skipped when a newer snapshot already reached the
// store. Failures are logged, never raised to the caller.
func (e *Engine) persist() {
	snapshot := e.state.Clone()

	e.saveSeq++
	seq := e.saveSeq

	e.wg.Add(1)

	go func() {
		defer e.wg.Done()

		e.writeSnapshot(snapshot, seq)
	}()
}

// writeSnapshot stores a snapshot unless one with a higher sequence
// number has already been written. A failed attempt still consumes its
// sequence number so an even older pending snapshot cannot land after it.
func (e *Engine) writeSnapshot(snapshot *models.TimerState, seq uint64) error {
	e.saveMu.Lock()
	defer e.saveMu.Unlock()

	if seq <= e.savedSeq {
		return nil
	}

	e.savedSeq = seq

	err := e.db.SaveState(snapshot)
	if err != nil {
		e.logger.Error("state persist failed", slog.Any("error", err))
	}

	return err
}

// Flush blocks until every requested background persist has completed.
// The CLI calls it before exiting so the last transition is not lost to
// process teardown.
func (e *Engine) Flush() {
	e.wg.Wait()
}

// Persist synchronously stores the current state and surfaces any error.
// It participates in the same snapshot ordering as the background
// persists.
func (e *Engine) Persist() error {
	snapshot := e.state.Clone()

	e.saveSeq++

	return e.writeSnapshot(snapshot, e.saveSeq)
}

// StartWork begins a new work session, finalizing any previously active
// timer first. All per-session accumulators reset.
func (e *Engine) StartWork() {
	now := e.nowMs()

	if !e.state.Idle() {
		e.finalizeActive(now, "")
	}

	s := e.state

	s.ActiveType = models.Ptr(models.Work)
	s.ActiveStartedAt = models.Ptr(now)
	s.CurrentSessionID = models.Ptr(e.newID())
	s.PausedAt = nil
	s.BreakStartedAt = nil
	s.BreakSessionID = nil
	s.TotalPausedMs = 0
	s.SessionWorkMs = 0
	s.SessionBreakMs = 0
	s.SessionCigaretteMs = 0
	s.CurrentWorkBreaks = nil

	e.persist()
}

// StartBreak suspends the active work session and starts a break
// sub-interval. It is a no-op when no work session is active or a break
// is already running: break time only exists nested inside a work
// session.
func (e *Engine) StartBreak() {
	s := e.state

	if s.Idle() || *s.ActiveType != models.Work || s.PausedAt != nil {
		return
	}

	now := e.nowMs()

	// bank the net work accumulated up to this pause
	s.SessionWorkMs = clampMs(now - *s.ActiveStartedAt - s.TotalPausedMs)

	s.PausedAt = models.Ptr(now)
	s.BreakStartedAt = models.Ptr(now)
	s.BreakSessionID = models.Ptr(e.newID())

	e.persist()
}

// ResumeWork closes the open break sub-interval and continues the same
// work session. On an idle engine it falls through to StartWork; while
// running without an open pause it is a no-op.
func (e *Engine) ResumeWork() {
	s := e.state

	if s.Idle() {
		e.StartWork()
		return
	}

	if s.PausedAt == nil {
		return
	}

	e.closePause(e.nowMs())
	e.persist()
}

// EndCurrent finalizes the active session, emitting a Session record with
// paused time compressed out of its end timestamp. On an idle engine it
// is a no-op and returns nil.
func (e *Engine) EndCurrent(note string) *models.Session {
	if e.state.Idle() {
		return nil
	}

	sess := e.finalizeActive(e.nowMs(), note)

	e.persist()

	return sess
}

// closePause finalizes the open break sub-interval: classify it by its
// duration, embed it, and add its length to the paused-time accumulator.
func (e *Engine) closePause(now int64) {
	s := e.state

	if s.PausedAt == nil {
		return
	}

	start := *s.PausedAt
	if s.BreakStartedAt != nil {
		start = *s.BreakStartedAt
	}

	d := clampMs(now - start)

	id := e.newID()
	if s.BreakSessionID != nil {
		id = *s.BreakSessionID
	}

	wb := models.WorkBreak{
		ID:        id,
		Type:      classifyPause(d),
		StartedAt: start,
		EndedAt:   start + d,
		Duration:  d,
	}

	s.CurrentWorkBreaks = append(s.CurrentWorkBreaks, wb)
	s.TotalPausedMs += d

	if wb.Type == models.Break {
		s.SessionBreakMs += d
	} else {
		s.SessionCigaretteMs += d
	}

	s.PausedAt = nil
	s.BreakStartedAt = nil
	s.BreakSessionID = nil
}

// finalizeActive ends the active session without persisting. Any open
// pause closes first, so the pause still open at the instant of ending is
// counted. A session whose net duration is zero is discarded rather than
// logged, preserving the end-after-start invariant.
func (e *Engine) finalizeActive(now int64, note string) *models.Session {
	s := e.state

	e.closePause(now)

	net := clampMs(now - *s.ActiveStartedAt - s.TotalPausedMs)

	var sess *models.Session

	if net > 0 {
		id := e.newID()
		if s.CurrentSessionID != nil {
			id = *s.CurrentSessionID
		}

		sess = &models.Session{
			ID:        id,
			Type:      *s.ActiveType,
			StartedAt: *s.ActiveStartedAt,
			EndedAt:   models.Ptr(*s.ActiveStartedAt + net),
			Manual:    false,
			Note:      note,
			Address:   e.CurrentAddress(),
			Breaks:    append([]models.WorkBreak(nil), s.CurrentWorkBreaks...),
		}

		e.prependSession(*sess)
	}

	s.ActiveType = nil
	s.ActiveStartedAt = nil
	s.CurrentSessionID = nil
	s.PausedAt = nil
	s.BreakStartedAt = nil
	s.BreakSessionID = nil
	s.TotalPausedMs = 0
	s.SessionWorkMs = 0
	s.SessionBreakMs = 0
	s.SessionCigaretteMs = 0
	s.CurrentWorkBreaks = nil

	return sess
}

// AddManualSession inserts a retroactive session into the log. A
// non-positive duration is rejected with no state change; a nil endedAt
// records a still-open manual entry.
func (e *Engine) AddManualSession(
	typ models.SessionType,
	startedAt int64,
	endedAt *int64,
	note, address string,
) (*models.Session, error) {
	if !typ.Valid() {
		return nil, ErrInvalidSessionType
	}

	if endedAt != nil && *endedAt <= startedAt {
		return nil, ErrInvalidInterval
	}

	if address == "" {
		address = e.CurrentAddress()
	}

	sess := models.Session{
		ID:        e.newID(),
		Type:      typ,
		StartedAt: startedAt,
		EndedAt:   models.ClonePtr(endedAt),
		Manual:    true,
		Note:      note,
		Address:   address,
	}

	e.prependSession(sess)
	e.persist()

	return models.CloneSession(&sess), nil
}

// ImportSessions feeds externally parsed rows through manual insertion.
// Invalid entries are skipped; their errors are joined and returned
// alongside the number of sessions added.
func (e *Engine) ImportSessions(
	inputs []models.ImportedSessionInput,
) (int, error) {
	var (
		added int
		errs  []error
	)

	for i := range inputs {
		in := inputs[i]

		if !in.Type.Valid() {
			errs = append(errs, ErrInvalidSessionType)
			continue
		}

		if in.EndedAt != nil && *in.EndedAt <= in.StartedAt {
			errs = append(errs, ErrInvalidInterval)
			continue
		}

		address := in.Address
		if address == "" {
			address = e.CurrentAddress()
		}

		e.prependSession(models.Session{
			ID:        e.newID(),
			Type:      in.Type,
			StartedAt: in.StartedAt,
			EndedAt:   models.ClonePtr(in.EndedAt),
			Manual:    true,
			Note:      in.Note,
			Address:   address,
		})

		added++
	}

	if added > 0 {
		e.persist()
	}

	return added, errors.Join(errs...)
}

// SessionPatch is an explicit field-by-field update. Nil fields are left
// untouched; a provided Breaks list has each duration recomputed from its
// own bounds.
type SessionPatch struct {
	Type      *models.SessionType
	StartedAt *int64
	EndedAt   *int64
	Note      *string
	Address   *string
	Breaks    *[]models.WorkBreak
}

// UpdateSession patches the session with the given id. The update is
// rejected when the resulting end would not come after the start.
func (e *Engine) UpdateSession(id string, patch SessionPatch) error {
	idx := e.indexOf(id)
	if idx < 0 {
		return ErrSessionNotFound
	}

	sess := models.CloneSession(&e.state.Sessions[idx])

	if patch.Type != nil {
		if !patch.Type.Valid() {
			return ErrInvalidSessionType
		}

		sess.Type = *patch.Type
	}

	if patch.StartedAt != nil {
		sess.StartedAt = *patch.StartedAt
	}

	if patch.EndedAt != nil {
		sess.EndedAt = models.Ptr(*patch.EndedAt)
	}

	if sess.EndedAt != nil && *sess.EndedAt <= sess.StartedAt {
		return ErrInvalidInterval
	}

	if patch.Note != nil {
		sess.Note = *patch.Note
	}

	if patch.Address != nil {
		sess.Address = *patch.Address
	}

	if patch.Breaks != nil {
		breaks := append([]models.WorkBreak(nil), *patch.Breaks...)
		for i := range breaks {
			breaks[i].Duration = breaks[i].EndedAt - breaks[i].StartedAt
		}

		sess.Breaks = breaks
	}

	e.state.Sessions[idx] = *sess
	e.persist()

	return nil
}

// DeleteSession removes a session from the log.
func (e *Engine) DeleteSession(id string) error {
	idx := e.indexOf(id)
	if idx < 0 {
		return ErrSessionNotFound
	}

	e.state.Sessions = append(
		e.state.Sessions[:idx],
		e.state.Sessions[idx+1:]...,
	)

	e.persist()

	return nil
}

// Sessions returns a copy of the session log, newest first.
func (e *Engine) Sessions() []models.Session {
	out := make([]models.Session, len(e.state.Sessions))
	for i := range e.state.Sessions {
		out[i] = *models.CloneSession(&e.state.Sessions[i])
	}

	return out
}

// Session returns a copy of a single session by id.
func (e *Engine) Session(id string) (*models.Session, bool) {
	idx := e.indexOf(id)
	if idx < 0 {
		return nil, false
	}

	return models.CloneSession(&e.state.Sessions[idx]), true
}

// prependSession inserts newest-first. Duplicate ids are a caller error
// and are not checked here.
func (e *Engine) prependSession(sess models.Session) {
	e.state.Sessions = append([]models.Session{sess}, e.state.Sessions...)
}

func (e *Engine) indexOf(id string) int {
	for i := range e.state.Sessions {
		if e.state.Sessions[i].ID == id {
			return i
		}
	}

	return -1
}

func classifyPause(d int64) models.SessionType {
	if d < cigaretteThresholdMs {
		return models.Cigarette
	}

	return models.Break
}

func clampMs(ms int64) int64 {
	if ms < 0 {
		return 0
	}

	return ms
}
