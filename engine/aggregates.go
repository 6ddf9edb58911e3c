package engine

import "github.com/radum/pontaj/internal/models"

// IsRunning reports whether a work session is active and not paused.
func (e *Engine) IsRunning() bool {
	return !e.state.Idle() && e.state.PausedAt == nil
}

// IsPaused reports whether the active work session is suspended on a
// break.
func (e *Engine) IsPaused() bool {
	return !e.state.Idle() && e.state.PausedAt != nil
}

// ActiveType returns the type of the active timer, or nil when idle.
func (e *Engine) ActiveType() *models.SessionType {
	return models.ClonePtr(e.state.ActiveType)
}

// ActiveStartedAt returns the start of the active session, or nil.
func (e *Engine) ActiveStartedAt() *int64 {
	return models.ClonePtr(e.state.ActiveStartedAt)
}

// OpenPauseMs returns the elapsed length of the pause currently open, or
// zero when none is.
func (e *Engine) OpenPauseMs() int64 {
	if e.state.PausedAt == nil {
		return 0
	}

	return clampMs(e.nowMs() - *e.state.PausedAt)
}

// TotalWorkMs is the net work time of the current work session as of now,
// excluding all paused time. It resets at each StartWork.
func (e *Engine) TotalWorkMs() int64 {
	s := e.state

	if s.Idle() || s.PausedAt != nil {
		return s.SessionWorkMs
	}

	return clampMs(e.nowMs() - *s.ActiveStartedAt - s.TotalPausedMs)
}

// TotalBreakMs is the break time of the current work session as of now.
// An open pause contributes once it has grown past the cigarette
// threshold; final classification still happens only when it closes.
func (e *Engine) TotalBreakMs() int64 {
	total := e.state.SessionBreakMs

	if d := e.OpenPauseMs(); d >= cigaretteThresholdMs {
		total += d
	}

	return total
}

// TotalCigaretteMs is the cigarette time of the current work session as
// of now, including an open pause still under the threshold.
func (e *Engine) TotalCigaretteMs() int64 {
	total := e.state.SessionCigaretteMs

	if d := e.OpenPauseMs(); d > 0 && d < cigaretteThresholdMs {
		total += d
	}

	return total
}

// Totals aggregates logged time by type.
type Totals struct {
	WorkMs      int64
	BreakMs     int64
	CigaretteMs int64
}

// LifetimeTotals sums the whole session log, embedded breaks included.
// Open sessions are measured up to now.
func (e *Engine) LifetimeTotals() Totals {
	now := e.nowMs()

	var t Totals

	for i := range e.state.Sessions {
		sess := &e.state.Sessions[i]

		switch sess.Type {
		case models.Work:
			t.WorkMs += sess.DurationMs(now)
		case models.Break:
			t.BreakMs += sess.DurationMs(now)
		case models.Cigarette:
			t.CigaretteMs += sess.DurationMs(now)
		}

		for _, wb := range sess.Breaks {
			if wb.Type == models.Cigarette {
				t.CigaretteMs += wb.Duration
			} else {
				t.BreakMs += wb.Duration
			}
		}
	}

	return t
}
