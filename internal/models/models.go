// Package models defines the persisted records shared by the timer engine,
// the storage layer, and the import/export gateway.
package models

// SessionType identifies what a logged interval was spent on.
type SessionType string

const (
	Work      SessionType = "work"
	Break     SessionType = "break"
	Cigarette SessionType = "cigarette"
)

// Valid reports whether t is one of the known session types.
func (t SessionType) Valid() bool {
	switch t {
	case Work, Break, Cigarette:
		return true
	}

	return false
}

// WorkBreak is a sub-interval of a work session during which work was
// paused. Its type is decided once, at the moment the pause ends.
type WorkBreak struct {
	ID        string      `json:"id"`
	Type      SessionType `json:"type"`
	StartedAt int64       `json:"startedAt"`
	EndedAt   int64       `json:"endedAt"`
	Duration  int64       `json:"duration"`
}

// Session is a completed or still-open logged interval. Timestamps are
// epoch milliseconds and EndedAt is nil only for open manual entries; the
// live timer always finalizes a session before logging it.
type Session struct {
	ID        string      `json:"id"`
	Type      SessionType `json:"type"`
	StartedAt int64       `json:"startedAt"`
	EndedAt   *int64      `json:"endedAt"`
	Manual    bool        `json:"manual"`
	Note      string      `json:"note,omitempty"`
	Address   string      `json:"address,omitempty"`
	Breaks    []WorkBreak `json:"breaks,omitempty"`
}

// DurationMs returns the session length, using now for open sessions.
func (s *Session) DurationMs(now int64) int64 {
	end := now
	if s.EndedAt != nil {
		end = *s.EndedAt
	}

	if end < s.StartedAt {
		return 0
	}

	return end - s.StartedAt
}

// ExtraAddress is a named address that can be selected as the current one.
type ExtraAddress struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// ImportedSessionInput is a well-formed session candidate produced by an
// external row parser and fed into manual session insertion.
type ImportedSessionInput struct {
	Type      SessionType
	StartedAt int64
	EndedAt   *int64
	Note      string
	Address   string
	Manual    bool
}

// TimerState is the full persisted state: the single active timer, its
// running accumulators, the session log, and the address book.
//
// Nullable wire fields are pointers so that the stored JSON round-trips
// the original `tt2_state_v1` shape exactly.
type TimerState struct {
	ActiveType         *SessionType   `json:"activeType"`
	ActiveStartedAt    *int64         `json:"activeStartedAt"`
	PausedAt           *int64         `json:"pausedAt"`
	BreakStartedAt     *int64         `json:"breakStartedAt"`
	BreakSessionID     *string        `json:"breakSessionId"`
	TotalPausedMs      int64          `json:"totalPausedMs"`
	SessionWorkMs      int64          `json:"sessionWorkMs"`
	SessionBreakMs     int64          `json:"sessionBreakMs"`
	SessionCigaretteMs int64          `json:"sessionCigaretteMs"`
	CurrentWorkBreaks  []WorkBreak    `json:"currentWorkBreaks"`
	CurrentSessionID   *string        `json:"currentSessionId"`
	Sessions           []Session      `json:"sessions"`
	DefaultAddress     string         `json:"defaultAddress"`
	CustomAddress      *string        `json:"customAddress"`
	ExtraAddresses     []ExtraAddress `json:"extraAddresses"`
	SelectedAddressID  *string        `json:"selectedAddressId"`
}

// DefaultState returns the initial state of a fresh installation.
func DefaultState() *TimerState {
	return &TimerState{
		Sessions:       []Session{},
		ExtraAddresses: []ExtraAddress{},
	}
}

// Idle reports whether no timer is active.
func (s *TimerState) Idle() bool {
	return s.ActiveType == nil || s.ActiveStartedAt == nil
}

// Clone returns a deep copy of the state. The engine persists clones so
// that fire-and-forget writes never observe a half-applied mutation.
func (s *TimerState) Clone() *TimerState {
	c := *s

	c.ActiveType = ClonePtr(s.ActiveType)
	c.ActiveStartedAt = ClonePtr(s.ActiveStartedAt)
	c.PausedAt = ClonePtr(s.PausedAt)
	c.BreakStartedAt = ClonePtr(s.BreakStartedAt)
	c.BreakSessionID = ClonePtr(s.BreakSessionID)
	c.CurrentSessionID = ClonePtr(s.CurrentSessionID)
	c.CustomAddress = ClonePtr(s.CustomAddress)
	c.SelectedAddressID = ClonePtr(s.SelectedAddressID)

	c.CurrentWorkBreaks = append([]WorkBreak(nil), s.CurrentWorkBreaks...)
	c.ExtraAddresses = append([]ExtraAddress(nil), s.ExtraAddresses...)

	c.Sessions = make([]Session, len(s.Sessions))
	for i := range s.Sessions {
		c.Sessions[i] = *cloneSession(&s.Sessions[i])
	}

	return &c
}

func cloneSession(sess *Session) *Session {
	c := *sess
	c.EndedAt = ClonePtr(sess.EndedAt)
	c.Breaks = append([]WorkBreak(nil), sess.Breaks...)

	return &c
}

// CloneSession returns a deep copy of a single session record.
func CloneSession(sess *Session) *Session {
	return cloneSession(sess)
}

// ClonePtr returns a pointer to a copy of the pointed-to value, or nil.
func ClonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}

	v := *p

	return &v
}

// Ptr returns a pointer to v. It keeps call sites for the nullable wire
// fields readable.
func Ptr[T any](v T) *T {
	return &v
}
