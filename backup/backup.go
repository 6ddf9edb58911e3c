// Package backup implements the import/export gateway: it serializes the
// full timer state as a self-describing, versioned JSON envelope and
// restores it field by field.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/radum/pontaj/internal/models"
)

// Version identifies the envelope schema.
const Version = "2.0.0"

var (
	errEmptyPayload    = errors.New("import payload is empty")
	errSessionsNotList = errors.New("'sessions' must be a list")
)

type envelope struct {
	ExportedAt string          `json:"exportedAt"`
	Version    string          `json:"version"`
	State      json.RawMessage `json:"state"`
}

// partialState mirrors TimerState with per-field presence: a nil field
// was absent from the payload and leaves the current value untouched.
type partialState struct {
	Sessions           json.RawMessage        `json:"sessions"`
	DefaultAddress     *string                `json:"defaultAddress"`
	CustomAddress      *string                `json:"customAddress"`
	ExtraAddresses     *[]models.ExtraAddress `json:"extraAddresses"`
	SelectedAddressID  *string                `json:"selectedAddressId"`
	ActiveType         *models.SessionType    `json:"activeType"`
	ActiveStartedAt    *int64                 `json:"activeStartedAt"`
	PausedAt           *int64                 `json:"pausedAt"`
	BreakStartedAt     *int64                 `json:"breakStartedAt"`
	BreakSessionID     *string                `json:"breakSessionId"`
	TotalPausedMs      *int64                 `json:"totalPausedMs"`
	SessionWorkMs      *int64                 `json:"sessionWorkMs"`
	SessionBreakMs     *int64                 `json:"sessionBreakMs"`
	SessionCigaretteMs *int64                 `json:"sessionCigaretteMs"`
	CurrentWorkBreaks  *[]models.WorkBreak    `json:"currentWorkBreaks"`
	CurrentSessionID   *string                `json:"currentSessionId"`
}

// Export serializes the state into the versioned envelope.
func Export(state *models.TimerState, now time.Time) ([]byte, error) {
	env := struct {
		ExportedAt string             `json:"exportedAt"`
		Version    string             `json:"version"`
		State      *models.TimerState `json:"state"`
	}{
		ExportedAt: now.UTC().Format(time.RFC3339),
		Version:    Version,
		State:      state,
	}

	return json.MarshalIndent(env, "", "  ")
}

// Reconcile applies an exported payload onto state and reports which
// fields were applied. It accepts either the enveloped form or a raw
// state object, for compatibility with older file-based backups. All
// validation happens before the first field is applied, so a rejected
// payload leaves the state untouched.
func Reconcile(state *models.TimerState, data []byte) ([]string, error) {
	if len(data) == 0 {
		return nil, errEmptyPayload
	}

	var env envelope

	err := json.Unmarshal(data, &env)
	if err != nil {
		return nil, fmt.Errorf("unable to parse import payload: %w", err)
	}

	raw := env.State
	if len(raw) == 0 {
		// raw state object, no envelope
		raw = data
	}

	var partial partialState

	err = json.Unmarshal(raw, &partial)
	if err != nil {
		return nil, fmt.Errorf("unable to parse import payload: %w", err)
	}

	var sessions []models.Session

	if len(partial.Sessions) > 0 && !isJSONNull(partial.Sessions) {
		err = json.Unmarshal(partial.Sessions, &sessions)
		if err != nil {
			return nil, fmt.Errorf(
				"invalid import payload: %w", errSessionsNotList,
			)
		}
	}

	var applied []string

	if sessions != nil {
		state.Sessions = sessions
		applied = append(applied, "sessions")
	}

	if partial.DefaultAddress != nil {
		state.DefaultAddress = *partial.DefaultAddress
		applied = append(applied, "defaultAddress")
	}

	if partial.CustomAddress != nil {
		state.CustomAddress = models.ClonePtr(partial.CustomAddress)
		applied = append(applied, "customAddress")
	}

	if partial.ExtraAddresses != nil {
		state.ExtraAddresses = append(
			[]models.ExtraAddress(nil), *partial.ExtraAddresses...,
		)
		applied = append(applied, "extraAddresses")
	}

	if partial.SelectedAddressID != nil {
		state.SelectedAddressID = models.ClonePtr(partial.SelectedAddressID)
		applied = append(applied, "selectedAddressId")
	}

	if partial.ActiveType != nil {
		state.ActiveType = models.ClonePtr(partial.ActiveType)
		applied = append(applied, "activeType")
	}

	if partial.ActiveStartedAt != nil {
		state.ActiveStartedAt = models.ClonePtr(partial.ActiveStartedAt)
		applied = append(applied, "activeStartedAt")
	}

	if partial.PausedAt != nil {
		state.PausedAt = models.ClonePtr(partial.PausedAt)
		applied = append(applied, "pausedAt")
	}

	if partial.BreakStartedAt != nil {
		state.BreakStartedAt = models.ClonePtr(partial.BreakStartedAt)
		applied = append(applied, "breakStartedAt")
	}

	if partial.BreakSessionID != nil {
		state.BreakSessionID = models.ClonePtr(partial.BreakSessionID)
		applied = append(applied, "breakSessionId")
	}

	if partial.TotalPausedMs != nil {
		state.TotalPausedMs = *partial.TotalPausedMs
		applied = append(applied, "totalPausedMs")
	}

	if partial.SessionWorkMs != nil {
		state.SessionWorkMs = *partial.SessionWorkMs
		applied = append(applied, "sessionWorkMs")
	}

	if partial.SessionBreakMs != nil {
		state.SessionBreakMs = *partial.SessionBreakMs
		applied = append(applied, "sessionBreakMs")
	}

	if partial.SessionCigaretteMs != nil {
		state.SessionCigaretteMs = *partial.SessionCigaretteMs
		applied = append(applied, "sessionCigaretteMs")
	}

	if partial.CurrentWorkBreaks != nil {
		state.CurrentWorkBreaks = append(
			[]models.WorkBreak(nil), *partial.CurrentWorkBreaks...,
		)
		applied = append(applied, "currentWorkBreaks")
	}

	if partial.CurrentSessionID != nil {
		state.CurrentSessionID = models.ClonePtr(partial.CurrentSessionID)
		applied = append(applied, "currentSessionId")
	}

	return applied, nil
}

func isJSONNull(raw json.RawMessage) bool {
	return string(raw) == "null"
}
