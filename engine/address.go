package engine

import (
	"sort"
	"strings"

	"github.com/maruel/natural"

	"github.com/radum/pontaj/internal/models"
)

// CurrentAddress resolves the address attached to finalized sessions.
// Precedence: custom override, then the selected extra address, then the
// default.
func (e *Engine) CurrentAddress() string {
	s := e.state

	if s.CustomAddress != nil {
		return *s.CustomAddress
	}

	if s.SelectedAddressID != nil {
		for i := range s.ExtraAddresses {
			if s.ExtraAddresses[i].ID == *s.SelectedAddressID {
				return s.ExtraAddresses[i].Address
			}
		}
	}

	return s.DefaultAddress
}

// SetDefaultAddress updates the fallback address.
func (e *Engine) SetDefaultAddress(addr string) {
	addr = strings.TrimSpace(addr)
	if addr == e.state.DefaultAddress {
		return
	}

	e.state.DefaultAddress = addr
	e.persist()
}

// SetCustomAddress installs or, given a blank value, clears the custom
// override.
func (e *Engine) SetCustomAddress(addr string) {
	addr = strings.TrimSpace(addr)

	if addr == "" {
		e.state.CustomAddress = nil
	} else {
		e.state.CustomAddress = models.Ptr(addr)
	}

	e.persist()
}

// AddExtraAddress appends a named address and returns the stored record.
func (e *Engine) AddExtraAddress(name, address string) models.ExtraAddress {
	extra := models.ExtraAddress{
		ID:      e.newID(),
		Name:    strings.TrimSpace(name),
		Address: strings.TrimSpace(address),
	}

	e.state.ExtraAddresses = append(e.state.ExtraAddresses, extra)
	e.persist()

	return extra
}

// UpdateExtraAddress replaces the name and address of an existing record.
func (e *Engine) UpdateExtraAddress(id, name, address string) bool {
	for i := range e.state.ExtraAddresses {
		if e.state.ExtraAddresses[i].ID != id {
			continue
		}

		e.state.ExtraAddresses[i] = models.ExtraAddress{
			ID:      id,
			Name:    strings.TrimSpace(name),
			Address: strings.TrimSpace(address),
		}

		e.persist()

		return true
	}

	return false
}

// DeleteExtraAddress removes a record, clearing the selection if it
// pointed at it.
func (e *Engine) DeleteExtraAddress(id string) bool {
	for i := range e.state.ExtraAddresses {
		if e.state.ExtraAddresses[i].ID != id {
			continue
		}

		e.state.ExtraAddresses = append(
			e.state.ExtraAddresses[:i],
			e.state.ExtraAddresses[i+1:]...,
		)

		if e.state.SelectedAddressID != nil &&
			*e.state.SelectedAddressID == id {
			e.state.SelectedAddressID = nil
		}

		e.persist()

		return true
	}

	return false
}

// SelectAddress marks an extra address as current; an empty id clears
// the selection.
func (e *Engine) SelectAddress(id string) {
	if id == "" {
		e.state.SelectedAddressID = nil
	} else {
		e.state.SelectedAddressID = models.Ptr(id)
	}

	e.persist()
}

// ExtraAddresses returns the address book sorted naturally by name.
func (e *Engine) ExtraAddresses() []models.ExtraAddress {
	out := append(
		[]models.ExtraAddress(nil),
		e.state.ExtraAddresses...,
	)

	sort.Slice(out, func(i, j int) bool {
		return natural.Less(out[i].Name, out[j].Name)
	})

	return out
}

// DefaultAddress returns the fallback address.
func (e *Engine) DefaultAddress() string {
	return e.state.DefaultAddress
}

// CustomAddress returns the custom override, or nil.
func (e *Engine) CustomAddress() *string {
	return models.ClonePtr(e.state.CustomAddress)
}

// SelectedAddressID returns the id of the selected extra address, or nil.
func (e *Engine) SelectedAddressID() *string {
	return models.ClonePtr(e.state.SelectedAddressID)
}
