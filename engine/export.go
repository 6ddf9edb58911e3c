package engine

import (
	"github.com/radum/pontaj/backup"
)

// ExportData serializes the full state as a versioned JSON envelope.
func (e *Engine) ExportData() ([]byte, error) {
	return backup.Export(e.state.Clone(), e.now())
}

// ImportData restores state from an exported payload. Recognized fields
// are applied independently; missing fields keep their current values.
// The merged result is persisted synchronously so restore failures are
// surfaced to the caller.
func (e *Engine) ImportData(data []byte) ([]string, error) {
	applied, err := backup.Reconcile(e.state, data)
	if err != nil {
		return nil, err
	}

	if len(applied) > 0 {
		err = e.Persist()
		if err != nil {
			return applied, err
		}
	}

	return applied, nil
}
