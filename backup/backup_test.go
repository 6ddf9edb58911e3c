package backup_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/radum/pontaj/backup"
	"github.com/radum/pontaj/internal/models"
)

func sampleState() *models.TimerState {
	state := models.DefaultState()

	state.DefaultAddress = "Main Street 1"
	state.CustomAddress = models.Ptr("Pop-up Site")
	state.ExtraAddresses = []models.ExtraAddress{
		{ID: "a1", Name: "client", Address: "Client Street 2"},
	}
	state.SelectedAddressID = models.Ptr("a1")
	state.Sessions = []models.Session{
		{
			ID:        "s1",
			Type:      models.Work,
			StartedAt: 1700000000000,
			EndedAt:   models.Ptr(int64(1700000170000)),
			Note:      "shift",
			Address:   "Main Street 1",
			Breaks: []models.WorkBreak{
				{
					ID:        "b1",
					Type:      models.Cigarette,
					StartedAt: 1700000060000,
					EndedAt:   1700000120000,
					Duration:  60000,
				},
			},
		},
	}

	return state
}

func TestExportReconcileRoundTrip(t *testing.T) {
	state := sampleState()

	data, err := backup.Export(state, time.Unix(1700000200, 0))
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	restored := models.DefaultState()

	applied, err := backup.Reconcile(restored, data)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	if len(applied) == 0 {
		t.Fatal("Reconcile applied no fields")
	}

	if diff := cmp.Diff(state, restored); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestExportEnvelope(t *testing.T) {
	data, err := backup.Export(sampleState(), time.Unix(1700000200, 0))
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	var env struct {
		ExportedAt string          `json:"exportedAt"`
		Version    string          `json:"version"`
		State      json.RawMessage `json:"state"`
	}

	err = json.Unmarshal(data, &env)
	if err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}

	if env.Version != backup.Version {
		t.Errorf("version = %q, want %q", env.Version, backup.Version)
	}

	if _, err := time.Parse(time.RFC3339, env.ExportedAt); err != nil {
		t.Errorf("exportedAt %q is not RFC3339: %v", env.ExportedAt, err)
	}

	if len(env.State) == 0 {
		t.Error("envelope carries no state")
	}
}

func TestReconcileAcceptsRawState(t *testing.T) {
	// older backups stored the state object without an envelope
	raw, err := json.Marshal(sampleState())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	restored := models.DefaultState()

	_, err = backup.Reconcile(restored, raw)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	if restored.DefaultAddress != "Main Street 1" {
		t.Errorf("defaultAddress = %q", restored.DefaultAddress)
	}

	if len(restored.Sessions) != 1 {
		t.Errorf("sessions = %d, want 1", len(restored.Sessions))
	}
}

func TestReconcilePartialPayload(t *testing.T) {
	state := sampleState()
	before := state.Clone()

	applied, err := backup.Reconcile(
		state,
		[]byte(`{"defaultAddress":"New Address 9"}`),
	)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	if diff := cmp.Diff([]string{"defaultAddress"}, applied); diff != "" {
		t.Errorf("applied fields mismatch (-want +got):\n%s", diff)
	}

	if state.DefaultAddress != "New Address 9" {
		t.Errorf("defaultAddress = %q", state.DefaultAddress)
	}

	// everything else stays as it was
	if diff := cmp.Diff(before.Sessions, state.Sessions); diff != "" {
		t.Errorf("sessions changed by partial payload:\n%s", diff)
	}

	if diff := cmp.Diff(before.CustomAddress, state.CustomAddress); diff != "" {
		t.Errorf("customAddress changed by partial payload:\n%s", diff)
	}
}

func TestReconcileNullLeavesFieldUntouched(t *testing.T) {
	state := sampleState()

	_, err := backup.Reconcile(state, []byte(`{"sessions":null}`))
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	if len(state.Sessions) != 1 {
		t.Errorf("null sessions cleared the log: %d entries",
			len(state.Sessions))
	}
}

func TestReconcileRejectsNonListSessions(t *testing.T) {
	state := sampleState()
	before := state.Clone()

	_, err := backup.Reconcile(
		state,
		[]byte(`{"sessions":{"not":"a list"},"defaultAddress":"X"}`),
	)
	if err == nil {
		t.Fatal("non-list sessions accepted")
	}

	if !strings.Contains(err.Error(), "'sessions' must be a list") {
		t.Errorf("unexpected error: %v", err)
	}

	// validation failure leaves the whole state untouched
	if diff := cmp.Diff(before, state); diff != "" {
		t.Errorf("state modified by rejected payload:\n%s", diff)
	}
}

func TestReconcileRejectsGarbage(t *testing.T) {
	state := models.DefaultState()

	if _, err := backup.Reconcile(state, []byte(`{{{`)); err == nil {
		t.Error("malformed JSON accepted")
	}

	if _, err := backup.Reconcile(state, nil); err == nil {
		t.Error("empty payload accepted")
	}
}
