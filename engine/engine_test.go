package engine_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/radum/pontaj/engine"
	"github.com/radum/pontaj/internal/models"
	"github.com/radum/pontaj/internal/timeutil"
)

// memDB keeps the last saved snapshot in memory.
type memDB struct {
	state *models.TimerState
	saves int
}

func (d *memDB) LoadState() (*models.TimerState, error) {
	if d.state == nil {
		return models.DefaultState(), nil
	}

	return d.state.Clone(), nil
}

func (d *memDB) SaveState(state *models.TimerState) error {
	d.state = state.Clone()
	d.saves++

	return nil
}

func (d *memDB) Close() error { return nil }
func (d *memDB) Open() error  { return nil }

// slowDB stalls writes of snapshots that still show an active timer, so
// an earlier persist can finish after a later one was requested.
type slowDB struct {
	memDB
	delay time.Duration
}

func (d *slowDB) SaveState(state *models.TimerState) error {
	if state.ActiveType != nil {
		time.Sleep(d.delay)
	}

	return d.memDB.SaveState(state)
}

// fakeClock advances only when told to.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestEngine(t *testing.T) (*engine.Engine, *fakeClock, *memDB) {
	t.Helper()

	clock := &fakeClock{
		now: time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC),
	}

	var seq int

	db := &memDB{}

	eng, err := engine.New(
		db,
		engine.WithClock(clock.Now),
		engine.WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		}),
	)
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}

	return eng, clock, db
}

func TestNetDurationExcludesPausedTime(t *testing.T) {
	eng, clock, _ := newTestEngine(t)

	eng.StartWork()
	start := *eng.ActiveStartedAt()

	clock.Advance(time.Hour)
	eng.StartBreak()

	clock.Advance(10 * time.Minute)
	eng.ResumeWork()

	clock.Advance(time.Hour)

	sess := eng.EndCurrent("done")
	if sess == nil {
		t.Fatal("EndCurrent returned nil with an active session")
	}

	wantNet := 2 * timeutil.MsInHour

	if got := *sess.EndedAt - sess.StartedAt; got != wantNet {
		t.Errorf("net duration = %d, want %d", got, wantNet)
	}

	// the end timestamp is compressed: start + net, not wall-clock end
	if want := start + wantNet; *sess.EndedAt != want {
		t.Errorf("endedAt = %d, want %d", *sess.EndedAt, want)
	}

	if len(sess.Breaks) != 1 {
		t.Fatalf("embedded breaks = %d, want 1", len(sess.Breaks))
	}

	wb := sess.Breaks[0]
	if wb.Type != models.Break {
		t.Errorf("10 minute pause classified as %s, want break", wb.Type)
	}

	if wb.Duration != 10*timeutil.MsInMinute {
		t.Errorf("break duration = %d, want %d",
			wb.Duration, 10*timeutil.MsInMinute)
	}
}

func TestPauseClassificationBoundary(t *testing.T) {
	testCases := []struct {
		name  string
		pause time.Duration
		want  models.SessionType
	}{
		{"under five minutes", 4*time.Minute + 59*time.Second, models.Cigarette},
		{"exactly five minutes", 5 * time.Minute, models.Break},
		{"over five minutes", 6 * time.Minute, models.Break},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			eng, clock, _ := newTestEngine(t)

			eng.StartWork()
			clock.Advance(30 * time.Minute)

			eng.StartBreak()
			clock.Advance(tc.pause)

			eng.ResumeWork()
			clock.Advance(time.Minute)

			sess := eng.EndCurrent("")
			if sess == nil {
				t.Fatal("EndCurrent returned nil")
			}

			if got := sess.Breaks[0].Type; got != tc.want {
				t.Errorf("pause of %v classified as %s, want %s",
					tc.pause, got, tc.want)
			}
		})
	}
}

func TestOpenPauseClosedByEnd(t *testing.T) {
	eng, clock, _ := newTestEngine(t)

	eng.StartWork()
	clock.Advance(time.Hour)

	eng.StartBreak()
	clock.Advance(20 * time.Minute)

	// ending while paused closes the pause first
	sess := eng.EndCurrent("")
	if sess == nil {
		t.Fatal("EndCurrent returned nil")
	}

	if got := *sess.EndedAt - sess.StartedAt; got != timeutil.MsInHour {
		t.Errorf("net duration = %d, want %d", got, timeutil.MsInHour)
	}

	if len(sess.Breaks) != 1 || sess.Breaks[0].Type != models.Break {
		t.Fatalf("expected one embedded break, got %v", sess.Breaks)
	}
}

func TestEndCurrentIdleIsNoOp(t *testing.T) {
	eng, _, db := newTestEngine(t)

	if sess := eng.EndCurrent(""); sess != nil {
		t.Errorf("EndCurrent on idle engine = %v, want nil", sess)
	}

	eng.Flush()

	if db.saves != 0 {
		t.Errorf("idle EndCurrent persisted %d times, want 0", db.saves)
	}

	if got := len(eng.Sessions()); got != 0 {
		t.Errorf("session log has %d entries, want 0", got)
	}
}

func TestZeroNetSessionIsDiscarded(t *testing.T) {
	eng, _, _ := newTestEngine(t)

	eng.StartWork()

	if sess := eng.EndCurrent(""); sess != nil {
		t.Errorf("zero-length session logged: %v", sess)
	}

	if got := len(eng.Sessions()); got != 0 {
		t.Errorf("session log has %d entries, want 0", got)
	}

	if eng.IsRunning() || eng.IsPaused() {
		t.Error("engine not idle after discarding a zero-net session")
	}
}

func TestResumeWorkWhenIdleStartsWork(t *testing.T) {
	eng, _, _ := newTestEngine(t)

	eng.ResumeWork()

	if !eng.IsRunning() {
		t.Error("ResumeWork on idle engine did not start a work session")
	}
}

func TestStartBreakRequiresRunningWork(t *testing.T) {
	eng, clock, _ := newTestEngine(t)

	eng.StartBreak()

	if eng.IsPaused() {
		t.Fatal("StartBreak on idle engine opened a pause")
	}

	eng.StartWork()
	clock.Advance(time.Minute)
	eng.StartBreak()

	pausedAt := clock.now

	// a second StartBreak must not restart the open pause
	clock.Advance(3 * time.Minute)
	eng.StartBreak()

	clock.Advance(time.Minute)
	eng.ResumeWork()

	sess := eng.EndCurrent("")
	if sess == nil {
		t.Fatal("EndCurrent returned nil")
	}

	wantStart := timeutil.ToMs(pausedAt)
	if got := sess.Breaks[0].StartedAt; got != wantStart {
		t.Errorf("pause start = %d, want %d", got, wantStart)
	}
}

func TestAccumulatorsResetOnStartWork(t *testing.T) {
	eng, clock, _ := newTestEngine(t)

	eng.StartWork()
	clock.Advance(time.Hour)
	eng.StartBreak()
	clock.Advance(10 * time.Minute)
	eng.ResumeWork()
	clock.Advance(time.Minute)

	// starting fresh finalizes the previous session and resets totals
	eng.StartWork()

	if got := eng.TotalWorkMs(); got != 0 {
		t.Errorf("TotalWorkMs after StartWork = %d, want 0", got)
	}

	if got := eng.TotalBreakMs(); got != 0 {
		t.Errorf("TotalBreakMs after StartWork = %d, want 0", got)
	}

	if got := len(eng.Sessions()); got != 1 {
		t.Errorf("previous session not finalized: log has %d entries", got)
	}
}

func TestLiveTotalsWhileRunning(t *testing.T) {
	eng, clock, _ := newTestEngine(t)

	eng.StartWork()
	clock.Advance(30 * time.Minute)

	if got := eng.TotalWorkMs(); got != 30*timeutil.MsInMinute {
		t.Errorf("TotalWorkMs = %d, want %d", got, 30*timeutil.MsInMinute)
	}

	eng.StartBreak()
	clock.Advance(2 * time.Minute)

	// a short open pause shows up under cigarettes until it closes
	if got := eng.TotalCigaretteMs(); got != 2*timeutil.MsInMinute {
		t.Errorf("TotalCigaretteMs = %d, want %d",
			got, 2*timeutil.MsInMinute)
	}

	if got := eng.TotalBreakMs(); got != 0 {
		t.Errorf("TotalBreakMs = %d, want 0", got)
	}

	clock.Advance(4 * time.Minute)

	// past the threshold the same pause migrates to the break total
	if got := eng.TotalBreakMs(); got != 6*timeutil.MsInMinute {
		t.Errorf("TotalBreakMs = %d, want %d", got, 6*timeutil.MsInMinute)
	}

	if got := eng.TotalCigaretteMs(); got != 0 {
		t.Errorf("TotalCigaretteMs = %d, want 0", got)
	}

	// work total is frozen while paused
	if got := eng.TotalWorkMs(); got != 30*timeutil.MsInMinute {
		t.Errorf("TotalWorkMs while paused = %d, want %d",
			got, 30*timeutil.MsInMinute)
	}
}

func TestAddManualSession(t *testing.T) {
	eng, clock, _ := newTestEngine(t)

	start := timeutil.ToMs(clock.now.Add(-2 * time.Hour))
	end := timeutil.ToMs(clock.now.Add(-time.Hour))

	sess, err := eng.AddManualSession(
		models.Work, start, models.Ptr(end), "yesterday", "office",
	)
	if err != nil {
		t.Fatalf("AddManualSession: %v", err)
	}

	if !sess.Manual {
		t.Error("manual session not flagged as manual")
	}

	got := eng.Sessions()
	if len(got) != 1 {
		t.Fatalf("session log has %d entries, want 1", len(got))
	}

	if diff := cmp.Diff(*sess, got[0]); diff != "" {
		t.Errorf("logged session mismatch (-want +got):\n%s", diff)
	}
}

func TestAddManualSessionRejectsInvalidInterval(t *testing.T) {
	eng, clock, _ := newTestEngine(t)

	start := timeutil.ToMs(clock.now)

	_, err := eng.AddManualSession(
		models.Work, start, models.Ptr(start), "", "",
	)
	if err == nil {
		t.Fatal("zero-length interval accepted")
	}

	_, err = eng.AddManualSession(
		models.Work, start, models.Ptr(start-1), "", "",
	)
	if err == nil {
		t.Fatal("inverted interval accepted")
	}

	if got := len(eng.Sessions()); got != 0 {
		t.Errorf("rejected sessions reached the log: %d entries", got)
	}
}

func TestAddManualSessionRejectsUnknownType(t *testing.T) {
	eng, clock, _ := newTestEngine(t)

	start := timeutil.ToMs(clock.now)

	_, err := eng.AddManualSession(
		models.SessionType("nap"), start, nil, "", "",
	)
	if err == nil {
		t.Fatal("unknown session type accepted")
	}
}

func TestImportSessionsSkipsInvalidEntries(t *testing.T) {
	eng, clock, _ := newTestEngine(t)

	now := timeutil.ToMs(clock.now)

	added, err := eng.ImportSessions([]models.ImportedSessionInput{
		{Type: models.Work, StartedAt: now - 1000, EndedAt: models.Ptr(now)},
		{Type: models.Work, StartedAt: now, EndedAt: models.Ptr(now - 1)},
		{Type: models.SessionType("nap"), StartedAt: now},
		{Type: models.Break, StartedAt: now - 5000, EndedAt: models.Ptr(now)},
	})

	if added != 2 {
		t.Errorf("added = %d, want 2", added)
	}

	if err == nil {
		t.Error("invalid entries produced no error")
	}

	if got := len(eng.Sessions()); got != 2 {
		t.Errorf("session log has %d entries, want 2", got)
	}
}

func TestUpdateSession(t *testing.T) {
	eng, clock, _ := newTestEngine(t)

	start := timeutil.ToMs(clock.now.Add(-time.Hour))
	end := timeutil.ToMs(clock.now)

	sess, err := eng.AddManualSession(
		models.Work, start, models.Ptr(end), "", "",
	)
	if err != nil {
		t.Fatalf("AddManualSession: %v", err)
	}

	err = eng.UpdateSession(sess.ID, engine.SessionPatch{
		Note:    models.Ptr("edited"),
		EndedAt: models.Ptr(end + timeutil.MsInMinute),
	})
	if err != nil {
		t.Fatalf("UpdateSession: %v", err)
	}

	got, ok := eng.Session(sess.ID)
	if !ok {
		t.Fatal("session disappeared after update")
	}

	if got.Note != "edited" {
		t.Errorf("note = %q, want %q", got.Note, "edited")
	}

	if *got.EndedAt != end+timeutil.MsInMinute {
		t.Errorf("endedAt not updated")
	}

	// untouched fields survive
	if got.StartedAt != start {
		t.Errorf("startedAt changed by unrelated patch")
	}
}

func TestUpdateSessionRejectsInvalidResult(t *testing.T) {
	eng, clock, _ := newTestEngine(t)

	start := timeutil.ToMs(clock.now.Add(-time.Hour))
	end := timeutil.ToMs(clock.now)

	sess, err := eng.AddManualSession(
		models.Work, start, models.Ptr(end), "", "",
	)
	if err != nil {
		t.Fatalf("AddManualSession: %v", err)
	}

	err = eng.UpdateSession(sess.ID, engine.SessionPatch{
		EndedAt: models.Ptr(start),
	})
	if err == nil {
		t.Fatal("update producing end <= start accepted")
	}

	got, _ := eng.Session(sess.ID)
	if *got.EndedAt != end {
		t.Error("rejected update modified the session")
	}
}

func TestDeleteSession(t *testing.T) {
	eng, clock, _ := newTestEngine(t)

	start := timeutil.ToMs(clock.now.Add(-time.Hour))

	sess, err := eng.AddManualSession(models.Work, start, nil, "", "")
	if err != nil {
		t.Fatalf("AddManualSession: %v", err)
	}

	err = eng.DeleteSession(sess.ID)
	if err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}

	if _, ok := eng.Session(sess.ID); ok {
		t.Error("session still present after delete")
	}

	if err := eng.DeleteSession("missing"); err == nil {
		t.Error("deleting a missing session did not fail")
	}
}

func TestSessionsAreNewestFirst(t *testing.T) {
	eng, clock, _ := newTestEngine(t)

	eng.StartWork()
	clock.Advance(time.Hour)
	eng.StartWork()
	clock.Advance(time.Hour)
	eng.EndCurrent("")

	sessions := eng.Sessions()
	if len(sessions) != 2 {
		t.Fatalf("session log has %d entries, want 2", len(sessions))
	}

	if sessions[0].StartedAt < sessions[1].StartedAt {
		t.Error("session log is not newest first")
	}
}

func TestSlowEarlierPersistCannotClobberNewerOne(t *testing.T) {
	clock := &fakeClock{
		now: time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC),
	}

	db := &slowDB{delay: 50 * time.Millisecond}

	eng, err := engine.New(db, engine.WithClock(clock.Now))
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}

	// the StartWork snapshot shows an active timer and writes slowly;
	// the EndCurrent snapshot must still end up as the durable state
	eng.StartWork()
	clock.Advance(time.Hour)

	if sess := eng.EndCurrent("shift"); sess == nil {
		t.Fatal("EndCurrent returned nil")
	}

	eng.Flush()

	durable, err := db.LoadState()
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}

	if !durable.Idle() {
		t.Errorf("durable state still shows an active timer of type %q",
			*durable.ActiveType)
	}

	if got := len(durable.Sessions); got != 1 {
		t.Errorf("durable state has %d sessions, want 1", got)
	}
}

func TestPersistedStateSurvivesReload(t *testing.T) {
	eng, clock, db := newTestEngine(t)

	eng.StartWork()
	clock.Advance(time.Hour)
	eng.EndCurrent("shift")
	eng.Flush()

	reloaded, err := engine.New(db, engine.WithClock(clock.Now))
	if err != nil {
		t.Fatalf("engine.New after reload: %v", err)
	}

	if diff := cmp.Diff(eng.Sessions(), reloaded.Sessions()); diff != "" {
		t.Errorf("reloaded log mismatch (-want +got):\n%s", diff)
	}
}

func TestCurrentAddressPrecedence(t *testing.T) {
	eng, _, _ := newTestEngine(t)

	eng.SetDefaultAddress("Home Base 1")

	if got := eng.CurrentAddress(); got != "Home Base 1" {
		t.Errorf("CurrentAddress = %q, want default", got)
	}

	extra := eng.AddExtraAddress("client", "Client Street 2")
	eng.SelectAddress(extra.ID)

	if got := eng.CurrentAddress(); got != "Client Street 2" {
		t.Errorf("CurrentAddress = %q, want selected extra", got)
	}

	eng.SetCustomAddress("Pop-up Site 3")

	if got := eng.CurrentAddress(); got != "Pop-up Site 3" {
		t.Errorf("CurrentAddress = %q, want custom override", got)
	}

	eng.SetCustomAddress("")

	if got := eng.CurrentAddress(); got != "Client Street 2" {
		t.Errorf("CurrentAddress = %q after clearing custom", got)
	}

	if !eng.DeleteExtraAddress(extra.ID) {
		t.Fatal("DeleteExtraAddress failed")
	}

	if got := eng.CurrentAddress(); got != "Home Base 1" {
		t.Errorf("CurrentAddress = %q, want default after delete", got)
	}

	if eng.SelectedAddressID() != nil {
		t.Error("selection not cleared when its address was deleted")
	}
}

func TestFinalizedSessionCarriesAddress(t *testing.T) {
	eng, clock, _ := newTestEngine(t)

	eng.SetDefaultAddress("Shop Floor")

	eng.StartWork()
	clock.Advance(time.Hour)

	sess := eng.EndCurrent("")
	if sess == nil {
		t.Fatal("EndCurrent returned nil")
	}

	if sess.Address != "Shop Floor" {
		t.Errorf("address = %q, want %q", sess.Address, "Shop Floor")
	}
}

func TestConsecutivePausesEmbedInChronologicalOrder(t *testing.T) {
	eng, clock, _ := newTestEngine(t)

	eng.StartWork()
	clock.Advance(30 * time.Minute)

	eng.StartBreak()
	clock.Advance(2 * time.Minute)
	eng.ResumeWork()

	clock.Advance(30 * time.Minute)

	eng.StartBreak()
	clock.Advance(10 * time.Minute)
	eng.ResumeWork()

	clock.Advance(30 * time.Minute)

	sess := eng.EndCurrent("")
	if sess == nil {
		t.Fatal("EndCurrent returned nil")
	}

	if len(sess.Breaks) != 2 {
		t.Fatalf("embedded breaks = %d, want 2", len(sess.Breaks))
	}

	first, second := sess.Breaks[0], sess.Breaks[1]

	if first.StartedAt >= second.StartedAt {
		t.Errorf("breaks out of chronological order: %d >= %d",
			first.StartedAt, second.StartedAt)
	}

	if first.Type != models.Cigarette {
		t.Errorf("2 minute pause classified as %s, want cigarette",
			first.Type)
	}

	if second.Type != models.Break {
		t.Errorf("10 minute pause classified as %s, want break",
			second.Type)
	}

	if first.Duration != 2*timeutil.MsInMinute {
		t.Errorf("first pause duration = %d, want %d",
			first.Duration, 2*timeutil.MsInMinute)
	}

	if second.Duration != 10*timeutil.MsInMinute {
		t.Errorf("second pause duration = %d, want %d",
			second.Duration, 10*timeutil.MsInMinute)
	}

	// both pauses lie within the session's logged interval
	for _, wb := range sess.Breaks {
		if wb.StartedAt < sess.StartedAt || wb.EndedAt > *sess.EndedAt {
			t.Errorf("break [%d, %d] outside session [%d, %d]",
				wb.StartedAt, wb.EndedAt, sess.StartedAt, *sess.EndedAt)
		}
	}
}

func TestLifetimeTotalsCountEmbeddedBreaks(t *testing.T) {
	eng, clock, _ := newTestEngine(t)

	eng.StartWork()
	clock.Advance(time.Hour)
	eng.StartBreak()
	clock.Advance(10 * time.Minute)
	eng.ResumeWork()
	clock.Advance(30 * time.Minute)
	eng.StartBreak()
	clock.Advance(2 * time.Minute)
	eng.ResumeWork()
	clock.Advance(30 * time.Minute)
	eng.EndCurrent("")

	totals := eng.LifetimeTotals()

	if want := 2 * timeutil.MsInHour; totals.WorkMs != want {
		t.Errorf("WorkMs = %d, want %d", totals.WorkMs, want)
	}

	if want := 10 * timeutil.MsInMinute; totals.BreakMs != want {
		t.Errorf("BreakMs = %d, want %d", totals.BreakMs, want)
	}

	if want := 2 * timeutil.MsInMinute; totals.CigaretteMs != want {
		t.Errorf("CigaretteMs = %d, want %d", totals.CigaretteMs, want)
	}
}
