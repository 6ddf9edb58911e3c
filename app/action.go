package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"
	"github.com/markusmobius/go-dateparser"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/radum/pontaj/engine"
	"github.com/radum/pontaj/finance"
	"github.com/radum/pontaj/internal/config"
	"github.com/radum/pontaj/internal/log"
	"github.com/radum/pontaj/internal/models"
	"github.com/radum/pontaj/internal/notify"
	"github.com/radum/pontaj/internal/timeutil"
	"github.com/radum/pontaj/internal/ui"
	"github.com/radum/pontaj/spreadsheet"
	"github.com/radum/pontaj/store"
	"github.com/radum/pontaj/tui"
)

var errUnknownSessionType = errors.New(
	"session type must be one of: work, break, cigarette",
)

// firstNonEmptyString returns its first non-empty argument, or "" if all
// arguments are empty.
func firstNonEmptyString(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}

	return ""
}

// engineHelper loads the configuration, opens the data store, and builds
// the engine. The returned closer flushes pending persists and releases
// the database lock.
func engineHelper(
	ctx *cli.Context,
) (*engine.Engine, *config.Config, func(), error) {
	cfg := config.Get(ctx)

	logger := log.Init(cfg.PathToLogFile)

	ui.DarkTheme = cfg.DarkTheme

	db, err := store.NewClient(cfg.PathToDB)
	if err != nil {
		return nil, nil, nil, err
	}

	eng, err := engine.New(db, engine.WithLogger(logger))
	if err != nil {
		_ = db.Close()
		return nil, nil, nil, err
	}

	if eng.DefaultAddress() == "" && cfg.DefaultAddress != "" {
		eng.SetDefaultAddress(cfg.DefaultAddress)
	}

	closer := func() {
		eng.Flush()

		_ = db.Close()
	}

	return eng, cfg, closer, nil
}

// parseWhen interprets a user-supplied moment, absolute or relative.
func parseWhen(s string) (int64, error) {
	dt, err := dateparser.Parse(&dateparser.Configuration{
		CurrentTime: time.Now(),
	}, s)
	if err != nil {
		return 0, fmt.Errorf("unable to interpret %q as a date: %w", s, err)
	}

	return timeutil.ToMs(dt.Time), nil
}

func parseSessionType(s string) (models.SessionType, error) {
	typ := models.SessionType(strings.ToLower(strings.TrimSpace(s)))
	if !typ.Valid() {
		return "", errUnknownSessionType
	}

	return typ, nil
}

func confirm(ctx *cli.Context, prompt string) bool {
	if ctx.Bool("yes") {
		return true
	}

	ok, _ := pterm.DefaultInteractiveConfirm.
		WithDefaultValue(false).
		Show(prompt)

	return ok
}

// defaultAction starts or continues the work session and opens the live
// timer screen.
func defaultAction(ctx *cli.Context) error {
	eng, cfg, closer, err := engineHelper(ctx)
	if err != nil {
		return err
	}

	defer closer()

	if !eng.IsRunning() && !eng.IsPaused() {
		eng.StartWork()
	}

	return tui.Run(eng, tui.Options{
		Styles:         tui.DefaultStyles(cfg.DarkTheme),
		TwentyFourHour: cfg.TwentyFourHour,
	})
}

// breakAction suspends the running work session.
func breakAction(ctx *cli.Context) error {
	eng, _, closer, err := engineHelper(ctx)
	if err != nil {
		return err
	}

	defer closer()

	if !eng.IsRunning() {
		pterm.Info.Println("No running work session to pause")
		return nil
	}

	eng.StartBreak()

	pterm.Success.Println("Break started")

	return nil
}

// resumeAction closes the open break, or starts working when idle.
func resumeAction(ctx *cli.Context) error {
	eng, _, closer, err := engineHelper(ctx)
	if err != nil {
		return err
	}

	defer closer()

	wasIdle := !eng.IsRunning() && !eng.IsPaused()

	eng.ResumeWork()

	if wasIdle {
		pterm.Success.Println("Work session started")
	} else {
		pterm.Success.Println("Back to work")
	}

	return nil
}

// endAction finalizes the active session, then notifies and runs the
// configured session command.
func endAction(ctx *cli.Context) error {
	eng, cfg, closer, err := engineHelper(ctx)
	if err != nil {
		return err
	}

	defer closer()

	sess := eng.EndCurrent(ctx.String("note"))
	if sess == nil {
		pterm.Info.Println("No active session to end")
		return nil
	}

	worked := timeutil.FormatMs(*sess.EndedAt - sess.StartedAt)

	pterm.Success.Printfln(
		"Session logged: %s of %s", worked, string(sess.Type),
	)

	notify.Desktop{Enabled: cfg.Notify}.Notify(
		"Pontaj",
		fmt.Sprintf("Session ended after %s", worked),
	)

	return runSessionCmd(cfg.SessionCmd)
}

// runSessionCmd executes the configured post-session command.
func runSessionCmd(sessionCmd string) error {
	if sessionCmd == "" {
		return nil
	}

	cmdSlice, err := shellquote.Split(sessionCmd)
	if err != nil {
		return fmt.Errorf("unable to parse session_cmd option: %w", err)
	}

	if len(cmdSlice) == 0 {
		return nil
	}

	cmd := exec.Command(cmdSlice[0], cmdSlice[1:]...)

	return cmd.Run()
}

// statusAction prints the state of the timer.
func statusAction(ctx *cli.Context) error {
	eng, cfg, closer, err := engineHelper(ctx)
	if err != nil {
		return err
	}

	defer closer()

	switch {
	case eng.IsPaused():
		kind := "break"
		if eng.OpenPauseMs() < engine.CigaretteThresholdMs() {
			kind = "cigarette"
		}

		pterm.Printfln("%s for %s",
			ui.Yellow("[Paused]"),
			timeutil.FormatMs(eng.OpenPauseMs()),
		)
		pterm.Printfln("current pause counts as: %s", kind)
	case eng.IsRunning():
		pterm.Printfln("%s %s",
			ui.Green("[Working]"),
			timeutil.FormatMs(eng.TotalWorkMs()),
		)
	default:
		pterm.Println("No session is running")
		return nil
	}

	if at := eng.ActiveStartedAt(); at != nil {
		pterm.Printfln(
			"started: %s",
			timeutil.FormatStamp(*at, cfg.TwentyFourHour),
		)
	}

	pterm.Printfln("work: %s  break: %s  cigarette: %s",
		timeutil.FormatMsShort(eng.TotalWorkMs()),
		timeutil.FormatMsShort(eng.TotalBreakMs()),
		timeutil.FormatMsShort(eng.TotalCigaretteMs()),
	)

	if addr := eng.CurrentAddress(); addr != "" {
		pterm.Printfln("address: %s", addr)
	}

	return nil
}

// addAction inserts a retroactive session into the log.
func addAction(ctx *cli.Context) error {
	eng, _, closer, err := engineHelper(ctx)
	if err != nil {
		return err
	}

	defer closer()

	typ, err := parseSessionType(ctx.String("type"))
	if err != nil {
		return err
	}

	startedAt, err := parseWhen(ctx.String("start"))
	if err != nil {
		return err
	}

	var endedAt *int64

	if raw := ctx.String("end"); raw != "" {
		ts, perr := parseWhen(raw)
		if perr != nil {
			return perr
		}

		endedAt = models.Ptr(ts)
	}

	sess, err := eng.AddManualSession(
		typ,
		startedAt,
		endedAt,
		ctx.String("note"),
		ctx.String("address"),
	)
	if err != nil {
		return err
	}

	pterm.Success.Printfln("Session %s added", sess.ID)

	return nil
}

// editAction patches a logged session field by field.
func editAction(ctx *cli.Context) error {
	id := ctx.Args().First()
	if id == "" {
		return errors.New("a session id is required")
	}

	eng, _, closer, err := engineHelper(ctx)
	if err != nil {
		return err
	}

	defer closer()

	var patch engine.SessionPatch

	if raw := ctx.String("type"); raw != "" {
		typ, perr := parseSessionType(raw)
		if perr != nil {
			return perr
		}

		patch.Type = models.Ptr(typ)
	}

	if raw := ctx.String("start"); raw != "" {
		ts, perr := parseWhen(raw)
		if perr != nil {
			return perr
		}

		patch.StartedAt = models.Ptr(ts)
	}

	if raw := ctx.String("end"); raw != "" {
		ts, perr := parseWhen(raw)
		if perr != nil {
			return perr
		}

		patch.EndedAt = models.Ptr(ts)
	}

	if ctx.IsSet("note") {
		patch.Note = models.Ptr(ctx.String("note"))
	}

	if ctx.IsSet("address") {
		patch.Address = models.Ptr(ctx.String("address"))
	}

	err = eng.UpdateSession(id, patch)
	if err != nil {
		return err
	}

	pterm.Success.Printfln("Session %s updated", id)

	return nil
}

// deleteAction removes a session from the log after confirmation.
func deleteAction(ctx *cli.Context) error {
	id := ctx.Args().First()
	if id == "" {
		return errors.New("a session id is required")
	}

	eng, _, closer, err := engineHelper(ctx)
	if err != nil {
		return err
	}

	defer closer()

	if !confirm(ctx, fmt.Sprintf("Delete session %s?", id)) {
		return nil
	}

	err = eng.DeleteSession(id)
	if err != nil {
		return err
	}

	pterm.Success.Printfln("Session %s deleted", id)

	return nil
}

// statsAction prints lifetime totals by session type.
func statsAction(ctx *cli.Context) error {
	eng, _, closer, err := engineHelper(ctx)
	if err != nil {
		return err
	}

	defer closer()

	totals := eng.LifetimeTotals()
	count := len(eng.Sessions())

	if ctx.Bool("json") {
		b, merr := json.Marshal(struct {
			Sessions    int   `json:"sessions"`
			WorkMs      int64 `json:"workMs"`
			BreakMs     int64 `json:"breakMs"`
			CigaretteMs int64 `json:"cigaretteMs"`
		}{count, totals.WorkMs, totals.BreakMs, totals.CigaretteMs})
		if merr != nil {
			return merr
		}

		fmt.Println(string(b))

		return nil
	}

	ui.PrintTable([][]string{
		{"SESSIONS", "WORK", "BREAKS", "CIGARETTES"},
		{
			fmt.Sprintf("%d", count),
			ui.Green(timeutil.FormatMs(totals.WorkMs)),
			ui.Yellow(timeutil.FormatMs(totals.BreakMs)),
			ui.Magenta(timeutil.FormatMs(totals.CigaretteMs)),
		},
	}, os.Stdout)

	return nil
}

// exportAction writes the full state to a JSON file.
func exportAction(ctx *cli.Context) error {
	eng, _, closer, err := engineHelper(ctx)
	if err != nil {
		return err
	}

	defer closer()

	data, err := eng.ExportData()
	if err != nil {
		return err
	}

	path := ctx.Args().First()
	if path == "" {
		path = fmt.Sprintf(
			"pontaj-export-%s.json",
			time.Now().Format("2006-01-02"),
		)
	}

	err = os.WriteFile(path, data, 0o644)
	if err != nil {
		return err
	}

	pterm.Success.Printfln("State exported to %s", path)

	return nil
}

// importAction restores state from an exported file.
func importAction(ctx *cli.Context) error {
	path := ctx.Args().First()
	if path == "" {
		return errors.New("a file to import is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	eng, _, closer, err := engineHelper(ctx)
	if err != nil {
		return err
	}

	defer closer()

	if !confirm(ctx, "Importing overwrites matching fields of the current state. Continue?") {
		return nil
	}

	applied, err := eng.ImportData(data)
	if err != nil {
		return err
	}

	pterm.Success.Printfln(
		"Imported %d fields: %s",
		len(applied),
		strings.Join(applied, ", "),
	)

	return nil
}

// backupAction writes a date-stamped snapshot to the backup directory.
func backupAction(ctx *cli.Context) error {
	eng, cfg, closer, err := engineHelper(ctx)
	if err != nil {
		return err
	}

	defer closer()

	data, err := eng.ExportData()
	if err != nil {
		return err
	}

	fb := store.FileBackup{Dir: cfg.BackupDir}

	path, err := fb.WriteDated(data, time.Now())
	if err != nil {
		return err
	}

	pterm.Success.Printfln("Backup written to %s", path)

	return nil
}

// restoreAction restores state from a named file in the backup directory.
func restoreAction(ctx *cli.Context) error {
	name := ctx.Args().First()
	if name == "" {
		return errors.New("a backup file name is required")
	}

	eng, cfg, closer, err := engineHelper(ctx)
	if err != nil {
		return err
	}

	defer closer()

	fb := store.FileBackup{Dir: cfg.BackupDir}

	data, err := fb.Read(name)
	if err != nil {
		return err
	}

	if !confirm(ctx, "Restoring overwrites matching fields of the current state. Continue?") {
		return nil
	}

	applied, err := eng.ImportData(data)
	if err != nil {
		return err
	}

	pterm.Success.Printfln(
		"Restored %d fields from %s", len(applied), name,
	)

	return nil
}

// importSheetAction parses a CSV spreadsheet export and feeds the rows
// through manual insertion.
func importSheetAction(ctx *cli.Context) error {
	path := ctx.Args().First()
	if path == "" {
		return errors.New("a CSV file is required")
	}

	rows, err := readCSVRows(path)
	if err != nil {
		return err
	}

	res := spreadsheet.ParseRows(rows)

	for _, w := range res.Warnings {
		pterm.Warning.Println(w)
	}

	for _, e := range res.Errors {
		pterm.Error.Println(e)
	}

	if len(res.Entries) == 0 {
		pterm.Info.Println("No importable rows found")
		return nil
	}

	if !confirm(ctx, fmt.Sprintf(
		"Import %d sessions into the log?", len(res.Entries),
	)) {
		return nil
	}

	eng, _, closer, err := engineHelper(ctx)
	if err != nil {
		return err
	}

	defer closer()

	added, err := eng.ImportSessions(res.Entries)
	if err != nil {
		pterm.Warning.Printfln("Some rows were rejected: %v", err)
	}

	pterm.Success.Printfln("Imported %d sessions", added)

	return nil
}

// financeAction prints gross and net earning projections.
func financeAction(ctx *cli.Context) error {
	eng, cfg, closer, err := engineHelper(ctx)
	if err != nil {
		return err
	}

	defer closer()

	settings := finance.Settings{
		HourlyRate:  cfg.HourlyRate,
		WeeklyHours: cfg.WeeklyHours,
		TaxClass:    cfg.TaxClass,
		SocialClass: cfg.SocialClass,
	}

	b := settings.Calculate()
	gross, net := settings.Earned(eng.LifetimeTotals().WorkMs)

	if ctx.Bool("json") {
		out, merr := json.MarshalIndent(b, "", "  ")
		if merr != nil {
			return merr
		}

		fmt.Println(string(out))

		return nil
	}

	printFinance(b, gross, net)

	return nil
}

// editConfigAction opens the config file in the user's default editor.
func editConfigAction(ctx *cli.Context) error {
	defaultEditor := "nano"

	if runtime.GOOS == "windows" {
		defaultEditor = "C:\\Windows\\system32\\notepad.exe"
	}

	editor := firstNonEmptyString(
		os.Getenv("VISUAL"),
		os.Getenv("EDITOR"),
		defaultEditor,
	)

	cfg := config.Get(ctx)

	cmd := exec.Command(editor, cfg.PathToConfig)

	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout

	return cmd.Run()
}
