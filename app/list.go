package app

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/radum/pontaj/internal/config"
	"github.com/radum/pontaj/internal/models"
	"github.com/radum/pontaj/internal/timeutil"
	"github.com/radum/pontaj/internal/ui"
	"github.com/radum/pontaj/spreadsheet"
)

// listAction prints the session log, newest first.
func listAction(ctx *cli.Context) error {
	eng, cfg, closer, err := engineHelper(ctx)
	if err != nil {
		return err
	}

	defer closer()

	sessions := eng.Sessions()

	if raw := ctx.String("since"); raw != "" {
		since, perr := parseWhen(raw)
		if perr != nil {
			return perr
		}

		filtered := sessions[:0]

		for _, s := range sessions {
			if s.StartedAt >= since {
				filtered = append(filtered, s)
			}
		}

		sessions = filtered
	}

	if limit := int(ctx.Uint("limit")); limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}

	if ctx.Bool("json") {
		b, merr := json.Marshal(sessions)
		if merr != nil {
			return merr
		}

		pterm.Println(string(b))

		return nil
	}

	listSessions(sessions, cfg)

	return nil
}

func listSessions(sessions []models.Session, cfg *config.Config) {
	if len(sessions) == 0 {
		pterm.Info.Println("The session log is empty")
		return
	}

	tableBody := make([][]string, len(sessions))

	for i := range sessions {
		s := &sessions[i]

		ended := ui.Yellow("open")
		if s.EndedAt != nil {
			ended = timeutil.FormatStamp(*s.EndedAt, cfg.TwentyFourHour)
		}

		duration := ""
		if s.EndedAt != nil {
			duration = timeutil.FormatMs(*s.EndedAt - s.StartedAt)
		}

		flags := ""
		if s.Manual {
			flags = "manual"
		}

		tableBody[i] = []string{
			shortID(s.ID),
			typeLabel(s.Type),
			timeutil.FormatStamp(s.StartedAt, cfg.TwentyFourHour),
			ended,
			duration,
			fmt.Sprintf("%d", len(s.Breaks)),
			s.Address,
			s.Note,
			flags,
		}
	}

	tableBody = append([][]string{
		{
			"ID",
			"TYPE",
			"STARTED",
			"ENDED",
			"DURATION",
			"BREAKS",
			"ADDRESS",
			"NOTE",
			"",
		},
	}, tableBody...)

	ui.PrintTable(tableBody, os.Stdout)
}

func typeLabel(t models.SessionType) string {
	switch t {
	case models.Work:
		return ui.Green(string(t))
	case models.Break:
		return ui.Yellow(string(t))
	case models.Cigarette:
		return ui.Magenta(string(t))
	}

	return string(t)
}

// shortID truncates a session id for table display. Commands accepting
// ids still require the full value.
func shortID(id string) string {
	const max = 8

	if len(id) <= max {
		return id
	}

	return id[:max]
}

// readCSVRows reads a CSV file into header-keyed rows for the
// spreadsheet parser.
func readCSVRows(path string) ([]spreadsheet.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", path, err)
	}

	if len(records) < 2 {
		return nil, nil
	}

	header := records[0]
	rows := make([]spreadsheet.Row, 0, len(records)-1)

	for _, record := range records[1:] {
		row := make(spreadsheet.Row, len(header))

		for i, cell := range record {
			if i >= len(header) {
				break
			}

			row[header[i]] = cell
		}

		rows = append(rows, row)
	}

	return rows, nil
}
