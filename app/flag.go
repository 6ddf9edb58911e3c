package app

import "github.com/urfave/cli/v2"

var (
	noColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable coloured output",
	}

	disableNotificationFlag = &cli.BoolFlag{
		Name:    "disable-notification",
		Aliases: []string{"d"},
		Usage:   "Disable the system notification that appears after a session ends",
	}

	sessionCmdFlag = &cli.StringFlag{
		Name:    "session-cmd",
		Aliases: []string{"cmd"},
		Usage:   "Execute an arbitrary command after a session ends",
	}

	backupDirFlag = &cli.StringFlag{
		Name:  "backup-dir",
		Usage: "Override the directory used for backup files",
	}

	rateFlag = &cli.Float64Flag{
		Name:  "rate",
		Usage: "Override the configured hourly rate for financial projections",
	}

	noteFlag = &cli.StringFlag{
		Name:    "note",
		Aliases: []string{"n"},
		Usage:   "Attach a note to the session",
	}

	typeFlag = &cli.StringFlag{
		Name:    "type",
		Aliases: []string{"t"},
		Usage:   "Session type: work, break, or cigarette",
		Value:   "work",
	}

	startFlag = &cli.StringFlag{
		Name:     "start",
		Aliases:  []string{"s"},
		Usage:    "Start of the session (e.g. '2025-03-01 09:00' or '2 hours ago')",
		Required: true,
	}

	endFlag = &cli.StringFlag{
		Name:    "end",
		Aliases: []string{"e"},
		Usage:   "End of the session. Omit to record a still-open entry",
	}

	addressFlag = &cli.StringFlag{
		Name:    "address",
		Aliases: []string{"a"},
		Usage:   "Work address to attach to the session",
	}

	jsonFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "Output as JSON",
	}

	limitFlag = &cli.UintFlag{
		Name:    "limit",
		Aliases: []string{"l"},
		Usage:   "Maximum number of sessions to show",
		Value:   25,
	}

	sinceFlag = &cli.StringFlag{
		Name:  "since",
		Usage: "Only show sessions started after this moment (e.g. 'last monday')",
	}

	editTypeFlag = &cli.StringFlag{
		Name:  "type",
		Usage: "New session type: work, break, or cigarette",
	}

	editStartFlag = &cli.StringFlag{
		Name:  "start",
		Usage: "New start of the session",
	}

	editEndFlag = &cli.StringFlag{
		Name:  "end",
		Usage: "New end of the session",
	}

	editNoteFlag = &cli.StringFlag{
		Name:  "note",
		Usage: "New session note",
	}

	editAddressFlag = &cli.StringFlag{
		Name:  "address",
		Usage: "New session address",
	}

	yesFlag = &cli.BoolFlag{
		Name:    "yes",
		Aliases: []string{"y"},
		Usage:   "Skip the confirmation prompt",
	}

	addrNameFlag = &cli.StringFlag{
		Name:     "name",
		Usage:    "Display name of the address book entry",
		Required: true,
	}
)
