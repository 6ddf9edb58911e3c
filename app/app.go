// Package app assembles the command-line interface and translates
// commands into engine operations.
package app

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/radum/pontaj/internal/config"
)

const (
	envNoColor       = "NO_COLOR"
	envPontajNoColor = "PONTAJ_NO_COLOR"
)

// disableStyling disables all styling provided by pterm.
func disableStyling() {
	pterm.DisableColor()
	pterm.DisableStyling()
	pterm.Debug.Prefix.Text = ""
	pterm.Info.Prefix.Text = ""
	pterm.Success.Prefix.Text = ""
	pterm.Warning.Prefix.Text = ""
	pterm.Error.Prefix.Text = ""
	pterm.Fatal.Prefix.Text = ""
}

// Get retrieves the pontaj app instance.
func Get() *cli.App {
	pontajApp := &cli.App{
		Name: "pontaj",
		Usage: `
		Pontaj is a command-line work timer. It tracks a single active work
		session at a time, distinguishes cigarette pauses from proper breaks
		by their length, and keeps a reviewable session log.`,
		UsageText:            "[COMMAND] [OPTIONS]",
		Version:              config.Version,
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			{
				Name:   "break",
				Usage:  "Suspend the running work session on a break",
				Action: breakAction,
			},
			{
				Name:   "resume",
				Usage:  "Close the open break and continue working",
				Action: resumeAction,
			},
			{
				Name:   "end",
				Usage:  "End the active session and log it",
				Flags:  []cli.Flag{noteFlag},
				Action: endAction,
			},
			{
				Name:   "status",
				Usage:  "Print the state of the timer",
				Action: statusAction,
			},
			{
				Name:  "add",
				Usage: "Insert a session into the log retroactively",
				Flags: []cli.Flag{
					typeFlag,
					startFlag,
					endFlag,
					noteFlag,
					addressFlag,
				},
				Action: addAction,
			},
			{
				Name:   "list",
				Usage:  "Print the session log, newest first",
				Flags:  []cli.Flag{jsonFlag, limitFlag, sinceFlag},
				Action: listAction,
			},
			{
				Name:      "edit",
				Usage:     "Update fields of a logged session",
				ArgsUsage: "<session-id>",
				Flags: []cli.Flag{
					editTypeFlag,
					editStartFlag,
					editEndFlag,
					editNoteFlag,
					editAddressFlag,
				},
				Action: editAction,
			},
			{
				Name:      "delete",
				Usage:     "Remove a session from the log",
				ArgsUsage: "<session-id>",
				Flags:     []cli.Flag{yesFlag},
				Action:    deleteAction,
			},
			{
				Name:   "stats",
				Usage:  "Print lifetime totals by session type",
				Flags:  []cli.Flag{jsonFlag},
				Action: statsAction,
			},
			{
				Name:      "export",
				Usage:     "Write the full state to a JSON file",
				ArgsUsage: "[file]",
				Action:    exportAction,
			},
			{
				Name:      "import",
				Usage:     "Restore state from an exported JSON file",
				ArgsUsage: "<file>",
				Flags:     []cli.Flag{yesFlag},
				Action:    importAction,
			},
			{
				Name:   "backup",
				Usage:  "Write a date-stamped snapshot to the backup directory",
				Flags:  []cli.Flag{backupDirFlag},
				Action: backupAction,
			},
			{
				Name:      "restore",
				Usage:     "Restore state from a named backup file",
				ArgsUsage: "<file-name>",
				Flags:     []cli.Flag{backupDirFlag, yesFlag},
				Action:    restoreAction,
			},
			{
				Name:      "import-sheet",
				Usage:     "Import sessions from a CSV spreadsheet export",
				ArgsUsage: "<file.csv>",
				Flags:     []cli.Flag{yesFlag},
				Action:    importSheetAction,
			},
			{
				Name:  "address",
				Usage: "Manage the work addresses attached to sessions",
				Subcommands: []*cli.Command{
					{
						Name:   "show",
						Usage:  "Print the address book and the active address",
						Action: addressShowAction,
					},
					{
						Name:      "set-default",
						Usage:     "Set the fallback address",
						ArgsUsage: "<address>",
						Action:    addressSetDefaultAction,
					},
					{
						Name:      "set-custom",
						Usage:     "Set a one-off override; no argument clears it",
						ArgsUsage: "[address]",
						Action:    addressSetCustomAction,
					},
					{
						Name:      "add",
						Usage:     "Add a named entry to the address book",
						ArgsUsage: "<address>",
						Flags:     []cli.Flag{addrNameFlag},
						Action:    addressAddAction,
					},
					{
						Name:      "edit",
						Usage:     "Rename or re-point an address book entry",
						ArgsUsage: "<id> <address>",
						Flags:     []cli.Flag{addrNameFlag},
						Action:    addressEditAction,
					},
					{
						Name:      "delete",
						Usage:     "Remove an entry from the address book",
						ArgsUsage: "<id>",
						Action:    addressDeleteAction,
					},
					{
						Name:      "select",
						Usage:     "Use an address book entry; no argument clears",
						ArgsUsage: "[id]",
						Action:    addressSelectAction,
					},
				},
			},
			{
				Name:   "finance",
				Usage:  "Print gross and net earning projections",
				Flags:  []cli.Flag{rateFlag, jsonFlag},
				Action: financeAction,
			},
			{
				Name:   "edit-config",
				Usage:  "Edit the configuration file",
				Action: editConfigAction,
			},
		},
		Flags: []cli.Flag{
			noColorFlag,
			disableNotificationFlag,
			sessionCmdFlag,
			backupDirFlag,
			rateFlag,
		},
		Action: defaultAction,
		Before: beforeAction,
	}

	return pontajApp
}

func beforeAction(ctx *cli.Context) error {
	pterm.Error.MessageStyle = pterm.NewStyle(pterm.FgRed)
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "ERROR",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}

	// Disable colour output if NO_COLOR is set
	if _, exists := os.LookupEnv(envNoColor); exists {
		disableStyling()
	}

	// Disable colour output if PONTAJ_NO_COLOR is set
	if _, exists := os.LookupEnv(envPontajNoColor); exists {
		disableStyling()
	}

	if ctx.Bool("no-color") {
		disableStyling()
	}

	return nil
}
