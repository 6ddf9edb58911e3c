// Package notify wraps desktop notification delivery behind a small
// interface so callers can be tested without touching the platform APIs.
package notify

import (
	"github.com/gen2brain/beeep"
	"github.com/pterm/pterm"
)

// Notifier delivers a user-facing notification.
type Notifier interface {
	Notify(title, message string)
}

// Desktop sends notifications through the platform notification daemon.
type Desktop struct {
	Enabled bool
}

// Notify displays a desktop notification. Failures are reported on
// stderr but never propagated; a missed notification must not interrupt
// the timing workflow.
func (d Desktop) Notify(title, message string) {
	if !d.Enabled {
		return
	}

	err := beeep.Notify(title, message, "")
	if err != nil {
		pterm.Error.Printfln("unable to display notification: %v", err)
	}
}
