// Package timeutil provides helpers for converting between the engine's
// epoch-millisecond wire representation and time.Time, and for formatting
// durations for display.
package timeutil

import (
	"fmt"
	"time"
)

const (
	MsInSecond = int64(1000)
	MsInMinute = 60 * MsInSecond
	MsInHour   = 60 * MsInMinute
)

// ToMs converts a time.Time to epoch milliseconds.
func ToMs(t time.Time) int64 {
	return t.UnixMilli()
}

// FromMs converts epoch milliseconds to a time.Time in the local zone.
func FromMs(ms int64) time.Time {
	return time.UnixMilli(ms)
}

// FormatMs expresses a millisecond duration as "H:MM:SS".
func FormatMs(ms int64) string {
	if ms < 0 {
		ms = 0
	}

	hrs := ms / MsInHour
	mins := (ms % MsInHour) / MsInMinute
	secs := (ms % MsInMinute) / MsInSecond

	return fmt.Sprintf("%d:%02d:%02d", hrs, mins, secs)
}

// FormatMsShort expresses a millisecond duration as "XhYYm", dropping the
// hour part when it is zero.
func FormatMsShort(ms int64) string {
	if ms < 0 {
		ms = 0
	}

	hrs := ms / MsInHour
	mins := (ms % MsInHour) / MsInMinute

	if hrs == 0 {
		return fmt.Sprintf("%dm", mins)
	}

	return fmt.Sprintf("%dh %02dm", hrs, mins)
}

// FormatStamp renders an epoch-millisecond timestamp for tables.
func FormatStamp(ms int64, twentyFourHour bool) string {
	layout := "Jan 02 2006 03:04:05 PM"
	if twentyFourHour {
		layout = "Jan 02 2006 15:04:05"
	}

	return FromMs(ms).Format(layout)
}

// StartOfDay truncates an epoch-millisecond timestamp to local midnight.
func StartOfDay(ms int64) int64 {
	t := FromMs(ms)
	y, m, d := t.Date()

	return ToMs(time.Date(y, m, d, 0, 0, 0, 0, t.Location()))
}
