// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import "fmt"

// LogEntry is a line of the human-readable simulation log.
//
// The message starts with a bracketed tag naming the protocol,
// e.g., "[ARP]", which log viewers use for styling.
type LogEntry struct {
	// ID uniquely identifies the entry.
	ID string `json:"id"`

	// Time is the tick of the event that produced the entry.
	Time int `json:"time"`

	// Message is the log line.
	Message string `json:"message"`
}

// String returns the string representation of the entry.
func (e LogEntry) String() string {
	return fmt.Sprintf("[t=%d] %s", e.Time, e.Message)
}
