// Copyright (c) 2025 SRODBPatch
// Licensed under the MIT License. See LICENSE file in the project root for details.

package runner

import "srodbpatch/cli/internal/sqlexec"

// EventType enumerates runner event kinds.
type EventType string

const (
	// EventProgress carries one progress message from the operation.
	EventProgress EventType = "progress"
	// EventSucceeded is the terminal event of a successful operation.
	EventSucceeded EventType = "succeeded"
	// EventFailed is the terminal event of a failed operation.
	EventFailed EventType = "failed"
)

// Event is delivered on Runner.Events. Result is set only on terminal events.
type Event struct {
	Type    EventType
	Message string
	Result  *sqlexec.Result
}

// Terminal reports whether ev is the last event of a run.
func (ev Event) Terminal() bool {
	return ev.Type == EventSucceeded || ev.Type == EventFailed
}
