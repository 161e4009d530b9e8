package app

import (
	"errors"
	"fmt"
	"strings"
)

// Command is a pipeline control verb. Commands arrive from the HTTP API
// and the tray menu and are applied by the pipeline goroutine between
// frames, so callers never touch pipeline state directly.
type Command string

const (
	// CommandCycleMode advances the render mode one step in the fixed
	// cycle.
	CommandCycleMode Command = "CYCLE_MODE"
	// CommandResetCounters zeroes both cumulative blink totals.
	CommandResetCounters Command = "RESET_COUNTERS"
	// CommandClearHistory empties the gaze smoothing window.
	CommandClearHistory Command = "CLEAR_HISTORY"
	// CommandStartRecording begins a recording session.
	CommandStartRecording Command = "START_RECORDING"
	// CommandStopRecording stops and flushes the active session.
	CommandStopRecording Command = "STOP_RECORDING"
)

// ErrUnknownCommand is returned for verbs outside the fixed command set.
var ErrUnknownCommand = errors.New("unknown command")

// ParseCommand normalizes and validates a command string.
func ParseCommand(s string) (Command, error) {
	cmd := Command(strings.ToUpper(strings.TrimSpace(s)))
	switch cmd {
	case CommandCycleMode, CommandResetCounters, CommandClearHistory,
		CommandStartRecording, CommandStopRecording:
		return cmd, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCommand, s)
}
