package command

import (
	"fmt"
	"strings"
)

// CommandError is returned when a required step exits non-zero.
type CommandError struct {
	Message    string
	Executable string
	Result     *Result
}

func (e *CommandError) Error() string {
	if e.Result == nil {
		return e.Message
	}
	msg := fmt.Sprintf("%s (%s exited %d)", e.Message, e.Executable, e.Result.ExitCode)
	if e.Result.LogPath != "" {
		msg += ", see " + e.Result.LogPath
	}
	return msg
}

// PrerequisiteError is returned when an executable a step depends on can not
// be run at all.
type PrerequisiteError struct {
	Executable string
	Caller     string
	Err        error
}

func (e *PrerequisiteError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s is required", e.Executable)
	if e.Caller != "" {
		fmt.Fprintf(&b, " by %s", e.Caller)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *PrerequisiteError) Unwrap() error { return e.Err }
