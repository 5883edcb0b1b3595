package cli

import (
	"errors"
	"fmt"

	"mercator-hq/logkeeper/pkg/config"
)

// Exit codes returned by the logkeeper binary.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitConfig  = 2
)

// CommandError represents an error from a command execution.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var verr config.ValidationError
	if errors.As(err, &verr) {
		return ExitConfig
	}
	return ExitFailure
}
