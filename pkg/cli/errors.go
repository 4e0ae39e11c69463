package cli

import (
	"errors"
	"fmt"

	"talos-hq/console/pkg/config"
)

// Exit codes returned by the talos-tui binary.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitConfig  = 2
)

// ConfigError represents an error in configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config error: %s", e.Message)
	}
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// CommandError represents an error from a command execution. Code is the
// process exit code; zero means ExitFailure.
type CommandError struct {
	Command string
	Code    int
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
	}
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}

// FromConfig converts a configuration load failure into ConfigErrors, one
// per invalid field when err is a config.ValidationError.
func FromConfig(err error) error {
	if err == nil {
		return nil
	}
	var verr config.ValidationError
	if !errors.As(err, &verr) {
		return &ConfigError{Message: err.Error()}
	}
	errs := make([]error, 0, len(verr.Errors))
	for _, fe := range verr.Errors {
		errs = append(errs, NewConfigError(fe.Field, fe.Message))
	}
	return errors.Join(errs...)
}

// ExitCode maps err to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var cerr *CommandError
	if errors.As(err, &cerr) && cerr.Code != 0 {
		return cerr.Code
	}
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return ExitConfig
	}
	return ExitFailure
}
