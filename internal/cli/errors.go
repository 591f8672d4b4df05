// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"

	"github.com/jeranaias/citechat/internal/client"
	"github.com/jeranaias/citechat/internal/config"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitNetworkError indicates the chat server could not be reached
	ExitNetworkError = 5
	// ExitNotFoundError indicates a requested file does not exist
	ExitNotFoundError = 7
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// UsageError reports a command invoked with missing or bad arguments.
type UsageError struct {
	Usage string
}

func (e *UsageError) Error() string {
	return "usage: " + e.Usage
}

// UserError carries a message meant for the person at the terminal while
// keeping the underlying error for logs and errors.Is.
type UserError struct {
	Message string
	Err     error
}

func (e *UserError) Error() string {
	return e.Message
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// connectionFailure turns a failed round trip into the fixed user-facing
// message. The detail has already been logged by the client.
func connectionFailure(err error) error {
	if !isConnectionError(err) {
		return err
	}
	return &UserError{Message: client.ConnectionErrorMessage, Err: err}
}

// ExitCode maps an error returned by a handler to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usage *UsageError
	var verrs config.ValidateErrors
	var verr config.ValidationError
	switch {
	case errors.As(err, &usage):
		return ExitUsageError
	case errors.As(err, &verrs), errors.As(err, &verr):
		return ExitConfigError
	case errors.Is(err, client.ErrFileNotFound):
		return ExitNotFoundError
	case errors.Is(err, client.ErrConnection):
		return ExitNetworkError
	}
	return ExitGeneralError
}

// FormatError renders err the way main prints it.
func FormatError(err error) string {
	return fmt.Sprintf("Error: %v", err)
}
