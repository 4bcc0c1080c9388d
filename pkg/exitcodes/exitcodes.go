// Package exitcodes provides centralized exit code definitions and error
// handling for the chartsync tool. Exit codes are organized in ranges to
// categorize different types of failures:
//
//	0:     Success
//	1-9:   Input/Configuration Errors (e.g., missing flags, invalid config)
//	10-19: Chart Processing Errors (e.g., render failures, no charts found)
//	20-29: Mirror/Runtime Errors (e.g., failed pushes, I/O errors)
package exitcodes

import (
	"errors"
	"fmt"
)

// Exit code constants organized by category.
const (
	// Success (0)
	ExitSuccess = 0

	// Input/Configuration Errors (1-9)
	ExitMissingRequiredFlag     = 1 // Required command flag not provided
	ExitInputConfigurationError = 2 // General configuration error
	ExitPrerequisiteMissing     = 3 // Required configuration absent at startup

	// Chart Processing Errors (10-19)
	ExitChartNotFound        = 10 // No requested chart path resolved to a chart
	ExitImageProcessingError = 11 // Failed to process located image references

	// Mirror/Runtime Errors (20-29)
	ExitMirrorFailed        = 20 // One or more images failed to mirror
	ExitGeneralRuntimeError = 21 // General runtime/system error
	ExitIOError             = 22 // IO operation error
)

// ExitCodeError wraps an error with an exit code for consistent error
// handling. It is used to propagate both error details and the appropriate
// exit code up the call stack to main.
type ExitCodeError struct {
	Code int   // Exit code to return
	Err  error // Underlying error
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("exit code %d: %v", e.Code, e.Err)
}

func (e *ExitCodeError) Unwrap() error {
	return e.Err
}

// IsExitCodeError checks if an error is an ExitCodeError and returns its
// code. Returns false and 0 if the error is not an ExitCodeError.
func IsExitCodeError(err error) (int, bool) {
	var exitErr *ExitCodeError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}

// CodeDescriptions maps exit codes to their human-readable descriptions.
var CodeDescriptions = map[int]string{
	ExitSuccess:                 "Success",
	ExitMissingRequiredFlag:     "Required command flag not provided",
	ExitInputConfigurationError: "General configuration error",
	ExitPrerequisiteMissing:     "Required configuration absent at startup",
	ExitChartNotFound:           "No requested chart path resolved to a chart",
	ExitImageProcessingError:    "Failed to process located image references",
	ExitMirrorFailed:            "One or more images failed to mirror",
	ExitGeneralRuntimeError:     "General runtime/system error",
	ExitIOError:                 "IO operation error",
}
