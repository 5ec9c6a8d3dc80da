package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess    = 0 // Run completed with no regressions
	ExitRegression = 1 // Baseline comparison detected a regression
	ExitError      = 2 // Configuration or runtime error
)

// RegressionError indicates that the run completed successfully, but the
// baseline comparison detected at least one regressed style.
type RegressionError struct {
	Message string
}

func (e *RegressionError) Error() string {
	return e.Message
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		// Check error type to determine exit code
		var regressionErr *RegressionError
		if errors.As(err, &regressionErr) {
			os.Exit(ExitRegression)
		}

		// All other errors are configuration/runtime errors
		os.Exit(ExitError)
	}
}
