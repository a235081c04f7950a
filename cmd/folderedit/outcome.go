package main

import (
	"fmt"

	"github.com/loykin/folderedit/internal/controller"
)

// exitError ends the process with code. The user has already been told why.
type exitError struct {
	code   int
	reason string
}

func (e *exitError) Error() string { return fmt.Sprintf("%s (exit %d)", e.reason, e.code) }

// Exit codes per workflow outcome.
const (
	exitOK          = 0
	exitFailed      = 2
	exitUnknown     = 3
	exitInvalid     = 4
	exitOffline     = 5
	exitDeclined    = 6
	exitSkipped     = 7
	exitUnavailable = 8
)

func exitCode(o controller.Outcome) int {
	switch o {
	case controller.OutcomeSucceeded:
		return exitOK
	case controller.OutcomeFailed:
		return exitFailed
	case controller.OutcomeFailedUnknown:
		return exitUnknown
	case controller.OutcomeInvalid:
		return exitInvalid
	case controller.OutcomeOffline:
		return exitOffline
	case controller.OutcomeDeclined:
		return exitDeclined
	case controller.OutcomeSkipped:
		return exitSkipped
	case controller.OutcomeUnavailable:
		return exitUnavailable
	default:
		return 1
	}
}

func outcomeErr(o controller.Outcome) error {
	if o == controller.OutcomeSucceeded {
		return nil
	}
	return &exitError{code: exitCode(o), reason: o.String()}
}
