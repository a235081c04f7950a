package controller

import (
	"context"
	"fmt"
)

// EventEditedFolder is tracked after a successful save.
const EventEditedFolder = "EditedFolder"

// Analytics records named application events.
type Analytics interface {
	Track(ctx context.Context, event string)
}

// Navigator leaves the editing page.
type Navigator interface {
	GoBack(ctx context.Context)
}

// State is the controller's position in a workflow.
type State int

const (
	StateIdle State = iota
	StateGuarding
	StateConnectivityCheck
	StateValidating
	StateConfirming
	StateSaving
	StateDeleting
	StateUnavailable
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateGuarding:
		return "guarding"
	case StateConnectivityCheck:
		return "connectivity_check"
	case StateValidating:
		return "validating"
	case StateConfirming:
		return "confirming"
	case StateSaving:
		return "saving"
	case StateDeleting:
		return "deleting"
	case StateUnavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Outcome is how a workflow ended. Every outcome has already been shown to the
// user by the time Save or Delete returns.
type Outcome int

const (
	OutcomeSucceeded Outcome = iota
	// OutcomeFailed: the store reported at least one error; the first was shown.
	OutcomeFailed
	// OutcomeFailedUnknown: the store failed without a reason; a generic alert was shown.
	OutcomeFailedUnknown
	// OutcomeInvalid: the edited name was blank.
	OutcomeInvalid
	// OutcomeOffline: no connection; the connection notice was shown.
	OutcomeOffline
	// OutcomeDeclined: the user did not confirm the deletion.
	OutcomeDeclined
	// OutcomeSkipped: debounced or another workflow was in flight. Nothing was shown.
	OutcomeSkipped
	// OutcomeUnavailable: the folder could not be loaded or no longer exists.
	OutcomeUnavailable
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	case OutcomeFailedUnknown:
		return "failed_unknown"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeOffline:
		return "offline"
	case OutcomeDeclined:
		return "declined"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeUnavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Messages holds every user-visible string the controller emits.
type Messages struct {
	Saving            string
	Deleting          string
	FolderUpdated     string
	FolderDeleted     string
	ErrorTitle        string
	FieldRequired     string // format with one %s for the field label
	NameField         string
	OK                string
	Yes               string
	No                string
	ConfirmDelete     string
	ConnectionTitle   string
	ConnectionMessage string
}

// DefaultMessages are the English strings.
var DefaultMessages = Messages{
	Saving:            "Saving...",
	Deleting:          "Deleting...",
	FolderUpdated:     "Folder updated",
	FolderDeleted:     "Folder deleted",
	ErrorTitle:        "An error has occurred.",
	FieldRequired:     "The %s field is required.",
	NameField:         "Name",
	OK:                "Ok",
	Yes:               "Yes",
	No:                "No",
	ConfirmDelete:     "Do you really want to delete? This cannot be undone.",
	ConnectionTitle:   "Internet Connection Required",
	ConnectionMessage: "Please connect to the internet before continuing.",
}

func (m Messages) withDefaults() Messages {
	d := DefaultMessages
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&m.Saving, d.Saving)
	fill(&m.Deleting, d.Deleting)
	fill(&m.FolderUpdated, d.FolderUpdated)
	fill(&m.FolderDeleted, d.FolderDeleted)
	fill(&m.ErrorTitle, d.ErrorTitle)
	fill(&m.FieldRequired, d.FieldRequired)
	fill(&m.NameField, d.NameField)
	fill(&m.OK, d.OK)
	fill(&m.Yes, d.Yes)
	fill(&m.No, d.No)
	fill(&m.ConfirmDelete, d.ConfirmDelete)
	fill(&m.ConnectionTitle, d.ConnectionTitle)
	fill(&m.ConnectionMessage, d.ConnectionMessage)
	return m
}

type noopAnalytics struct{}

func (noopAnalytics) Track(context.Context, string) {}

type noopNavigator struct{}

func (noopNavigator) GoBack(context.Context) {}
