// Package lifecycle owns the service request state machine: which events
// are legal in which status, what each transition writes, and how a
// transition is committed atomically against concurrent writers.
package lifecycle

import (
	"smartfix/models"
)

// Event names a lifecycle operation.
type Event string

const (
	EventAccept          Event = "accept"
	EventReject          Event = "reject"
	EventStart           Event = "start"
	EventComplete        Event = "complete"
	EventApprove         Event = "approve"
	EventRequestRevision Event = "request_revision"
	EventRestart         Event = "restart"
	EventCancel          Event = "cancel"
)

// AllEvents lists every event the machine knows.
var AllEvents = []Event{
	EventAccept,
	EventReject,
	EventStart,
	EventComplete,
	EventApprove,
	EventRequestRevision,
	EventRestart,
	EventCancel,
}

// table is the complete transition relation. Any (status, event) pair not
// listed is rejected.
var table = map[models.RequestStatus]map[Event]models.RequestStatus{
	models.StatusPending: {
		EventAccept: models.StatusAccepted,
		EventReject: models.StatusPending,
		EventCancel: models.StatusCancelled,
	},
	models.StatusAccepted: {
		EventStart:  models.StatusInProgress,
		EventCancel: models.StatusCancelled,
	},
	models.StatusInProgress: {
		EventComplete: models.StatusCompleted,
	},
	models.StatusCompleted: {
		EventApprove:         models.StatusApproved,
		EventRequestRevision: models.StatusRevisionRequested,
	},
	models.StatusRevisionRequested: {
		EventRestart: models.StatusInProgress,
		EventCancel:  models.StatusCancelled,
	},
	models.StatusApproved:  {},
	models.StatusCancelled: {},
}

// Next returns the status reached from current via event.
func Next(current models.RequestStatus, event Event) (models.RequestStatus, bool) {
	to, ok := table[current][event]
	return to, ok
}

// Terminal reports whether no event leaves the status.
func Terminal(status models.RequestStatus) bool {
	return len(table[status]) == 0
}

// rejectionReason explains an illegal (status, event) pair.
func rejectionReason(current models.RequestStatus, event Event) string {
	switch {
	case Terminal(current):
		return "request is already " + string(current)
	case event == EventCancel && current == models.StatusInProgress:
		return "work is in progress"
	case event == EventCancel && current == models.StatusCompleted:
		return "work is already completed"
	}
	switch event {
	case EventAccept, EventReject:
		return "request is not pending"
	case EventStart:
		return "request is not accepted"
	case EventComplete:
		return "request is not in progress"
	case EventApprove, EventRequestRevision:
		return "request is not completed"
	case EventRestart:
		return "no revision was requested"
	}
	return "unknown event"
}
