package service

import "github.com/arlochter/slotflow/internal/models"

// Event is a lifecycle action applied to a content item.
type Event string

const (
	EventAssign          Event = "assign"
	EventSchedule        Event = "schedule"
	EventUnschedule      Event = "unschedule"
	EventRevert          Event = "revert"
	EventRemove          Event = "remove"
	EventRestore         Event = "restore"
	EventBeginProcessing Event = "begin_processing"
	EventConfirmSuccess  Event = "confirm_success"
	EventConfirmFailure  Event = "confirm_failure"
	EventTimeout         Event = "timeout"
)

// transitions lists every legal (event, current status) -> next status.
// assign lands on assigned; the caller upgrades to scheduled when the
// allocator finds a slot. A confirmed success collapses straight into
// removed (uploaded is never a rest state). Anything not listed is illegal.
var transitions = map[Event]map[string]string{
	EventAssign: {
		models.ContentStatusPending: models.ContentStatusAssigned,
	},
	EventSchedule: {
		models.ContentStatusPending:  models.ContentStatusScheduled,
		models.ContentStatusAssigned: models.ContentStatusScheduled,
	},
	EventUnschedule: {
		models.ContentStatusScheduled: models.ContentStatusAssigned,
	},
	EventRevert: {
		models.ContentStatusAssigned:  models.ContentStatusPending,
		models.ContentStatusScheduled: models.ContentStatusPending,
	},
	EventRemove: {
		models.ContentStatusPending:   models.ContentStatusRemoved,
		models.ContentStatusAssigned:  models.ContentStatusRemoved,
		models.ContentStatusScheduled: models.ContentStatusRemoved,
	},
	EventRestore: {
		models.ContentStatusRemoved: models.ContentStatusPending,
	},
	EventBeginProcessing: {
		models.ContentStatusScheduled: models.ContentStatusProcessing,
	},
	EventConfirmSuccess: {
		models.ContentStatusProcessing: models.ContentStatusRemoved,
	},
	EventConfirmFailure: {
		models.ContentStatusProcessing: models.ContentStatusFailed,
	},
	EventTimeout: {
		models.ContentStatusProcessing: models.ContentStatusFailed,
	},
}

// NextStatus resolves the status an event leads to from the current one, or
// an InvalidTransitionError naming both. State is never changed on rejection.
func NextStatus(current string, event Event) (string, error) {
	next, ok := transitions[event][current]
	if !ok {
		return "", &InvalidTransitionError{Status: current, Event: event}
	}
	return next, nil
}

// CanTransition reports whether the event is legal for the current status.
func CanTransition(current string, event Event) bool {
	_, ok := transitions[event][current]
	return ok
}
