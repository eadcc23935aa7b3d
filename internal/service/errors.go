package service

import (
	"errors"
	"fmt"
)

// Sentinel errors - use with errors.Is()

var (
	// ErrSlotConflict is returned when a booking would double-book a
	// (profile, slot, date) triple. The caller must pick another slot or date.
	ErrSlotConflict = errors.New("slot already booked for that date")

	// ErrPastSchedule is returned when a manual schedule targets a time at
	// or before now.
	ErrPastSchedule = errors.New("cannot schedule in the past")

	// ErrNotFound is returned when a referenced entity does not exist or is
	// not owned by the caller.
	ErrNotFound = errors.New("not found")

	// ErrLostRace is returned when a compare-and-set transition finds the
	// content no longer in the expected state. Harmless: another writer won.
	ErrLostRace = errors.New("concurrent transition won the race")
)

// InvalidTransitionError reports a lifecycle event that is not legal for the
// content's current status. Programmer or client error, never retried.
type InvalidTransitionError struct {
	Status string
	Event  Event
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: cannot %s content in status %q", e.Event, e.Status)
}
