package service

import (
	"fmt"
	"time"

	"github.com/arlochter/slotflow/internal/models"
)

// allocationHorizonDays bounds how far ahead the allocator searches for a
// free slot. Past the horizon the search gives up and the content stays
// merely assigned.
const allocationHorizonDays = 30

// SlotCandidate is an allocation decision: a concrete (slot, date, time)
// that is free right now. It is not a booking until the caller commits it.
type SlotCandidate struct {
	ProfileID int64
	SlotID    int64
	SlotDate  time.Time
	RunsAt    time.Time
}

// FindNextSlot returns the earliest free slot occurrence for the profile
// within the horizon, or ok=false when every eligible occurrence is taken
// or in the past. Pure function: callers pass a snapshot of existing
// occurrences and a frozen now, and commit the decision themselves.
//
// Candidates are visited day by day from now's date, slots ordered by
// (hour, minute, id). On day zero a slot whose absolute time is not
// strictly after now is skipped.
func FindNextSlot(profileID int64, slots []*models.ScheduleSlot, taken []*models.ScheduledOccurrence, now time.Time) (*SlotCandidate, bool) {
	if len(slots) == 0 {
		return nil, false
	}

	ordered := make([]*models.ScheduleSlot, len(slots))
	copy(ordered, slots)
	SortSlots(ordered)

	booked := make(map[string]struct{}, len(taken))
	for _, occ := range taken {
		booked[occurrenceKey(occ.SlotID, occ.SlotDate)] = struct{}{}
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	for day := 0; day <= allocationHorizonDays; day++ {
		date := today.AddDate(0, 0, day)

		for _, slot := range ordered {
			if !SlotEligibleOn(slot, date) {
				continue
			}

			runsAt := slotTimeOn(slot, date)
			if !runsAt.After(now) {
				continue
			}

			if _, ok := booked[occurrenceKey(slot.ID, date)]; ok {
				continue
			}

			return &SlotCandidate{
				ProfileID: profileID,
				SlotID:    slot.ID,
				SlotDate:  date,
				RunsAt:    runsAt,
			}, true
		}
	}

	return nil, false
}

func occurrenceKey(slotID int64, date time.Time) string {
	return fmt.Sprintf("%d:%s", slotID, date.Format("2006-01-02"))
}
