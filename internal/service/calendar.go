package service

import (
	"sort"
	"time"

	"github.com/arlochter/slotflow/internal/models"
)

// SlotEligibleOn reports whether a slot may fire on the given calendar date.
// Inactive slots never fire. Daily slots fire every day; weekly slots only
// on their listed weekdays, so a weekly slot with an empty weekday set
// matches no day at all.
func SlotEligibleOn(slot *models.ScheduleSlot, date time.Time) bool {
	if !slot.IsActive {
		return false
	}

	switch slot.SlotType {
	case models.SlotTypeDaily:
		return true
	case models.SlotTypeWeekly:
		weekday := int64(date.Weekday())
		for _, d := range slot.WeekDays {
			if d == weekday {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// SortSlots orders slots by (hour, minute, id). The id is the final
// tie-break so two slots at the same wall-clock time are always visited in
// the same order.
func SortSlots(slots []*models.ScheduleSlot) {
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].Hour != slots[j].Hour {
			return slots[i].Hour < slots[j].Hour
		}
		if slots[i].Minute != slots[j].Minute {
			return slots[i].Minute < slots[j].Minute
		}
		return slots[i].ID < slots[j].ID
	})
}

// slotTimeOn anchors the slot's wall-clock time on a calendar date.
func slotTimeOn(slot *models.ScheduleSlot, date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), slot.Hour, slot.Minute, 0, 0, date.Location())
}
