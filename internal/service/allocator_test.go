package service

import (
	"testing"
	"time"

	"github.com/arlochter/slotflow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dailySlot(id int64, hour, minute int) *models.ScheduleSlot {
	return &models.ScheduleSlot{
		ID:       id,
		Hour:     hour,
		Minute:   minute,
		SlotType: models.SlotTypeDaily,
		IsActive: true,
	}
}

func TestFindNextSlotSkipsPastTimeOfDay(t *testing.T) {
	// Monday 2026-03-02 10:00. The daily 09:00 slot already passed today,
	// so the first candidate is tomorrow 09:00.
	now := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	slots := []*models.ScheduleSlot{dailySlot(1, 9, 0)}

	c, ok := FindNextSlot(7, slots, nil, now)
	require.True(t, ok)
	assert.Equal(t, int64(7), c.ProfileID)
	assert.Equal(t, int64(1), c.SlotID)
	assert.Equal(t, time.Date(2026, time.March, 3, 9, 0, 0, 0, time.UTC), c.RunsAt)
	assert.Equal(t, time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC), c.SlotDate)
}

func TestFindNextSlotSkipsBookedOccurrences(t *testing.T) {
	now := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	slots := []*models.ScheduleSlot{dailySlot(1, 9, 0)}
	taken := []*models.ScheduledOccurrence{
		{SlotID: 1, SlotDate: time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC)},
	}

	// Tomorrow is taken, so the allocator lands on the day after.
	c, ok := FindNextSlot(7, slots, taken, now)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, time.March, 4, 9, 0, 0, 0, time.UTC), c.RunsAt)
}

func TestFindNextSlotWeeklyWeekdays(t *testing.T) {
	// Thursday 2026-03-05. A weekly slot on Monday and Wednesday should
	// land on the coming Monday.
	now := time.Date(2026, time.March, 5, 12, 0, 0, 0, time.UTC)
	slots := []*models.ScheduleSlot{
		{ID: 1, Hour: 18, Minute: 0, SlotType: models.SlotTypeWeekly, WeekDays: []int64{1, 3}, IsActive: true},
	}

	c, ok := FindNextSlot(7, slots, nil, now)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, time.March, 9, 18, 0, 0, 0, time.UTC), c.RunsAt)
	assert.Equal(t, time.Monday, c.RunsAt.Weekday())
}

func TestFindNextSlotEarliestWins(t *testing.T) {
	// Slot order in the input must not matter.
	now := time.Date(2026, time.March, 2, 5, 0, 0, 0, time.UTC)
	slots := []*models.ScheduleSlot{
		dailySlot(2, 17, 30),
		dailySlot(1, 9, 0),
	}

	c, ok := FindNextSlot(7, slots, nil, now)
	require.True(t, ok)
	assert.Equal(t, int64(1), c.SlotID)
	assert.Equal(t, time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC), c.RunsAt)
}

func TestFindNextSlotNoSlots(t *testing.T) {
	now := time.Date(2026, time.March, 2, 5, 0, 0, 0, time.UTC)

	c, ok := FindNextSlot(7, nil, nil, now)
	assert.False(t, ok)
	assert.Nil(t, c)
}

func TestFindNextSlotInactiveOnly(t *testing.T) {
	now := time.Date(2026, time.March, 2, 5, 0, 0, 0, time.UTC)
	slot := dailySlot(1, 9, 0)
	slot.IsActive = false

	_, ok := FindNextSlot(7, []*models.ScheduleSlot{slot}, nil, now)
	assert.False(t, ok)
}

func TestFindNextSlotHorizonExhausted(t *testing.T) {
	now := time.Date(2026, time.March, 2, 5, 0, 0, 0, time.UTC)
	slots := []*models.ScheduleSlot{dailySlot(1, 9, 0)}

	taken := make([]*models.ScheduledOccurrence, 0, allocationHorizonDays+1)
	for day := 0; day <= allocationHorizonDays; day++ {
		taken = append(taken, &models.ScheduledOccurrence{
			SlotID:   1,
			SlotDate: time.Date(2026, time.March, 2+day, 0, 0, 0, 0, time.UTC),
		})
	}

	_, ok := FindNextSlot(7, slots, taken, now)
	assert.False(t, ok)
}

func TestFindNextSlotNeverInPast(t *testing.T) {
	// 23:59 on the last day of the month: every candidate today is gone.
	now := time.Date(2026, time.March, 31, 23, 59, 0, 0, time.UTC)
	slots := []*models.ScheduleSlot{dailySlot(1, 23, 59)}

	c, ok := FindNextSlot(7, slots, nil, now)
	require.True(t, ok)
	assert.True(t, c.RunsAt.After(now))
	assert.Equal(t, time.Date(2026, time.April, 1, 23, 59, 0, 0, time.UTC), c.RunsAt)
}
