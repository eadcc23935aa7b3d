package models

import "time"

// ScheduledOccurrence is a materialized booking of one slot on one calendar
// date for one content item. The (profile_id, slot_id, slot_date) triple is
// unique, which is what keeps the allocator from double-booking.
type ScheduledOccurrence struct {
	ID        int64     `db:"id" json:"id"`
	ContentID int64     `db:"content_id" json:"content_id"`
	ProfileID int64     `db:"profile_id" json:"profile_id"`
	SlotID    int64     `db:"slot_id" json:"slot_id"`
	SlotDate  time.Time `db:"slot_date" json:"slot_date"`
	RunsAt    time.Time `db:"runs_at" json:"runs_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
