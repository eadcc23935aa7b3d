package models

import (
	"database/sql"
	"time"
)

type Content struct {
	ID                   int64          `db:"id" json:"id"`
	UserID               int64          `db:"user_id" json:"user_id"`
	Caption              string         `db:"caption" json:"caption"`
	FileName             string         `db:"file_name" json:"file_name"`
	FileType             string         `db:"file_type" json:"file_type"`
	FileSize             int64          `db:"file_size" json:"file_size"`
	FileURL              string         `db:"file_url" json:"file_url"`
	Status               string         `db:"status" json:"status"`
	ProfileID            sql.NullInt64  `db:"profile_id" json:"profile_id"`
	ScheduledSlotID      sql.NullInt64  `db:"scheduled_slot_id" json:"scheduled_slot_id"`
	ScheduledAt          sql.NullTime   `db:"scheduled_at" json:"scheduled_at"`
	ExternalRefID        sql.NullString `db:"external_ref_id" json:"external_ref_id"`
	UploadAttemptedAt    sql.NullTime   `db:"upload_attempted_at" json:"upload_attempted_at"`
	RemovedAt            sql.NullTime   `db:"removed_at" json:"removed_at"`
	RemovedFromProfileID sql.NullInt64  `db:"removed_from_profile_id" json:"removed_from_profile_id"`
	UploadedAt           time.Time      `db:"uploaded_at" json:"uploaded_at"`
	UpdatedAt            time.Time      `db:"updated_at" json:"updated_at"`
}

const (
	ContentStatusPending    = "pending"
	ContentStatusAssigned   = "assigned"
	ContentStatusScheduled  = "scheduled"
	ContentStatusProcessing = "processing"
	// ContentStatusUploaded is momentary: a confirmed publish collapses
	// straight into removed, clearing the calendar booking.
	ContentStatusUploaded = "uploaded"
	ContentStatusFailed   = "failed"
	ContentStatusRemoved  = "removed"
)

// Scheduled reports the slot booking, valid only when both halves of the
// scheduled_at/scheduled_slot_id pair are set.
func (c *Content) Scheduled() (slotID int64, runsAt time.Time, ok bool) {
	if !c.ScheduledSlotID.Valid || !c.ScheduledAt.Valid {
		return 0, time.Time{}, false
	}
	return c.ScheduledSlotID.Int64, c.ScheduledAt.Time, true
}
