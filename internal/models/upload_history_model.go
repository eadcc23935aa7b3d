package models

import "time"

// UploadHistory is an append-only record of a reconciliation outcome.
type UploadHistory struct {
	ID           int64     `db:"id" json:"id"`
	UserID       int64     `db:"user_id" json:"user_id"`
	ContentID    int64     `db:"content_id" json:"content_id"`
	ProfileID    int64     `db:"profile_id" json:"profile_id"`
	Success      bool      `db:"success" json:"success"`
	ErrorMessage string    `db:"error_message" json:"error_message"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
