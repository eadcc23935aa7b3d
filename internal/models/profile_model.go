package models

import "time"

// Profile is a publishing destination owned by a user. Credentials are
// stored AES-GCM encrypted and handed to the publisher on submit.
type Profile struct {
	ID                int64     `db:"id" json:"id"`
	UserID            int64     `db:"user_id" json:"user_id"`
	Name              string    `db:"name" json:"name"`
	ExternalAccountID string    `db:"external_account_id" json:"external_account_id"`
	AccessToken       string    `db:"access_token" json:"-"`
	RefreshToken      string    `db:"refresh_token" json:"-"`
	TokenExpiresAt    time.Time `db:"token_expires_at" json:"token_expires_at"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// ScheduleSlot is a recurring (hour, minute) publishing opportunity on a
// profile, either every day or only on the listed weekdays (0=Sunday..6).
// A weekly slot with no weekdays matches no day.
type ScheduleSlot struct {
	ID        int64     `db:"id" json:"id"`
	ProfileID int64     `db:"profile_id" json:"profile_id"`
	Hour      int       `db:"hour" json:"hour"`
	Minute    int       `db:"minute" json:"minute"`
	SlotType  string    `db:"slot_type" json:"slot_type"` // daily, weekly
	WeekDays  []int64   `db:"week_days" json:"week_days"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

const (
	SlotTypeDaily  = "daily"
	SlotTypeWeekly = "weekly"
)
