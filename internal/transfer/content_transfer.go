package transfer

type ContentAssignment struct {
	ContentID int64 `json:"content_id"`
	ProfileID int64 `json:"profile_id"`
}

type ManualSchedule struct {
	ContentID int64  `json:"content_id"`
	SlotID    int64  `json:"slot_id"`
	Date      string `json:"date"` // 2006-01-02
}
