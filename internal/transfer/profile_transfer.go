package transfer

type ProfileConnection struct {
	Name              string `json:"name"`
	ExternalAccountID string `json:"external_account_id"`
	AccessToken       string `json:"access_token"`
	RefreshToken      string `json:"refresh_token"`
	ExpiresIn         int    `json:"expires_in"`
}

type SlotCreation struct {
	ProfileID int64   `json:"profile_id"`
	Hour      int     `json:"hour"`
	Minute    int     `json:"minute"`
	SlotType  string  `json:"slot_type"`
	WeekDays  []int64 `json:"week_days"`
}
