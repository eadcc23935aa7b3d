package transfer

type PublishRequest struct {
	AccountID   string `json:"account_id"`
	AccessToken string `json:"access_token"`
	Caption     string `json:"caption"`
	MediaURL    string `json:"media_url"`
	MediaType   string `json:"media_type"`
}

type PublishResponse struct {
	PublishID string         `json:"publish_id"`
	Error     PublisherError `json:"error"`
}

type PublishStatusResponse struct {
	Status  string         `json:"status"`
	Success *bool          `json:"success,omitempty"`
	Error   PublisherError `json:"error"`
}

type PublisherError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
