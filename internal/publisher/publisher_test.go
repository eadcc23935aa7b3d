package publisher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	config "github.com/arlochter/slotflow/configs"
	"github.com/arlochter/slotflow/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		res  *StatusResult
		want Outcome
	}{
		{"nil result", nil, OutcomeUnknown},
		{"explicit success flag wins", &StatusResult{Status: "failed", Succeeded: boolPtr(true)}, OutcomeSuccess},
		{"explicit failure flag wins", &StatusResult{Status: "completed", Succeeded: boolPtr(false)}, OutcomeFailure},
		{"completed", &StatusResult{Status: "completed"}, OutcomeSuccess},
		{"success uppercase", &StatusResult{Status: "SUCCESS"}, OutcomeSuccess},
		{"failed", &StatusResult{Status: "failed"}, OutcomeFailure},
		{"error mixed case", &StatusResult{Status: "Error"}, OutcomeFailure},
		{"processing", &StatusResult{Status: "processing"}, OutcomeProcessing},
		{"pending with whitespace", &StatusResult{Status: "  pending "}, OutcomeProcessing},
		{"queued", &StatusResult{Status: "queued"}, OutcomeProcessing},
		{"unrecognized word", &StatusResult{Status: "transcoding"}, OutcomeUnknown},
		{"empty status", &StatusResult{Status: ""}, OutcomeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.res))
		})
	}
}

func TestHTTPPublisherSubmit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/v1/publish", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req transfer.PublishRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "acc-1", req.AccountID)
		assert.Equal(t, "hello", req.Caption)

		json.NewEncoder(w).Encode(transfer.PublishResponse{PublishID: "pub-42"})
	}))
	defer server.Close()

	pub := NewHTTPPublisher(config.Publisher{BaseURL: server.URL, APIKey: "test-key"})

	id, err := pub.Submit(context.Background(), &SubmitRequest{
		AccountID:   "acc-1",
		AccessToken: "token",
		Caption:     "hello",
		MediaURL:    "https://cdn.example.com/a.mp4",
		MediaType:   "video/mp4",
	})
	require.NoError(t, err)
	assert.Equal(t, "pub-42", id)
}

func TestHTTPPublisherSubmitRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(transfer.PublishResponse{
			Error: transfer.PublisherError{Code: "INVALID_TOKEN", Message: "token expired"},
		})
	}))
	defer server.Close()

	pub := NewHTTPPublisher(config.Publisher{BaseURL: server.URL, APIKey: "test-key"})

	_, err := pub.Submit(context.Background(), &SubmitRequest{AccountID: "acc-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token expired")
}

func TestHTTPPublisherSubmitMissingID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(transfer.PublishResponse{})
	}))
	defer server.Close()

	pub := NewHTTPPublisher(config.Publisher{BaseURL: server.URL, APIKey: "test-key"})

	_, err := pub.Submit(context.Background(), &SubmitRequest{AccountID: "acc-1"})
	require.Error(t, err)
}

func TestHTTPPublisherPollStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/v1/publish/pub-42/status", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(transfer.PublishStatusResponse{
			Status:  "completed",
			Success: boolPtr(true),
		})
	}))
	defer server.Close()

	pub := NewHTTPPublisher(config.Publisher{BaseURL: server.URL, APIKey: "test-key"})

	res, err := pub.PollStatus(context.Background(), "pub-42")
	require.NoError(t, err)
	assert.Equal(t, "completed", res.Status)
	require.NotNil(t, res.Succeeded)
	assert.True(t, *res.Succeeded)
	assert.Equal(t, OutcomeSuccess, Classify(res))
}

func TestHTTPPublisherPollStatusServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	pub := NewHTTPPublisher(config.Publisher{BaseURL: server.URL, APIKey: "test-key"})

	_, err := pub.PollStatus(context.Background(), "pub-42")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code")
}

func TestHTTPPublisherPollStatusFailureDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(transfer.PublishStatusResponse{
			Status: "failed",
			Error:  transfer.PublisherError{Code: "MEDIA_TOO_LARGE", Message: "file exceeds limit"},
		})
	}))
	defer server.Close()

	pub := NewHTTPPublisher(config.Publisher{BaseURL: server.URL, APIKey: "test-key"})

	res, err := pub.PollStatus(context.Background(), "pub-42")
	require.NoError(t, err)
	assert.Equal(t, "file exceeds limit", res.Detail)
	assert.Equal(t, OutcomeFailure, Classify(res))
}
