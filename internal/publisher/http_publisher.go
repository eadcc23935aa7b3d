package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	config "github.com/arlochter/slotflow/configs"
	"github.com/arlochter/slotflow/internal/transfer"
)

// per-call bound, separate from the 30-minute reconciliation ceiling
const requestTimeout = 15 * time.Second

type httpPublisher struct {
	cfg    config.Publisher
	client *http.Client
}

// NewHTTPPublisher talks to the upload service configured under
// PUBLISHER_BASE_URL. Both calls are bounded by a per-request timeout.
func NewHTTPPublisher(cfg config.Publisher) Publisher {
	return &httpPublisher{
		cfg: cfg,
		client: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

func (p *httpPublisher) Submit(ctx context.Context, req *SubmitRequest) (string, error) {
	payload := transfer.PublishRequest{
		AccountID:   req.AccountID,
		AccessToken: req.AccessToken,
		Caption:     req.Caption,
		MediaURL:    req.MediaURL,
		MediaType:   req.MediaType,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("error marshalling publish payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/publish", p.cfg.BaseURL)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		slog.Info(err.Error())
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code from publisher: %d", resp.StatusCode)
	}

	var result transfer.PublishResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return "", fmt.Errorf("failed to decode publish response: %w", err)
	}

	if result.Error.Code != "" {
		return "", fmt.Errorf("publisher rejected submission: %s (%s)", result.Error.Message, result.Error.Code)
	}

	if result.PublishID == "" {
		return "", errors.New("no publish id returned from publisher")
	}

	return result.PublishID, nil
}

func (p *httpPublisher) PollStatus(ctx context.Context, externalRefID string) (*StatusResult, error) {
	endpoint := fmt.Sprintf("%s/v1/publish/%s/status", p.cfg.BaseURL, url.PathEscape(externalRefID))

	httpReq, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code from publisher: %d", resp.StatusCode)
	}

	var result transfer.PublishStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to decode status response: %w", err)
	}

	detail := result.Error.Message
	if detail == "" {
		detail = result.Status
	}

	return &StatusResult{
		Status:    result.Status,
		Succeeded: result.Success,
		Detail:    detail,
	}, nil
}
