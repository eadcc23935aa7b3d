package publisher

import (
	"context"
	"strings"
)

// Publisher is the external upload service. Submit hands a media item over
// and returns the service's reference id; PollStatus reports how a prior
// submission is doing. Implementations must bound every call with their own
// timeout - the reconciliation ceiling is a separate, much larger budget.
type Publisher interface {
	Submit(ctx context.Context, req *SubmitRequest) (string, error)
	PollStatus(ctx context.Context, externalRefID string) (*StatusResult, error)
}

// SubmitRequest carries everything the service needs to publish one item.
type SubmitRequest struct {
	AccountID   string
	AccessToken string
	Caption     string
	MediaURL    string
	MediaType   string
}

// StatusResult is the raw poll response: a free-form status word, an
// optional explicit success flag, and a human-readable detail.
type StatusResult struct {
	Status    string
	Succeeded *bool
	Detail    string
}

// Outcome is the classified poll result.
type Outcome int

const (
	OutcomeUnknown Outcome = iota
	OutcomeSuccess
	OutcomeFailure
	OutcomeProcessing
)

// Classify maps a raw status response onto an outcome. The explicit flag
// wins when present; otherwise the status word is matched case-insensitively
// against the known vocabulary. Anything unrecognized is OutcomeUnknown and
// leaves the item untouched this cycle.
func Classify(res *StatusResult) Outcome {
	if res == nil {
		return OutcomeUnknown
	}

	if res.Succeeded != nil {
		if *res.Succeeded {
			return OutcomeSuccess
		}
		return OutcomeFailure
	}

	switch strings.ToLower(strings.TrimSpace(res.Status)) {
	case "completed", "success":
		return OutcomeSuccess
	case "failed", "error":
		return OutcomeFailure
	case "processing", "pending", "queued":
		return OutcomeProcessing
	default:
		return OutcomeUnknown
	}
}
