package job

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/arlochter/slotflow/internal/models"
	"github.com/arlochter/slotflow/internal/publisher"
	"github.com/arlochter/slotflow/internal/repository"
)

// processingCeiling is how long an item may sit in processing before the
// poller gives up on the publisher ever answering.
const processingCeiling = 30 * time.Minute

// ReconcileJob resolves in-flight content to terminal states. Each run
// fetches everything still in processing, applies the timeout ceiling, and
// otherwise asks the publisher how the submission went. Items are handled
// independently: one bad publisher call never aborts the rest of the batch,
// and every transition is a compare-and-set so overlapping runs and manual
// actions race harmlessly.
type ReconcileJob struct {
	cr  repository.ContentRepository
	or  repository.OccurrenceRepository
	uh  repository.UploadHistoryRepository
	pub publisher.Publisher
	now func() time.Time
}

func NewReconcileJob(
	cr repository.ContentRepository,
	or repository.OccurrenceRepository,
	uh repository.UploadHistoryRepository,
	pub publisher.Publisher) *ReconcileJob {
	return &ReconcileJob{
		cr:  cr,
		or:  or,
		uh:  uh,
		pub: pub,
		now: time.Now,
	}
}

func (j *ReconcileJob) Run() {
	ctx := context.Background()

	contents, err := j.cr.ListProcessing(ctx)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	var wg sync.WaitGroup

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, content := range contents {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(content *models.Content) {
			defer wg.Done()
			defer func() { <-semaphore }()

			j.Reconcile(ctx, content)
		}(content)
	}

	wg.Wait()
}

// Reconcile resolves one processing item for this cycle.
func (j *ReconcileJob) Reconcile(ctx context.Context, content *models.Content) {
	if !content.UploadAttemptedAt.Valid || !content.ExternalRefID.Valid {
		slog.Info("processing content missing attempt metadata", "content_id", content.ID)
		return
	}

	elapsed := j.now().Sub(content.UploadAttemptedAt.Time)
	if elapsed > processingCeiling {
		reason := fmt.Sprintf("timed out after %d minutes", int(processingCeiling.Minutes()))
		j.confirmFailure(ctx, content, reason)
		return
	}

	result, err := j.pub.PollStatus(ctx, content.ExternalRefID.String)
	if err != nil {
		// Transient publisher trouble. Leave the item for the next cycle.
		slog.Info("publisher poll failed", "content_id", content.ID, "error", err.Error())
		return
	}

	switch publisher.Classify(result) {
	case publisher.OutcomeSuccess:
		j.confirmSuccess(ctx, content)
	case publisher.OutcomeFailure:
		j.confirmFailure(ctx, content, result.Detail)
	case publisher.OutcomeProcessing:
		// Still in flight.
	default:
		slog.Info("unrecognized publisher status", "content_id", content.ID, "status", result.Status)
	}
}

func (j *ReconcileJob) confirmSuccess(ctx context.Context, content *models.Content) {
	committed, err := j.cr.ConfirmSuccess(ctx, content.ID, j.now())
	if err != nil {
		slog.Info(err.Error())
		return
	}
	if !committed {
		return
	}

	if err := j.or.RemoveByContentID(ctx, content.ID); err != nil {
		slog.Info(err.Error())
	}

	j.appendHistory(ctx, content, true, "")
}

func (j *ReconcileJob) confirmFailure(ctx context.Context, content *models.Content, reason string) {
	committed, err := j.cr.ConfirmFailure(ctx, content.ID)
	if err != nil {
		slog.Info(err.Error())
		return
	}
	if !committed {
		return
	}

	j.appendHistory(ctx, content, false, reason)
}

func (j *ReconcileJob) appendHistory(ctx context.Context, content *models.Content, success bool, errorMessage string) {
	entry := &models.UploadHistory{
		UserID:       content.UserID,
		ContentID:    content.ID,
		ProfileID:    content.ProfileID.Int64,
		Success:      success,
		ErrorMessage: errorMessage,
	}
	if _, err := j.uh.Create(ctx, entry); err != nil {
		slog.Info(err.Error())
	}
}
