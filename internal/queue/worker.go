package queue

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/arlochter/slotflow/internal/models"
	"github.com/arlochter/slotflow/internal/publisher"
	"github.com/arlochter/slotflow/pkg/utils"
	"github.com/hibiken/asynq"
)

func (q *Queue) HandlePublishContentTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishContentPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	return q.PublishContent(ctx, payload.ContentID)
}

// PublishContent hands a scheduled item to the external publisher. The
// scheduled -> processing move is a compare-and-set, so a task firing after
// an unschedule, a removal or a rival worker is a silent no-op.
func (q *Queue) PublishContent(ctx context.Context, contentID int64) error {
	content, err := q.cr.GetByID(ctx, contentID)
	if err != nil {
		return err
	}
	if content == nil {
		slog.Info("content no longer exists", "content_id", contentID)
		return nil
	}

	if content.Status != models.ContentStatusScheduled {
		return nil
	}

	committed, err := q.cr.SetProcessing(ctx, contentID, q.now())
	if err != nil {
		return err
	}
	if !committed {
		return nil
	}

	profile, err := q.pr.GetByID(ctx, content.ProfileID.Int64)
	if err != nil {
		return err
	}
	if profile == nil {
		q.failSubmission(ctx, content, "publishing profile no longer exists")
		return nil
	}

	accessToken, err := utils.Decrypt(profile.AccessToken, []byte(q.cfg.SecretKey))
	if err != nil {
		q.failSubmission(ctx, content, "unable to decrypt profile credentials")
		return nil
	}

	externalRefID, err := q.pub.Submit(ctx, &publisher.SubmitRequest{
		AccountID:   profile.ExternalAccountID,
		AccessToken: accessToken,
		Caption:     content.Caption,
		MediaURL:    content.FileURL,
		MediaType:   content.FileType,
	})
	if err != nil {
		slog.Info(err.Error())
		q.failSubmission(ctx, content, err.Error())
		return nil
	}

	if err := q.cr.SetExternalRef(ctx, contentID, externalRefID); err != nil {
		return err
	}

	return nil
}

// failSubmission records a hand-off failure as a terminal outcome. The
// content is already in processing, so the move to failed is still a CAS.
func (q *Queue) failSubmission(ctx context.Context, content *models.Content, reason string) {
	committed, err := q.cr.ConfirmFailure(ctx, content.ID)
	if err != nil {
		slog.Info(err.Error())
		return
	}
	if !committed {
		return
	}

	entry := &models.UploadHistory{
		UserID:       content.UserID,
		ContentID:    content.ID,
		ProfileID:    content.ProfileID.Int64,
		Success:      false,
		ErrorMessage: reason,
	}
	if _, err := q.uh.Create(ctx, entry); err != nil {
		slog.Info(err.Error())
	}
}
