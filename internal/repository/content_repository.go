package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/arlochter/slotflow/internal/models"
)

// ContentRepository persists content rows. Every status-changing method is a
// compare-and-set keyed on the expected pre-state: the UPDATE carries the
// expected status in its WHERE clause and the method reports whether a row
// actually changed. A false return means another writer won the race.
type ContentRepository interface {
	Create(ctx context.Context, tx *sql.Tx, content *models.Content) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Content, error)
	GetByUserID(ctx context.Context, userID int64) ([]*models.Content, error)
	CheckByUserID(ctx context.Context, contentID, userID int64) (bool, error)
	ListProcessing(ctx context.Context) ([]*models.Content, error)
	SetAssigned(ctx context.Context, id, profileID int64, from string) (bool, error)
	SetScheduled(ctx context.Context, tx *sql.Tx, id, profileID, slotID int64, runsAt time.Time, from string) (bool, error)
	ClearSchedule(ctx context.Context, id int64) (bool, error)
	SetPending(ctx context.Context, id int64, from string) (bool, error)
	SetRemoved(ctx context.Context, id int64, from string, removedAt time.Time, fromProfileID int64) (bool, error)
	Restore(ctx context.Context, id int64) (bool, error)
	SetProcessing(ctx context.Context, id int64, attemptedAt time.Time) (bool, error)
	SetExternalRef(ctx context.Context, id int64, externalRefID string) error
	ConfirmSuccess(ctx context.Context, id int64, removedAt time.Time) (bool, error)
	ConfirmFailure(ctx context.Context, id int64) (bool, error)
	OrphanByProfileID(ctx context.Context, profileID int64) error
	Remove(ctx context.Context, id int64) error
}

type contentRepository struct {
	db *sql.DB
}

func NewContentRepository(db *sql.DB) ContentRepository {
	return &contentRepository{db: db}
}

const contentColumns = `id, user_id, caption, file_name, file_type, file_size, file_url, status, profile_id, scheduled_slot_id, scheduled_at, external_ref_id, upload_attempted_at, removed_at, removed_from_profile_id, uploaded_at, updated_at`

func scanContent(row interface{ Scan(...any) error }) (*models.Content, error) {
	var c models.Content
	err := row.Scan(&c.ID, &c.UserID, &c.Caption, &c.FileName, &c.FileType, &c.FileSize, &c.FileURL,
		&c.Status, &c.ProfileID, &c.ScheduledSlotID, &c.ScheduledAt, &c.ExternalRefID,
		&c.UploadAttemptedAt, &c.RemovedAt, &c.RemovedFromProfileID, &c.UploadedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *contentRepository) Create(ctx context.Context, tx *sql.Tx, content *models.Content) (int64, error) {
	query := `
		INSERT INTO contents (user_id, caption, file_name, file_type, file_size, file_url, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var id int64
	var err error

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, content.UserID, content.Caption, content.FileName, content.FileType, content.FileSize, content.FileURL, models.ContentStatusPending).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, content.UserID, content.Caption, content.FileName, content.FileType, content.FileSize, content.FileURL, models.ContentStatusPending).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *contentRepository) GetByID(ctx context.Context, id int64) (*models.Content, error) {
	query := `SELECT ` + contentColumns + ` FROM contents WHERE id = $1`

	content, err := scanContent(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return content, nil
}

func (r *contentRepository) GetByUserID(ctx context.Context, userID int64) ([]*models.Content, error) {
	query := `SELECT ` + contentColumns + ` FROM contents WHERE user_id = $1 ORDER BY uploaded_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var contents []*models.Content
	for rows.Next() {
		content, err := scanContent(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		contents = append(contents, content)
	}
	return contents, nil
}

func (r *contentRepository) CheckByUserID(ctx context.Context, contentID, userID int64) (bool, error) {
	query := `SELECT 1 FROM contents WHERE id = $1 AND user_id = $2`

	var result int
	err := r.db.QueryRowContext(ctx, query, contentID, userID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}

// ListProcessing selects reconciliation candidates: items still in
// processing that hold an external reference id. Terminal items never
// match, which is what makes re-running the poller a no-op.
func (r *contentRepository) ListProcessing(ctx context.Context) ([]*models.Content, error) {
	query := `SELECT ` + contentColumns + ` FROM contents WHERE status = $1 AND external_ref_id IS NOT NULL`

	rows, err := r.db.QueryContext(ctx, query, models.ContentStatusProcessing)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var contents []*models.Content
	for rows.Next() {
		content, err := scanContent(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		contents = append(contents, content)
	}
	return contents, nil
}

func (r *contentRepository) execCAS(ctx context.Context, tx *sql.Tx, query string, args ...any) (bool, error) {
	var res sql.Result
	var err error

	if tx != nil {
		res, err = tx.ExecContext(ctx, query, args...)
	} else {
		res, err = r.db.ExecContext(ctx, query, args...)
	}
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return affected == 1, nil
}

func (r *contentRepository) SetAssigned(ctx context.Context, id, profileID int64, from string) (bool, error) {
	query := `
		UPDATE contents
		SET status = $1,
			profile_id = $2,
			scheduled_slot_id = NULL,
			scheduled_at = NULL,
			updated_at = $3
		WHERE id = $4 AND status = $5
	`
	return r.execCAS(ctx, nil, query, models.ContentStatusAssigned, profileID, time.Now(), id, from)
}

func (r *contentRepository) SetScheduled(ctx context.Context, tx *sql.Tx, id, profileID, slotID int64, runsAt time.Time, from string) (bool, error) {
	query := `
		UPDATE contents
		SET status = $1,
			profile_id = $2,
			scheduled_slot_id = $3,
			scheduled_at = $4,
			updated_at = $5
		WHERE id = $6 AND status = $7
	`
	return r.execCAS(ctx, tx, query, models.ContentStatusScheduled, profileID, slotID, runsAt, time.Now(), id, from)
}

func (r *contentRepository) ClearSchedule(ctx context.Context, id int64) (bool, error) {
	query := `
		UPDATE contents
		SET status = $1,
			scheduled_slot_id = NULL,
			scheduled_at = NULL,
			updated_at = $2
		WHERE id = $3 AND status = $4
	`
	return r.execCAS(ctx, nil, query, models.ContentStatusAssigned, time.Now(), id, models.ContentStatusScheduled)
}

func (r *contentRepository) SetPending(ctx context.Context, id int64, from string) (bool, error) {
	query := `
		UPDATE contents
		SET status = $1,
			profile_id = NULL,
			scheduled_slot_id = NULL,
			scheduled_at = NULL,
			updated_at = $2
		WHERE id = $3 AND status = $4
	`
	return r.execCAS(ctx, nil, query, models.ContentStatusPending, time.Now(), id, from)
}

func (r *contentRepository) SetRemoved(ctx context.Context, id int64, from string, removedAt time.Time, fromProfileID int64) (bool, error) {
	query := `
		UPDATE contents
		SET status = $1,
			profile_id = NULL,
			scheduled_slot_id = NULL,
			scheduled_at = NULL,
			removed_at = $2,
			removed_from_profile_id = $3,
			updated_at = $4
		WHERE id = $5 AND status = $6
	`
	return r.execCAS(ctx, nil, query, models.ContentStatusRemoved, removedAt, fromProfileID, time.Now(), id, from)
}

func (r *contentRepository) Restore(ctx context.Context, id int64) (bool, error) {
	query := `
		UPDATE contents
		SET status = $1,
			profile_id = NULL,
			scheduled_slot_id = NULL,
			scheduled_at = NULL,
			external_ref_id = NULL,
			upload_attempted_at = NULL,
			removed_at = NULL,
			removed_from_profile_id = NULL,
			updated_at = $2
		WHERE id = $3 AND status = $4
	`
	return r.execCAS(ctx, nil, query, models.ContentStatusPending, time.Now(), id, models.ContentStatusRemoved)
}

func (r *contentRepository) SetProcessing(ctx context.Context, id int64, attemptedAt time.Time) (bool, error) {
	query := `
		UPDATE contents
		SET status = $1,
			upload_attempted_at = $2,
			updated_at = $3
		WHERE id = $4 AND status = $5
	`
	return r.execCAS(ctx, nil, query, models.ContentStatusProcessing, attemptedAt, time.Now(), id, models.ContentStatusScheduled)
}

func (r *contentRepository) SetExternalRef(ctx context.Context, id int64, externalRefID string) error {
	query := `
		UPDATE contents
		SET external_ref_id = $1,
			updated_at = $2
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, externalRefID, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *contentRepository) ConfirmSuccess(ctx context.Context, id int64, removedAt time.Time) (bool, error) {
	query := `
		UPDATE contents
		SET status = $1,
			scheduled_slot_id = NULL,
			scheduled_at = NULL,
			removed_at = $2,
			removed_from_profile_id = profile_id,
			updated_at = $3
		WHERE id = $4 AND status = $5
	`
	return r.execCAS(ctx, nil, query, models.ContentStatusRemoved, removedAt, time.Now(), id, models.ContentStatusProcessing)
}

func (r *contentRepository) ConfirmFailure(ctx context.Context, id int64) (bool, error) {
	query := `
		UPDATE contents
		SET status = $1,
			updated_at = $2
		WHERE id = $3 AND status = $4
	`
	return r.execCAS(ctx, nil, query, models.ContentStatusFailed, time.Now(), id, models.ContentStatusProcessing)
}

// OrphanByProfileID reverts every assigned or scheduled content of a
// deleted profile back to pending.
func (r *contentRepository) OrphanByProfileID(ctx context.Context, profileID int64) error {
	query := `
		UPDATE contents
		SET status = $1,
			profile_id = NULL,
			scheduled_slot_id = NULL,
			scheduled_at = NULL,
			updated_at = $2
		WHERE profile_id = $3 AND status IN ($4, $5)
	`
	_, err := r.db.ExecContext(ctx, query, models.ContentStatusPending, time.Now(), profileID,
		models.ContentStatusAssigned, models.ContentStatusScheduled)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *contentRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM contents WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
