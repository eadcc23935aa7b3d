package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/arlochter/slotflow/internal/models"
)

type UploadHistoryRepository interface {
	Create(ctx context.Context, entry *models.UploadHistory) (int64, error)
	GetByUserID(ctx context.Context, userID int64) ([]*models.UploadHistory, error)
	GetByContentID(ctx context.Context, contentID int64) ([]*models.UploadHistory, error)
}

type uploadHistoryRepository struct {
	db *sql.DB
}

func NewUploadHistoryRepository(db *sql.DB) UploadHistoryRepository {
	return &uploadHistoryRepository{db: db}
}

func (r *uploadHistoryRepository) Create(ctx context.Context, entry *models.UploadHistory) (int64, error) {
	query := `
		INSERT INTO upload_history (user_id, content_id, profile_id, success, error_message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, entry.UserID, entry.ContentID, entry.ProfileID, entry.Success, entry.ErrorMessage).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *uploadHistoryRepository) GetByUserID(ctx context.Context, userID int64) ([]*models.UploadHistory, error) {
	query := `SELECT id, user_id, content_id, profile_id, success, error_message, created_at FROM upload_history WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var entries []*models.UploadHistory
	for rows.Next() {
		var e models.UploadHistory
		err := rows.Scan(&e.ID, &e.UserID, &e.ContentID, &e.ProfileID, &e.Success, &e.ErrorMessage, &e.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, nil
}

func (r *uploadHistoryRepository) GetByContentID(ctx context.Context, contentID int64) ([]*models.UploadHistory, error) {
	query := `SELECT id, user_id, content_id, profile_id, success, error_message, created_at FROM upload_history WHERE content_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, contentID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var entries []*models.UploadHistory
	for rows.Next() {
		var e models.UploadHistory
		err := rows.Scan(&e.ID, &e.UserID, &e.ContentID, &e.ProfileID, &e.Success, &e.ErrorMessage, &e.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, nil
}
