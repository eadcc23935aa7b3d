package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/arlochter/slotflow/internal/models"
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Profile, error)
	GetByUserID(ctx context.Context, userID int64) ([]*models.Profile, error)
	CheckByUserID(ctx context.Context, profileID, userID int64) (bool, error)
	ListByTokenExpiry(ctx context.Context, from, to time.Time) ([]*models.Profile, error)
	SetToken(ctx context.Context, profileID int64, accessToken, refreshToken string, expiresAt time.Time) error
	Remove(ctx context.Context, id int64) error
}

type profileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) ProfileRepository {
	return &profileRepository{db: db}
}

const profileColumns = `id, user_id, name, external_account_id, access_token, refresh_token, token_expires_at, created_at, updated_at`

func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) (int64, error) {
	query := `
		INSERT INTO profiles (user_id, name, external_account_id, access_token, refresh_token, token_expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		profile.UserID, profile.Name, profile.ExternalAccountID,
		profile.AccessToken, profile.RefreshToken, profile.TokenExpiresAt).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *profileRepository) GetByID(ctx context.Context, id int64) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var p models.Profile
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.ExternalAccountID, &p.AccessToken, &p.RefreshToken, &p.TokenExpiresAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &p, nil
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID int64) ([]*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var profiles []*models.Profile
	for rows.Next() {
		var p models.Profile
		err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.ExternalAccountID, &p.AccessToken, &p.RefreshToken, &p.TokenExpiresAt, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		profiles = append(profiles, &p)
	}
	return profiles, nil
}

func (r *profileRepository) CheckByUserID(ctx context.Context, profileID, userID int64) (bool, error) {
	query := `SELECT 1 FROM profiles WHERE id = $1 AND user_id = $2`

	var result int
	err := r.db.QueryRowContext(ctx, query, profileID, userID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}

func (r *profileRepository) ListByTokenExpiry(ctx context.Context, from, to time.Time) ([]*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE token_expires_at BETWEEN $1 AND $2`

	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var profiles []*models.Profile
	for rows.Next() {
		var p models.Profile
		err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.ExternalAccountID, &p.AccessToken, &p.RefreshToken, &p.TokenExpiresAt, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		profiles = append(profiles, &p)
	}
	return profiles, nil
}

func (r *profileRepository) SetToken(ctx context.Context, profileID int64, accessToken, refreshToken string, expiresAt time.Time) error {
	query := `
		UPDATE profiles
		SET access_token = $1,
			refresh_token = $2,
			token_expires_at = $3,
			updated_at = $4
		WHERE id = $5
	`
	_, err := r.db.ExecContext(ctx, query, accessToken, refreshToken, expiresAt, time.Now(), profileID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *profileRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM profiles WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
