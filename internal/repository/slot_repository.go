package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/arlochter/slotflow/internal/models"
	"github.com/lib/pq"
)

type SlotRepository interface {
	Create(ctx context.Context, slot *models.ScheduleSlot) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.ScheduleSlot, error)
	ListByProfileID(ctx context.Context, profileID int64) ([]*models.ScheduleSlot, error)
	SetActive(ctx context.Context, id int64, active bool) error
	Remove(ctx context.Context, id int64) error
	RemoveByProfileID(ctx context.Context, profileID int64) error
}

type slotRepository struct {
	db *sql.DB
}

func NewSlotRepository(db *sql.DB) SlotRepository {
	return &slotRepository{db: db}
}

func (r *slotRepository) Create(ctx context.Context, slot *models.ScheduleSlot) (int64, error) {
	query := `
		INSERT INTO schedule_slots (profile_id, hour, minute, slot_type, week_days, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		slot.ProfileID, slot.Hour, slot.Minute, slot.SlotType,
		pq.Array(slot.WeekDays), slot.IsActive).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *slotRepository) GetByID(ctx context.Context, id int64) (*models.ScheduleSlot, error) {
	query := `SELECT id, profile_id, hour, minute, slot_type, week_days, is_active, created_at, updated_at FROM schedule_slots WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var s models.ScheduleSlot
	err := row.Scan(&s.ID, &s.ProfileID, &s.Hour, &s.Minute, &s.SlotType, pq.Array(&s.WeekDays), &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &s, nil
}

func (r *slotRepository) ListByProfileID(ctx context.Context, profileID int64) ([]*models.ScheduleSlot, error) {
	query := `SELECT id, profile_id, hour, minute, slot_type, week_days, is_active, created_at, updated_at FROM schedule_slots WHERE profile_id = $1 ORDER BY hour, minute, id`

	rows, err := r.db.QueryContext(ctx, query, profileID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var slots []*models.ScheduleSlot
	for rows.Next() {
		var s models.ScheduleSlot
		err := rows.Scan(&s.ID, &s.ProfileID, &s.Hour, &s.Minute, &s.SlotType, pq.Array(&s.WeekDays), &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		slots = append(slots, &s)
	}
	return slots, nil
}

func (r *slotRepository) SetActive(ctx context.Context, id int64, active bool) error {
	query := `
		UPDATE schedule_slots
		SET is_active = $1,
			updated_at = $2
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, active, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *slotRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM schedule_slots WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *slotRepository) RemoveByProfileID(ctx context.Context, profileID int64) error {
	query := `DELETE FROM schedule_slots WHERE profile_id = $1`
	_, err := r.db.ExecContext(ctx, query, profileID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
