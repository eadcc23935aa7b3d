package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/arlochter/slotflow/internal/models"
	"github.com/lib/pq"
)

// ErrDuplicateOccurrence is returned when a booking would violate the
// (profile_id, slot_id, slot_date) unique constraint.
var ErrDuplicateOccurrence = errors.New("slot occurrence already booked")

type OccurrenceRepository interface {
	Create(ctx context.Context, tx *sql.Tx, occ *models.ScheduledOccurrence) (int64, error)
	ListByProfileFrom(ctx context.Context, profileID int64, from time.Time) ([]*models.ScheduledOccurrence, error)
	RemoveByContentID(ctx context.Context, contentID int64) error
	RemoveByProfileID(ctx context.Context, profileID int64) error
	RemoveBySlotID(ctx context.Context, slotID int64) error
}

type occurrenceRepository struct {
	db *sql.DB
}

func NewOccurrenceRepository(db *sql.DB) OccurrenceRepository {
	return &occurrenceRepository{db: db}
}

// Create inserts the booking. Uniqueness is enforced by the database so
// concurrent allocations targeting the same (profile, slot, date) yield
// exactly one winner; the loser gets ErrDuplicateOccurrence.
func (r *occurrenceRepository) Create(ctx context.Context, tx *sql.Tx, occ *models.ScheduledOccurrence) (int64, error) {
	query := `
		INSERT INTO scheduled_occurrences (content_id, profile_id, slot_id, slot_date, runs_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	var err error

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, occ.ContentID, occ.ProfileID, occ.SlotID, occ.SlotDate, occ.RunsAt).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, occ.ContentID, occ.ProfileID, occ.SlotID, occ.SlotDate, occ.RunsAt).Scan(&id)
	}
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return 0, ErrDuplicateOccurrence
		}
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *occurrenceRepository) ListByProfileFrom(ctx context.Context, profileID int64, from time.Time) ([]*models.ScheduledOccurrence, error) {
	query := `SELECT id, content_id, profile_id, slot_id, slot_date, runs_at, created_at FROM scheduled_occurrences WHERE profile_id = $1 AND slot_date >= $2`

	rows, err := r.db.QueryContext(ctx, query, profileID, from)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var occs []*models.ScheduledOccurrence
	for rows.Next() {
		var o models.ScheduledOccurrence
		err := rows.Scan(&o.ID, &o.ContentID, &o.ProfileID, &o.SlotID, &o.SlotDate, &o.RunsAt, &o.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		occs = append(occs, &o)
	}
	return occs, nil
}

func (r *occurrenceRepository) RemoveByContentID(ctx context.Context, contentID int64) error {
	query := `DELETE FROM scheduled_occurrences WHERE content_id = $1`
	_, err := r.db.ExecContext(ctx, query, contentID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *occurrenceRepository) RemoveByProfileID(ctx context.Context, profileID int64) error {
	query := `DELETE FROM scheduled_occurrences WHERE profile_id = $1`
	_, err := r.db.ExecContext(ctx, query, profileID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *occurrenceRepository) RemoveBySlotID(ctx context.Context, slotID int64) error {
	query := `DELETE FROM scheduled_occurrences WHERE slot_id = $1`
	_, err := r.db.ExecContext(ctx, query, slotID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
