package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	config "github.com/arlochter/slotflow/configs"
	"github.com/arlochter/slotflow/internal/models"
	"github.com/arlochter/slotflow/internal/repository"
	"github.com/arlochter/slotflow/internal/transfer"
	"github.com/arlochter/slotflow/pkg/utils"
)

type ProfileService interface {
	Connect(ctx context.Context, userID int64, pc *transfer.ProfileConnection) (int64, error)
	List(ctx context.Context, userID int64) ([]*models.Profile, error)
	Delete(ctx context.Context, userID, profileID int64) error
	AddSlot(ctx context.Context, userID int64, sc *transfer.SlotCreation) (int64, error)
	ListSlots(ctx context.Context, userID, profileID int64) ([]*models.ScheduleSlot, error)
	SetSlotActive(ctx context.Context, userID, slotID int64, active bool) error
	RemoveSlot(ctx context.Context, userID, slotID int64) error
}

type profileService struct {
	cfg config.Config
	pr  repository.ProfileRepository
	sr  repository.SlotRepository
	or  repository.OccurrenceRepository
	cr  repository.ContentRepository
}

func NewProfileService(
	cfg config.Config,
	pr repository.ProfileRepository,
	sr repository.SlotRepository,
	or repository.OccurrenceRepository,
	cr repository.ContentRepository) ProfileService {
	return &profileService{
		cfg: cfg,
		pr:  pr,
		sr:  sr,
		or:  or,
		cr:  cr,
	}
}

// Connect registers a publishing destination. Tokens are encrypted before
// they touch the database.
func (s *profileService) Connect(ctx context.Context, userID int64, pc *transfer.ProfileConnection) (int64, error) {
	if pc == nil || pc.Name == "" || pc.AccessToken == "" {
		err := errors.New("profile name and access token are required")
		slog.Info(err.Error())
		return 0, err
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(pc.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return 0, err
	}

	encryptedRefreshToken, err := utils.Encrypt([]byte(pc.RefreshToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return 0, err
	}

	profile := &models.Profile{
		UserID:            userID,
		Name:              pc.Name,
		ExternalAccountID: pc.ExternalAccountID,
		AccessToken:       encryptedAccessToken,
		RefreshToken:      encryptedRefreshToken,
		TokenExpiresAt:    GetExpiresAt(pc.ExpiresIn),
	}

	id, err := s.pr.Create(ctx, profile)
	if err != nil {
		return 0, fmt.Errorf("error saving profile: %w", err)
	}

	return id, nil
}

func (s *profileService) List(ctx context.Context, userID int64) ([]*models.Profile, error) {
	profiles, err := s.pr.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing profiles")
	}
	return profiles, nil
}

// Delete cascades: slots and bookings go away, and the profile's assigned
// or scheduled contents fall back to pending.
func (s *profileService) Delete(ctx context.Context, userID, profileID int64) error {
	isValid, err := s.pr.CheckByUserID(ctx, profileID, userID)
	if err != nil {
		return err
	}
	if !isValid {
		slog.Info("profile doesn't exist", "profile_id", profileID)
		return ErrNotFound
	}

	if err := s.cr.OrphanByProfileID(ctx, profileID); err != nil {
		return err
	}
	if err := s.or.RemoveByProfileID(ctx, profileID); err != nil {
		return err
	}
	if err := s.sr.RemoveByProfileID(ctx, profileID); err != nil {
		return err
	}

	return s.pr.Remove(ctx, profileID)
}

func (s *profileService) AddSlot(ctx context.Context, userID int64, sc *transfer.SlotCreation) (int64, error) {
	if sc == nil {
		err := errors.New("slot creation data is nil")
		slog.Info(err.Error())
		return 0, err
	}

	if sc.Hour < 0 || sc.Hour > 23 || sc.Minute < 0 || sc.Minute > 59 {
		err := errors.New("slot time out of range")
		slog.Info(err.Error())
		return 0, err
	}

	if sc.SlotType != models.SlotTypeDaily && sc.SlotType != models.SlotTypeWeekly {
		err := fmt.Errorf("slot type %q is not valid", sc.SlotType)
		slog.Info(err.Error())
		return 0, err
	}

	for _, d := range sc.WeekDays {
		if d < 0 || d > 6 {
			err := fmt.Errorf("weekday %d out of range", d)
			slog.Info(err.Error())
			return 0, err
		}
	}

	isValid, err := s.pr.CheckByUserID(ctx, sc.ProfileID, userID)
	if err != nil {
		return 0, err
	}
	if !isValid {
		return 0, ErrNotFound
	}

	slot := &models.ScheduleSlot{
		ProfileID: sc.ProfileID,
		Hour:      sc.Hour,
		Minute:    sc.Minute,
		SlotType:  sc.SlotType,
		WeekDays:  sc.WeekDays,
		IsActive:  true,
	}

	id, err := s.sr.Create(ctx, slot)
	if err != nil {
		return 0, fmt.Errorf("error saving slot: %w", err)
	}

	return id, nil
}

func (s *profileService) ListSlots(ctx context.Context, userID, profileID int64) ([]*models.ScheduleSlot, error) {
	isValid, err := s.pr.CheckByUserID(ctx, profileID, userID)
	if err != nil {
		return nil, err
	}
	if !isValid {
		return nil, ErrNotFound
	}

	slots, err := s.sr.ListByProfileID(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("error listing slots")
	}
	return slots, nil
}

func (s *profileService) SetSlotActive(ctx context.Context, userID, slotID int64, active bool) error {
	if _, err := s.ownedSlot(ctx, userID, slotID); err != nil {
		return err
	}
	return s.sr.SetActive(ctx, slotID, active)
}

func (s *profileService) RemoveSlot(ctx context.Context, userID, slotID int64) error {
	if _, err := s.ownedSlot(ctx, userID, slotID); err != nil {
		return err
	}

	if err := s.or.RemoveBySlotID(ctx, slotID); err != nil {
		return err
	}
	return s.sr.Remove(ctx, slotID)
}

func (s *profileService) ownedSlot(ctx context.Context, userID, slotID int64) (*models.ScheduleSlot, error) {
	slot, err := s.sr.GetByID(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if slot == nil {
		slog.Info("slot doesn't exist", "slot_id", slotID)
		return nil, ErrNotFound
	}

	isValid, err := s.pr.CheckByUserID(ctx, slot.ProfileID, userID)
	if err != nil {
		return nil, err
	}
	if !isValid {
		return nil, ErrNotFound
	}

	return slot, nil
}
