package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"time"

	"github.com/arlochter/slotflow/internal/models"
	"github.com/arlochter/slotflow/internal/repository"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// ScheduleResult tells the caller what a scheduling action decided. When
// Scheduled is false the content was left merely assigned (no free slot in
// the horizon). The handler enqueues the publish task from RunsAt.
type ScheduleResult struct {
	ContentID int64
	ProfileID int64
	Scheduled bool
	SlotID    int64
	RunsAt    time.Time
}

type ContentService interface {
	Create(ctx context.Context, userID int64, caption string, file *multipart.FileHeader) (int64, error)
	List(ctx context.Context, userID int64) ([]*models.Content, error)
	Info(ctx context.Context, contentID, userID int64) (*models.Content, error)
	Assign(ctx context.Context, userID, contentID, profileID int64) (*ScheduleResult, error)
	ScheduleManually(ctx context.Context, userID, contentID, slotID int64, date string) (*ScheduleResult, error)
	Unschedule(ctx context.Context, userID, contentID int64) error
	RevertToPending(ctx context.Context, userID, contentID int64) error
	Remove(ctx context.Context, userID, contentID int64) error
	Restore(ctx context.Context, userID, contentID int64) error
}

type contentService struct {
	db      *sql.DB
	cr      repository.ContentRepository
	pr      repository.ProfileRepository
	sr      repository.SlotRepository
	or      repository.OccurrenceRepository
	storage *StorageService
	now     func() time.Time
}

func NewContentService(
	db *sql.DB,
	cr repository.ContentRepository,
	pr repository.ProfileRepository,
	sr repository.SlotRepository,
	or repository.OccurrenceRepository,
	storage *StorageService) ContentService {
	return &contentService{
		db:      db,
		cr:      cr,
		pr:      pr,
		sr:      sr,
		or:      or,
		storage: storage,
		now:     time.Now,
	}
}

func (s *contentService) Create(ctx context.Context, userID int64, caption string, file *multipart.FileHeader) (int64, error) {
	if caption == "" {
		err := errors.New("caption cannot be empty")
		slog.Info(err.Error())
		return 0, err
	}
	if file == nil {
		err := errors.New("no file provided for the content")
		slog.Info(err.Error())
		return 0, err
	}

	fileContent, err := file.Open()
	if err != nil {
		return 0, fmt.Errorf("error opening file: %w", err)
	}
	defer fileContent.Close()

	fileBytes, err := io.ReadAll(fileContent)
	if err != nil {
		return 0, fmt.Errorf("error reading file content: %w", err)
	}

	allowedTypes := map[string]struct{}{
		"mp4": {}, "mov": {}, "jpeg": {}, "png": {}, "jpg": {},
	}

	fileType, err := filetype.Match(fileBytes)
	if err != nil || fileType == types.Unknown {
		return 0, fmt.Errorf("unsupported file type: %w", err)
	}
	if _, ok := allowedTypes[fileType.Extension]; !ok {
		return 0, fmt.Errorf("file type %s is not allowed", fileType.Extension)
	}

	key, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	if err := s.storage.Upload(ctx, key, fileBytes, fileType.MIME.Value); err != nil {
		return 0, fmt.Errorf("error uploading file: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		}
	}()

	content := models.Content{
		UserID:   userID,
		Caption:  caption,
		FileName: key,
		FileType: fileType.MIME.Value,
		FileSize: int64(len(fileBytes)),
		FileURL:  s.storage.PublicURL(key),
	}

	contentID, err := s.cr.Create(ctx, tx, &content)
	if err != nil {
		return 0, fmt.Errorf("error creating content: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return contentID, nil
}

func (s *contentService) List(ctx context.Context, userID int64) ([]*models.Content, error) {
	contents, err := s.cr.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing contents")
	}
	return contents, nil
}

func (s *contentService) Info(ctx context.Context, contentID, userID int64) (*models.Content, error) {
	content, err := s.owned(ctx, contentID, userID)
	if err != nil {
		return nil, err
	}
	return content, nil
}

// Assign places content on a profile. When the allocator finds a free slot
// within the horizon the content lands on scheduled with a booking; when it
// does not, the content stays assigned with no slot. That negative result
// is not an error.
func (s *contentService) Assign(ctx context.Context, userID, contentID, profileID int64) (*ScheduleResult, error) {
	content, err := s.owned(ctx, contentID, userID)
	if err != nil {
		return nil, err
	}

	if _, err := NextStatus(content.Status, EventAssign); err != nil {
		return nil, err
	}

	ok, err := s.pr.CheckByUserID(ctx, profileID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		slog.Info("profile doesn't exist", "profile_id", profileID)
		return nil, ErrNotFound
	}

	now := s.now()

	slots, err := s.sr.ListByProfileID(ctx, profileID)
	if err != nil {
		return nil, err
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	taken, err := s.or.ListByProfileFrom(ctx, profileID, today)
	if err != nil {
		return nil, err
	}

	candidate, found := FindNextSlot(profileID, slots, taken, now)
	if !found {
		return s.assignWithoutSlot(ctx, content, profileID)
	}

	occ := &models.ScheduledOccurrence{
		ContentID: contentID,
		ProfileID: profileID,
		SlotID:    candidate.SlotID,
		SlotDate:  candidate.SlotDate,
		RunsAt:    candidate.RunsAt,
	}
	if _, err := s.or.Create(ctx, nil, occ); err != nil {
		if errors.Is(err, repository.ErrDuplicateOccurrence) {
			// Booked between snapshot and insert. Leave the content
			// assigned; the next scheduling pass will find a later slot.
			return s.assignWithoutSlot(ctx, content, profileID)
		}
		return nil, err
	}

	committed, err := s.cr.SetScheduled(ctx, nil, contentID, profileID, candidate.SlotID, candidate.RunsAt, content.Status)
	if err != nil {
		return nil, err
	}
	if !committed {
		s.releaseOccurrence(ctx, contentID)
		return nil, ErrLostRace
	}

	return &ScheduleResult{
		ContentID: contentID,
		ProfileID: profileID,
		Scheduled: true,
		SlotID:    candidate.SlotID,
		RunsAt:    candidate.RunsAt,
	}, nil
}

func (s *contentService) assignWithoutSlot(ctx context.Context, content *models.Content, profileID int64) (*ScheduleResult, error) {
	committed, err := s.cr.SetAssigned(ctx, content.ID, profileID, content.Status)
	if err != nil {
		return nil, err
	}
	if !committed {
		return nil, ErrLostRace
	}
	return &ScheduleResult{ContentID: content.ID, ProfileID: profileID, Scheduled: false}, nil
}

// ScheduleManually books a specific slot on a specific calendar date
// (format 2006-01-02). Rejects times at or before now and double-bookings
// without mutating anything.
func (s *contentService) ScheduleManually(ctx context.Context, userID, contentID, slotID int64, date string) (*ScheduleResult, error) {
	content, err := s.owned(ctx, contentID, userID)
	if err != nil {
		return nil, err
	}

	if _, err := NextStatus(content.Status, EventSchedule); err != nil {
		return nil, err
	}

	slot, err := s.sr.GetByID(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if slot == nil {
		slog.Info("slot doesn't exist", "slot_id", slotID)
		return nil, ErrNotFound
	}

	ok, err := s.pr.CheckByUserID(ctx, slot.ProfileID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}

	now := s.now()
	day, err := time.ParseInLocation("2006-01-02", date, now.Location())
	if err != nil {
		return nil, fmt.Errorf("invalid date format: %w", err)
	}

	runsAt := slotTimeOn(slot, day)
	if !runsAt.After(now) {
		return nil, ErrPastSchedule
	}

	// A manual schedule overwrites any stale booking for this content.
	if err := s.or.RemoveByContentID(ctx, contentID); err != nil {
		return nil, err
	}

	occ := &models.ScheduledOccurrence{
		ContentID: contentID,
		ProfileID: slot.ProfileID,
		SlotID:    slotID,
		SlotDate:  day,
		RunsAt:    runsAt,
	}
	if _, err := s.or.Create(ctx, nil, occ); err != nil {
		if errors.Is(err, repository.ErrDuplicateOccurrence) {
			return nil, ErrSlotConflict
		}
		return nil, err
	}

	committed, err := s.cr.SetScheduled(ctx, nil, contentID, slot.ProfileID, slotID, runsAt, content.Status)
	if err != nil {
		return nil, err
	}
	if !committed {
		s.releaseOccurrence(ctx, contentID)
		return nil, ErrLostRace
	}

	return &ScheduleResult{
		ContentID: contentID,
		ProfileID: slot.ProfileID,
		Scheduled: true,
		SlotID:    slotID,
		RunsAt:    runsAt,
	}, nil
}

func (s *contentService) Unschedule(ctx context.Context, userID, contentID int64) error {
	content, err := s.owned(ctx, contentID, userID)
	if err != nil {
		return err
	}

	if _, err := NextStatus(content.Status, EventUnschedule); err != nil {
		return err
	}

	committed, err := s.cr.ClearSchedule(ctx, contentID)
	if err != nil {
		return err
	}
	if !committed {
		return ErrLostRace
	}

	return s.or.RemoveByContentID(ctx, contentID)
}

func (s *contentService) RevertToPending(ctx context.Context, userID, contentID int64) error {
	content, err := s.owned(ctx, contentID, userID)
	if err != nil {
		return err
	}

	if _, err := NextStatus(content.Status, EventRevert); err != nil {
		return err
	}

	committed, err := s.cr.SetPending(ctx, contentID, content.Status)
	if err != nil {
		return err
	}
	if !committed {
		return ErrLostRace
	}

	return s.or.RemoveByContentID(ctx, contentID)
}

// Remove is the manual deletion path, independent of any publish outcome.
func (s *contentService) Remove(ctx context.Context, userID, contentID int64) error {
	content, err := s.owned(ctx, contentID, userID)
	if err != nil {
		return err
	}

	if _, err := NextStatus(content.Status, EventRemove); err != nil {
		return err
	}

	var fromProfileID int64
	if content.ProfileID.Valid {
		fromProfileID = content.ProfileID.Int64
	}

	committed, err := s.cr.SetRemoved(ctx, contentID, content.Status, s.now(), fromProfileID)
	if err != nil {
		return err
	}
	if !committed {
		return ErrLostRace
	}

	return s.or.RemoveByContentID(ctx, contentID)
}

func (s *contentService) Restore(ctx context.Context, userID, contentID int64) error {
	content, err := s.owned(ctx, contentID, userID)
	if err != nil {
		return err
	}

	if _, err := NextStatus(content.Status, EventRestore); err != nil {
		return err
	}

	committed, err := s.cr.Restore(ctx, contentID)
	if err != nil {
		return err
	}
	if !committed {
		return ErrLostRace
	}
	return nil
}

func (s *contentService) owned(ctx context.Context, contentID, userID int64) (*models.Content, error) {
	if userID == 0 || contentID == 0 {
		err := errors.New("content id is not valid")
		slog.Info(err.Error())
		return nil, ErrNotFound
	}

	isValid, err := s.cr.CheckByUserID(ctx, contentID, userID)
	if err != nil {
		return nil, err
	}
	if !isValid {
		slog.Info("content doesn't exist", "content_id", contentID)
		return nil, ErrNotFound
	}

	content, err := s.cr.GetByID(ctx, contentID)
	if err != nil || content == nil {
		return nil, fmt.Errorf("error getting content info")
	}

	return content, nil
}

func (s *contentService) releaseOccurrence(ctx context.Context, contentID int64) {
	if err := s.or.RemoveByContentID(ctx, contentID); err != nil {
		slog.Info(err.Error())
	}
}
