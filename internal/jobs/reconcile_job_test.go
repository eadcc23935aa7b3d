package job

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/arlochter/slotflow/internal/models"
	"github.com/arlochter/slotflow/internal/publisher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockContentRepo struct {
	mock.Mock
}

func (m *mockContentRepo) Create(ctx context.Context, tx *sql.Tx, content *models.Content) (int64, error) {
	args := m.Called(ctx, tx, content)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockContentRepo) GetByID(ctx context.Context, id int64) (*models.Content, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Content), args.Error(1)
}

func (m *mockContentRepo) GetByUserID(ctx context.Context, userID int64) ([]*models.Content, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Content), args.Error(1)
}

func (m *mockContentRepo) CheckByUserID(ctx context.Context, contentID, userID int64) (bool, error) {
	args := m.Called(ctx, contentID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockContentRepo) ListProcessing(ctx context.Context) ([]*models.Content, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Content), args.Error(1)
}

func (m *mockContentRepo) SetAssigned(ctx context.Context, id, profileID int64, from string) (bool, error) {
	args := m.Called(ctx, id, profileID, from)
	return args.Bool(0), args.Error(1)
}

func (m *mockContentRepo) SetScheduled(ctx context.Context, tx *sql.Tx, id, profileID, slotID int64, runsAt time.Time, from string) (bool, error) {
	args := m.Called(ctx, tx, id, profileID, slotID, runsAt, from)
	return args.Bool(0), args.Error(1)
}

func (m *mockContentRepo) ClearSchedule(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockContentRepo) SetPending(ctx context.Context, id int64, from string) (bool, error) {
	args := m.Called(ctx, id, from)
	return args.Bool(0), args.Error(1)
}

func (m *mockContentRepo) SetRemoved(ctx context.Context, id int64, from string, removedAt time.Time, fromProfileID int64) (bool, error) {
	args := m.Called(ctx, id, from, removedAt, fromProfileID)
	return args.Bool(0), args.Error(1)
}

func (m *mockContentRepo) Restore(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockContentRepo) SetProcessing(ctx context.Context, id int64, attemptedAt time.Time) (bool, error) {
	args := m.Called(ctx, id, attemptedAt)
	return args.Bool(0), args.Error(1)
}

func (m *mockContentRepo) SetExternalRef(ctx context.Context, id int64, externalRefID string) error {
	args := m.Called(ctx, id, externalRefID)
	return args.Error(0)
}

func (m *mockContentRepo) ConfirmSuccess(ctx context.Context, id int64, removedAt time.Time) (bool, error) {
	args := m.Called(ctx, id, removedAt)
	return args.Bool(0), args.Error(1)
}

func (m *mockContentRepo) ConfirmFailure(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockContentRepo) OrphanByProfileID(ctx context.Context, profileID int64) error {
	args := m.Called(ctx, profileID)
	return args.Error(0)
}

func (m *mockContentRepo) Remove(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockOccurrenceRepo struct {
	mock.Mock
}

func (m *mockOccurrenceRepo) Create(ctx context.Context, tx *sql.Tx, occ *models.ScheduledOccurrence) (int64, error) {
	args := m.Called(ctx, tx, occ)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockOccurrenceRepo) ListByProfileFrom(ctx context.Context, profileID int64, from time.Time) ([]*models.ScheduledOccurrence, error) {
	args := m.Called(ctx, profileID, from)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ScheduledOccurrence), args.Error(1)
}

func (m *mockOccurrenceRepo) RemoveByContentID(ctx context.Context, contentID int64) error {
	args := m.Called(ctx, contentID)
	return args.Error(0)
}

func (m *mockOccurrenceRepo) RemoveByProfileID(ctx context.Context, profileID int64) error {
	args := m.Called(ctx, profileID)
	return args.Error(0)
}

func (m *mockOccurrenceRepo) RemoveBySlotID(ctx context.Context, slotID int64) error {
	args := m.Called(ctx, slotID)
	return args.Error(0)
}

type mockHistoryRepo struct {
	mock.Mock
}

func (m *mockHistoryRepo) Create(ctx context.Context, entry *models.UploadHistory) (int64, error) {
	args := m.Called(ctx, entry)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockHistoryRepo) GetByUserID(ctx context.Context, userID int64) ([]*models.UploadHistory, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.UploadHistory), args.Error(1)
}

func (m *mockHistoryRepo) GetByContentID(ctx context.Context, contentID int64) ([]*models.UploadHistory, error) {
	args := m.Called(ctx, contentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.UploadHistory), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Submit(ctx context.Context, req *publisher.SubmitRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *mockPublisher) PollStatus(ctx context.Context, externalRefID string) (*publisher.StatusResult, error) {
	args := m.Called(ctx, externalRefID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*publisher.StatusResult), args.Error(1)
}

func boolPtr(b bool) *bool { return &b }

func processingContent(id int64, attemptedAt time.Time) *models.Content {
	return &models.Content{
		ID:                id,
		UserID:            1,
		Status:            models.ContentStatusProcessing,
		ProfileID:         sql.NullInt64{Int64: 5, Valid: true},
		ExternalRefID:     sql.NullString{String: "ref-1", Valid: true},
		UploadAttemptedAt: sql.NullTime{Time: attemptedAt, Valid: true},
	}
}

func newTestJob(cr *mockContentRepo, or *mockOccurrenceRepo, uh *mockHistoryRepo, pub *mockPublisher, now time.Time) *ReconcileJob {
	j := NewReconcileJob(cr, or, uh, pub)
	j.now = func() time.Time { return now }
	return j
}

func TestReconcileSuccess(t *testing.T) {
	now := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	content := processingContent(1, now.Add(-5*time.Minute))

	cr := new(mockContentRepo)
	or := new(mockOccurrenceRepo)
	uh := new(mockHistoryRepo)
	pub := new(mockPublisher)

	pub.On("PollStatus", mock.Anything, content.ExternalRefID.String).
		Return(&publisher.StatusResult{Status: "completed", Succeeded: boolPtr(true)}, nil)
	cr.On("ConfirmSuccess", mock.Anything, content.ID, now).Return(true, nil)
	or.On("RemoveByContentID", mock.Anything, content.ID).Return(nil)
	uh.On("Create", mock.Anything, mock.MatchedBy(func(e *models.UploadHistory) bool {
		return e.ContentID == content.ID && e.Success && e.ErrorMessage == ""
	})).Return(int64(1), nil)

	j := newTestJob(cr, or, uh, pub, now)
	j.Reconcile(context.Background(), content)

	cr.AssertExpectations(t)
	or.AssertExpectations(t)
	uh.AssertExpectations(t)
}

func TestReconcileFailure(t *testing.T) {
	now := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	content := processingContent(1, now.Add(-5*time.Minute))

	cr := new(mockContentRepo)
	or := new(mockOccurrenceRepo)
	uh := new(mockHistoryRepo)
	pub := new(mockPublisher)

	pub.On("PollStatus", mock.Anything, content.ExternalRefID.String).
		Return(&publisher.StatusResult{Status: "failed", Detail: "media rejected"}, nil)
	cr.On("ConfirmFailure", mock.Anything, content.ID).Return(true, nil)
	uh.On("Create", mock.Anything, mock.MatchedBy(func(e *models.UploadHistory) bool {
		return e.ContentID == content.ID && !e.Success && e.ErrorMessage == "media rejected"
	})).Return(int64(1), nil)

	j := newTestJob(cr, or, uh, pub, now)
	j.Reconcile(context.Background(), content)

	cr.AssertExpectations(t)
	uh.AssertExpectations(t)
	// A failure never touches the calendar booking.
	or.AssertNotCalled(t, "RemoveByContentID", mock.Anything, mock.Anything)
}

func TestReconcileTimeout(t *testing.T) {
	now := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	content := processingContent(1, now.Add(-31*time.Minute))

	cr := new(mockContentRepo)
	or := new(mockOccurrenceRepo)
	uh := new(mockHistoryRepo)
	pub := new(mockPublisher)

	cr.On("ConfirmFailure", mock.Anything, content.ID).Return(true, nil)
	uh.On("Create", mock.Anything, mock.MatchedBy(func(e *models.UploadHistory) bool {
		return !e.Success && e.ErrorMessage == "timed out after 30 minutes"
	})).Return(int64(1), nil)

	j := newTestJob(cr, or, uh, pub, now)
	j.Reconcile(context.Background(), content)

	cr.AssertExpectations(t)
	uh.AssertExpectations(t)
	// The publisher is never consulted for a timed-out item.
	pub.AssertNotCalled(t, "PollStatus", mock.Anything, mock.Anything)
}

func TestReconcileStillProcessing(t *testing.T) {
	now := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	content := processingContent(1, now.Add(-5*time.Minute))

	cr := new(mockContentRepo)
	or := new(mockOccurrenceRepo)
	uh := new(mockHistoryRepo)
	pub := new(mockPublisher)

	pub.On("PollStatus", mock.Anything, content.ExternalRefID.String).
		Return(&publisher.StatusResult{Status: "processing"}, nil)

	j := newTestJob(cr, or, uh, pub, now)
	j.Reconcile(context.Background(), content)

	cr.AssertNotCalled(t, "ConfirmSuccess", mock.Anything, mock.Anything, mock.Anything)
	cr.AssertNotCalled(t, "ConfirmFailure", mock.Anything, mock.Anything)
}

func TestReconcileUnknownStatusLeavesItem(t *testing.T) {
	now := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	content := processingContent(1, now.Add(-5*time.Minute))

	cr := new(mockContentRepo)
	or := new(mockOccurrenceRepo)
	uh := new(mockHistoryRepo)
	pub := new(mockPublisher)

	pub.On("PollStatus", mock.Anything, content.ExternalRefID.String).
		Return(&publisher.StatusResult{Status: "transcoding"}, nil)

	j := newTestJob(cr, or, uh, pub, now)
	j.Reconcile(context.Background(), content)

	cr.AssertNotCalled(t, "ConfirmSuccess", mock.Anything, mock.Anything, mock.Anything)
	cr.AssertNotCalled(t, "ConfirmFailure", mock.Anything, mock.Anything)
}

func TestReconcilePollErrorLeavesItem(t *testing.T) {
	now := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	content := processingContent(1, now.Add(-5*time.Minute))

	cr := new(mockContentRepo)
	or := new(mockOccurrenceRepo)
	uh := new(mockHistoryRepo)
	pub := new(mockPublisher)

	pub.On("PollStatus", mock.Anything, content.ExternalRefID.String).
		Return(nil, errors.New("connection refused"))

	j := newTestJob(cr, or, uh, pub, now)
	j.Reconcile(context.Background(), content)

	cr.AssertNotCalled(t, "ConfirmFailure", mock.Anything, mock.Anything)
	uh.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestReconcileLostRaceSkipsSideEffects(t *testing.T) {
	now := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	content := processingContent(1, now.Add(-5*time.Minute))

	cr := new(mockContentRepo)
	or := new(mockOccurrenceRepo)
	uh := new(mockHistoryRepo)
	pub := new(mockPublisher)

	pub.On("PollStatus", mock.Anything, content.ExternalRefID.String).
		Return(&publisher.StatusResult{Status: "completed"}, nil)
	// Another writer already moved the content out of processing.
	cr.On("ConfirmSuccess", mock.Anything, content.ID, now).Return(false, nil)

	j := newTestJob(cr, or, uh, pub, now)
	j.Reconcile(context.Background(), content)

	or.AssertNotCalled(t, "RemoveByContentID", mock.Anything, mock.Anything)
	uh.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRunIsolatesItems(t *testing.T) {
	now := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	broken := processingContent(1, now.Add(-5*time.Minute))
	healthy := processingContent(2, now.Add(-5*time.Minute))
	healthy.ExternalRefID = sql.NullString{String: "ref-2", Valid: true}

	cr := new(mockContentRepo)
	or := new(mockOccurrenceRepo)
	uh := new(mockHistoryRepo)
	pub := new(mockPublisher)

	cr.On("ListProcessing", mock.Anything).Return([]*models.Content{broken, healthy}, nil)

	// The first item's poll blows up; the second must still be resolved.
	pub.On("PollStatus", mock.Anything, broken.ExternalRefID.String).
		Return(nil, errors.New("publisher down"))
	pub.On("PollStatus", mock.Anything, "ref-2").
		Return(&publisher.StatusResult{Status: "completed"}, nil)
	cr.On("ConfirmSuccess", mock.Anything, healthy.ID, now).Return(true, nil)
	or.On("RemoveByContentID", mock.Anything, healthy.ID).Return(nil)
	uh.On("Create", mock.Anything, mock.Anything).Return(int64(1), nil)

	j := newTestJob(cr, or, uh, pub, now)
	j.Run()

	cr.AssertExpectations(t)
	or.AssertExpectations(t)
	uh.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestReconcileMissingMetadata(t *testing.T) {
	now := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	content := &models.Content{ID: 1, Status: models.ContentStatusProcessing}

	cr := new(mockContentRepo)
	or := new(mockOccurrenceRepo)
	uh := new(mockHistoryRepo)
	pub := new(mockPublisher)

	j := newTestJob(cr, or, uh, pub, now)
	j.Reconcile(context.Background(), content)

	pub.AssertNotCalled(t, "PollStatus", mock.Anything, mock.Anything)
	cr.AssertNotCalled(t, "ConfirmFailure", mock.Anything, mock.Anything)
	assert.Equal(t, models.ContentStatusProcessing, content.Status)
}
