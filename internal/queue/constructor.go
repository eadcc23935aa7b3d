package queue

import (
	"time"

	config "github.com/arlochter/slotflow/configs"
	"github.com/arlochter/slotflow/internal/publisher"
	"github.com/arlochter/slotflow/internal/repository"
)

type Queue struct {
	cfg config.Config
	cr  repository.ContentRepository
	pr  repository.ProfileRepository
	uh  repository.UploadHistoryRepository
	pub publisher.Publisher
	now func() time.Time
}

func NewQueue(
	cfg config.Config,
	cr repository.ContentRepository,
	pr repository.ProfileRepository,
	uh repository.UploadHistoryRepository,
	pub publisher.Publisher) *Queue {
	return &Queue{
		cfg: cfg,
		cr:  cr,
		pr:  pr,
		uh:  uh,
		pub: pub,
		now: time.Now,
	}
}

const TaskTypePublishContent = "publish:content"

type PublishContentPayload struct {
	ContentID int64 `json:"content_id"`
}
