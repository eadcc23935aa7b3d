package handlers

import (
	"log/slog"
	"time"

	"github.com/arlochter/slotflow/internal/queue"
	"github.com/arlochter/slotflow/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
)

type ContentHandler struct {
	s           service.ContentService
	AsynqClient *asynq.Client
}

func NewContentHandler(service service.ContentService, asynqClient *asynq.Client) *ContentHandler {
	return &ContentHandler{s: service, AsynqClient: asynqClient}
}

func (h *ContentHandler) UploadContent(c *fiber.Ctx) error {
	userID := GetUserID(c)

	form, err := c.MultipartForm()
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse form",
		})
	}

	caption := c.FormValue("caption")

	files := form.File["file"]
	if len(files) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file selected",
		})
	}

	contentID, err := h.s.Create(c.Context(), userID, caption, files[0])
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":    "Content uploaded successfully",
		"content_id": contentID,
	})
}

func (h *ContentHandler) ListContents(c *fiber.Ctx) error {
	userID := GetUserID(c)
	contentID := c.QueryInt("id", 0)

	if contentID != 0 {
		content, err := h.s.Info(c.Context(), int64(contentID), userID)
		if err != nil {
			return c.Status(statusForError(err)).JSON(fiber.Map{
				"error": "Unable to get content",
			})
		}

		return c.Status(fiber.StatusOK).JSON(content)
	}

	contents, err := h.s.List(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to list contents",
		})
	}

	return c.Status(fiber.StatusOK).JSON(contents)
}

// AssignContent places content on a profile; when the allocator finds a
// free slot the publish task is enqueued for the occurrence's timestamp.
func (h *ContentHandler) AssignContent(c *fiber.Ctx) error {
	userID := GetUserID(c)
	contentID := c.QueryInt("content_id", 0)
	profileID := c.QueryInt("profile_id", 0)

	result, err := h.s.Assign(c.Context(), userID, int64(contentID), int64(profileID))
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if result.Scheduled {
		if err := h.enqueuePublish(result); err != nil {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"error": "Error scheduling publish task",
			})
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":   "Content assigned successfully",
		"scheduled": result.Scheduled,
		"runs_at":   result.RunsAt,
	})
}

func (h *ContentHandler) ScheduleContent(c *fiber.Ctx) error {
	userID := GetUserID(c)
	contentID := c.QueryInt("content_id", 0)
	slotID := c.QueryInt("slot_id", 0)
	date := c.Query("date")

	result, err := h.s.ScheduleManually(c.Context(), userID, int64(contentID), int64(slotID), date)
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if err := h.enqueuePublish(result); err != nil {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"error": "Error scheduling publish task",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Content scheduled successfully",
		"runs_at": result.RunsAt,
	})
}

func (h *ContentHandler) UnscheduleContent(c *fiber.Ctx) error {
	userID := GetUserID(c)
	contentID := c.QueryInt("id", 0)

	if err := h.s.Unschedule(c.Context(), userID, int64(contentID)); err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *ContentHandler) RevertContent(c *fiber.Ctx) error {
	userID := GetUserID(c)
	contentID := c.QueryInt("id", 0)

	if err := h.s.RevertToPending(c.Context(), userID, int64(contentID)); err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *ContentHandler) RemoveContent(c *fiber.Ctx) error {
	userID := GetUserID(c)
	contentID := c.QueryInt("id", 0)

	if err := h.s.Remove(c.Context(), userID, int64(contentID)); err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *ContentHandler) RestoreContent(c *fiber.Ctx) error {
	userID := GetUserID(c)
	contentID := c.QueryInt("id", 0)

	if err := h.s.Restore(c.Context(), userID, int64(contentID)); err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *ContentHandler) enqueuePublish(result *service.ScheduleResult) error {
	delay := time.Until(result.RunsAt)
	if delay < 0 {
		delay = 0
	}
	return queue.EnqueuePublish(h.AsynqClient, queue.PublishContentPayload{ContentID: result.ContentID}, delay)
}
