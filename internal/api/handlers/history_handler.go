package handlers

import (
	"github.com/arlochter/slotflow/internal/repository"
	"github.com/gofiber/fiber/v2"
)

type HistoryHandler struct {
	r repository.UploadHistoryRepository
}

func NewHistoryHandler(r repository.UploadHistoryRepository) *HistoryHandler {
	return &HistoryHandler{r: r}
}

func (h *HistoryHandler) ListHistory(c *fiber.Ctx) error {
	userID := GetUserID(c)
	contentID := c.QueryInt("content_id", 0)

	if contentID != 0 {
		entries, err := h.r.GetByContentID(c.Context(), int64(contentID))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unable to list upload history",
			})
		}
		return c.Status(fiber.StatusOK).JSON(entries)
	}

	entries, err := h.r.GetByUserID(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to list upload history",
		})
	}

	return c.Status(fiber.StatusOK).JSON(entries)
}
