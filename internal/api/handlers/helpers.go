package handlers

import (
	"errors"
	"strconv"

	"github.com/arlochter/slotflow/internal/service"
	"github.com/gofiber/fiber/v2"
)

func GetUserID(c *fiber.Ctx) int64 {
	userID, _ := strconv.Atoi(c.Locals("user_id").(string))
	return int64(userID)
}

// statusForError maps the scheduling error taxonomy onto HTTP statuses.
func statusForError(err error) int {
	var invalid *service.InvalidTransitionError

	switch {
	case errors.Is(err, service.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrSlotConflict), errors.Is(err, service.ErrLostRace):
		return fiber.StatusConflict
	case errors.Is(err, service.ErrPastSchedule), errors.As(err, &invalid):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
