package handlers

import (
	"log/slog"

	"github.com/arlochter/slotflow/internal/service"
	"github.com/arlochter/slotflow/internal/transfer"
	"github.com/gofiber/fiber/v2"
)

type ProfileHandler struct {
	s service.ProfileService
}

func NewProfileHandler(service service.ProfileService) *ProfileHandler {
	return &ProfileHandler{s: service}
}

func (h *ProfileHandler) ConnectProfile(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var pc transfer.ProfileConnection
	if err := c.BodyParser(&pc); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	profileID, err := h.s.Connect(c.Context(), userID, &pc)
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":    "Profile connected successfully",
		"profile_id": profileID,
	})
}

func (h *ProfileHandler) ListProfiles(c *fiber.Ctx) error {
	userID := GetUserID(c)

	profiles, err := h.s.List(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to list profiles",
		})
	}

	return c.Status(fiber.StatusOK).JSON(profiles)
}

func (h *ProfileHandler) DeleteProfile(c *fiber.Ctx) error {
	userID := GetUserID(c)
	profileID := c.QueryInt("id", 0)

	if err := h.s.Delete(c.Context(), userID, int64(profileID)); err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"error": "Unable to delete profile",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *ProfileHandler) AddSlot(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var sc transfer.SlotCreation
	if err := c.BodyParser(&sc); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	slotID, err := h.s.AddSlot(c.Context(), userID, &sc)
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Slot created successfully",
		"slot_id": slotID,
	})
}

func (h *ProfileHandler) ListSlots(c *fiber.Ctx) error {
	userID := GetUserID(c)
	profileID := c.QueryInt("profile_id", 0)

	slots, err := h.s.ListSlots(c.Context(), userID, int64(profileID))
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"error": "Unable to list slots",
		})
	}

	return c.Status(fiber.StatusOK).JSON(slots)
}

func (h *ProfileHandler) SetSlotActive(c *fiber.Ctx) error {
	userID := GetUserID(c)
	slotID := c.QueryInt("id", 0)
	active := c.QueryBool("active", true)

	if err := h.s.SetSlotActive(c.Context(), userID, int64(slotID), active); err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"error": "Unable to update slot",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *ProfileHandler) RemoveSlot(c *fiber.Ctx) error {
	userID := GetUserID(c)
	slotID := c.QueryInt("id", 0)

	if err := h.s.RemoveSlot(c.Context(), userID, int64(slotID)); err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"error": "Unable to remove slot",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}
