package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/aipress24/kyc-engine/internal/config"
	"github.com/aipress24/kyc-engine/internal/dto"
	"github.com/aipress24/kyc-engine/internal/services"
)

type AdminHandler struct {
	cfg   *config.Config
	admin *services.AdminService
}

func NewAdminHandler(cfg *config.Config, admin *services.AdminService) *AdminHandler {
	return &AdminHandler{cfg: cfg, admin: admin}
}

// Queue lists the accounts waiting for validation, oldest first.
func (h *AdminHandler) Queue(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	users, total, err := h.admin.PendingQueue(page, h.cfg.AdminPageSize)
	if err != nil {
		return err
	}

	out := dto.QueueResponse{Total: total, Page: page, Entries: []dto.QueueEntry{}}
	for _, user := range users {
		entry := dto.QueueEntry{
			ID:               user.ID,
			FullName:         user.FullName(),
			Email:            user.Email,
			ValidationStatus: user.ValidationStatus,
			IsClone:          user.IsClone,
			ClonedUserID:     user.ClonedUserID,
			SubmitedAt:       user.SubmitedAt.Format(time.RFC3339),
		}
		if user.IsClone {
			entry.Email = user.EmailSafeCopy
		}
		if user.Profile != nil {
			entry.ProfileCode = user.Profile.ProfileCode
		}
		out.Entries = append(out.Entries, entry)
	}
	return c.JSON(out)
}

// Validate accepts a pending registration or major update.
func (h *AdminHandler) Validate(c *fiber.Ctx) error {
	userID, err := strconv.ParseUint(c.Params("user_id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user id",
		})
	}
	user, err := h.admin.Validate(uint(userID))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "User not found",
			})
		}
		return err
	}
	return c.JSON(dto.SubmitResponse{UserID: user.ID, Status: user.ValidationStatus})
}

// Reject refuses a pending registration or major update.
func (h *AdminHandler) Reject(c *fiber.Ctx) error {
	userID, err := strconv.ParseUint(c.Params("user_id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user id",
		})
	}
	var req dto.RejectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if err := h.admin.Reject(uint(userID), req.Reason); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "User not found",
			})
		}
		return err
	}
	return c.JSON(fiber.Map{"message": "Account rejected"})
}
