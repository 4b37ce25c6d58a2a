package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/aipress24/kyc-engine/internal/database"
	"github.com/aipress24/kyc-engine/internal/dto"
	"github.com/aipress24/kyc-engine/internal/survey"
)

type HealthHandler struct {
	model *survey.Model
}

func NewHealthHandler(model *survey.Model) *HealthHandler {
	return &HealthHandler{model: model}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	if err := database.Ping(); err != nil {
		dbStatus = "down"
	}
	return c.JSON(dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
		Profiles:  len(h.model.Profiles),
	})
}
