package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/aipress24/kyc-engine/internal/config"
	"github.com/aipress24/kyc-engine/internal/dto"
)

// AdminRequired gates the validation queues on the configured admin
// email list. Runs behind JWTProtected.
func AdminRequired(cfg *config.Config) fiber.Handler {
	adminEmails := parseCSV(cfg.AdminEmails)

	return func(c *fiber.Ctx) error {
		email := UserEmail(c)
		if email != "" && contains(adminEmails, strings.ToLower(email)) {
			return c.Next()
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Admin access required",
		})
	}
}

func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.ToLower(strings.TrimSpace(p))
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func contains(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
