package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/aipress24/kyc-engine/internal/config"
	"github.com/aipress24/kyc-engine/internal/handlers"
	"github.com/aipress24/kyc-engine/internal/middleware"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	kycHandler *handlers.KYCHandler,
	adminHandler *handlers.AdminHandler,
	healthHandler *handlers.HealthHandler,
) {
	api := app.Group("/api/v1")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Public wizard surface.
	kyc := api.Group("/kyc")
	kyc.Get("/communities", kycHandler.Communities)
	kyc.Get("/form/:profile_id", kycHandler.Form)
	kyc.Get("/towns/:country", kycHandler.Towns)
	kyc.Get("/profile/:user_id", kycHandler.PublicProfile)
	kyc.Get("/photo/:user_id", kycHandler.Photo)

	// Registration and uploads: 10 req/min per IP (stricter)
	submit := kyc.Group("")
	submit.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	submit.Post("/register", kycHandler.Register)
	submit.Post("/upload", kycHandler.Upload)
	submit.Delete("/upload/:handle", kycHandler.Abandon)

	// Member settings, JWT required.
	api.Get("/kyc/form", middleware.JWTProtected(cfg), kycHandler.EditForm)
	api.Post("/kyc/profile", middleware.JWTProtected(cfg), kycHandler.Update)

	// Admin validation queues
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(cfg))
	admin.Get("/kyc/queue", adminHandler.Queue)
	admin.Post("/kyc/validate/:user_id", adminHandler.Validate)
	admin.Post("/kyc/reject/:user_id", adminHandler.Reject)
}
