package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

func SetupRouter(app *fiber.App, handler *ChatHandler, corsOrigins string) {
	if corsOrigins == "" {
		corsOrigins = "*"
	}

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(cors.New(cors.Config{AllowOrigins: corsOrigins}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/health", handler.HandleHealth)

	api := app.Group("/api")
	api.Post("/chat", handler.HandleChat)
	api.Post("/feedback", handler.HandleFeedback)
	api.Get("/analytics", handler.HandleAnalytics)
	api.Get("/health", handler.HandleHealth)
}
