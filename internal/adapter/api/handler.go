package api

import (
	"errors"
	"os"

	"faqbot/internal/domain/entity"
	"faqbot/internal/usecase"

	"github.com/gofiber/fiber/v2"
)

const emptyMessageReply = "Please provide a message."

type ChatHandler struct {
	service *usecase.ChatService
}

func NewChatHandler(svc *usecase.ChatService) *ChatHandler {
	return &ChatHandler{service: svc}
}

func (h *ChatHandler) HandleChat(c *fiber.Ctx) error {
	var req entity.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	// The delivery layer maps business errors to HTTP status codes
	resp, err := h.service.Execute(c.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrEmptyMessage):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"response": emptyMessageReply, "error": "empty_message"})
		case errors.Is(err, entity.ErrRateLimitExceeded):
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	c.Set("X-Match-Tier", string(resp.MatchTier))
	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *ChatHandler) HandleFeedback(c *fiber.Ctx) error {
	var fb entity.Feedback
	if err := c.BodyParser(&fb); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.service.Feedback(c.Context(), fb); err != nil {
		if errors.Is(err, entity.ErrInvalidFeedback) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_score", "message": "score must be between 1 and 5"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "recorded"})
}

func (h *ChatHandler) HandleAnalytics(c *fiber.Ctx) error {
	report, err := h.service.Analytics(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
	return c.Status(fiber.StatusOK).JSON(report)
}

func (h *ChatHandler) HandleHealth(c *fiber.Ctx) error {
	stats := h.service.Stats()
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":     "healthy",
		"version":    os.Getenv("APP_VERSION"),
		"questions":  stats.Questions,
		"categories": stats.Categories,
		"semantic":   stats.Semantic,
	})
}
