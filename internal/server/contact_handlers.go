package server

import (
	"inkwell/internal/mail"
	"inkwell/internal/middleware"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Contact handles POST /contact. All four fields are validated before any
// transport attempt; a transport failure is reported to the caller as a
// delivery error, never a crash, and touches no persistent state.
func (s *Server) Contact(c *fiber.Ctx) error {
	var msg mail.ContactMessage
	if err := c.BodyParser(&msg); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	if err := msg.Validate(); err != nil {
		return respondError(c, err)
	}

	if err := s.mailer.SendContactMessage(&msg); err != nil {
		middleware.Logger.Error("contact message delivery failed", "error", err.Error())
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Message sent"})
}
