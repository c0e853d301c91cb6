package server

import (
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// AddComment handles POST /post/:id/comments. Any authenticated user may
// comment; the author is the current user. There is no edit or direct
// delete for comments.
func (s *Server) AddComment(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	postID, ok := parseID(c, "id")
	if !ok {
		return nil
	}

	// Verify the post exists before accepting the comment
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return respondError(c, err)
	}

	var req struct {
		Body string `json:"body"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}
	if req.Body == "" {
		return respondError(c, models.NewValidationError("Comment body is required"))
	}

	comment := &models.Comment{
		Body:   req.Body,
		UserID: userID,
		PostID: postID,
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return respondError(c, err)
	}

	created, err := s.commentRepo.GetByID(ctx, comment.ID)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}
