package server

import (
	"inkwell/internal/cache"

	"github.com/gofiber/fiber/v2"
)

// DeleteUser handles DELETE /users/:id (admin only). Deleting a user also
// removes their comments and their posts, including the comments other
// users left on those posts, atomically.
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	ctx := c.Context()
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return respondError(c, err)
	}

	// The user may have authored posts on the cached front page.
	cache.Invalidate(ctx, postListCacheKey)

	return c.SendStatus(fiber.StatusNoContent)
}
