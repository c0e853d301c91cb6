package server

import (
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	postListCacheKey = "posts:recent"
	postListCacheTTL = 30 * time.Second
	defaultPostLimit = 20
)

// ListPosts handles GET / and returns posts in reverse-chronological order.
// The default page is served through the cache; any post mutation
// invalidates it.
func (s *Server) ListPosts(c *fiber.Ctx) error {
	ctx := c.Context()
	limit := c.QueryInt("limit", defaultPostLimit)
	offset := c.QueryInt("offset", 0)

	if limit == defaultPostLimit && offset == 0 {
		var posts []*models.Post
		err := cache.CacheAside(ctx, postListCacheKey, &posts, postListCacheTTL, func() error {
			var ferr error
			posts, ferr = s.postRepo.List(ctx, limit, offset)
			return ferr
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(posts)
	}

	posts, err := s.postRepo.List(ctx, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /post/:id and returns the post with its ordered comments.
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}

	post, err := s.postRepo.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(post)
}

// CreatePost handles POST /new-post (admin only). The author is the current
// admin; the creation date is now.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	var req struct {
		Title    string `json:"title"`
		Subtitle string `json:"subtitle"`
		Body     string `json:"body"`
		ImageURL string `json:"image_url,omitempty"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	if req.Title == "" || req.Subtitle == "" || req.Body == "" {
		return respondError(c, models.NewValidationError("Title, subtitle, and body are required"))
	}

	post := &models.Post{
		Title:    req.Title,
		Subtitle: req.Subtitle,
		Body:     req.Body,
		ImageURL: req.ImageURL,
		UserID:   userID,
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return respondError(c, err)
	}

	cache.Invalidate(ctx, postListCacheKey)

	created, err := s.postRepo.GetByID(ctx, post.ID)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// EditPost handles PUT /edit-post/:id (admin only). Fields present in the
// request overwrite the stored values, so sending an empty image_url clears
// it; omitted fields are left alone. The author and original creation date
// are preserved.
func (s *Server) EditPost(c *fiber.Ctx) error {
	ctx := c.Context()
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}

	var req struct {
		Title    *string `json:"title"`
		Subtitle *string `json:"subtitle"`
		Body     *string `json:"body"`
		ImageURL *string `json:"image_url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}

	if req.Title != nil {
		if *req.Title == "" {
			return respondError(c, models.NewValidationError("Title cannot be empty"))
		}
		post.Title = *req.Title
	}
	if req.Subtitle != nil {
		if *req.Subtitle == "" {
			return respondError(c, models.NewValidationError("Subtitle cannot be empty"))
		}
		post.Subtitle = *req.Subtitle
	}
	if req.Body != nil {
		if *req.Body == "" {
			return respondError(c, models.NewValidationError("Body cannot be empty"))
		}
		post.Body = *req.Body
	}
	if req.ImageURL != nil {
		post.ImageURL = *req.ImageURL
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return respondError(c, err)
	}

	cache.Invalidate(ctx, postListCacheKey)

	updated, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(updated)
}

// DeletePost handles GET /delete-post/:id (admin only). The post and all of
// its comments go in one transaction.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	ctx := c.Context()
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}

	if err := s.postRepo.Delete(ctx, id); err != nil {
		return respondError(c, err)
	}

	cache.Invalidate(ctx, postListCacheKey)

	return c.SendStatus(fiber.StatusNoContent)
}
