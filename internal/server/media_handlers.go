package server

import (
	"fmt"

	"medley/internal/cache"
	"medley/internal/middleware"
	"medley/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ListMedia handles GET /api/media (public): approved media, newest first,
// bounded, joined with the category name. Served cache-aside when Redis is
// available.
func (s *Server) ListMedia(c *fiber.Ctx) error {
	ctx := c.Context()

	items := []models.MediaItem{}
	err := s.cache.Aside(ctx, cache.MediaListKey, &items, cache.MediaListTTL, func() error {
		fetched, err := s.mediaRepo.ListApproved(ctx)
		if err != nil {
			return err
		}
		items = fetched
		return nil
	})
	if err != nil {
		return s.dataError(c, err)
	}

	return c.JSON(fiber.Map{"items": items})
}

// AdminListMedia handles GET /api/admin/media: every row, approved or not,
// for moderation.
func (s *Server) AdminListMedia(c *fiber.Ctx) error {
	items, err := s.mediaRepo.ListAll(c.Context())
	if err != nil {
		return s.dataError(c, err)
	}
	return c.JSON(fiber.Map{"items": items})
}

// CreateMedia handles POST /api/admin/media
func (s *Server) CreateMedia(c *fiber.Ctx) error {
	ctx := c.Context()
	claims := middleware.ClaimsFromCtx(c)

	var req struct {
		Title    string `json:"title"`
		URL      string `json:"url"`
		Type     string `json:"type"`
		Category string `json:"category"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.URL == "" || req.Type == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Missing url/type"))
	}
	if !models.ValidMediaType(req.Type) {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Type must be image or video"))
	}

	var categoryID *uint
	if req.Category != "" {
		id, err := s.mediaRepo.EnsureCategory(ctx, req.Category)
		if err != nil {
			return s.dataError(c, err)
		}
		categoryID = &id
	}

	media := &models.Media{
		UserID:     claims.UserID,
		CategoryID: categoryID,
		Title:      req.Title,
		URL:        req.URL,
		Type:       req.Type,
		IsApproved: true,
	}
	if err := s.mediaRepo.Create(ctx, media); err != nil {
		return s.dataError(c, err)
	}

	s.cache.Invalidate(ctx, cache.MediaListKey)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"ok":   true,
		"item": media,
	})
}

// DeleteMedia handles DELETE /api/admin/media/:id. Deleting an id that does
// not exist is a 404, not a silent success.
func (s *Server) DeleteMedia(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	rows, err := s.mediaRepo.Delete(c.Context(), id)
	if err != nil {
		return s.dataError(c, err)
	}
	if rows == 0 {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Media", id))
	}

	s.cache.Invalidate(c.Context(), cache.MediaListKey)
	return c.JSON(fiber.Map{"ok": true, "message": "Media deleted"})
}

// RemoveSamples handles POST /api/admin/remove-samples, a bulk delete of
// leftover sample content by URL pattern.
func (s *Server) RemoveSamples(c *fiber.Ctx) error {
	rows, err := s.mediaRepo.RemoveSamples(c.Context(), "%sample%")
	if err != nil {
		return s.dataError(c, err)
	}
	s.cache.Invalidate(c.Context(), cache.MediaListKey)
	return c.JSON(fiber.Map{"ok": true, "message": fmt.Sprintf("%d sample media removed", rows)})
}

// RemoveDuplicates handles POST /api/admin/remove-duplicates, keeping the
// most recently inserted row per URL.
func (s *Server) RemoveDuplicates(c *fiber.Ctx) error {
	rows, err := s.mediaRepo.RemoveDuplicates(c.Context())
	if err != nil {
		return s.dataError(c, err)
	}
	s.cache.Invalidate(c.Context(), cache.MediaListKey)
	return c.JSON(fiber.Map{"ok": true, "message": fmt.Sprintf("%d duplicate media removed", rows)})
}

// ClearAllMedia handles POST /api/admin/clear-all
func (s *Server) ClearAllMedia(c *fiber.Ctx) error {
	rows, err := s.mediaRepo.Clear(c.Context())
	if err != nil {
		return s.dataError(c, err)
	}
	s.cache.Invalidate(c.Context(), cache.MediaListKey)
	return c.JSON(fiber.Map{"ok": true, "message": fmt.Sprintf("%d media items cleared", rows)})
}

// ToggleLike handles POST /api/media/:id/like. The membership row and the
// counter move together in one transaction.
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}
	claims := middleware.ClaimsFromCtx(c)

	if _, err := s.requireMedia(c, id); err != nil {
		return nil
	}

	liked, err := s.mediaRepo.ToggleLike(c.Context(), id, claims.UserID)
	if err != nil {
		return s.dataError(c, err)
	}

	s.cache.Invalidate(c.Context(), cache.MediaListKey)

	message := "Unliked successfully"
	if liked {
		message = "Liked successfully"
	}
	return c.JSON(fiber.Map{"ok": true, "liked": liked, "message": message})
}

// ListUserLikes handles GET /api/user/likes, returning the media ids the
// caller currently likes.
func (s *Server) ListUserLikes(c *fiber.Ctx) error {
	claims := middleware.ClaimsFromCtx(c)

	ids, err := s.mediaRepo.LikedMediaIDs(c.Context(), claims.UserID)
	if err != nil {
		return s.dataError(c, err)
	}
	return c.JSON(fiber.Map{"likedIds": ids})
}
