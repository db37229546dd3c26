package server

import (
	"medley/internal/middleware"
	"medley/internal/models"
	"medley/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// ListComments handles GET /api/media/:id/comments (public): newest first,
// bounded, joined with the commenter's username.
func (s *Server) ListComments(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	if _, err := s.requireMedia(c, id); err != nil {
		return nil
	}

	items, err := s.commentRepo.ListByMedia(c.Context(), id)
	if err != nil {
		return s.dataError(c, err)
	}
	return c.JSON(fiber.Map{"items": items})
}

// CreateComment handles POST /api/media/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}
	claims := middleware.ClaimsFromCtx(c)

	var req struct {
		Body string `json:"body"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := validation.ValidateCommentBody(req.Body); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	if _, err := s.requireMedia(c, id); err != nil {
		return nil
	}

	comment := &models.Comment{
		MediaID: id,
		UserID:  claims.UserID,
		Body:    req.Body,
	}
	if err := s.commentRepo.Create(c.Context(), comment); err != nil {
		return s.dataError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"ok": true,
		"item": models.CommentItem{
			ID:        comment.ID,
			Body:      comment.Body,
			Username:  claims.Username,
			CreatedAt: comment.CreatedAt,
		},
	})
}
