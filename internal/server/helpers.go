package server

import (
	"errors"
	"time"

	"medley/internal/auth"
	"medley/internal/database"
	"medley/internal/middleware"
	"medley/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers seeing it must return nil so Fiber's
// ErrorHandler does not overwrite the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts the :id route parameter as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
func (s *Server) parseID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid ID"))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// dataError translates a data-layer failure into the error taxonomy:
// degraded handle to 503, anything else to 500. Not-found conditions are
// handled by the callers that expect them.
func (s *Server) dataError(c *fiber.Ctx, err error) error {
	if errors.Is(err, database.ErrUnavailable) {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewUnavailableError(err))
	}
	return models.RespondWithError(c, fiber.StatusInternalServerError,
		models.NewInternalError(err))
}

// requireMedia loads a media row or writes the appropriate error response
// (404 when absent, 503/500 otherwise) and returns errResponseWritten.
func (s *Server) requireMedia(c *fiber.Ctx, id uint) (*models.Media, error) {
	media, err := s.mediaRepo.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Media", id))
			return nil, errResponseWritten
		}
		_ = s.dataError(c, err)
		return nil, errResponseWritten
	}
	return media, nil
}

// setSessionCookie attaches the session token as an HTTP-only, lax
// same-site cookie with the token's own lifetime.
func (s *Server) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(auth.TokenTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// clearSessionCookie expires the session cookie.
func (s *Server) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
