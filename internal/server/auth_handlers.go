package server

import (
	"errors"

	"medley/internal/auth"
	"medley/internal/database"
	"medley/internal/middleware"
	"medley/internal/models"
	"medley/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// publicUser is the account shape returned by auth endpoints; the stored
// credential never leaves the data layer.
type publicUser struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt any    `json:"created_at"`
}

func toPublicUser(u *models.User) publicUser {
	return publicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// Register handles POST /api/auth/register
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Missing fields"))
	}
	if err := validation.ValidateUsername(req.Username); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashed,
		Role:         models.RoleUser,
	}

	if err := s.userRepo.Create(c.Context(), user); err != nil {
		if errors.Is(err, database.ErrUnavailable) {
			return s.dataError(c, err)
		}
		// Unique violation on username or email
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewConflictError("User exists or invalid data"))
	}

	token, err := auth.IssueToken(s.config.JWTSecret, user)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	s.setSessionCookie(c, token)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"ok":   true,
		"user": toPublicUser(user),
	})
}

// Login handles POST /api/auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userRepo.GetByEmail(c.Context(), req.Email)
	if err != nil {
		return s.dataError(c, err)
	}
	// Same generic failure whether the account exists or not.
	if user == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid credentials"))
	}

	ok, legacy := auth.VerifyPassword(user.PasswordHash, req.Password)
	if !ok {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid credentials"))
	}

	// Migration path: upgrade legacy plaintext rows on their next
	// successful login. Best-effort; login proceeds either way.
	if legacy {
		if hashed, herr := auth.HashPassword(req.Password); herr == nil {
			if uerr := s.userRepo.UpdateCredential(c.Context(), user.ID, hashed); uerr != nil {
				middleware.Logger.Warn("legacy credential rehash failed", "user_id", user.ID, "error", uerr.Error())
			}
		}
	}

	token, err := auth.IssueToken(s.config.JWTSecret, user)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	s.setSessionCookie(c, token)

	return c.JSON(fiber.Map{
		"ok":   true,
		"user": toPublicUser(user),
	})
}

// Logout handles POST /api/auth/logout
func (s *Server) Logout(c *fiber.Ctx) error {
	s.clearSessionCookie(c)
	return c.JSON(fiber.Map{"ok": true})
}

// Me handles GET /api/auth/me, returning the verified session claims.
func (s *Server) Me(c *fiber.Ctx) error {
	claims := middleware.ClaimsFromCtx(c)
	return c.JSON(fiber.Map{
		"ok": true,
		"user": fiber.Map{
			"id":       claims.UserID,
			"role":     claims.Role,
			"username": claims.Username,
		},
	})
}
