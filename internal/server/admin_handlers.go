package server

import (
	"errors"

	"medley/internal/auth"
	"medley/internal/middleware"
	"medley/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ListUsers handles GET /api/admin/users. Credentials never appear in the
// response (the model marshals the stored credential as "-").
func (s *Server) ListUsers(c *fiber.Ctx) error {
	users, err := s.userRepo.List(c.Context())
	if err != nil {
		return s.dataError(c, err)
	}

	out := make([]publicUser, 0, len(users))
	for i := range users {
		out = append(out, toPublicUser(&users[i]))
	}
	return c.JSON(fiber.Map{"users": out})
}

// DeleteUser handles DELETE /api/admin/users/:id. Admin accounts cannot be
// deleted through this endpoint regardless of caller privilege.
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	user, err := s.userRepo.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("User", id))
		}
		return s.dataError(c, err)
	}

	if user.IsAdmin() {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Cannot delete admin user"))
	}

	if _, err := s.userRepo.Delete(c.Context(), id); err != nil {
		return s.dataError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true, "message": "User deleted"})
}

// RevealCredential handles POST /api/admin/users/:id/password.
//
// The caller must re-supply their own admin password in the request body;
// the session alone is not enough. The target's stored credential is then
// returned in the clear when it is a legacy plaintext value, or masked when
// hashed. Disclosing credentials at all is a carried-over product decision,
// flagged in the README; do not extend this endpoint.
func (s *Server) RevealCredential(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}
	claims := middleware.ClaimsFromCtx(c)

	var req struct {
		AdminPassword string `json:"adminPassword"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	caller, err := s.userRepo.GetByID(c.Context(), claims.UserID)
	if err != nil {
		return s.dataError(c, err)
	}
	if ok, _ := auth.VerifyPassword(caller.PasswordHash, req.AdminPassword); !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid admin password"))
	}

	target, err := s.userRepo.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("User", id))
		}
		return s.dataError(c, err)
	}

	value, note := auth.MaskCredential(target.PasswordHash)
	return c.JSON(fiber.Map{
		"password": value,
		"note":     note,
	})
}
