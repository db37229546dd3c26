package middleware

import (
	"strings"

	"medley/internal/auth"
	"medley/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ClaimsKey is the request-locals key under which verified session claims
// are stored.
const ClaimsKey = "claims"

// SessionCookie is the name of the HTTP-only cookie carrying the session
// token.
const SessionCookie = "token"

// TokenFromRequest extracts the session token from the cookie or, failing
// that, from a bearer Authorization header.
func TokenFromRequest(c *fiber.Ctx) string {
	if token := c.Cookies(SessionCookie); token != "" {
		return token
	}
	authHeader := c.Get("Authorization")
	if parts := strings.SplitN(authHeader, " ", 2); len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// RequireAuth returns a middleware that enforces a valid session token and,
// when roles are given, membership in one of them. With no roles it admits
// any authenticated user. Verified claims are stored in request locals.
func RequireAuth(secret string, roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := TokenFromRequest(c)
		if token == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Unauthorized"))
		}

		claims, err := auth.VerifyToken(secret, token)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Unauthorized"))
		}

		if len(roles) > 0 && !containsRole(roles, claims.Role) {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Forbidden"))
		}

		c.Locals(ClaimsKey, claims)
		return c.Next()
	}
}

// ClaimsFromCtx returns the verified claims RequireAuth stored for this
// request. Only valid on routes behind RequireAuth.
func ClaimsFromCtx(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals(ClaimsKey).(*auth.Claims)
	return claims
}

func containsRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
