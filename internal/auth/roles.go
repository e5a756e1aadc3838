package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/health-info-service/internal/domain"
	apperrors "github.com/spec-kit/health-info-service/pkg/util"
)

// RequireRole ensures the authenticated principal has one of the allowed
// roles. Routes declare their required role once at registration instead
// of repeating the check inside each handler.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.User == nil {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.User.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
