package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/office-hours/queue-service/internal/domain"
	apperrors "github.com/office-hours/queue-service/pkg/util"
)

// RequireRole restricts a route to the given roles.
func RequireRole(roles ...domain.UserRole) fiber.Handler {
	allowed := make(map[domain.UserRole]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if _, hit := allowed[principal.Role]; !hit {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireAnyRole only requires that a principal is present.
func RequireAnyRole() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}
