package rbac

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoAccess-Admin/GoAccess-Admin/internal/db/models"
	"github.com/GoAccess-Admin/GoAccess-Admin/internal/web/session"
)

// RequirePermission creates Fiber middleware that requires a specific permission.
func RequirePermission(service *Service, permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
		}

		hasPermission, err := service.HasPermission(user.ID, permission)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", user.ID).Str("permission", permission).
				Msg("Failed to check permission")

			return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
		}

		if !hasPermission {
			log.Warn().Uint64("user_id", user.ID).Str("permission", permission).
				Msg("User lacks required permission")

			return c.Status(fiber.StatusForbidden).
				SendString("Forbidden: You don't have permission to access this resource")
		}

		return c.Next()
	}
}

// RequireAnyPermission creates Fiber middleware that requires at least one of
// the given permissions.
func RequireAnyPermission(service *Service, permissions ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
		}

		hasPermission, err := service.HasAnyPermission(user.ID, permissions)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", user.ID).Strs("permissions", permissions).
				Msg("Failed to check permissions")

			return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
		}

		if !hasPermission {
			log.Warn().Uint64("user_id", user.ID).Strs("permissions", permissions).
				Msg("User lacks required permissions")

			return c.Status(fiber.StatusForbidden).
				SendString("Forbidden: You don't have permission to access this resource")
		}

		return c.Next()
	}
}

// CurrentUser resolves the acting user from the request's session cookie.
// Handlers use this to pass an explicit acting user into every policy check;
// the policy layer itself never reads request state.
func CurrentUser(c *fiber.Ctx) (models.User, bool) {
	sessionID := c.Cookies("session")
	if sessionID == "" {
		return models.User{}, false
	}

	sessionData := new(session.Data)
	if err := sessionData.Read(sessionID); err != nil {
		return models.User{}, false
	}

	if sessionData.User.ID == 0 {
		return models.User{}, false
	}

	return sessionData.User, true
}

// AddPermissionsToLocals is a Fiber middleware that adds the current user's
// permissions to fiber.Locals for conditional rendering in templates.
func AddPermissionsToLocals(service *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok {
			return c.Next()
		}

		permissions, err := service.GetUserPermissions(user.ID)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", user.ID).
				Msg("Failed to get user permissions")

			return c.Next()
		}

		permSet := make(map[string]bool, len(permissions))
		for _, perm := range permissions {
			permSet[perm] = true
		}

		c.Locals("permissions", permissions)
		c.Locals("hasPermission", func(perm string) bool {
			return permSet[perm]
		})

		return c.Next()
	}
}
