package middleware

import (
	"elearn/database"
	"elearn/models"

	"github.com/gofiber/fiber/v2"
)

// RequireRole loads the authenticated user, verifies it holds one of the given
// roles and stores it under "currentUser" for downstream handlers. Role checks
// live here so individual handlers only re-derive ownership, not role.
func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("userId").(uint)
		if !ok {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
		}

		var user models.User
		if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
		}

		allowed := false
		for _, r := range roles {
			if user.Role == r {
				allowed = true
				break
			}
		}
		if !allowed {
			return JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this resource!", nil)
		}

		c.Locals("currentUser", user)
		return c.Next()
	}
}

// CurrentUser returns the user loaded by RequireRole, falling back to a lookup
// by the token's user ID for routes without a role restriction.
func CurrentUser(c *fiber.Ctx) (models.User, bool) {
	if user, ok := c.Locals("currentUser").(models.User); ok {
		return user, true
	}

	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return models.User{}, false
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return models.User{}, false
	}
	return user, true
}
