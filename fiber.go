package walletauth

import (
	"github.com/gofiber/fiber/v2"
)

// FiberRequireRole is the fiber-native twin of RouteAccessGuard.RequireRole
// for apps mounted directly on fiber instead of go-router.
func FiberRequireRole(source AccessSource, cfg Config, required Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		decision := HasAccess(source, required)
		if decision.HasAccess {
			c.Locals(identityLocalsKey, source.Current())
			return c.Next()
		}

		dest := cfg.GetGeneralEntryPoint()
		switch {
		case !decision.IsAuthenticated && CompatibleRoles(required, RoleSeller):
			dest = cfg.GetSellerEntryPoint()
		case decision.IsAuthenticated && decision.Role == RoleSeller:
			dest = cfg.GetSellerDashboard()
		}

		return c.Redirect(dest, fiber.StatusSeeOther)
	}
}
