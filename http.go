package walletauth

import (
	"net/http"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// identityLocalsKey is where the middleware stashes the admitted identity.
const identityLocalsKey = "wallet_identity"

// RouteAccessGuard adapts the access guard to go-router handlers: the
// router's redirect is the navigation sink.
type RouteAccessGuard struct {
	source AccessSource
	cfg    Config
	Logger Logger
}

// NewRouteAccessGuard returns an HTTP guard over the given identity source.
func NewRouteAccessGuard(source AccessSource, cfg Config) *RouteAccessGuard {
	return &RouteAccessGuard{
		source: source,
		cfg:    cfg,
		Logger: defLogger{},
	}
}

// RequireRole admits requests whose identity is compatible with the required
// role and redirects everything else following the guard's rules.
func (a *RouteAccessGuard) RequireRole(required Role) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			decision := HasAccess(a.source, required)
			if decision.HasAccess {
				c.Locals(identityLocalsKey, a.source.Current())
				return next(c)
			}

			dest := a.deniedDestination(decision, required)

			a.Logger.Info(
				"Access denied, redirecting",
				"path", c.OriginalURL(),
				"destination", dest,
				"decision", print.MaybePrettyJSON(decision),
			)

			return c.Redirect(dest, redirectStatus(c))
		}
	}
}

// HasAccess exposes the side-effect-free check for handlers that show or
// hide fragments instead of redirecting.
func (a *RouteAccessGuard) HasAccess(required Role) AccessDecision {
	return HasAccess(a.source, required)
}

func (a *RouteAccessGuard) deniedDestination(decision AccessDecision, required Role) string {
	if !decision.IsAuthenticated {
		if CompatibleRoles(required, RoleSeller) {
			return a.cfg.GetSellerEntryPoint()
		}
		return a.cfg.GetGeneralEntryPoint()
	}

	if decision.Role == RoleSeller {
		return a.cfg.GetSellerDashboard()
	}

	return a.cfg.GetGeneralEntryPoint()
}

func redirectStatus(c router.Context) int {
	if c.Method() == string(router.GET) {
		return http.StatusFound
	}
	return http.StatusSeeOther
}

// WriteGuardError renders a typed wallet-auth error as a response, keeping
// the error taxonomy visible to API consumers.
func WriteGuardError(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	status := richErr.Code
	if status == 0 {
		status = http.StatusInternalServerError
	}

	return c.JSON(status, map[string]any{
		"error":     richErr.Message,
		"text_code": richErr.TextCode,
	})
}
