package walletauth

import (
	"fmt"
	"sync"
)

// GuardState is the admission state of a protected view.
type GuardState string

const (
	// GuardChecking is the initial state before the first evaluation.
	GuardChecking GuardState = "checking"
	// GuardAdmitted means the protected children may render.
	GuardAdmitted GuardState = "admitted"
	// GuardRedirecting means navigation to an entry point was triggered.
	GuardRedirecting GuardState = "redirecting"
)

// AccessDecision is the ephemeral result of a side-effect-free access check.
// Recomputed on every call, never persisted.
type AccessDecision struct {
	HasAccess       bool
	Role            Role
	IsAuthenticated bool
}

// AccessSource exposes the authentication state the guard consumes. The
// guard never sees identity errors; those are handled at sign-in.
type AccessSource interface {
	Current() *IdentityAccount
}

// RouteGuard decides admit-or-redirect for one protected view. Evaluations
// are idempotent: re-running with an unchanged (authenticated, role,
// required) triple never navigates or notifies a second time.
type RouteGuard struct {
	source    AccessSource
	cfg       Config
	navigator Navigator
	notifier  Notifier
	logger    Logger
	override  string

	mu      sync.Mutex
	state   GuardState
	lastKey string
}

// GuardOption customizes a RouteGuard.
type GuardOption func(*RouteGuard)

// WithGuardNavigator sets the navigation sink.
func WithGuardNavigator(navigator Navigator) GuardOption {
	return func(g *RouteGuard) {
		if navigator != nil {
			g.navigator = navigator
		}
	}
}

// WithGuardNotifier sets the notification sink for denied access.
func WithGuardNotifier(notifier Notifier) GuardOption {
	return func(g *RouteGuard) {
		if notifier != nil {
			g.notifier = notifier
		}
	}
}

// WithGuardLogger overrides the guard logger.
func WithGuardLogger(logger Logger) GuardOption {
	return func(g *RouteGuard) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithRedirectOverride sends denied users to an explicit destination instead
// of the role-derived default.
func WithRedirectOverride(path string) GuardOption {
	return func(g *RouteGuard) {
		g.override = path
	}
}

// NewRouteGuard returns a guard over the given identity source.
func NewRouteGuard(source AccessSource, cfg Config, opts ...GuardOption) *RouteGuard {
	g := &RouteGuard{
		source:    source,
		cfg:       cfg,
		navigator: NavigatorFunc(nil),
		notifier:  NotifierFunc(nil),
		logger:    defLogger{},
		state:     GuardChecking,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}

	return g
}

// Evaluate runs the admission decision for the required role. Safe to re-run
// on every dependency change; at most one navigation and one notification
// happen per transition into GuardRedirecting.
func (g *RouteGuard) Evaluate(required Role) GuardState {
	ident := g.source.Current()
	key := evaluationKey(ident, required)

	g.mu.Lock()
	defer g.mu.Unlock()

	if key == g.lastKey {
		return g.state
	}
	g.lastKey = key

	if ident == nil {
		g.state = GuardRedirecting
		dest := g.cfg.GetGeneralEntryPoint()
		if CompatibleRoles(required, RoleSeller) {
			dest = g.cfg.GetSellerEntryPoint()
		}
		g.logger.Debug("guard redirecting unauthenticated visitor", "destination", dest)
		g.navigator.GoTo(dest)
		return g.state
	}

	actual := CanonicalRole(ident.ProfileRole, ident.MetadataRole)

	if CompatibleRoles(actual, required) {
		g.state = GuardAdmitted
		return g.state
	}

	g.state = GuardRedirecting
	dest := g.deniedDestination(actual)

	g.notifier.Notify(
		"Access restricted",
		fmt.Sprintf("This area requires the %s role", required),
		SeverityWarning,
	)
	g.logger.Debug("guard redirecting incompatible role",
		"role", actual,
		"required", required,
		"destination", dest,
	)
	g.navigator.GoTo(dest)

	return g.state
}

// State returns the guard's state from the latest evaluation.
func (g *RouteGuard) State() GuardState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// HasAccess performs the role comparison without side effects, for
// conditional rendering of UI fragments.
func (g *RouteGuard) HasAccess(required Role) AccessDecision {
	return HasAccess(g.source, required)
}

// HasAccess is the side-effect-free access check over any identity source.
func HasAccess(source AccessSource, required Role) AccessDecision {
	ident := source.Current()
	if ident == nil {
		return AccessDecision{}
	}

	role := CanonicalRole(ident.ProfileRole, ident.MetadataRole)

	return AccessDecision{
		HasAccess:       CompatibleRoles(role, required),
		Role:            role,
		IsAuthenticated: true,
	}
}

func (g *RouteGuard) deniedDestination(actual Role) string {
	if g.override != "" {
		return g.override
	}

	if actual == RoleSeller {
		return g.cfg.GetSellerDashboard()
	}

	return g.cfg.GetGeneralEntryPoint()
}

// evaluationKey encodes the dependency triple the idempotence guarantee is
// defined over.
func evaluationKey(ident *IdentityAccount, required Role) string {
	if ident == nil {
		return fmt.Sprintf("unauthenticated|%s", required)
	}
	return fmt.Sprintf("authenticated|%s|%s", CanonicalRole(ident.ProfileRole, ident.MetadataRole), required)
}
