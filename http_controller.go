package walletauth

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// RegisterWalletRoutes mounts the wallet auth endpoints on the given router.
func RegisterWalletRoutes[T any](app router.Router[T], opts ...WalletControllerOption) {
	controller := NewWalletController(opts...)

	app.
		Post(controller.Routes.SignIn, controller.SignIn).
		SetName("wallet-sign-in.post")

	app.
		Post(controller.Routes.SignUp, controller.SignUp).
		SetName("wallet-sign-up.post")

	app.
		Post(controller.Routes.SignOut, controller.SignOut).
		SetName("wallet-sign-out.post")

	app.
		Get(controller.Routes.Session, controller.Session).
		SetName("wallet-session.get")
}

type WalletControllerRoutes struct {
	SignIn  string
	SignUp  string
	SignOut string
	Session string
}

type WalletController struct {
	Debug    bool
	Logger   Logger
	Identity *IdentityService
	Routes   *WalletControllerRoutes
}

type WalletControllerOption func(*WalletController) *WalletController

func NewWalletController(opts ...WalletControllerOption) *WalletController {
	c := &WalletController{
		Logger: defLogger{},
		Routes: &WalletControllerRoutes{
			SignIn:  "/auth/wallet/sign-in",
			SignUp:  "/auth/wallet/sign-up",
			SignOut: "/auth/wallet/sign-out",
			Session: "/auth/wallet/session",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Identity == nil {
		panic("Missing IdentityService in wallet controller...")
	}

	return c
}

// WithControllerIdentity sets the identity service handling the routes.
func WithControllerIdentity(identity *IdentityService) WalletControllerOption {
	return func(c *WalletController) *WalletController {
		c.Identity = identity
		return c
	}
}

// WithControllerLogger overrides the controller logger.
func WithControllerLogger(logger Logger) WalletControllerOption {
	return func(c *WalletController) *WalletController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

// SignInPayload is the sign-in request body.
type SignInPayload struct {
	WalletAddress string `form:"wallet_address" json:"wallet_address"`
	SessionToken  string `form:"session_token" json:"session_token"`
}

// Validate will run validation rules
func (r SignInPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.WalletAddress,
			validation.Required,
			validation.Match(hexAddressPattern),
		),
	)
}

func (a *WalletController) SignIn(ctx router.Context) error {
	payload := new(SignInPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("wallet sign-in parse payload: ", "error", err)
		return WriteGuardError(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "unable to parse request body").
			WithCode(goerrors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return WriteGuardError(ctx, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid sign-in request").
			WithCode(goerrors.CodeBadRequest))
	}

	if payload.SessionToken != "" {
		if err := a.Identity.AttachSession(payload.SessionToken); err != nil {
			a.Logger.Error("wallet sign-in attach session: ", "error", err)
			return WriteGuardError(ctx, goerrors.Wrap(err, goerrors.CategoryAuth, "invalid session token").
				WithCode(goerrors.CodeUnauthorized))
		}
	}

	ident, err := a.Identity.SignInWithWallet(ctx.Context(), payload.WalletAddress)
	if err != nil {
		return WriteGuardError(ctx, err)
	}

	if a.Debug {
		a.Logger.Debug("wallet sign-in", "identity", print.MaybePrettyJSON(ident))
	}

	return ctx.JSON(http.StatusOK, identityResponse(ident))
}

func (a *WalletController) SignUp(ctx router.Context) error {
	payload := new(SignUpRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("wallet sign-up parse payload: ", "error", err)
		return WriteGuardError(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "unable to parse request body").
			WithCode(goerrors.CodeBadRequest))
	}

	ident, err := a.Identity.SignUpWithWallet(ctx.Context(), *payload)
	if err != nil {
		return WriteGuardError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, identityResponse(ident))
}

func (a *WalletController) SignOut(ctx router.Context) error {
	a.Identity.SignOut()
	return ctx.JSON(http.StatusOK, map[string]any{
		"signed_out": true,
	})
}

// Session reports the active identity without mutating anything.
func (a *WalletController) Session(ctx router.Context) error {
	ident := a.Identity.Current()
	if ident == nil {
		return ctx.JSON(http.StatusOK, map[string]any{
			"authenticated": false,
		})
	}

	resp := identityResponse(ident)
	resp["authenticated"] = true

	return ctx.JSON(http.StatusOK, resp)
}

func identityResponse(ident *IdentityAccount) map[string]any {
	if ident == nil {
		return map[string]any{}
	}

	return map[string]any{
		"account_id":     ident.AccountID.String(),
		"display_name":   ident.DisplayName,
		"email":          ident.Email,
		"role":           ident.Role,
		"wallet_address": ident.WalletAddress,
	}
}
