package walletauth

import (
	"context"
	stderrors "errors"
	"regexp"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-repository-bun"
	"github.com/nyaruka/phonenumbers"
)

var hexAddressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// SignUpRequest carries everything needed to create a wallet-linked account.
type SignUpRequest struct {
	WalletAddress string `json:"wallet_address"`
	DisplayName   string `json:"display_name"`
	Role          string `json:"role"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
}

// Validate checks everything except the display name, which has its own
// error kind (ErrDisplayNameRequired) checked before these rules run.
func (r SignUpRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.WalletAddress,
			validation.Required,
			validation.Match(hexAddressPattern),
		),
		validation.Field(
			&r.Role,
			validation.In(
				string(RoleBuyer),
				string(RoleSeller),
				string(RoleAdmin),
				string(RoleLegacyCustomer),
				"",
			),
		),
		validation.Field(&r.Email, is.Email),
		validation.Field(&r.Phone, validation.By(validatePhoneNumber)),
	)
}

// validatePhoneNumber accepts E.164 numbers, empty means not provided
func validatePhoneNumber(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}

	num, err := phonenumbers.Parse(s, "")
	if err != nil {
		return err
	}

	if !phonenumbers.IsValidNumber(num) {
		return stderrors.New("must be a valid phone number")
	}

	return nil
}

// AccountStore is the slice of the accounts repository the identity service
// needs: strongly-consistent lookup by linked wallet, and creation.
type AccountStore interface {
	FindByWallet(ctx context.Context, address string, criteria ...repository.SelectCriteria) (*Account, error)
	Register(ctx context.Context, record *Account) (*Account, error)
}

// IdentityService maps wallet addresses and hosted sessions to marketplace
// accounts. It is the single writer of the active IdentityAccount; consumers
// read through Current and Watch.
//
// Concurrent sign-in, sign-up and sign-out calls are fenced with a monotonic
// sequence per mutating call: a completion that was overtaken by a later call
// is discarded instead of clobbering newer state.
type IdentityService struct {
	store     AccountStore
	validator SessionValidator
	logger    Logger
	activity  ActivitySink

	mu       sync.RWMutex
	seq      uint64
	applied  uint64
	current  *IdentityAccount
	hosted   *HostedSession
	watchers map[int]func(*IdentityAccount)
	nextID   int
}

// IdentityOption customizes an IdentityService.
type IdentityOption func(*IdentityService)

// WithIdentityLogger overrides the service logger.
func WithIdentityLogger(logger Logger) IdentityOption {
	return func(s *IdentityService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSessionValidator enables AttachSession for hosted session tokens.
func WithSessionValidator(validator SessionValidator) IdentityOption {
	return func(s *IdentityService) {
		s.validator = validator
	}
}

// WithIdentityActivitySink publishes sign-in, sign-up and sign-out events
// to the given sink.
func WithIdentityActivitySink(sink ActivitySink) IdentityOption {
	return func(s *IdentityService) {
		s.activity = normalizeActivitySink(sink)
	}
}

// NewIdentityService returns an IdentityService over the given account store.
func NewIdentityService(store AccountStore, opts ...IdentityOption) *IdentityService {
	s := &IdentityService{
		store:    store,
		logger:   defLogger{},
		activity: noopActivitySink{},
		watchers: map[int]func(*IdentityAccount){},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

// AttachSession validates a hosted session token and records it as the
// session-side source of role and wallet expectations. It does not sign the
// user in; SignInWithWallet reconciles against it.
func (s *IdentityService) AttachSession(token string) error {
	if s.validator == nil {
		return ErrUnableToDecodeSession
	}

	session, err := s.validator.Validate(token)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.hosted = session
	s.mu.Unlock()

	return nil
}

// SetSession records an already-decoded hosted session.
func (s *IdentityService) SetSession(session *HostedSession) {
	s.mu.Lock()
	s.hosted = session
	s.mu.Unlock()
}

// Session returns the attached hosted session, nil when none.
func (s *IdentityService) Session() *HostedSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hosted
}

// SignInWithWallet resolves a wallet address to an existing account and
// activates it.
func (s *IdentityService) SignInWithWallet(ctx context.Context, address string) (*IdentityAccount, error) {
	seq := s.begin()

	normalized := NormalizeAddress(address)
	if normalized == "" {
		return nil, goerrors.New("wallet address is required", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}

	hosted := s.Session()
	if hosted.ExpectsWallet() && !SameAddress(hosted.WalletAddress, normalized) {
		return nil, detachSentinel(ErrWalletAddressMismatch).WithMetadata(map[string]any{
			"session_address": hosted.WalletAddress,
			"wallet_address":  normalized,
		})
	}

	record, err := s.store.FindByWallet(ctx, normalized)
	if err != nil {
		s.recordActivity(ctx, ActivityEvent{
			EventType:     ActivityEventSignInFailure,
			WalletAddress: normalized,
		})

		if repository.IsRecordNotFound(err) {
			return nil, detachSentinel(ErrWalletNotRegistered).WithMetadata(map[string]any{
				"wallet_address": normalized,
			})
		}

		s.logger.Error("wallet sign-in lookup failed", "error", err)
		return nil, WrapBackendError(err, "wallet sign-in lookup failed")
	}

	record.EnsureStatus()
	if record.Status != AccountStatusActive {
		s.logger.Warn("sign-in blocked by account status", "status", record.Status)
		s.recordActivity(ctx, ActivityEvent{
			EventType:     ActivityEventSignInFailure,
			AccountID:     record.ID.String(),
			WalletAddress: normalized,
			Metadata:      map[string]any{"status": record.Status},
		})
		return nil, detachSentinel(ErrAccountNotActive).WithMetadata(map[string]any{
			"wallet_address": normalized,
			"status":         record.Status,
		})
	}

	ident := identityFromRecord(record, hosted)

	s.recordActivity(ctx, ActivityEvent{
		EventType:     ActivityEventSignInSuccess,
		AccountID:     ident.AccountID.String(),
		WalletAddress: normalized,
	})

	if !s.commit(seq, ident) {
		s.logger.Debug("discarding stale sign-in completion", "details", print.MaybePrettyJSON(map[string]any{
			"wallet_address": normalized,
			"seq":            seq,
		}))
		return ident, nil
	}

	return ident, nil
}

// SignUpWithWallet creates a new account, links the wallet address, and
// activates the account.
func (s *IdentityService) SignUpWithWallet(ctx context.Context, req SignUpRequest) (*IdentityAccount, error) {
	seq := s.begin()

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		return nil, ErrDisplayNameRequired
	}

	if err := req.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid sign-up request").
			WithCode(goerrors.CodeBadRequest)
	}

	normalized := NormalizeAddress(req.WalletAddress)

	if _, err := s.store.FindByWallet(ctx, normalized); err == nil {
		return nil, detachSentinel(ErrWalletAlreadyRegistered).WithMetadata(map[string]any{
			"wallet_address": normalized,
		})
	} else if !repository.IsRecordNotFound(err) {
		s.logger.Error("wallet sign-up lookup failed", "error", err)
		return nil, WrapBackendError(err, "wallet sign-up lookup failed")
	}

	role, ok := ParseRole(req.Role)
	if !ok {
		role = RoleBuyer
	}

	record := &Account{
		Role:          role,
		DisplayName:   displayName,
		Email:         strings.TrimSpace(req.Email),
		Phone:         strings.TrimSpace(req.Phone),
		WalletAddress: normalized,
	}

	created, err := s.store.Register(ctx, record)
	if err != nil {
		s.logger.Error("wallet sign-up create failed", "error", err)
		return nil, WrapBackendError(err, "account creation failed")
	}

	ident := identityFromRecord(created, s.Session())

	s.recordActivity(ctx, ActivityEvent{
		EventType:     ActivityEventSignUpSuccess,
		AccountID:     ident.AccountID.String(),
		WalletAddress: normalized,
	})

	if !s.commit(seq, ident) {
		return ident, nil
	}

	return ident, nil
}

// SignOut clears the active account. Idempotent; always succeeds.
func (s *IdentityService) SignOut() {
	prev := s.Current()

	seq := s.begin()
	if s.commit(seq, nil) && prev != nil {
		s.recordActivity(context.Background(), ActivityEvent{
			EventType:     ActivityEventSignOut,
			AccountID:     prev.AccountID.String(),
			WalletAddress: prev.WalletAddress,
		})
	}
}

func (s *IdentityService) recordActivity(ctx context.Context, event ActivityEvent) {
	if event.Actor == (ActorRef{}) {
		event.Actor = ActorRef{ID: event.AccountID, Type: "account"}
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	if err := normalizeActivitySink(s.activity).Record(ctx, event); err != nil {
		s.logger.Warn("identity activity sink error: %v", err)
	}
}

// Current returns the active identity, nil when signed out.
func (s *IdentityService) Current() *IdentityAccount {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// IsAuthenticated reports whether an identity is active.
func (s *IdentityService) IsAuthenticated() bool {
	return s.Current() != nil
}

// Watch registers an observer invoked with each identity change (nil on
// sign-out). The returned function cancels the registration.
func (s *IdentityService) Watch(fn func(*IdentityAccount)) func() {
	if fn == nil {
		return func() {}
	}

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.watchers, id)
		s.mu.Unlock()
	}
}

func (s *IdentityService) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

// commit applies the outcome of mutating call seq unless a later call has
// already been applied. Returns false when the completion was stale. The
// sequence still advances on a no-op sign-out (it must fence in-flight
// sign-ins), but watchers only hear actual changes.
func (s *IdentityService) commit(seq uint64, ident *IdentityAccount) bool {
	s.mu.Lock()
	if seq < s.applied {
		s.mu.Unlock()
		return false
	}

	s.applied = seq
	prev := s.current
	s.current = ident

	if prev == nil && ident == nil {
		s.mu.Unlock()
		return true
	}

	watchers := make([]func(*IdentityAccount), 0, len(s.watchers))
	for _, fn := range s.watchers {
		watchers = append(watchers, fn)
	}
	s.mu.Unlock()

	for _, fn := range watchers {
		fn(ident)
	}

	return true
}

var _ AccessSource = (*IdentityService)(nil)

func identityFromRecord(record *Account, hosted *HostedSession) *IdentityAccount {
	profileRole := string(record.Role)
	metadataRole := hosted.MetadataRole()

	return &IdentityAccount{
		AccountID:     record.ID,
		Email:         record.Email,
		DisplayName:   record.DisplayName,
		Role:          CanonicalRole(profileRole, metadataRole),
		ProfileRole:   profileRole,
		MetadataRole:  metadataRole,
		WalletAddress: record.WalletAddress,
	}
}
