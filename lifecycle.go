package walletauth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

const (
	textCodeInvalidTransition = "INVALID_ACCOUNT_STATE_TRANSITION"
	textCodeTerminalState     = "TERMINAL_ACCOUNT_STATE"
)

// ErrInvalidTransition is returned when a requested status change is not allowed.
var ErrInvalidTransition = goerrors.New("invalid account state transition", goerrors.CategoryValidation).
	WithTextCode(textCodeInvalidTransition).
	WithCode(goerrors.CodeBadRequest)

// ErrTerminalState is returned when attempting to move away from a terminal status.
var ErrTerminalState = goerrors.New("account state is terminal", goerrors.CategoryConflict).
	WithTextCode(textCodeTerminalState).
	WithCode(goerrors.CodeConflict)

// StatusStore is the slice of the accounts repository the state machine
// persists through.
type StatusStore interface {
	UpdateStatus(ctx context.Context, id uuid.UUID, status AccountStatus, opts ...StatusUpdateOption) (*Account, error)
}

// TransitionMetadata captures extra context for a transition.
type TransitionMetadata struct {
	Reason   string
	Metadata map[string]any
}

// TransitionOption customizes a single transition.
type TransitionOption func(*transitionOptions)

// WithTransitionReason sets the human-readable reason for the transition.
func WithTransitionReason(reason string) TransitionOption {
	return func(opts *transitionOptions) {
		opts.metadata.Reason = reason
	}
}

// WithTransitionMetadata merges metadata into the recorded activity event.
func WithTransitionMetadata(metadata map[string]any) TransitionOption {
	return func(opts *transitionOptions) {
		if len(metadata) == 0 {
			return
		}
		if opts.metadata.Metadata == nil {
			opts.metadata.Metadata = make(map[string]any, len(metadata))
		}
		for k, v := range metadata {
			opts.metadata.Metadata[k] = v
		}
	}
}

// WithForceTransition bypasses validation rules (use sparingly).
func WithForceTransition() TransitionOption {
	return func(opts *transitionOptions) {
		opts.force = true
	}
}

// WithSuspensionTime overrides the timestamp recorded when entering the
// suspended state.
func WithSuspensionTime(t time.Time) TransitionOption {
	return func(opts *transitionOptions) {
		opts.suspensionTime = &t
	}
}

// AccountStateMachine defines lifecycle operations for accounts.
type AccountStateMachine interface {
	Transition(ctx context.Context, actor ActorRef, account *Account, target AccountStatus, opts ...TransitionOption) (*Account, error)
	CurrentStatus(account *Account) AccountStatus
}

// StateMachineOption customizes state machine construction.
type StateMachineOption func(*accountStateMachine)

// WithStateMachineClock injects a custom clock (useful for tests).
func WithStateMachineClock(clock func() time.Time) StateMachineOption {
	return func(sm *accountStateMachine) {
		if clock != nil {
			sm.now = clock
		}
	}
}

// WithStateMachineActivitySink sets the ActivitySink used to publish
// lifecycle events.
func WithStateMachineActivitySink(sink ActivitySink) StateMachineOption {
	return func(sm *accountStateMachine) {
		sm.activitySink = normalizeActivitySink(sink)
	}
}

// WithStateMachineLogger overrides the logger used for sink failures.
func WithStateMachineLogger(logger Logger) StateMachineOption {
	return func(sm *accountStateMachine) {
		if logger != nil {
			sm.logger = logger
		}
	}
}

// NewAccountStateMachine returns the default implementation backed by the
// provided store.
func NewAccountStateMachine(store StatusStore, opts ...StateMachineOption) AccountStateMachine {
	sm := &accountStateMachine{
		store: store,
		transitions: map[AccountStatus]map[AccountStatus]struct{}{
			AccountStatusPending: {
				AccountStatusActive:   {},
				AccountStatusDisabled: {},
			},
			AccountStatusActive: {
				AccountStatusSuspended: {},
				AccountStatusDisabled:  {},
				AccountStatusArchived:  {},
			},
			AccountStatusSuspended: {
				AccountStatusActive:   {},
				AccountStatusDisabled: {},
			},
			AccountStatusDisabled: {
				AccountStatusArchived: {},
			},
		},
		now:          time.Now,
		activitySink: noopActivitySink{},
		logger:       defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(sm)
		}
	}

	return sm
}

type accountStateMachine struct {
	store        StatusStore
	transitions  map[AccountStatus]map[AccountStatus]struct{}
	now          func() time.Time
	activitySink ActivitySink
	logger       Logger
}

type transitionOptions struct {
	metadata       TransitionMetadata
	force          bool
	suspensionTime *time.Time
}

func (sm *accountStateMachine) Transition(ctx context.Context, actor ActorRef, account *Account, target AccountStatus, opts ...TransitionOption) (*Account, error) {
	if account == nil {
		return nil, detachSentinel(ErrInvalidTransition).WithMetadata(map[string]any{
			"target": target,
			"reason": "account is nil",
		})
	}

	account.EnsureStatus()
	from := account.Status
	if target == "" {
		return nil, detachSentinel(ErrInvalidTransition).WithMetadata(map[string]any{
			"reason": "target status is empty",
		})
	}

	if from == target {
		return account, nil
	}

	options := buildTransitionOptions(opts...)

	if from == AccountStatusArchived && !options.force {
		return nil, detachSentinel(ErrTerminalState).WithMetadata(map[string]any{
			"from": from,
			"to":   target,
		})
	}

	if !options.force && !sm.canTransition(from, target) {
		return nil, detachSentinel(ErrInvalidTransition).WithMetadata(map[string]any{
			"from": from,
			"to":   target,
		})
	}

	statusOpts, suspensionTime := sm.buildStatusOptions(account, from, target, options)

	updated, err := sm.store.UpdateStatus(ctx, account.ID, target, statusOpts...)
	if err != nil {
		return nil, err
	}

	sm.applyUpdates(account, updated, target, from, suspensionTime)

	sm.recordActivity(ctx, ActivityEvent{
		EventType:     ActivityEventAccountStatusChanged,
		Actor:         actor,
		AccountID:     account.ID.String(),
		WalletAddress: account.WalletAddress,
		FromStatus:    from,
		ToStatus:      target,
		Metadata:      transitionMetadata(options.metadata),
	})

	return account, nil
}

func (sm *accountStateMachine) CurrentStatus(account *Account) AccountStatus {
	if account == nil {
		return ""
	}
	account.EnsureStatus()
	return account.Status
}

func (sm *accountStateMachine) canTransition(from, to AccountStatus) bool {
	if allowed, ok := sm.transitions[from]; ok {
		_, exists := allowed[to]
		return exists
	}
	return false
}

func buildTransitionOptions(opts ...TransitionOption) *transitionOptions {
	options := &transitionOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}
	return options
}

func (sm *accountStateMachine) buildStatusOptions(account *Account, from, to AccountStatus, opts *transitionOptions) ([]StatusUpdateOption, *time.Time) {
	statusOpts := []StatusUpdateOption{}
	var suspensionTime *time.Time

	if to == AccountStatusSuspended {
		switch {
		case opts.suspensionTime != nil:
			suspensionTime = opts.suspensionTime
		case account.SuspendedAt != nil:
			suspensionTime = account.SuspendedAt
		default:
			now := sm.now()
			suspensionTime = &now
		}
		statusOpts = append(statusOpts, WithSuspendedAt(suspensionTime))
	} else if from == AccountStatusSuspended && account.SuspendedAt != nil {
		statusOpts = append(statusOpts, WithSuspendedAt(nil))
	}

	return statusOpts, suspensionTime
}

func (sm *accountStateMachine) applyUpdates(account, updated *Account, target, from AccountStatus, suspensionTime *time.Time) {
	if updated != nil {
		if updated.Status != "" {
			account.Status = updated.Status
		} else {
			account.Status = target
		}
		account.SuspendedAt = updated.SuspendedAt
		return
	}

	account.Status = target
	if target == AccountStatusSuspended {
		account.SuspendedAt = suspensionTime
	} else if from == AccountStatusSuspended {
		account.SuspendedAt = nil
	}
}

func (sm *accountStateMachine) recordActivity(ctx context.Context, event ActivityEvent) {
	if event.Actor == (ActorRef{}) {
		event.Actor = ActorRef{Type: "system"}
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = sm.now()
	}

	sink := normalizeActivitySink(sm.activitySink)
	if err := sink.Record(ctx, event); err != nil {
		sm.logger.Warn("state machine activity sink error: %v", err)
	}
}

func transitionMetadata(meta TransitionMetadata) map[string]any {
	if meta.Reason == "" && len(meta.Metadata) == 0 {
		return nil
	}

	result := map[string]any{}
	if meta.Reason != "" {
		result["reason"] = meta.Reason
	}
	for k, v := range meta.Metadata {
		result[k] = v
	}
	return result
}
