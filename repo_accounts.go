package walletauth

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var LinkWalletSQL = `UPDATE "accounts" AS "acc"
SET
	"wallet_address" = ?
WHERE
	"acc"."deleted_at" IS NULL
AND (
	"acc"."id" = ?
) RETURNING *;`

// Accounts is the store behind the hosted data service's account CRUD.
type Accounts interface {
	repository.Repository[*Account]

	FindByWallet(ctx context.Context, address string, criteria ...repository.SelectCriteria) (*Account, error)
	FindByWalletTx(ctx context.Context, tx bun.IDB, address string, criteria ...repository.SelectCriteria) (*Account, error)

	Register(ctx context.Context, record *Account) (*Account, error)
	RegisterTx(ctx context.Context, tx bun.IDB, record *Account) (*Account, error)
	GetOrCreate(ctx context.Context, record *Account) (*Account, error)
	GetOrCreateTx(ctx context.Context, tx bun.IDB, record *Account) (*Account, error)
	Create(ctx context.Context, record *Account, criteria ...repository.InsertCriteria) (*Account, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Account, criteria ...repository.InsertCriteria) (*Account, error)

	LinkWallet(ctx context.Context, id uuid.UUID, address string) (*Account, error)
	LinkWalletTx(ctx context.Context, tx bun.IDB, id uuid.UUID, address string) (*Account, error)

	UpdateStatus(ctx context.Context, id uuid.UUID, status AccountStatus, opts ...StatusUpdateOption) (*Account, error)
	UpdateStatusTx(ctx context.Context, tx bun.IDB, id uuid.UUID, status AccountStatus, opts ...StatusUpdateOption) (*Account, error)
	Suspend(ctx context.Context, actor ActorRef, account *Account, opts ...TransitionOption) (*Account, error)
	Reinstate(ctx context.Context, actor ActorRef, account *Account, opts ...TransitionOption) (*Account, error)
}

type accounts struct {
	repository.Repository[*Account]
	db                  *bun.DB
	stateMachine        AccountStateMachine
	stateMachineOptions []StateMachineOption
}

var (
	_ Accounts                        = (*accounts)(nil)
	_ repository.Repository[*Account] = (*accounts)(nil)
)

func NewAccountsRepository(db *bun.DB, opts ...StateMachineOption) Accounts {
	repo := repository.NewRepository[*Account](db, repository.ModelHandlers[*Account]{
		NewRecord: func() *Account { return &Account{} },
		GetID: func(a *Account) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Account, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
	})

	return &accounts{
		Repository:          repo,
		db:                  db,
		stateMachineOptions: opts,
	}
}

func (a *accounts) lifecycleMachine() AccountStateMachine {
	if a.stateMachine == nil {
		a.stateMachine = NewAccountStateMachine(a, a.stateMachineOptions...)
	}
	return a.stateMachine
}

func (a *accounts) FindByWallet(ctx context.Context, address string, criteria ...repository.SelectCriteria) (*Account, error) {
	return a.FindByWalletTx(ctx, a.db, address, criteria...)
}

func (a *accounts) FindByWalletTx(ctx context.Context, tx bun.IDB, address string, criteria ...repository.SelectCriteria) (*Account, error) {
	normalized := NormalizeAddress(address)
	if normalized == "" {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"wallet_address": address,
			})
	}

	record := &Account{}
	q := tx.NewSelect().Model(record)

	for _, c := range criteria {
		q.Apply(c)
	}

	err := q.
		Where("?TableAlias.wallet_address = ?", normalized).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"wallet_address": normalized,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *accounts) Register(ctx context.Context, record *Account) (*Account, error) {
	return a.RegisterTx(ctx, a.db, record)
}

func (a *accounts) RegisterTx(ctx context.Context, tx bun.IDB, record *Account) (*Account, error) {
	return a.CreateTx(ctx, tx, record)
}

func (a *accounts) GetOrCreate(ctx context.Context, record *Account) (*Account, error) {
	return a.GetOrCreateTx(ctx, a.db, record)
}

func (a *accounts) GetOrCreateTx(ctx context.Context, tx bun.IDB, record *Account) (*Account, error) {
	existing, err := a.FindByWalletTx(ctx, tx, record.WalletAddress)
	if err == nil {
		return existing, nil
	}

	if !repository.IsRecordNotFound(err) {
		return nil, err
	}

	return a.CreateTx(ctx, tx, record)
}

func (a *accounts) Create(ctx context.Context, record *Account, criteria ...repository.InsertCriteria) (*Account, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *accounts) CreateTx(ctx context.Context, tx bun.IDB, record *Account, criteria ...repository.InsertCriteria) (*Account, error) {
	prepareAccountDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (a *accounts) LinkWallet(ctx context.Context, id uuid.UUID, address string) (*Account, error) {
	return a.LinkWalletTx(ctx, a.db, id, address)
}

func (a *accounts) LinkWalletTx(ctx context.Context, tx bun.IDB, id uuid.UUID, address string) (*Account, error) {
	res, err := a.Repository.RawTx(ctx, tx, LinkWalletSQL, NormalizeAddress(address), id.String())
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return res[0], nil
}

func (a *accounts) UpdateStatus(ctx context.Context, id uuid.UUID, status AccountStatus, opts ...StatusUpdateOption) (*Account, error) {
	return a.UpdateStatusTx(ctx, a.db, id, status, opts...)
}

func (a *accounts) UpdateStatusTx(ctx context.Context, tx bun.IDB, id uuid.UUID, status AccountStatus, opts ...StatusUpdateOption) (*Account, error) {
	record := &Account{
		ID:     id,
		Status: status,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(record)
		}
	}

	return a.Repository.UpdateTx(ctx, tx, record, repository.UpdateByID(id.String()))
}

func (a *accounts) Suspend(ctx context.Context, actor ActorRef, account *Account, opts ...TransitionOption) (*Account, error) {
	return a.lifecycleMachine().Transition(ctx, actor, account, AccountStatusSuspended, opts...)
}

func (a *accounts) Reinstate(ctx context.Context, actor ActorRef, account *Account, opts ...TransitionOption) (*Account, error) {
	return a.lifecycleMachine().Transition(ctx, actor, account, AccountStatusActive, opts...)
}

// StatusUpdateOption mutates the record persisted by a status change.
type StatusUpdateOption func(*Account)

// WithSuspendedAt sets the SuspendedAt timestamp during a status transition.
func WithSuspendedAt(at *time.Time) StatusUpdateOption {
	return func(a *Account) {
		a.SuspendedAt = at
	}
}

func prepareAccountDefaults(record *Account) {
	if record == nil {
		return
	}

	if record.Role == "" {
		record.Role = RoleBuyer
	}

	record.EnsureStatus()

	record.WalletAddress = NormalizeAddress(record.WalletAddress)
	record.DisplayName = strings.TrimSpace(record.DisplayName)

	if record.ID == uuid.Nil {
		if record.WalletAddress != "" {
			if id, err := hashid.NewUUID(record.WalletAddress); err == nil {
				record.ID = id
			}
		}
		if record.ID == uuid.Nil {
			record.ID = uuid.New()
		}
	}
}
