package walletauth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AccountStatus is the lifecycle state of a marketplace account.
type AccountStatus string

const (
	AccountStatusPending   AccountStatus = "pending"
	AccountStatusActive    AccountStatus = "active"
	AccountStatusSuspended AccountStatus = "suspended"
	AccountStatusDisabled  AccountStatus = "disabled"
	AccountStatusArchived  AccountStatus = "archived"
)

// Account is the hosted marketplace account record. The wallet address is
// stored normalized (lowercase hex); display surfaces keep the checksummed
// form reported by the provider.
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:acc"`
	ID            uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role          Role           `bun:"account_role,notnull" json:"account_role,omitempty"`
	Status        AccountStatus  `bun:"status,notnull" json:"status,omitempty"`
	DisplayName   string         `bun:"display_name,notnull" json:"display_name,omitempty"`
	Email         string         `bun:"email,nullzero" json:"email,omitempty"`
	Phone         string         `bun:"phone_number,nullzero" json:"phone_number,omitempty"`
	WalletAddress string         `bun:"wallet_address,unique,nullzero" json:"wallet_address,omitempty"`
	Metadata      map[string]any `bun:"metadata" json:"metadata,omitempty"`
	SuspendedAt   *time.Time     `bun:"suspended_at,nullzero" json:"suspended_at,omitempty"`
	CreatedAt     *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time     `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// EnsureStatus backfills the status for records created before the lifecycle
// column existed. Wallet sign-up activates the account immediately.
func (a *Account) EnsureStatus() {
	if a.Status == "" {
		a.Status = AccountStatusActive
	}
}

// AddMetadata will append information to the metadata attribute
func (a *Account) AddMetadata(key string, val any) *Account {
	if a.Metadata == nil {
		a.Metadata = make(map[string]any)
	}
	a.Metadata[key] = val
	return a
}

// IdentityAccount is the active reconciled identity: the stored account
// record joined with the raw role claims it was resolved from. At most one
// is active per IdentityService. Owned exclusively by the service; other
// components read a reference and never mutate it.
type IdentityAccount struct {
	AccountID     uuid.UUID
	Email         string
	DisplayName   string
	Role          Role
	ProfileRole   string
	MetadataRole  string
	WalletAddress string
}

// HasWallet reports whether a wallet address is linked.
func (i *IdentityAccount) HasWallet() bool {
	return i != nil && i.WalletAddress != ""
}
