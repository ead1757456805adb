package walletauth

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Severity classifies a user-facing notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notifier is the fire-and-forget notification sink. No return value is
// consumed.
type Notifier interface {
	Notify(title, description string, severity Severity)
}

// NotifierFunc adapts a function into a Notifier.
type NotifierFunc func(title, description string, severity Severity)

func (f NotifierFunc) Notify(title, description string, severity Severity) {
	if f != nil {
		f(title, description, severity)
	}
}

// Navigator is the fire-and-forget navigation sink.
type Navigator interface {
	GoTo(path string)
}

// NavigatorFunc adapts a function into a Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) GoTo(path string) {
	if f != nil {
		f(path)
	}
}

// ProviderEventType identifies a wallet provider event.
type ProviderEventType string

const (
	// EventAccountsChanged fires when the active account list changes,
	// including disconnects (empty list).
	EventAccountsChanged ProviderEventType = "accountsChanged"
	// EventChainChanged fires when the provider switches networks.
	EventChainChanged ProviderEventType = "chainChanged"
)

// ProviderEvent is a single provider notification, applied in the order the
// provider emits them.
type ProviderEvent struct {
	Type     ProviderEventType
	Accounts []string
	ChainID  int64
}

// WalletProvider is the contract of an injected wallet provider. Adapters
// bridge browser providers or RPC clients to this interface.
type WalletProvider interface {
	// RequestAccounts prompts for access and returns the authorized accounts.
	RequestAccounts(ctx context.Context) ([]string, error)
	// Accounts returns the currently authorized accounts without prompting.
	Accounts(ctx context.Context) ([]string, error)
	// ChainID returns the provider's active chain id.
	ChainID(ctx context.Context) (int64, error)
	// BalanceAt returns the native-token balance as a decimal string.
	BalanceAt(ctx context.Context, address string) (string, error)
	// Events exposes the provider's change notifications.
	Events() <-chan ProviderEvent
}

// Config holds the wallet auth options consumed across components.
type Config interface {
	GetConnectTimeout() time.Duration
	GetGeneralEntryPoint() string
	GetSellerEntryPoint() string
	GetSellerDashboard() string
}

// Settings is the default Config implementation.
type Settings struct {
	ConnectTimeout    time.Duration
	GeneralEntryPoint string
	SellerEntryPoint  string
	SellerDashboard   string
}

func (s Settings) GetConnectTimeout() time.Duration {
	if s.ConnectTimeout <= 0 {
		return 10 * time.Second
	}
	return s.ConnectTimeout
}

func (s Settings) GetGeneralEntryPoint() string {
	if s.GeneralEntryPoint == "" {
		return "/login"
	}
	return s.GeneralEntryPoint
}

func (s Settings) GetSellerEntryPoint() string {
	if s.SellerEntryPoint == "" {
		return "/seller/login"
	}
	return s.SellerEntryPoint
}

func (s Settings) GetSellerDashboard() string {
	if s.SellerDashboard == "" {
		return "/seller/dashboard"
	}
	return s.SellerDashboard
}

var _ Config = Settings{}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] WALLETAUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] WALLETAUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] WALLETAUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] WALLETAUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
