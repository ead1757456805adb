package walletauth

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"time"
)

// WalletInfo is an immutable snapshot of the connected wallet. It is
// replaced wholesale on every provider change event; readers never see a
// partially updated record.
type WalletInfo struct {
	Address string
	ChainID int64
	Balance string
	Name    string
}

// NormalizeAddress lowercases a hex address for storage and comparison.
// Display surfaces keep the checksummed form the provider reported.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// SameAddress compares two hex addresses ignoring checksum casing.
func SameAddress(a, b string) bool {
	return NormalizeAddress(a) == NormalizeAddress(b)
}

// Connector owns the connection to the wallet provider: the active
// WalletInfo, the provider event subscription, and nothing else. It is the
// single writer of wallet state; consumers read through Current and Watch.
type Connector struct {
	provider WalletProvider
	timeout  time.Duration
	logger   Logger

	mu       sync.RWMutex
	current  *WalletInfo
	done     chan struct{}
	watchers map[int]func(*WalletInfo)
	nextID   int
}

// ConnectorOption customizes a Connector.
type ConnectorOption func(*Connector)

// WithConnectorTimeout bounds every provider query. Balance and chain-id
// reads never block longer than this.
func WithConnectorTimeout(d time.Duration) ConnectorOption {
	return func(c *Connector) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithConnectorLogger overrides the connector logger.
func WithConnectorLogger(logger Logger) ConnectorOption {
	return func(c *Connector) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewConnector returns a Connector over the given provider. A nil provider
// is allowed, Connect then fails with ErrNoProviderFound.
func NewConnector(provider WalletProvider, opts ...ConnectorOption) *Connector {
	c := &Connector{
		provider: provider,
		timeout:  10 * time.Second,
		logger:   defLogger{},
		watchers: map[int]func(*WalletInfo){},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c
}

// Connect requests provider access, populates the wallet snapshot from the
// first authorized account, and subscribes to provider change events.
func (c *Connector) Connect(ctx context.Context) error {
	if c.provider == nil {
		return ErrNoProviderFound
	}

	accounts, err := c.requestAccounts(ctx)
	if err != nil {
		return err
	}

	if len(accounts) == 0 {
		return ErrUserRejected
	}

	chainID, err := c.queryChainID(ctx)
	if err != nil {
		return err
	}

	info := &WalletInfo{
		Address: accounts[0],
		ChainID: chainID,
	}

	balance, err := c.queryBalance(ctx, accounts[0])
	if err != nil {
		// Timed-out balance reads keep the last known value rather than
		// clearing it.
		if stderrors.Is(err, ErrProviderTimeout) {
			info.Balance = c.lastBalance(accounts[0])
			c.replace(info)
			c.subscribe()
			return err
		}
		return err
	}

	info.Balance = balance
	c.replace(info)
	c.subscribe()

	return nil
}

// Disconnect clears the wallet snapshot and unsubscribes from provider
// events. Idempotent.
func (c *Connector) Disconnect() {
	c.mu.Lock()
	if c.done != nil {
		close(c.done)
		c.done = nil
	}
	c.mu.Unlock()

	c.replace(nil)
}

// IsConnected reports whether a wallet snapshot with an address is active.
func (c *Connector) IsConnected() bool {
	return c.Current() != nil
}

// Current returns the active wallet snapshot, nil when disconnected.
func (c *Connector) Current() *WalletInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Watch registers an observer invoked with each replaced snapshot (nil on
// disconnect). The returned function cancels the registration.
func (c *Connector) Watch(fn func(*WalletInfo)) func() {
	if fn == nil {
		return func() {}
	}

	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.watchers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.watchers, id)
		c.mu.Unlock()
	}
}

func (c *Connector) requestAccounts(ctx context.Context) ([]string, error) {
	qctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	accounts, err := c.provider.RequestAccounts(qctx)
	if err != nil {
		switch {
		case stderrors.Is(err, context.DeadlineExceeded):
			return nil, ErrProviderTimeout
		case IsUserRejectedError(err):
			return nil, ErrUserRejected
		default:
			return nil, WrapProviderError(err, "wallet access request failed")
		}
	}

	return accounts, nil
}

func (c *Connector) queryChainID(ctx context.Context) (int64, error) {
	qctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	chainID, err := c.provider.ChainID(qctx)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return 0, ErrProviderTimeout
		}
		return 0, WrapProviderError(err, "chain id query failed")
	}

	return chainID, nil
}

func (c *Connector) queryBalance(ctx context.Context, address string) (string, error) {
	qctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	balance, err := c.provider.BalanceAt(qctx, address)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return "", ErrProviderTimeout
		}
		return "", WrapProviderError(err, "balance query failed")
	}

	return balance, nil
}

func (c *Connector) lastBalance(address string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current != nil && SameAddress(c.current.Address, address) {
		return c.current.Balance
	}
	return ""
}

// replace swaps the snapshot atomically and publishes it to watchers.
func (c *Connector) replace(info *WalletInfo) {
	c.mu.Lock()
	c.current = info
	watchers := make([]func(*WalletInfo), 0, len(c.watchers))
	for _, fn := range c.watchers {
		watchers = append(watchers, fn)
	}
	c.mu.Unlock()

	for _, fn := range watchers {
		fn(info)
	}
}

func (c *Connector) subscribe() {
	c.mu.Lock()
	if c.done != nil {
		c.mu.Unlock()
		return
	}
	done := make(chan struct{})
	c.done = done
	c.mu.Unlock()

	go c.consumeEvents(done)
}

// consumeEvents applies provider events in emission order. Each event
// replaces the snapshot wholesale.
func (c *Connector) consumeEvents(done chan struct{}) {
	events := c.provider.Events()
	if events == nil {
		return
	}

	for {
		select {
		case <-done:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			c.applyEvent(event)
		}
	}
}

func (c *Connector) applyEvent(event ProviderEvent) {
	switch event.Type {
	case EventAccountsChanged:
		if len(event.Accounts) == 0 {
			c.replace(nil)
			return
		}
		c.refresh(event.Accounts[0], 0)
	case EventChainChanged:
		current := c.Current()
		if current == nil {
			return
		}
		c.refresh(current.Address, event.ChainID)
	}
}

// refresh rebuilds the snapshot for an address. A zero chainID means
// re-query the provider.
func (c *Connector) refresh(address string, chainID int64) {
	ctx := context.Background()

	if chainID == 0 {
		id, err := c.queryChainID(ctx)
		if err != nil {
			c.logger.Warn("wallet refresh chain id query failed", "error", err)
			if current := c.Current(); current != nil {
				chainID = current.ChainID
			}
		} else {
			chainID = id
		}
	}

	info := &WalletInfo{
		Address: address,
		ChainID: chainID,
	}

	balance, err := c.queryBalance(ctx, address)
	if err != nil {
		c.logger.Warn("wallet refresh balance query failed", "error", err)
		info.Balance = c.lastBalance(address)
	} else {
		info.Balance = balance
	}

	c.replace(info)
}
