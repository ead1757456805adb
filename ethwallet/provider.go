// Package ethwallet bridges an Ethereum JSON-RPC endpoint to the
// walletauth.WalletProvider contract for server-side, CLI, and test flows
// where no browser-injected provider exists.
package ethwallet

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	walletauth "github.com/gatepass/go-wallet-auth"
)

// Provider implements walletauth.WalletProvider over an RPC client. The
// authorized account list is configured rather than prompted for; account
// switches are surfaced through the same change events a browser provider
// would emit.
type Provider struct {
	client *ethclient.Client

	mu       sync.RWMutex
	accounts []string
	chainID  int64

	events chan walletauth.ProviderEvent
	done   chan struct{}
	once   sync.Once
}

// Dial connects to an RPC endpoint and authorizes the given accounts.
// Addresses are validated and normalized to their checksummed form.
func Dial(ctx context.Context, rpcURL string, accounts ...string) (*Provider, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, walletauth.WrapProviderError(err, "rpc dial failed")
	}

	checksummed, err := checksumAll(accounts)
	if err != nil {
		client.Close()
		return nil, err
	}

	return &Provider{
		client:   client,
		accounts: checksummed,
		events:   make(chan walletauth.ProviderEvent, 8),
		done:     make(chan struct{}),
	}, nil
}

// DialChain connects using a chain registry entry's RPC endpoint.
func DialChain(ctx context.Context, desc walletauth.ChainDescriptor, accounts ...string) (*Provider, error) {
	return Dial(ctx, desc.RPCURL, accounts...)
}

// RequestAccounts satisfies walletauth.WalletProvider. There is no
// permission prompt on an RPC connection; the configured accounts are
// already authorized.
func (p *Provider) RequestAccounts(ctx context.Context) ([]string, error) {
	return p.Accounts(ctx)
}

// Accounts satisfies walletauth.WalletProvider.
func (p *Provider) Accounts(_ context.Context) ([]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	accounts := make([]string, len(p.accounts))
	copy(accounts, p.accounts)
	return accounts, nil
}

// ChainID satisfies walletauth.WalletProvider.
func (p *Provider) ChainID(ctx context.Context) (int64, error) {
	id, err := p.client.ChainID(ctx)
	if err != nil {
		return 0, err
	}

	p.mu.Lock()
	p.chainID = id.Int64()
	p.mu.Unlock()

	return id.Int64(), nil
}

// BalanceAt satisfies walletauth.WalletProvider. The native balance is
// returned as a decimal string denominated in the chain's base unit.
func (p *Provider) BalanceAt(ctx context.Context, address string) (string, error) {
	if !common.IsHexAddress(address) {
		return "", fmt.Errorf("invalid hex address: %s", address)
	}

	wei, err := p.client.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return "", err
	}

	return FormatWei(wei), nil
}

// Events satisfies walletauth.WalletProvider.
func (p *Provider) Events() <-chan walletauth.ProviderEvent {
	return p.events
}

// SetAccounts replaces the authorized account list and emits an
// accountsChanged event, mirroring a wallet-side account switch.
func (p *Provider) SetAccounts(accounts ...string) error {
	checksummed, err := checksumAll(accounts)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.accounts = checksummed
	p.mu.Unlock()

	p.emit(walletauth.ProviderEvent{
		Type:     walletauth.EventAccountsChanged,
		Accounts: checksummed,
	})

	return nil
}

// PollChain watches the endpoint's chain id at the given interval and emits
// a chainChanged event when it moves. Blocks until ctx ends or Close.
func (p *Provider) PollChain(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 15 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.done:
			return
		case <-ticker.C:
			p.mu.RLock()
			last := p.chainID
			p.mu.RUnlock()

			current, err := p.ChainID(ctx)
			if err != nil {
				continue
			}

			if last != 0 && current != last {
				p.emit(walletauth.ProviderEvent{
					Type:    walletauth.EventChainChanged,
					ChainID: current,
				})
			}
		}
	}
}

// Close releases the RPC client and stops event emission. Idempotent.
func (p *Provider) Close() {
	p.once.Do(func() {
		close(p.done)
		close(p.events)
		p.client.Close()
	})
}

func (p *Provider) emit(event walletauth.ProviderEvent) {
	select {
	case <-p.done:
	case p.events <- event:
	default:
		// drop rather than block a slow consumer
	}
}

// ChecksumAddress validates a hex address and returns its EIP-55
// checksummed form.
func ChecksumAddress(address string) (string, error) {
	if !common.IsHexAddress(address) {
		return "", fmt.Errorf("invalid hex address: %s", address)
	}
	return common.HexToAddress(address).Hex(), nil
}

func checksumAll(accounts []string) ([]string, error) {
	checksummed := make([]string, 0, len(accounts))
	for _, account := range accounts {
		addr, err := ChecksumAddress(account)
		if err != nil {
			return nil, err
		}
		checksummed = append(checksummed, addr)
	}
	return checksummed, nil
}

// FormatWei renders a wei amount as a decimal string in ether units.
func FormatWei(wei *big.Int) string {
	if wei == nil {
		return "0"
	}

	f := new(big.Float).SetInt(wei)
	f.Quo(f, big.NewFloat(1e18))
	return f.Text('f', -1)
}

var _ walletauth.WalletProvider = (*Provider)(nil)
