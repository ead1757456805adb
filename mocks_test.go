package walletauth_test

import (
	"context"
	"sync"

	walletauth "github.com/gatepass/go-wallet-auth"
	"github.com/goliatone/go-repository-bun"
	"github.com/stretchr/testify/mock"
)

// MockAccountStore implements walletauth.AccountStore
type MockAccountStore struct {
	mock.Mock
}

func (m *MockAccountStore) FindByWallet(ctx context.Context, address string, criteria ...repository.SelectCriteria) (*walletauth.Account, error) {
	args := m.Called(ctx, address)
	if record, ok := args.Get(0).(*walletauth.Account); ok {
		return record, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountStore) Register(ctx context.Context, record *walletauth.Account) (*walletauth.Account, error) {
	args := m.Called(ctx, record)
	if created, ok := args.Get(0).(*walletauth.Account); ok {
		return created, args.Error(1)
	}
	return nil, args.Error(1)
}

// memStore is an in-memory AccountStore for multi-step flows. onFind runs
// before each lookup returns, which lets tests interleave calls mid-flight.
type memStore struct {
	mu      sync.Mutex
	records map[string]*walletauth.Account
	onFind  func()
}

func newMemStore() *memStore {
	return &memStore{records: map[string]*walletauth.Account{}}
}

func (s *memStore) FindByWallet(_ context.Context, address string, _ ...repository.SelectCriteria) (*walletauth.Account, error) {
	if s.onFind != nil {
		s.onFind()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[walletauth.NormalizeAddress(address)]
	if !ok {
		return nil, repository.NewRecordNotFound()
	}
	return record, nil
}

func (s *memStore) Register(_ context.Context, record *walletauth.Account) (*walletauth.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[walletauth.NormalizeAddress(record.WalletAddress)] = record
	return record, nil
}

func (s *memStore) setStatus(address string, status walletauth.AccountStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record, ok := s.records[walletauth.NormalizeAddress(address)]; ok {
		record.Status = status
	}
}

func (s *memStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// fakeProvider implements walletauth.WalletProvider
type fakeProvider struct {
	mu       sync.Mutex
	accounts []string
	chainID  int64
	balance  string

	requestErr error
	balanceErr error
	slow       bool

	events chan walletauth.ProviderEvent
}

func newFakeProvider(accounts ...string) *fakeProvider {
	return &fakeProvider{
		accounts: accounts,
		chainID:  11155111,
		balance:  "1.5",
		events:   make(chan walletauth.ProviderEvent, 8),
	}
}

func (p *fakeProvider) RequestAccounts(ctx context.Context) ([]string, error) {
	if p.slow {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if p.requestErr != nil {
		return nil, p.requestErr
	}
	return p.Accounts(ctx)
}

func (p *fakeProvider) Accounts(_ context.Context) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string{}, p.accounts...), nil
}

func (p *fakeProvider) ChainID(_ context.Context) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.chainID, nil
}

func (p *fakeProvider) BalanceAt(ctx context.Context, _ string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.balanceErr != nil {
		return "", p.balanceErr
	}
	return p.balance, nil
}

func (p *fakeProvider) Events() <-chan walletauth.ProviderEvent {
	return p.events
}

func (p *fakeProvider) emit(event walletauth.ProviderEvent) {
	p.events <- event
}

// stubSource implements walletauth.AccessSource
type stubSource struct {
	ident *walletauth.IdentityAccount
}

func (s *stubSource) Current() *walletauth.IdentityAccount {
	return s.ident
}

// navRecorder implements walletauth.Navigator
type navRecorder struct {
	mu    sync.Mutex
	paths []string
}

func (n *navRecorder) GoTo(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, path)
}

func (n *navRecorder) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.paths)
}

func (n *navRecorder) last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.paths) == 0 {
		return ""
	}
	return n.paths[len(n.paths)-1]
}

// noteRecorder implements walletauth.Notifier
type noteRecorder struct {
	mu    sync.Mutex
	notes []string
}

func (n *noteRecorder) Notify(title, description string, _ walletauth.Severity) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, title+": "+description)
}

func (n *noteRecorder) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.notes)
}
