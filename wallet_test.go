package walletauth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	walletauth "github.com/gatepass/go-wallet-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectPopulatesWalletInfo(t *testing.T) {
	provider := newFakeProvider(walletAddr)
	connector := walletauth.NewConnector(provider)

	err := connector.Connect(context.Background())
	require.NoError(t, err)

	info := connector.Current()
	require.NotNil(t, info)
	assert.Equal(t, walletAddr, info.Address)
	assert.Equal(t, int64(11155111), info.ChainID)
	assert.Equal(t, "1.5", info.Balance)
	assert.True(t, connector.IsConnected())
}

func TestConnectWithoutProvider(t *testing.T) {
	connector := walletauth.NewConnector(nil)

	err := connector.Connect(context.Background())

	assert.ErrorIs(t, err, walletauth.ErrNoProviderFound)
	assert.False(t, connector.IsConnected())
}

func TestConnectUserRejection(t *testing.T) {
	provider := newFakeProvider(walletAddr)
	provider.requestErr = errors.New("user rejected the request")
	connector := walletauth.NewConnector(provider)

	err := connector.Connect(context.Background())

	assert.ErrorIs(t, err, walletauth.ErrUserRejected)
	assert.False(t, connector.IsConnected())
}

func TestConnectEmptyAccountListIsRejection(t *testing.T) {
	provider := newFakeProvider()
	connector := walletauth.NewConnector(provider)

	err := connector.Connect(context.Background())

	assert.ErrorIs(t, err, walletauth.ErrUserRejected)
}

func TestConnectTimesOut(t *testing.T) {
	provider := newFakeProvider(walletAddr)
	provider.slow = true
	connector := walletauth.NewConnector(provider,
		walletauth.WithConnectorTimeout(20*time.Millisecond),
	)

	err := connector.Connect(context.Background())

	assert.ErrorIs(t, err, walletauth.ErrProviderTimeout)
}

func TestDisconnectConnectCycle(t *testing.T) {
	provider := newFakeProvider(walletAddr)
	connector := walletauth.NewConnector(provider)

	require.NoError(t, connector.Connect(context.Background()))
	require.True(t, connector.IsConnected())

	connector.Disconnect()
	assert.False(t, connector.IsConnected())
	assert.Nil(t, connector.Current())

	// disconnect is idempotent
	connector.Disconnect()
	assert.False(t, connector.IsConnected())

	provider.accounts = []string{otherWalletAddr}
	require.NoError(t, connector.Connect(context.Background()))

	info := connector.Current()
	require.NotNil(t, info)
	assert.Equal(t, otherWalletAddr, info.Address)
}

func TestAccountsChangedEventReplacesSnapshot(t *testing.T) {
	provider := newFakeProvider(walletAddr)
	connector := walletauth.NewConnector(provider)

	require.NoError(t, connector.Connect(context.Background()))

	provider.emit(walletauth.ProviderEvent{
		Type:     walletauth.EventAccountsChanged,
		Accounts: []string{otherWalletAddr},
	})

	require.Eventually(t, func() bool {
		info := connector.Current()
		return info != nil && info.Address == otherWalletAddr
	}, time.Second, 5*time.Millisecond)
}

func TestEmptyAccountsChangedClearsWallet(t *testing.T) {
	provider := newFakeProvider(walletAddr)
	connector := walletauth.NewConnector(provider)

	require.NoError(t, connector.Connect(context.Background()))

	provider.emit(walletauth.ProviderEvent{Type: walletauth.EventAccountsChanged})

	require.Eventually(t, func() bool {
		return !connector.IsConnected()
	}, time.Second, 5*time.Millisecond)
}

func TestChainChangedEventUpdatesChainID(t *testing.T) {
	provider := newFakeProvider(walletAddr)
	connector := walletauth.NewConnector(provider)

	require.NoError(t, connector.Connect(context.Background()))

	provider.emit(walletauth.ProviderEvent{
		Type:    walletauth.EventChainChanged,
		ChainID: 137,
	})

	require.Eventually(t, func() bool {
		info := connector.Current()
		return info != nil && info.ChainID == 137
	}, time.Second, 5*time.Millisecond)
}

func TestWatchSeesDisconnect(t *testing.T) {
	provider := newFakeProvider(walletAddr)
	connector := walletauth.NewConnector(provider)

	var last *walletauth.WalletInfo
	sawNil := false
	cancel := connector.Watch(func(info *walletauth.WalletInfo) {
		last = info
		if info == nil {
			sawNil = true
		}
	})
	defer cancel()

	require.NoError(t, connector.Connect(context.Background()))
	require.NotNil(t, last)

	connector.Disconnect()
	assert.True(t, sawNil)
}

func TestNormalizeAndCompareAddresses(t *testing.T) {
	assert.Equal(t, "0x8ba1f109551bd432803012645ac136ddd64dba72", walletauth.NormalizeAddress(" "+walletAddr+" "))
	assert.True(t, walletauth.SameAddress(walletAddr, "0x8BA1F109551BD432803012645AC136DDD64DBA72"))
	assert.False(t, walletauth.SameAddress(walletAddr, otherWalletAddr))
}
