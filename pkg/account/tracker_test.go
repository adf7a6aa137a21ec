package account

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

var (
	alice = common.HexToAddress("0x480fbe37526226b6c6e2a7afa449cdf661939d2f")
	bob   = common.HexToAddress("0x1234567890123456789012345678901234567890")
)

type mockWallet struct {
	mu         sync.Mutex
	accounts   []common.Address
	request    []common.Address
	err        error
	onAccounts func()
	feed       event.Feed
}

func (m *mockWallet) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.request, nil
}

func (m *mockWallet) Accounts(ctx context.Context) ([]common.Address, error) {
	m.mu.Lock()
	accounts, hook := m.accounts, m.onAccounts
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
	return accounts, nil
}

func (m *mockWallet) Signer(ctx context.Context, account common.Address) (*bind.TransactOpts, error) {
	return nil, errors.New("not implemented")
}

func (m *mockWallet) SubscribeAccountsChanged(ch chan<- []common.Address) event.Subscription {
	return m.feed.Subscribe(ch)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, time.Second, 5*time.Millisecond)
}

func TestNoProvider(t *testing.T) {
	tr := New(nil, nil)
	require.NoError(t, tr.Start(context.Background()))
	defer tr.Close()

	require.False(t, tr.Connect(context.Background()))
	require.False(t, tr.IsConnected())
	require.Nil(t, tr.Address())
}

func TestConnect(t *testing.T) {
	defer goleak.VerifyNone(t)

	w := &mockWallet{request: []common.Address{alice, bob}}
	tr := New(w, nil)
	require.NoError(t, tr.Start(context.Background()))
	defer tr.Close()

	require.False(t, tr.IsConnected())

	require.True(t, tr.Connect(context.Background()))
	require.True(t, tr.IsConnected())
	require.Equal(t, alice, *tr.Address())
}

func TestConnectRejected(t *testing.T) {
	defer goleak.VerifyNone(t)

	w := &mockWallet{accounts: []common.Address{bob}, err: errors.New("user rejected")}
	tr := New(w, nil)
	require.NoError(t, tr.Start(context.Background()))
	defer tr.Close()

	// already authorized accounts are picked up on start
	require.Equal(t, bob, *tr.Address())

	require.False(t, tr.Connect(context.Background()))
	require.Equal(t, bob, *tr.Address())
	require.True(t, tr.IsConnected())
}

func TestConnectEmptyKeepsState(t *testing.T) {
	defer goleak.VerifyNone(t)

	w := &mockWallet{accounts: []common.Address{alice}, request: []common.Address{}}
	tr := New(w, nil)
	require.NoError(t, tr.Start(context.Background()))
	defer tr.Close()

	require.Equal(t, alice, *tr.Address())

	require.False(t, tr.Connect(context.Background()))
	require.True(t, tr.IsConnected())
	require.Equal(t, alice, *tr.Address())
}

func TestChangeDuringStartIsKept(t *testing.T) {
	defer goleak.VerifyNone(t)

	w := &mockWallet{accounts: []common.Address{alice}}
	// the user switches accounts while the initial listing is in flight
	w.onAccounts = func() { w.feed.Send([]common.Address{bob}) }

	tr := New(w, nil)
	require.NoError(t, tr.Start(context.Background()))
	defer tr.Close()

	waitFor(t, func() bool {
		addr := tr.Address()
		return addr != nil && *addr == bob
	})
}

func TestAccountChanges(t *testing.T) {
	defer goleak.VerifyNone(t)

	w := &mockWallet{}
	tr := New(w, nil)
	require.NoError(t, tr.Start(context.Background()))
	defer tr.Close()

	states := make(chan State, 8)
	sub := tr.Subscribe(states)
	defer sub.Unsubscribe()

	w.feed.Send([]common.Address{bob})
	s := <-states
	require.True(t, s.Connected)
	require.Equal(t, bob, *s.Address)

	// same account again is not a change
	w.feed.Send([]common.Address{bob, alice})

	w.feed.Send([]common.Address{alice})
	s = <-states
	require.Equal(t, alice, *s.Address)

	w.feed.Send([]common.Address{})
	s = <-states
	require.False(t, s.Connected)
	require.Nil(t, s.Address)

	waitFor(t, func() bool { return !tr.IsConnected() })
	require.Empty(t, states)
}

func TestCloseUnsubscribes(t *testing.T) {
	defer goleak.VerifyNone(t)

	w := &mockWallet{}
	tr := New(w, nil)
	require.NoError(t, tr.Start(context.Background()))

	tr.Close()
	tr.Close()

	// with the tracker gone nobody is subscribed, so Send does not block
	require.Equal(t, 0, w.feed.Send([]common.Address{alice}))
	require.False(t, tr.IsConnected())
}
