package account

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/oceanguard/govclient/pkg/governance"
)

// State is the connection snapshot handed to subscribers.
type State struct {
	Address   *common.Address
	Connected bool
}

// Tracker follows the wallet's active account.
type Tracker struct {
	wallet governance.Wallet
	logger *slog.Logger

	mu    sync.RWMutex
	state State

	feed event.Feed

	sub       event.Subscription
	accounts  chan []common.Address
	quit      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New creates a tracker. A nil wallet means no provider is available; the
// tracker then stays disconnected.
func New(wallet governance.Wallet, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}

	return &Tracker{
		wallet: wallet,
		logger: logger.With("component", "account"),
		quit:   make(chan struct{}),
	}
}

// Start picks up accounts that are already authorized and listens for
// account changes until Close.
func (t *Tracker) Start(ctx context.Context) error {
	if t.wallet == nil {
		t.logger.Warn("no wallet provider")
		return nil
	}

	// subscribe first so a change landing during the listing is queued
	t.accounts = make(chan []common.Address, 1)
	t.sub = t.wallet.SubscribeAccountsChanged(t.accounts)

	accounts, err := t.wallet.Accounts(ctx)
	if err != nil {
		t.logger.Warn("listing accounts", "error", err)
	} else {
		t.apply(accounts)
	}

	t.wg.Add(1)
	go t.listen()

	return nil
}

func (t *Tracker) listen() {
	defer t.wg.Done()

	for {
		select {
		case accounts := <-t.accounts:
			t.apply(accounts)
		case err := <-t.sub.Err():
			if err != nil {
				t.logger.Error("account subscription", "error", err)
			}
			return
		case <-t.quit:
			return
		}
	}
}

// Close stops listening for account changes.
func (t *Tracker) Close() {
	t.closeOnce.Do(func() {
		if t.sub != nil {
			t.sub.Unsubscribe()
		}
		close(t.quit)
		t.wg.Wait()
	})
}

// Connect prompts the wallet for authorization. It reports false without
// touching state when there is no provider, the user declines or no account
// is authorized.
func (t *Tracker) Connect(ctx context.Context) bool {
	if t.wallet == nil {
		t.logger.Warn("connect", "error", governance.ErrNoProvider)
		return false
	}

	accounts, err := t.wallet.RequestAccounts(ctx)
	if err != nil {
		t.logger.Warn("connect", "error", err)
		return false
	}

	if len(accounts) == 0 {
		t.logger.Warn("connect", "error", "wallet authorized no accounts")
		return false
	}

	t.apply(accounts)

	return t.IsConnected()
}

func (t *Tracker) apply(accounts []common.Address) {
	next := State{}
	if len(accounts) > 0 {
		addr := accounts[0]
		next = State{Address: &addr, Connected: true}
	}

	t.mu.Lock()
	changed := !sameState(t.state, next)
	t.state = next
	t.mu.Unlock()

	if !changed {
		return
	}

	if next.Connected {
		t.logger.Info("account connected", "address", next.Address.Hex())
	} else {
		t.logger.Info("account disconnected")
	}

	t.feed.Send(next)
}

func sameState(a, b State) bool {
	if a.Connected != b.Connected {
		return false
	}
	if a.Address == nil || b.Address == nil {
		return a.Address == b.Address
	}
	return *a.Address == *b.Address
}

// Address returns a copy of the active address, nil when disconnected.
func (t *Tracker) Address() *common.Address {
	return t.State().Address
}

func (t *Tracker) IsConnected() bool {
	return t.State().Connected
}

func (t *Tracker) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s := t.state
	if s.Address != nil {
		addr := *s.Address
		s.Address = &addr
	}
	return s
}

// Subscribe delivers every state change to ch. Subscribers must keep
// draining ch until they unsubscribe.
func (t *Tracker) Subscribe(ch chan<- State) event.Subscription {
	return t.feed.Subscribe(ch)
}
