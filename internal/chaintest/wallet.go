package chaintest

import (
	"context"
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/oceanguard/govclient/pkg/governance"
)

// Wallet authorizes a fixed account list and signs without keys.
type Wallet struct {
	mu        sync.Mutex
	accounts  []common.Address
	connected bool
	signerErr error

	feed event.Feed
}

func NewWallet(accounts ...common.Address) *Wallet {
	return &Wallet{accounts: accounts}
}

// SetSignerError makes Signer fail, as when the user rejects signing.
func (w *Wallet) SetSignerError(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.signerErr = err
}

func (w *Wallet) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.accounts) == 0 {
		return nil, errors.New("no accounts")
	}
	w.connected = true
	return append([]common.Address(nil), w.accounts...), nil
}

func (w *Wallet) Accounts(ctx context.Context) ([]common.Address, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.connected {
		return nil, nil
	}
	return append([]common.Address(nil), w.accounts...), nil
}

func (w *Wallet) Signer(ctx context.Context, account common.Address) (*bind.TransactOpts, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.signerErr != nil {
		return nil, w.signerErr
	}
	return &bind.TransactOpts{From: account, Context: ctx}, nil
}

func (w *Wallet) SubscribeAccountsChanged(ch chan<- []common.Address) event.Subscription {
	return w.feed.Subscribe(ch)
}

// Emit simulates the user switching accounts in the wallet.
func (w *Wallet) Emit(accounts ...common.Address) {
	w.mu.Lock()
	w.accounts = accounts
	w.connected = len(accounts) > 0
	w.mu.Unlock()

	w.feed.Send(accounts)
}

var _ governance.Wallet = (*Wallet)(nil)
