package wallet

import (
	"bufio"
	"bytes"
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/event"
	comm "github.com/oceanguard/govclient/internal/common"
	"github.com/oceanguard/govclient/internal/storage"
	"github.com/oceanguard/govclient/pkg/governance"
)

var (
	ErrNoKeys         = errors.New("wallet has no keys")
	ErrUnknownAccount = errors.New("account not held by wallet")
	ErrRejected       = errors.New("user rejected the request")
)

// KeyWallet is a governance.Wallet backed by local private keys. The first
// key is the active account.
type KeyWallet struct {
	chainID *big.Int

	mu         sync.Mutex
	keys       []*ecdsa.PrivateKey
	authorized bool
	reject     bool

	feed event.Feed
}

func New(chainID *big.Int, keys ...*ecdsa.PrivateKey) *KeyWallet {
	return &KeyWallet{
		chainID: chainID,
		keys:    keys,
	}
}

// FromHex parses one or more hex encoded private keys.
func FromHex(chainID *big.Int, hexKeys ...string) (*KeyWallet, error) {
	keys := make([]*ecdsa.PrivateKey, 0, len(hexKeys))
	for i, h := range hexKeys {
		k, err := comm.HexToPrivateKey(h)
		if err != nil {
			return nil, fmt.Errorf("key %d: %w", i, err)
		}
		keys = append(keys, k)
	}

	return New(chainID, keys...), nil
}

// FromFile reads a file with one hex private key per line. Blank lines and
// lines starting with # are skipped.
func FromFile(chainID *big.Int, path string) (*KeyWallet, error) {
	if !storage.Exists(path) {
		return nil, fmt.Errorf("key file not found: %s", path)
	}

	b, err := storage.Read(path)
	if err != nil {
		return nil, err
	}

	hexKeys := []string{}

	scanner := bufio.NewScanner(bytes.NewReader(b))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		hexKeys = append(hexKeys, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(hexKeys) == 0 {
		return nil, ErrNoKeys
	}

	return FromHex(chainID, hexKeys...)
}

func (w *KeyWallet) addresses() []common.Address {
	addrs := make([]common.Address, 0, len(w.keys))
	for _, k := range w.keys {
		addrs = append(addrs, crypto.PubkeyToAddress(k.PublicKey))
	}
	return addrs
}

// SetReject makes RequestAccounts fail the way a user declining the prompt
// would.
func (w *KeyWallet) SetReject(reject bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.reject = reject
}

func (w *KeyWallet) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w.mu.Lock()
	if w.reject {
		w.mu.Unlock()
		return nil, ErrRejected
	}
	if len(w.keys) == 0 {
		w.mu.Unlock()
		return nil, ErrNoKeys
	}

	changed := !w.authorized
	w.authorized = true
	addrs := w.addresses()
	w.mu.Unlock()

	if changed {
		w.feed.Send(addrs)
	}

	return addrs, nil
}

func (w *KeyWallet) Accounts(ctx context.Context) ([]common.Address, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.authorized {
		return []common.Address{}, nil
	}

	return w.addresses(), nil
}

func (w *KeyWallet) Signer(ctx context.Context, account common.Address) (*bind.TransactOpts, error) {
	w.mu.Lock()
	var key *ecdsa.PrivateKey
	for _, k := range w.keys {
		if crypto.PubkeyToAddress(k.PublicKey) == account {
			key = k
			break
		}
	}
	authorized := w.authorized
	w.mu.Unlock()

	if !authorized {
		return nil, governance.ErrWalletNotConnected
	}

	if key == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAccount, account.Hex())
	}

	opts, err := bind.NewKeyedTransactorWithChainID(key, w.chainID)
	if err != nil {
		return nil, err
	}
	opts.Context = ctx

	return opts, nil
}

func (w *KeyWallet) SubscribeAccountsChanged(ch chan<- []common.Address) event.Subscription {
	return w.feed.Subscribe(ch)
}

// Switch makes the account at index active and notifies subscribers.
func (w *KeyWallet) Switch(index int) error {
	w.mu.Lock()
	if index < 0 || index >= len(w.keys) {
		w.mu.Unlock()
		return fmt.Errorf("no key at index %d", index)
	}

	w.keys[0], w.keys[index] = w.keys[index], w.keys[0]
	addrs := w.addresses()
	authorized := w.authorized
	w.mu.Unlock()

	if authorized {
		w.feed.Send(addrs)
	}

	return nil
}

// Disconnect revokes authorization and notifies subscribers with an empty
// account list.
func (w *KeyWallet) Disconnect() {
	w.mu.Lock()
	changed := w.authorized
	w.authorized = false
	w.mu.Unlock()

	if changed {
		w.feed.Send([]common.Address{})
	}
}

var _ governance.Wallet = (*KeyWallet)(nil)
