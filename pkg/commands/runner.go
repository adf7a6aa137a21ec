package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/oceanguard/govclient/pkg/governance"
)

// Waiter confirms submitted transactions.
type Waiter interface {
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

type Option func(*Runner)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

func WithNotifier(n Notifier) Option {
	return func(r *Runner) {
		r.notifier = n
	}
}

// Runner drives a Command through one invocation: connection check, signer,
// submission, confirmation and cleanup. Executors for different contracts
// share it.
type Runner struct {
	waiter   Waiter
	wallet   governance.Wallet
	account  AddressSource
	logger   *slog.Logger
	notifier Notifier
}

func NewRunner(waiter Waiter, wallet governance.Wallet, account AddressSource, opts ...Option) *Runner {
	r := &Runner{
		waiter:  waiter,
		wallet:  wallet,
		account: account,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	r.logger = r.logger.With("component", "commands")

	return r
}

// Run resets c, checks the connection, obtains a signer and runs fn. c is
// left not loading whatever happens.
func (r *Runner) Run(ctx context.Context, c *Command, fn func(ctx context.Context, opts *bind.TransactOpts) error) (err error) {
	c.begin()

	var account *common.Address
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%s panicked: %v", c.name, rec)
		}

		c.finish(err)

		if err != nil {
			r.logger.Error("command failed", "command", c.name, "error", err)
			if r.notifier != nil {
				r.notifier.CommandFailed(ctx, Failure{
					Command: c.name,
					Account: account,
					TxHash:  c.State().TxHash,
					Err:     err,
				})
			}
			return
		}

		r.logger.Info("command confirmed", "command", c.name, "tx", c.State().TxHash)
	}()

	if r.account != nil {
		account = r.account.Address()
	}
	if account == nil {
		return governance.ErrWalletNotConnected
	}

	if r.wallet == nil {
		return governance.ErrNoProvider
	}

	opts, err := r.wallet.Signer(ctx, *account)
	if err != nil {
		return err
	}
	if opts.Context == nil {
		opts.Context = ctx
	}

	return fn(ctx, opts)
}

// Transact records the hash as soon as the transaction is submitted and
// then waits for it to be mined.
func (r *Runner) Transact(ctx context.Context, c *Command, submit func() (*types.Transaction, error)) error {
	tx, err := submit()
	if err != nil {
		return err
	}

	c.setTxHash(tx.Hash())
	r.logger.Debug("transaction submitted", "command", c.name, "tx", tx.Hash().Hex())

	_, err = r.waiter.WaitMined(ctx, tx)
	return err
}
