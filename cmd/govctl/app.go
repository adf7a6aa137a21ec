package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/oceanguard/govclient/internal/config"
	"github.com/oceanguard/govclient/internal/logging"
	"github.com/oceanguard/govclient/internal/notify"
	"github.com/oceanguard/govclient/internal/services/ethrequest"
	"github.com/oceanguard/govclient/internal/services/webhook"
	"github.com/oceanguard/govclient/internal/storage"
	"github.com/oceanguard/govclient/internal/wallet"
	"github.com/oceanguard/govclient/pkg/governance"
	"github.com/oceanguard/govclient/pkg/queue"
	"github.com/oceanguard/govclient/pkg/reads"
	"github.com/oceanguard/govclient/pkg/viewmodel"
	"github.com/spf13/cobra"
)

var errNoSigner = errors.New("no signing key: set PRIVATE_KEY or KEY_FILE")

// app is everything a command needs, built from the environment.
type app struct {
	conf   *config.Config
	logger *slog.Logger
	vm     *viewmodel.ViewModel
	wallet *wallet.KeyWallet

	closers []func()
}

func newApp(ctx context.Context) (*app, error) {
	conf, err := config.New(ctx, globalFlags.env)
	if err != nil {
		return nil, err
	}

	a := &app{conf: conf}

	logger, closer, err := logging.New(os.Stderr, logging.Options{
		Level: conf.LogLevel,
		File:  conf.LogFile,
	})
	if err != nil {
		return nil, err
	}
	a.logger = logger.With("component", programName)
	a.onClose(func() { closer.Close() })

	if conf.SentryEnabled() {
		err = sentry.Init(sentry.ClientOptions{
			Dsn:              conf.SentryURL,
			TracesSampleRate: 1.0,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("sentry.Init: %w", err)
		}
		a.onClose(func() { sentry.Flush(2 * time.Second) })
	}

	a.logger.Debug("connecting to rpc", "url", conf.RPCURL)

	evm, err := ethrequest.NewEthService(ctx, conf.RPCURL)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.onClose(evm.Close)

	contracts, err := ethrequest.NewContracts(evm.Backend(), conf.GovernanceAddress, conf.TokenAddress)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.wallet, err = loadWallet(conf, evm)
	if err != nil {
		a.Close()
		return nil, err
	}

	balance, err := time.ParseDuration(conf.BalanceInterval)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("BALANCE_INTERVAL: %w", err)
	}

	list, err := time.ParseDuration(conf.ListInterval)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("LIST_INTERVAL: %w", err)
	}

	opts := []viewmodel.Option{
		viewmodel.WithLogger(logger),
		viewmodel.WithIntervals(balance, list),
	}

	proxyURL := conf.ProxyURL
	if globalFlags.proxy != "" {
		proxyURL = globalFlags.proxy
	}
	if proxyURL != "" {
		opts = append(opts, viewmodel.WithProposalSources(
			reads.NewProxySource(proxyURL, nil),
			reads.NewContractSource(contracts),
		))
	}

	if conf.WebhookURL != "" {
		m := webhook.NewMessager(conf.WebhookURL, programName, true)

		q := queue.NewService(3, 10, ctx, m)
		go q.Start(m)
		a.onClose(q.Close)

		opts = append(opts, viewmodel.WithNotifier(notify.New(q, nil, logger)))
	}

	// a nil *KeyWallet must not become a non-nil interface
	var w governance.Wallet
	if a.wallet != nil {
		w = a.wallet
	}

	opts = append(opts, viewmodel.WithMarket(contracts))

	a.vm = viewmodel.New(contracts, w, opts...)
	a.onClose(a.vm.Close)

	return a, nil
}

// loadWallet prefers PRIVATE_KEY, then KEY_FILE, then the default key file.
// No key at all is not an error: reads work without one.
func loadWallet(conf *config.Config, evm *ethrequest.EthService) (*wallet.KeyWallet, error) {
	path := conf.KeyFile
	if conf.PrivateKey == "" && path == "" {
		path = storage.DefaultKeyFile()
		if !storage.Exists(path) {
			return nil, nil
		}
	}

	var chainID *big.Int
	if conf.ChainID > 0 {
		chainID = big.NewInt(conf.ChainID)
	} else {
		id, err := evm.ChainID()
		if err != nil {
			return nil, err
		}
		chainID = id
	}

	if conf.PrivateKey != "" {
		return wallet.FromHex(chainID, conf.PrivateKey)
	}

	return wallet.FromFile(chainID, path)
}

func (a *app) onClose(fn func()) {
	a.closers = append(a.closers, fn)
}

// Close releases everything in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// start runs the view-model and connects the wallet when there is one.
func (a *app) start(ctx context.Context) error {
	if err := a.vm.Start(ctx); err != nil {
		return err
	}

	if a.wallet != nil && !a.vm.Connect(ctx) {
		a.logger.Warn("wallet did not authorize an account")
	}

	return nil
}

// requireSigner is start for write commands.
func (a *app) requireSigner(ctx context.Context) error {
	if a.wallet == nil {
		return errNoSigner
	}
	return a.start(ctx)
}

type runFunc func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error

// withApp builds the app for the duration of one command, bounded by
// --timeout.
func withApp(fn runFunc) func(*cobra.Command, []string) error {
	return run(true, fn)
}

// withAppUnbounded ignores --timeout unless it was given explicitly.
func withAppUnbounded(fn runFunc) func(*cobra.Command, []string) error {
	return run(false, fn)
}

func run(bounded bool, fn runFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		timeout, err := time.ParseDuration(globalFlags.timeout)
		if err != nil {
			return fmt.Errorf("--timeout: %w", err)
		}
		if !bounded && !cmd.Flags().Changed("timeout") {
			timeout = 0
		}
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		return fn(ctx, cmd, a, args)
	}
}
