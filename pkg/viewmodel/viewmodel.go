// Package viewmodel assembles the account tracker, the polled reads and the
// write commands into one handle with an explicit lifecycle.
package viewmodel

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/oceanguard/govclient/pkg/account"
	"github.com/oceanguard/govclient/pkg/commands"
	"github.com/oceanguard/govclient/pkg/governance"
	"github.com/oceanguard/govclient/pkg/market"
	"github.com/oceanguard/govclient/pkg/poll"
	"github.com/oceanguard/govclient/pkg/reads"
)

var ErrClosed = errors.New("view-model closed")

type Option func(*options)

type options struct {
	logger          *slog.Logger
	balanceInterval time.Duration
	listInterval    time.Duration
	status          governance.Status
	sources         []reads.ProposalSource
	notifier        commands.Notifier
	pollObserver    func(name string, err error)
	sourceObserver  func(source string, err error)
	market          market.Chain
	wallet          governance.Wallet
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithIntervals overrides the 30s balance and 60s list polling intervals.
func WithIntervals(balance, list time.Duration) Option {
	return func(o *options) {
		o.balanceInterval = balance
		o.listInterval = list
	}
}

// WithStatus sets the initial status filter. Active is the default.
func WithStatus(status governance.Status) Option {
	return func(o *options) {
		o.status = status
	}
}

// WithProposalSources sets the single-proposal strategy list.
func WithProposalSources(sources ...reads.ProposalSource) Option {
	return func(o *options) {
		o.sources = sources
	}
}

func WithNotifier(n commands.Notifier) Option {
	return func(o *options) {
		o.notifier = n
	}
}

// WithMarket adds the project and carbon credit reads and commands.
func WithMarket(chain market.Chain) Option {
	return func(o *options) {
		o.market = chain
	}
}

func WithPollObserver(fn func(name string, err error)) Option {
	return func(o *options) {
		o.pollObserver = fn
	}
}

func WithSourceObserver(fn func(source string, err error)) Option {
	return func(o *options) {
		o.sourceObserver = fn
	}
}

type none = struct{}

type ProposalList = []*governance.Proposal

type unit interface {
	Name() string
	Refresh()
	Updates() <-chan struct{}
	Close()
}

// ViewModel is the governance view-model. Create it with New, call Start
// once and Close when done.
type ViewModel struct {
	Account  *account.Tracker
	Reads    *reads.Reader
	Commands *commands.Executor
	// Market is nil unless the view-model was built WithMarket.
	Market *Market

	TokenBalance      *poll.Unit[common.Address, string]
	StakedBalance     *poll.Unit[common.Address, string]
	VotingPower       *poll.Unit[common.Address, string]
	TotalStaked       *poll.Unit[none, string]
	ActiveProposals   *poll.Unit[none, ProposalList]
	ProposalsByStatus *poll.Unit[governance.Status, ProposalList]

	logger *slog.Logger
	status governance.Status
	units  []unit

	states  chan account.State
	sub     event.Subscription
	updates chan struct{}
	quit    chan struct{}
	wg      sync.WaitGroup

	mu      sync.Mutex
	started bool
	closed  bool
}

func New(chain governance.Chain, wallet governance.Wallet, opts ...Option) *ViewModel {
	o := options{
		logger:          slog.Default(),
		balanceInterval: reads.BalanceInterval,
		listInterval:    reads.ListInterval,
		status:          governance.StatusActive,
	}
	for _, opt := range opts {
		opt(&o)
	}
	o.wallet = wallet

	readerOpts := []reads.Option{reads.WithLogger(o.logger)}
	if len(o.sources) > 0 {
		readerOpts = append(readerOpts, reads.WithSources(o.sources...))
	}
	if o.sourceObserver != nil {
		readerOpts = append(readerOpts, reads.WithSourceObserver(o.sourceObserver))
	}

	var pollOpts []poll.Option
	pollOpts = append(pollOpts, poll.WithLogger(o.logger))
	if o.pollObserver != nil {
		pollOpts = append(pollOpts, poll.WithObserver(o.pollObserver))
	}

	tracker := account.New(wallet, o.logger)
	r := reads.NewReader(chain, readerOpts...)

	cmdOpts := []commands.Option{commands.WithLogger(o.logger)}
	if o.notifier != nil {
		cmdOpts = append(cmdOpts, commands.WithNotifier(o.notifier))
	}

	vm := &ViewModel{
		Account:  tracker,
		Reads:    r,
		Commands: commands.NewExecutor(chain, wallet, tracker, cmdOpts...),

		TokenBalance:      poll.New("tokenBalance", o.balanceInterval, "0", r.TokenBalance, pollOpts...),
		StakedBalance:     poll.New("stakedBalance", o.balanceInterval, "0", r.StakedBalance, pollOpts...),
		VotingPower:       poll.New("votingPower", o.balanceInterval, "0", r.VotingPower, pollOpts...),
		TotalStaked:       poll.New("totalStaked", o.balanceInterval, "0", func(ctx context.Context, _ none) (string, error) { return r.TotalStaked(ctx) }, pollOpts...),
		ActiveProposals:   poll.New("activeProposals", o.listInterval, ProposalList{}, func(ctx context.Context, _ none) (ProposalList, error) { return r.ActiveProposals(ctx) }, pollOpts...),
		ProposalsByStatus: poll.New("proposalsByStatus", o.listInterval, ProposalList{}, r.ProposalsByStatus, pollOpts...),

		logger:  o.logger.With("component", "viewmodel"),
		status:  o.status,
		states:  make(chan account.State, 1),
		updates: make(chan struct{}, 1),
		quit:    make(chan struct{}),
	}

	vm.units = []unit{
		vm.TokenBalance,
		vm.StakedBalance,
		vm.VotingPower,
		vm.TotalStaked,
		vm.ActiveProposals,
		vm.ProposalsByStatus,
	}

	if o.market != nil {
		vm.Market = newMarket(o.market, vm, &o, pollOpts, cmdOpts)
		vm.units = append(vm.units, vm.Market.units()...)
	}

	return vm
}

// Start begins polling the address independent reads, follows the wallet
// and polls the address bound reads while an account is connected.
func (vm *ViewModel) Start(ctx context.Context) error {
	vm.mu.Lock()
	if vm.closed {
		vm.mu.Unlock()
		return ErrClosed
	}
	if vm.started {
		vm.mu.Unlock()
		return nil
	}
	vm.started = true
	vm.mu.Unlock()

	// the listener must run before the tracker starts, feed sends block
	vm.sub = vm.Account.Subscribe(vm.states)
	vm.wg.Add(1)
	go vm.listen()

	for _, u := range vm.units {
		vm.wg.Add(1)
		go vm.forward(u.Updates())
	}
	for _, c := range vm.commands() {
		vm.wg.Add(1)
		go vm.forward(c.Updates())
	}

	if err := vm.Account.Start(ctx); err != nil {
		return err
	}

	vm.TotalStaked.SetKey(none{})
	vm.ActiveProposals.SetKey(none{})
	vm.ProposalsByStatus.SetKey(vm.status)
	if vm.Market != nil {
		vm.Market.start()
	}

	vm.applyAccount(vm.Account.State())

	return nil
}

func (vm *ViewModel) commands() []*commands.Command {
	cmds := vm.Commands.Commands()
	if vm.Market != nil {
		cmds = append(cmds, vm.Market.Commands.Commands()...)
	}
	return cmds
}

func (vm *ViewModel) listen() {
	defer vm.wg.Done()

	for {
		select {
		case s := <-vm.states:
			vm.applyAccount(s)
		case <-vm.sub.Err():
			return
		case <-vm.quit:
			return
		}
	}
}

func (vm *ViewModel) forward(ch <-chan struct{}) {
	defer vm.wg.Done()

	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
			vm.notify()
		case <-vm.quit:
			return
		}
	}
}

func (vm *ViewModel) notify() {
	select {
	case vm.updates <- struct{}{}:
	default:
	}
}

// applyAccount re-keys the address bound reads. Disconnecting returns them
// to their zero state.
func (vm *ViewModel) applyAccount(s account.State) {
	if s.Address == nil {
		vm.TokenBalance.Clear()
		vm.StakedBalance.Clear()
		vm.VotingPower.Clear()
	} else {
		vm.TokenBalance.SetKey(*s.Address)
		vm.StakedBalance.SetKey(*s.Address)
		vm.VotingPower.SetKey(*s.Address)
	}
	if vm.Market != nil {
		vm.Market.applyAccount(s.Address)
	}
	vm.notify()
}

// Connect asks the wallet for authorization.
func (vm *ViewModel) Connect(ctx context.Context) bool {
	ok := vm.Account.Connect(ctx)
	if ok {
		vm.applyAccount(vm.Account.State())
	}
	return ok
}

// SetStatus changes the status filter of ProposalsByStatus.
func (vm *ViewModel) SetStatus(status governance.Status) {
	vm.mu.Lock()
	vm.status = status
	vm.mu.Unlock()

	vm.ProposalsByStatus.SetKey(status)
}

func (vm *ViewModel) Status() governance.Status {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	return vm.status
}

// Refresh re-reads every polled value now.
func (vm *ViewModel) Refresh() {
	for _, u := range vm.units {
		u.Refresh()
	}
}

// Proposal loads one proposal on demand.
func (vm *ViewModel) Proposal(ctx context.Context, id uint64) (*governance.Proposal, error) {
	return vm.Reads.Proposal(ctx, id)
}

// VoteInfo loads the connected account's vote on a proposal. Without an
// account it reports the empty record.
func (vm *ViewModel) VoteInfo(ctx context.Context, id uint64) (governance.VoteInfo, error) {
	addr := vm.Account.Address()
	if addr == nil {
		return governance.EmptyVoteInfo(), nil
	}
	return vm.Reads.VoteInfo(ctx, id, *addr)
}

func (vm *ViewModel) CastVote(ctx context.Context, id uint64, vote governance.VoteType) error {
	return vm.afterWrite(vm.Commands.CastVote(ctx, id, vote))
}

func (vm *ViewModel) CreateProposal(ctx context.Context, req commands.ProposalRequest) error {
	return vm.afterWrite(vm.Commands.CreateProposal(ctx, req))
}

func (vm *ViewModel) StakeTokens(ctx context.Context, amount string) error {
	return vm.afterWrite(vm.Commands.StakeTokens(ctx, amount))
}

func (vm *ViewModel) UnstakeTokens(ctx context.Context, amount string) error {
	return vm.afterWrite(vm.Commands.UnstakeTokens(ctx, amount))
}

// afterWrite refreshes the reads once a write has been confirmed.
func (vm *ViewModel) afterWrite(err error) error {
	if err == nil {
		vm.Refresh()
	}
	return err
}

// Updates signals whenever any part of the snapshot may have changed.
func (vm *ViewModel) Updates() <-chan struct{} {
	return vm.updates
}

// Close stops every poll loop and the wallet subscription. It is safe to
// call more than once.
func (vm *ViewModel) Close() {
	vm.mu.Lock()
	if vm.closed {
		vm.mu.Unlock()
		return
	}
	vm.closed = true
	started := vm.started
	vm.mu.Unlock()

	if started {
		vm.sub.Unsubscribe()
		close(vm.quit)
	}

	vm.Account.Close()

	for _, u := range vm.units {
		u.Close()
	}

	vm.wg.Wait()

	vm.logger.Debug("closed")
}
