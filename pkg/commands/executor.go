package commands

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/oceanguard/govclient/pkg/governance"
)

const (
	CastVote       = "castVote"
	CreateProposal = "createProposal"
	StakeTokens    = "stakeTokens"
	UnstakeTokens  = "unstakeTokens"
)

// AddressSource reports the connected account, nil when disconnected.
type AddressSource interface {
	Address() *common.Address
}

// Failure describes a command that did not complete.
type Failure struct {
	Command string
	Account *common.Address
	TxHash  *common.Hash
	Err     error
}

// Notifier is told about every failed command.
type Notifier interface {
	CommandFailed(ctx context.Context, f Failure)
}

type ProposalRequest struct {
	Title       string
	Description string
	Category    governance.Category
	// ExecutionData defaults to empty calldata.
	ExecutionData []byte
	// Target defaults to the zero address, meaning no execution target.
	Target common.Address
}

// Executor submits governance transactions for the connected account. The
// commands are not idempotent: calling one again after a failure may submit
// a duplicate transaction.
type Executor struct {
	chain  governance.ChainWriter
	runner *Runner

	Vote    *Command
	Propose *Command
	Stake   *Command
	Unstake *Command
}

func NewExecutor(chain governance.ChainWriter, wallet governance.Wallet, account AddressSource, opts ...Option) *Executor {
	return &Executor{
		chain:  chain,
		runner: NewRunner(chain, wallet, account, opts...),

		Vote:    NewCommand(CastVote),
		Propose: NewCommand(CreateProposal),
		Stake:   NewCommand(StakeTokens),
		Unstake: NewCommand(UnstakeTokens),
	}
}

// Commands lists every command in a stable order.
func (e *Executor) Commands() []*Command {
	return []*Command{e.Vote, e.Propose, e.Stake, e.Unstake}
}

// CastVote votes on a proposal.
func (e *Executor) CastVote(ctx context.Context, proposalID uint64, vote governance.VoteType) error {
	return e.runner.Run(ctx, e.Vote, func(ctx context.Context, opts *bind.TransactOpts) error {
		if !vote.Valid() {
			return fmt.Errorf("%w: %d", governance.ErrUnknownVoteType, vote)
		}

		return e.runner.Transact(ctx, e.Vote, func() (*types.Transaction, error) {
			return e.chain.CastVote(opts, new(big.Int).SetUint64(proposalID), vote)
		})
	})
}

// CreateProposal submits a new proposal.
func (e *Executor) CreateProposal(ctx context.Context, req ProposalRequest) error {
	return e.runner.Run(ctx, e.Propose, func(ctx context.Context, opts *bind.TransactOpts) error {
		if !req.Category.Valid() {
			return fmt.Errorf("%w: %d", governance.ErrUnknownCategory, req.Category)
		}

		data := req.ExecutionData
		if data == nil {
			data = []byte{}
		}

		return e.runner.Transact(ctx, e.Propose, func() (*types.Transaction, error) {
			return e.chain.CreateProposal(opts, req.Title, req.Description, req.Category, data, req.Target)
		})
	})
}

// StakeTokens approves the governance contract for amount and then stakes
// it. A failed approval aborts before anything is staked.
func (e *Executor) StakeTokens(ctx context.Context, amount string) error {
	return e.runner.Run(ctx, e.Stake, func(ctx context.Context, opts *bind.TransactOpts) error {
		value, err := governance.ParseUnits(amount)
		if err != nil {
			return err
		}

		e.Stake.setPhase(PhaseApproving)

		err = e.runner.Transact(ctx, e.Stake, func() (*types.Transaction, error) {
			return e.chain.Approve(opts, e.chain.GovernanceAddress(), value)
		})
		if err != nil {
			return fmt.Errorf("approve: %w", err)
		}

		e.Stake.setPhase(PhaseStaking)

		return e.runner.Transact(ctx, e.Stake, func() (*types.Transaction, error) {
			return e.chain.StakeTokens(opts, value)
		})
	})
}

// UnstakeTokens withdraws staked tokens. No approval is needed since the
// governance contract already holds them.
func (e *Executor) UnstakeTokens(ctx context.Context, amount string) error {
	return e.runner.Run(ctx, e.Unstake, func(ctx context.Context, opts *bind.TransactOpts) error {
		value, err := governance.ParseUnits(amount)
		if err != nil {
			return err
		}

		return e.runner.Transact(ctx, e.Unstake, func() (*types.Transaction, error) {
			return e.chain.UnstakeTokens(opts, value)
		})
	})
}
