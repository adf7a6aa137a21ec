package governance

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
)

var (
	ErrNoProvider         = errors.New("no wallet provider available")
	ErrWalletNotConnected = errors.New("Wallet not connected")
	ErrTxReverted         = errors.New("transaction reverted")
)

// ZeroAddress is the createProposal target meaning "no execution target".
var ZeroAddress = common.Address{}

// ChainReader is the view surface of the token and governance contracts.
type ChainReader interface {
	BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error)
	StakedBalance(ctx context.Context, user common.Address) (*big.Int, error)
	TotalStaked(ctx context.Context) (*big.Int, error)
	VotingPower(ctx context.Context, account common.Address) (*big.Int, error)
	UserDelegate(ctx context.Context, user common.Address) (common.Address, error)

	ProposalCount(ctx context.Context) (*big.Int, error)
	ActiveProposals(ctx context.Context) ([]*big.Int, error)
	ProposalsByStatus(ctx context.Context, status Status) ([]*big.Int, error)
	ProposalsByCategory(ctx context.Context, category Category) ([]*big.Int, error)
	Proposal(ctx context.Context, id *big.Int) (*RawProposal, error)
	VoteInfo(ctx context.Context, id *big.Int, voter common.Address) (*RawVoteInfo, error)
}

// ChainWriter is the state-mutating surface. Every call returns as soon as
// the transaction has been submitted; WaitMined blocks for its receipt.
type ChainWriter interface {
	GovernanceAddress() common.Address

	Approve(opts *bind.TransactOpts, spender common.Address, amount *big.Int) (*types.Transaction, error)
	StakeTokens(opts *bind.TransactOpts, amount *big.Int) (*types.Transaction, error)
	UnstakeTokens(opts *bind.TransactOpts, amount *big.Int) (*types.Transaction, error)
	CastVote(opts *bind.TransactOpts, id *big.Int, vote VoteType) (*types.Transaction, error)
	CreateProposal(opts *bind.TransactOpts, title, description string, category Category, executionData []byte, target common.Address) (*types.Transaction, error)

	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

type Chain interface {
	ChainReader
	ChainWriter
}

// Wallet supplies accounts and signing.
type Wallet interface {
	// RequestAccounts asks the user to authorize the client.
	RequestAccounts(ctx context.Context) ([]common.Address, error)
	// Accounts lists already authorized accounts without prompting.
	Accounts(ctx context.Context) ([]common.Address, error)
	// Signer returns transact options that sign as account.
	Signer(ctx context.Context, account common.Address) (*bind.TransactOpts, error)
	SubscribeAccountsChanged(ch chan<- []common.Address) event.Subscription
}
