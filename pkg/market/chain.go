package market

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ChainReader is the view surface of the project and credit registry.
type ChainReader interface {
	ConversionRates(ctx context.Context) (*RawRates, error)
	ProjectsByCreator(ctx context.Context, creator common.Address) ([]*big.Int, error)
	Project(ctx context.Context, id *big.Int) (*RawProject, error)
	AvailableCredits(ctx context.Context) ([]*big.Int, error)
	CarbonCredit(ctx context.Context, id *big.Int) (*RawCredit, error)
	IsValidator(ctx context.Context, account common.Address) (bool, error)
	CalculateTokenAmount(ctx context.Context, projectType ProjectType, impactMetric *big.Int) (*big.Int, error)
}

// ChainWriter submits registry transactions. Like governance writes, every
// call returns once the transaction is submitted.
type ChainWriter interface {
	CreateProject(opts *bind.TransactOpts, metadata string, projectType ProjectType, impactMetric *big.Int) (*types.Transaction, error)
	ValidateProject(opts *bind.TransactOpts, projectID *big.Int) (*types.Transaction, error)
	IssueTokens(opts *bind.TransactOpts, projectID *big.Int) (*types.Transaction, error)
	CreateCarbonCredit(opts *bind.TransactOpts, projectID, amount *big.Int) (*types.Transaction, error)
	ListCarbonCredit(opts *bind.TransactOpts, creditID, price *big.Int) (*types.Transaction, error)
	// BuyCarbonCredit pays price wei for the credit.
	BuyCarbonCredit(opts *bind.TransactOpts, creditID, price *big.Int) (*types.Transaction, error)

	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

type Chain interface {
	ChainReader
	ChainWriter
}
