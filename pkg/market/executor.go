package market

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/oceanguard/govclient/pkg/commands"
	"github.com/oceanguard/govclient/pkg/governance"
)

const (
	CreateProject      = "createProject"
	ValidateProject    = "validateProject"
	IssueTokens        = "issueTokens"
	CreateCarbonCredit = "createCarbonCredit"
	ListCarbonCredit   = "listCarbonCredit"
	BuyCarbonCredit    = "buyCarbonCredit"
)

var ErrInvalidProject = errors.New("invalid project")

type ProjectRequest struct {
	Name         string
	Description  string
	Type         ProjectType
	ImpactMetric uint64
}

// Executor submits registry transactions for the connected account with
// the same state discipline as the governance commands.
type Executor struct {
	chain  Chain
	runner *commands.Runner
	now    func() time.Time

	Create   *commands.Command
	Validate *commands.Command
	Issue    *commands.Command
	Mint     *commands.Command
	List     *commands.Command
	Buy      *commands.Command
}

func NewExecutor(chain Chain, wallet governance.Wallet, account commands.AddressSource, opts ...commands.Option) *Executor {
	return &Executor{
		chain:  chain,
		runner: commands.NewRunner(chain, wallet, account, opts...),
		now:    time.Now,

		Create:   commands.NewCommand(CreateProject),
		Validate: commands.NewCommand(ValidateProject),
		Issue:    commands.NewCommand(IssueTokens),
		Mint:     commands.NewCommand(CreateCarbonCredit),
		List:     commands.NewCommand(ListCarbonCredit),
		Buy:      commands.NewCommand(BuyCarbonCredit),
	}
}

// Commands lists every command in a stable order.
func (e *Executor) Commands() []*commands.Command {
	return []*commands.Command{e.Create, e.Validate, e.Issue, e.Mint, e.List, e.Buy}
}

// CreateProject registers a project. Name and description are stored as
// the project's JSON metadata.
func (e *Executor) CreateProject(ctx context.Context, req ProjectRequest) error {
	return e.runner.Run(ctx, e.Create, func(ctx context.Context, opts *bind.TransactOpts) error {
		if strings.TrimSpace(req.Name) == "" {
			return fmt.Errorf("%w: name is required", ErrInvalidProject)
		}
		if req.ImpactMetric == 0 {
			return fmt.Errorf("%w: impact metric must be positive", ErrInvalidProject)
		}
		if !req.Type.Valid() {
			return fmt.Errorf("%w: %d", ErrUnknownProjectType, req.Type)
		}

		metadata, err := EncodeMetadata(Metadata{
			Name:        req.Name,
			Description: req.Description,
			CreatedAt:   e.now().UTC(),
		})
		if err != nil {
			return err
		}

		return e.runner.Transact(ctx, e.Create, func() (*types.Transaction, error) {
			return e.chain.CreateProject(opts, metadata, req.Type, new(big.Int).SetUint64(req.ImpactMetric))
		})
	})
}

// ValidateProject marks a project as verified. Only validators may call it.
func (e *Executor) ValidateProject(ctx context.Context, projectID uint64) error {
	return e.runner.Run(ctx, e.Validate, func(ctx context.Context, opts *bind.TransactOpts) error {
		return e.runner.Transact(ctx, e.Validate, func() (*types.Transaction, error) {
			return e.chain.ValidateProject(opts, new(big.Int).SetUint64(projectID))
		})
	})
}

// IssueTokens mints the reward for a validated project to its creator.
func (e *Executor) IssueTokens(ctx context.Context, projectID uint64) error {
	return e.runner.Run(ctx, e.Issue, func(ctx context.Context, opts *bind.TransactOpts) error {
		return e.runner.Transact(ctx, e.Issue, func() (*types.Transaction, error) {
			return e.chain.IssueTokens(opts, new(big.Int).SetUint64(projectID))
		})
	})
}

// CreateCarbonCredit mints amount tons of credit against a carbon
// sequestration project.
func (e *Executor) CreateCarbonCredit(ctx context.Context, projectID, amount uint64) error {
	return e.runner.Run(ctx, e.Mint, func(ctx context.Context, opts *bind.TransactOpts) error {
		if amount == 0 {
			return fmt.Errorf("%w: credit amount must be positive", governance.ErrInvalidAmount)
		}

		return e.runner.Transact(ctx, e.Mint, func() (*types.Transaction, error) {
			return e.chain.CreateCarbonCredit(opts, new(big.Int).SetUint64(projectID), new(big.Int).SetUint64(amount))
		})
	})
}

// ListCarbonCredit offers a credit for sale. price is in ether.
func (e *Executor) ListCarbonCredit(ctx context.Context, creditID uint64, price string) error {
	return e.runner.Run(ctx, e.List, func(ctx context.Context, opts *bind.TransactOpts) error {
		wei, err := governance.ParseUnits(price)
		if err != nil {
			return err
		}
		if wei.Sign() == 0 {
			return fmt.Errorf("%w: price must be positive", governance.ErrInvalidAmount)
		}

		return e.runner.Transact(ctx, e.List, func() (*types.Transaction, error) {
			return e.chain.ListCarbonCredit(opts, new(big.Int).SetUint64(creditID), wei)
		})
	})
}

// BuyCarbonCredit pays the credit's listed price. The price is read from the
// contract right before submitting.
func (e *Executor) BuyCarbonCredit(ctx context.Context, creditID uint64) error {
	return e.runner.Run(ctx, e.Buy, func(ctx context.Context, opts *bind.TransactOpts) error {
		id := new(big.Int).SetUint64(creditID)

		credit, err := e.chain.CarbonCredit(ctx, id)
		if err != nil {
			return err
		}
		if !credit.ForSale {
			return fmt.Errorf("%w: %d", ErrNotForSale, creditID)
		}

		return e.runner.Transact(ctx, e.Buy, func() (*types.Transaction, error) {
			return e.chain.BuyCarbonCredit(opts, id, credit.Price)
		})
	})
}
