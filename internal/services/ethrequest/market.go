package ethrequest

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/oceanguard/govclient/pkg/market"
)

// ConversionRates reads the three issuance rates against one block.
func (c *Contracts) ConversionRates(ctx context.Context) (*market.RawRates, error) {
	opts := callOpts(ctx)

	head, err := c.backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, err
	}
	opts.BlockNumber = head.Number

	plastic, err := c.Token.PlasticRemovalRate(opts)
	if err != nil {
		return nil, err
	}
	reef, err := c.Token.ReefRestorationRate(opts)
	if err != nil {
		return nil, err
	}
	carbon, err := c.Token.CarbonSequestrationRate(opts)
	if err != nil {
		return nil, err
	}

	return &market.RawRates{
		PlasticRemoval:      plastic,
		ReefRestoration:     reef,
		CarbonSequestration: carbon,
	}, nil
}

func (c *Contracts) ProjectsByCreator(ctx context.Context, creator common.Address) ([]*big.Int, error) {
	return c.Token.GetProjectsByCreator(callOpts(ctx), creator)
}

func (c *Contracts) Project(ctx context.Context, id *big.Int) (*market.RawProject, error) {
	return c.Token.Projects(callOpts(ctx), id)
}

func (c *Contracts) AvailableCredits(ctx context.Context) ([]*big.Int, error) {
	return c.Token.GetAvailableCredits(callOpts(ctx))
}

func (c *Contracts) CarbonCredit(ctx context.Context, id *big.Int) (*market.RawCredit, error) {
	return c.Token.CarbonCredits(callOpts(ctx), id)
}

func (c *Contracts) IsValidator(ctx context.Context, account common.Address) (bool, error) {
	return c.Token.Validators(callOpts(ctx), account)
}

func (c *Contracts) CalculateTokenAmount(ctx context.Context, projectType market.ProjectType, impactMetric *big.Int) (*big.Int, error) {
	return c.Token.CalculateTokenAmount(callOpts(ctx), uint8(projectType), impactMetric)
}

func (c *Contracts) CreateProject(opts *bind.TransactOpts, metadata string, projectType market.ProjectType, impactMetric *big.Int) (*types.Transaction, error) {
	return c.Token.CreateProject(opts, metadata, uint8(projectType), impactMetric)
}

func (c *Contracts) ValidateProject(opts *bind.TransactOpts, projectID *big.Int) (*types.Transaction, error) {
	return c.Token.ValidateProject(opts, projectID)
}

func (c *Contracts) IssueTokens(opts *bind.TransactOpts, projectID *big.Int) (*types.Transaction, error) {
	return c.Token.IssueTokens(opts, projectID)
}

func (c *Contracts) CreateCarbonCredit(opts *bind.TransactOpts, projectID, amount *big.Int) (*types.Transaction, error) {
	return c.Token.CreateCarbonCredit(opts, projectID, amount)
}

func (c *Contracts) ListCarbonCredit(opts *bind.TransactOpts, creditID, price *big.Int) (*types.Transaction, error) {
	return c.Token.ListCarbonCredit(opts, creditID, price)
}

func (c *Contracts) BuyCarbonCredit(opts *bind.TransactOpts, creditID, price *big.Int) (*types.Transaction, error) {
	return c.Token.BuyCarbonCredit(opts, creditID, price)
}

var _ market.Chain = (*Contracts)(nil)
