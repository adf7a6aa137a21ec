package chaintest

import (
	"context"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/oceanguard/govclient/pkg/market"
)

type marketState struct {
	rates      market.RawRates
	projects   map[uint64]*market.RawProject
	byCreator  map[common.Address][]uint64
	credits    map[uint64]*market.RawCredit
	validators map[common.Address]bool
}

func newMarketState() marketState {
	return marketState{
		projects:   map[uint64]*market.RawProject{},
		byCreator:  map[common.Address][]uint64{},
		credits:    map[uint64]*market.RawCredit{},
		validators: map[common.Address]bool{},
	}
}

func (c *Chain) SetRates(plastic, reef, carbon int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.market.rates = market.RawRates{
		PlasticRemoval:      big.NewInt(plastic),
		ReefRestoration:     big.NewInt(reef),
		CarbonSequestration: big.NewInt(carbon),
	}
}

// AddProject registers p under its creator.
func (c *Chain) AddProject(p *market.RawProject) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := p.ID.Uint64()
	c.market.projects[id] = p
	c.market.byCreator[p.Creator] = append(c.market.byCreator[p.Creator], id)
}

// AddCredit stores cr. Credits marked for sale are listed as available.
func (c *Chain) AddCredit(cr *market.RawCredit) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.market.credits[cr.ID.Uint64()] = cr
}

func (c *Chain) SetValidator(addr common.Address, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.market.validators[addr] = ok
}

func (c *Chain) ConversionRates(ctx context.Context) (*market.RawRates, error) {
	if err := c.call("ConversionRates"); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	r := c.market.rates
	return &market.RawRates{
		PlasticRemoval:      orZero(r.PlasticRemoval),
		ReefRestoration:     orZero(r.ReefRestoration),
		CarbonSequestration: orZero(r.CarbonSequestration),
	}, nil
}

func (c *Chain) ProjectsByCreator(ctx context.Context, creator common.Address) ([]*big.Int, error) {
	if err := c.call("ProjectsByCreator"); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return bigs(c.market.byCreator[creator]), nil
}

func (c *Chain) Project(ctx context.Context, id *big.Int) (*market.RawProject, error) {
	if err := c.call("Project"); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.market.projects[id.Uint64()]
	if !ok {
		return &market.RawProject{ID: new(big.Int), ImpactMetric: new(big.Int)}, nil
	}
	cp := *p
	return &cp, nil
}

// AvailableCredits lists credits for sale in id order.
func (c *Chain) AvailableCredits(ctx context.Context) ([]*big.Int, error) {
	if err := c.call("AvailableCredits"); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var ids []uint64
	for id, cr := range c.market.credits {
		if cr.ForSale {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return bigs(ids), nil
}

func (c *Chain) CarbonCredit(ctx context.Context, id *big.Int) (*market.RawCredit, error) {
	if err := c.call("CarbonCredit"); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	cr, ok := c.market.credits[id.Uint64()]
	if !ok {
		return &market.RawCredit{ID: new(big.Int), Amount: new(big.Int), Price: new(big.Int)}, nil
	}
	cp := *cr
	return &cp, nil
}

func (c *Chain) IsValidator(ctx context.Context, account common.Address) (bool, error) {
	if err := c.call("IsValidator"); err != nil {
		return false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.market.validators[account], nil
}

// CalculateTokenAmount applies the configured rate the way the contract does.
func (c *Chain) CalculateTokenAmount(ctx context.Context, projectType market.ProjectType, impactMetric *big.Int) (*big.Int, error) {
	if err := c.call("CalculateTokenAmount"); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var rate *big.Int
	switch projectType {
	case market.PlasticRemoval:
		rate = c.market.rates.PlasticRemoval
	case market.ReefRestoration:
		rate = c.market.rates.ReefRestoration
	case market.CarbonSequestration:
		rate = c.market.rates.CarbonSequestration
	}
	return new(big.Int).Mul(orZero(rate), impactMetric), nil
}

func (c *Chain) CreateProject(opts *bind.TransactOpts, metadata string, projectType market.ProjectType, impactMetric *big.Int) (*types.Transaction, error) {
	return c.submit("CreateProject", opts, metadata, projectType, impactMetric)
}

func (c *Chain) ValidateProject(opts *bind.TransactOpts, projectID *big.Int) (*types.Transaction, error) {
	return c.submit("ValidateProject", opts, projectID)
}

func (c *Chain) IssueTokens(opts *bind.TransactOpts, projectID *big.Int) (*types.Transaction, error) {
	return c.submit("IssueTokens", opts, projectID)
}

func (c *Chain) CreateCarbonCredit(opts *bind.TransactOpts, projectID, amount *big.Int) (*types.Transaction, error) {
	return c.submit("CreateCarbonCredit", opts, projectID, amount)
}

func (c *Chain) ListCarbonCredit(opts *bind.TransactOpts, creditID, price *big.Int) (*types.Transaction, error) {
	return c.submit("ListCarbonCredit", opts, creditID, price)
}

// BuyCarbonCredit records price as the transaction value and hands the
// credit to the buyer.
func (c *Chain) BuyCarbonCredit(opts *bind.TransactOpts, creditID, price *big.Int) (*types.Transaction, error) {
	paid := *opts
	paid.Value = price
	tx, err := c.submit("BuyCarbonCredit", &paid, creditID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if cr, ok := c.market.credits[creditID.Uint64()]; ok && !c.reverting["BuyCarbonCredit"] {
		sold := *cr
		sold.Owner = opts.From
		sold.ForSale = false
		c.market.credits[creditID.Uint64()] = &sold
	}
	return tx, nil
}

var _ market.Chain = (*Chain)(nil)
